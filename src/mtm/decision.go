// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mtm

import (
	"context"
	"crypto/x509"
	"sync"
)

// Decision is the operator's answer to one escalated trust question.
//
// The zero value is Abort, so any path that fails to produce an explicit
// affirmative answer rejects the chain.
type Decision int

const (
	// Abort rejects the chain. Dismissing the decision surface without an
	// explicit choice, cancellation, and interruption all map here.
	Abort Decision = iota
	// AllowOnce accepts the chain for the current validation only.
	AllowOnce
	// AllowAlways accepts the chain and memorizes it in the trust store.
	AllowAlways
)

// String returns a human-readable name for the decision.
func (d Decision) String() string {
	switch d {
	case AllowOnce:
		return "allow once"
	case AllowAlways:
		return "allow always"
	default:
		return "abort"
	}
}

// Request is one escalated trust question: the chain that failed both
// validators, the purpose it was presented for, and the baseline rejection
// reason. A Request is constructed once per escalation and never reused; a
// fresh re-validation of the same chain creates a brand-new Request.
type Request struct {
	// Chain is the presented certificate chain, leaf first.
	Chain []*x509.Certificate
	// Purpose is the authentication direction the chain was presented for.
	Purpose Purpose
	// Reason is the baseline validator's rejection cause.
	Reason error
}

// Surface is the decision capability the manager escalates to. It is
// injected at construction time, so embedders can plug in a dialog, a
// terminal prompt, or a deterministic test double.
//
// Present is invoked on its own goroutine and may hand the request to any
// execution context it likes. It must eventually call resolve exactly once;
// calling it more than once is harmless (later calls are no-ops), and never
// calling it leaves the waiter resolvable only by cancellation.
type Surface interface {
	Present(req *Request, resolve func(Decision))
}

// SurfaceFunc adapts a plain function to the Surface interface.
type SurfaceFunc func(req *Request, resolve func(Decision))

// Present calls f.
func (f SurfaceFunc) Present(req *Request, resolve func(Decision)) { f(req, resolve) }

// escalation is the single-resolution rendezvous between one validating
// goroutine and the decision surface.
//
// Exactly one Decision is ever recorded: the first call to resolve wins and
// every later call is a no-op. The validating goroutine blocks in wait until
// either the recorded decision arrives or its context is cancelled, in which
// case the escalation resolves as Abort without affecting any other pending
// escalation.
type escalation struct {
	once sync.Once
	done chan Decision
}

func newEscalation() *escalation {
	return &escalation{done: make(chan Decision, 1)}
}

// resolve records the decision if none has been recorded yet.
func (e *escalation) resolve(d Decision) {
	e.once.Do(func() { e.done <- d })
}

// wait blocks until the escalation is resolved. Cancellation of ctx resolves
// the escalation as Abort; if the surface had already resolved it, the
// recorded decision is returned instead.
func (e *escalation) wait(ctx context.Context) Decision {
	select {
	case d := <-e.done:
		return d
	case <-ctx.Done():
		// Resolving here makes a late surface callback a no-op and
		// guarantees the receive below returns without blocking.
		e.resolve(Abort)
		return <-e.done
	}
}
