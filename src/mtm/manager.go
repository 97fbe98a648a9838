// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mtm

import (
	"context"
	"crypto/x509"
	"sync"
	"sync/atomic"

	"github.com/zxiu-bonofa/MemorizingTrustManager/src/logger"
	"github.com/zxiu-bonofa/MemorizingTrustManager/src/truststore"
)

// Options configures a Manager. The zero value is usable: an in-memory
// trust store, the platform baseline verifier, no decision surface (so
// unknown chains are rejected without prompting), and silent logging.
type Options struct {
	// Store is the persisted trust store of previously accepted
	// certificates. If nil, an in-memory store is used.
	Store *truststore.Store
	// Baseline validates chains against the platform's default trusted
	// roots. If nil, [NewSystemVerifier] is used. Tests substitute stubs
	// here.
	Baseline Verifier
	// Surface is asked to decide when both validators reject a chain. If
	// nil, double rejections are returned to the caller unescalated.
	Surface Surface
	// Logger receives warning and debug output. If nil, output is
	// discarded.
	Logger logger.Logger
}

// Manager is the memorizing trust manager: an interactive trust decision
// engine for TLS certificate validation.
//
// A chain is checked against the memorized trust store first, then against
// the platform baseline. If both reject it, the validating goroutine blocks
// while the decision surface asks the operator, and an "always trust" answer
// is durably memorized for future connections.
//
// Manager is safe for concurrent use by multiple goroutines: fast-path
// validations never serialize against each other, and only the
// memorize-persist-rebuild step is exclusive.
type Manager struct {
	store    *truststore.Store
	baseline Verifier
	surface  Surface
	log      logger.Logger

	// memorized is swapped atomically after every store mutation so the
	// fast path reads it without locking.
	memorized atomic.Pointer[PoolVerifier]

	// mu serializes accept+persist+rebuild as one critical section.
	mu sync.Mutex
}

// New creates a Manager from opts, loading the memorized anchor set from the
// trust store.
func New(opts Options) (*Manager, error) {
	store := opts.Store
	if store == nil {
		var err error
		store, err = truststore.Open(truststore.NewMemoryBackend())
		if err != nil {
			return nil, err
		}
	}

	baseline := opts.Baseline
	if baseline == nil {
		baseline = NewSystemVerifier()
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}

	m := &Manager{
		store:    store,
		baseline: baseline,
		surface:  opts.Surface,
		log:      log,
	}
	m.memorized.Store(NewAnchorVerifier(store.Certificates()))

	return m, nil
}

// CheckServerTrusted reports whether a chain presented by a server is
// trusted, escalating to the decision surface on double rejection.
//
// Cancelling ctx while the escalation is pending resolves it as abort and
// returns the baseline rejection reason.
func (m *Manager) CheckServerTrusted(ctx context.Context, chain []*x509.Certificate) error {
	return m.check(ctx, chain, ServerAuth)
}

// CheckClientTrusted reports whether a chain presented by a client is
// trusted, escalating to the decision surface on double rejection.
func (m *Manager) CheckClientTrusted(ctx context.Context, chain []*x509.Certificate) error {
	return m.check(ctx, chain, ClientAuth)
}

// check runs the two-tier trust evaluation and, on double failure, the
// blocking escalation exchange.
func (m *Manager) check(ctx context.Context, chain []*x509.Certificate, purpose Purpose) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	// Fast path: previously memorized chains skip the baseline, the
	// surface, and all locking.
	if err := m.memorized.Load().Verify(chain, purpose); err == nil {
		return nil
	}

	// Baseline fallback. Success here does not memorize anything: the
	// platform already trusts the chain.
	reason := m.baseline.Verify(chain, purpose)
	if reason == nil {
		return nil
	}

	if m.surface == nil {
		return reason
	}

	req := &Request{
		Chain:   chain,
		Purpose: purpose,
		Reason:  reason,
	}

	esc := newEscalation()
	// Fire-and-forget dispatch: the surface runs on its own goroutine so
	// a surface that blocks can never deadlock against the waiter.
	go m.surface.Present(req, esc.resolve)

	switch d := esc.wait(ctx); d {
	case AllowAlways:
		m.log.Printf("memorizing certificate for %s", truststore.IdentityOf(chain[0]))
		m.memorize(chain)
		return nil
	case AllowOnce:
		m.log.Printf("allowing connection once for %s", truststore.IdentityOf(chain[0]))
		return nil
	default:
		// The original validation failure is surfaced, not a generic
		// escalation error.
		return reason
	}
}

// memorize records the chain in the trust store, persists it, and rebuilds
// the memorized verifier. The three steps form one critical section so
// concurrent "always trust" decisions never lose updates.
//
// A persistence failure is reported as a warning and does not revoke the
// already-granted decision; the chain stays trusted in memory but may not
// survive a restart.
func (m *Manager) memorize(chain []*x509.Certificate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Accept(chain)
	if err := m.store.Persist(); err != nil {
		m.log.Printf("warning: trust decision granted but not persisted: %v", err)
	}
	m.memorized.Store(NewAnchorVerifier(m.store.Certificates()))
}

// AcceptedIssuers returns the baseline verifier's trusted issuer set. It is
// used by handshake negotiation, not by the trust decision itself.
func (m *Manager) AcceptedIssuers() []*x509.Certificate {
	return m.baseline.AcceptedIssuers()
}

// Store returns the manager's trust store, e.g. for inspection tooling.
func (m *Manager) Store() *truststore.Store {
	return m.store
}
