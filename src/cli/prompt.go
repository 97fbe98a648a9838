// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/zxiu-bonofa/MemorizingTrustManager/src/mtm"
)

// TerminalSurface is a decision surface that prompts on an interactive
// terminal. It renders the failed chain and the root-cause validation
// failure, then reads one of always / once / abort from the operator.
//
// Prompts are serialized: concurrent escalations queue for the terminal one
// at a time, each resolving independently. On a non-interactive stdin the
// surface resolves abort instead of hanging on input that will never come.
type TerminalSurface struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	// isTerminal gates prompting; overridable for tests.
	isTerminal func() bool
}

// NewTerminalSurface creates a surface prompting on stdin/stderr.
func NewTerminalSurface() *TerminalSurface {
	return &TerminalSurface{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// newTerminalSurface creates a surface over arbitrary streams for tests.
func newTerminalSurface(in io.Reader, out io.Writer) *TerminalSurface {
	return &TerminalSurface{
		in:         bufio.NewReader(in),
		out:        out,
		isTerminal: func() bool { return true },
	}
}

// Present renders the request and resolves with the operator's answer.
// Dismissals of every kind (EOF, read error, unrecognized input, missing
// terminal) resolve abort, never silent success.
func (s *TerminalSurface) Present(req *mtm.Request, resolve func(mtm.Decision)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTerminal() {
		resolve(mtm.Abort)
		return
	}

	fmt.Fprintf(s.out, "\nAccept invalid certificate for %s?\n", req.Purpose)
	fmt.Fprintf(s.out, "  %v\n\n", rootCause(req.Reason))
	for _, cert := range req.Chain {
		fmt.Fprintf(s.out, "  %s (%s)\n", cert.Subject, cert.Issuer)
	}
	fmt.Fprintf(s.out, "\n[a]lways trust, [o]nce, anything else aborts: ")

	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		resolve(mtm.Abort)
		return
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a", "always":
		fmt.Fprintln(s.out, "Storing certificate forever...")
		resolve(mtm.AllowAlways)
	case "o", "once":
		fmt.Fprintln(s.out, "Allowing connection once...")
		resolve(mtm.AllowOnce)
	default:
		fmt.Fprintln(s.out, "Aborting connection.")
		resolve(mtm.Abort)
	}
}

// rootCause unwraps err to the deepest underlying failure, so the prompt
// shows the actual validation problem rather than its wrappers.
func rootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}
