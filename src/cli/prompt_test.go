// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zxiu-bonofa/MemorizingTrustManager/src/mtm"
)

func newPromptRequest(t *testing.T) *mtm.Request {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "prompt.internal"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &mtm.Request{
		Chain:   []*x509.Certificate{cert},
		Purpose: mtm.ServerAuth,
		Reason:  errors.New("x509: certificate signed by unknown authority"),
	}
}

func present(s *TerminalSurface, req *mtm.Request) mtm.Decision {
	decision := mtm.Abort
	resolved := false
	s.Present(req, func(d mtm.Decision) {
		if !resolved {
			decision = d
			resolved = true
		}
	})
	return decision
}

func TestTerminalSurfaceAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  mtm.Decision
	}{
		{name: "Always Short", input: "a\n", want: mtm.AllowAlways},
		{name: "Always Word", input: "always\n", want: mtm.AllowAlways},
		{name: "Always Uppercase", input: "A\n", want: mtm.AllowAlways},
		{name: "Once Short", input: "o\n", want: mtm.AllowOnce},
		{name: "Once Word", input: "once\n", want: mtm.AllowOnce},
		{name: "Empty Line Aborts", input: "\n", want: mtm.Abort},
		{name: "Unrecognized Aborts", input: "yes\n", want: mtm.Abort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := newTerminalSurface(strings.NewReader(tt.input), &out)

			assert.Equal(t, tt.want, present(s, newPromptRequest(t)))
		})
	}
}

func TestTerminalSurfaceEOFAborts(t *testing.T) {
	var out bytes.Buffer
	s := newTerminalSurface(strings.NewReader(""), &out)

	assert.Equal(t, mtm.Abort, present(s, newPromptRequest(t)),
		"dismissal by EOF must abort, not silently succeed")
}

func TestTerminalSurfaceRendersChainAndReason(t *testing.T) {
	var out bytes.Buffer
	s := newTerminalSurface(strings.NewReader("a\n"), &out)

	present(s, newPromptRequest(t))

	rendered := out.String()
	assert.Contains(t, rendered, "server authentication")
	assert.Contains(t, rendered, "prompt.internal", "chain subjects must be shown")
	assert.Contains(t, rendered, "unknown authority", "root cause must be shown")
}

func TestTerminalSurfaceWithoutTTYAborts(t *testing.T) {
	var out bytes.Buffer
	s := &TerminalSurface{
		in:         bufio.NewReader(strings.NewReader("a\n")),
		out:        &out,
		isTerminal: func() bool { return false },
	}

	assert.Equal(t, mtm.Abort, present(s, newPromptRequest(t)),
		"a non-interactive stdin must abort instead of consuming input")
	assert.Empty(t, out.String(), "nothing should be rendered without a terminal")
}

func TestTerminalSurfaceSequentialPrompts(t *testing.T) {
	var out bytes.Buffer
	s := newTerminalSurface(strings.NewReader("o\na\n"), &out)

	assert.Equal(t, mtm.AllowOnce, present(s, newPromptRequest(t)))
	assert.Equal(t, mtm.AllowAlways, present(s, newPromptRequest(t)),
		"buffered input must carry over between prompts")
}

func TestWithDialTimeout(t *testing.T) {
	t.Run("Positive Sets Deadline", func(t *testing.T) {
		ctx, cancel := withDialTimeout(context.Background(), 30)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok, "a positive timeout must set a deadline")
		assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
	})

	t.Run("Zero Disables Deadline", func(t *testing.T) {
		ctx, cancel := withDialTimeout(context.Background(), 0)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok, "a zero timeout must not expire the dial while a prompt is pending")
		require.NoError(t, ctx.Err(), "the context must start out live, not already expired")
	})

	t.Run("Negative Disables Deadline", func(t *testing.T) {
		ctx, cancel := withDialTimeout(context.Background(), -1)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
		require.NoError(t, ctx.Err())
	})

	t.Run("Parent Cancellation Propagates", func(t *testing.T) {
		parent, cancelParent := context.WithCancel(context.Background())
		ctx, cancel := withDialTimeout(parent, 0)
		defer cancel()

		cancelParent()
		assert.Error(t, ctx.Err(), "interrupting the dial must still cancel a pending prompt")
	})
}

func TestRootCause(t *testing.T) {
	base := errors.New("bad signature")
	wrapped := fmt.Errorf("validating chain: %w", fmt.Errorf("leaf check: %w", base))

	assert.Equal(t, base, rootCause(wrapped))
	assert.Equal(t, base, rootCause(base))
	assert.Nil(t, rootCause(nil))
}
