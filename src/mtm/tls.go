// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mtm

import (
	"context"
	"crypto/tls"
	"crypto/x509"

	x509certs "github.com/zxiu-bonofa/MemorizingTrustManager/src/internal/x509/certs"
)

// VerifyPeerCertificate returns a callback with the
// [tls.Config.VerifyPeerCertificate] signature that runs the presented chain
// through the manager's server-trust evaluation.
//
// The returned callback parses the raw handshake certificates itself and
// ignores verifiedChains; standard verification must be disabled (see
// [Manager.TLSConfig]) so rejected chains reach the escalation path instead
// of failing the handshake outright.
func (m *Manager) VerifyPeerCertificate(ctx context.Context) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	codec := x509certs.New()
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		chain, err := codec.DecodeRaw(rawCerts)
		if err != nil {
			return err
		}
		return m.CheckServerTrusted(ctx, chain)
	}
}

// TLSConfig returns a [tls.Config] that routes certificate validation
// through the manager, the way an embedding application wires the trust
// manager into its TLS stack:
//
//	cfg := manager.TLSConfig(ctx)
//	conn, err := tls.Dial("tcp", addr, cfg)
//
// InsecureSkipVerify only disables the default chain validation; every
// handshake still passes through the manager's two-tier evaluation and, if
// needed, the operator. Hostname verification is not performed here; callers
// that need it should layer a [tls.Config.VerifyConnection] check on top.
func (m *Manager) TLSConfig(ctx context.Context) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: m.VerifyPeerCertificate(ctx),
	}
}
