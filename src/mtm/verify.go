// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mtm

import (
	"crypto/x509"
	"errors"
)

// ErrEmptyChain indicates that a validation request carried no certificates.
var ErrEmptyChain = errors.New("mtm: empty certificate chain")

// Purpose is the authentication direction a chain is validated for.
type Purpose int

const (
	// ServerAuth validates a chain presented by a server to a client.
	ServerAuth Purpose = iota
	// ClientAuth validates a chain presented by a client to a server.
	ClientAuth
)

// String returns a human-readable name for the purpose.
func (p Purpose) String() string {
	if p == ClientAuth {
		return "client authentication"
	}
	return "server authentication"
}

// extKeyUsage maps the purpose to its [x509.ExtKeyUsage].
func (p Purpose) extKeyUsage() x509.ExtKeyUsage {
	if p == ClientAuth {
		return x509.ExtKeyUsageClientAuth
	}
	return x509.ExtKeyUsageServerAuth
}

// Verifier validates a presented certificate chain for a purpose.
//
// Implementations must be safe for concurrent use; the manager runs its fast
// paths from many validating goroutines without serialization.
type Verifier interface {
	// Verify returns nil if the chain is trusted for the purpose, or the
	// underlying validation failure.
	Verify(chain []*x509.Certificate, purpose Purpose) error
	// AcceptedIssuers returns the verifier's explicitly configured trust
	// anchors.
	AcceptedIssuers() []*x509.Certificate
}

// PoolVerifier validates chains against a fixed anchor set built on the
// standard [x509.Certificate.Verify] path machinery.
//
// A nil root pool delegates to the platform's default trusted roots (the
// baseline configuration); a populated pool restricts trust to exactly its
// anchors (the memorized configuration).
type PoolVerifier struct {
	roots   *x509.CertPool
	anchors []*x509.Certificate
}

// NewSystemVerifier creates the baseline verifier: no extra anchors, chains
// are validated against the platform's default trusted roots.
//
// AcceptedIssuers on the result is empty: Go does not expose the contents of
// the system root pool, and the baseline carries no anchors of its own.
func NewSystemVerifier() *PoolVerifier {
	return &PoolVerifier{}
}

// NewAnchorVerifier creates a verifier that trusts exactly the given
// anchors. An empty anchor set trusts nothing and rejects every chain.
//
// The manager rebuilds its memorized verifier through this constructor after
// every successful "always trust" decision, so a just-accepted certificate
// is trusted on the very next validation.
func NewAnchorVerifier(anchors []*x509.Certificate) *PoolVerifier {
	roots := x509.NewCertPool()
	for _, cert := range anchors {
		roots.AddCert(cert)
	}
	return &PoolVerifier{
		roots:   roots,
		anchors: anchors,
	}
}

// Verify validates the chain (leaf first) for the purpose. Certificates
// after the leaf are offered as intermediates.
//
// The original error from the verification process is returned to preserve
// detailed diagnostic information (e.g., expiration, unknown authority).
//
// Thread Safety: Safe for concurrent use.
func (v *PoolVerifier) Verify(chain []*x509.Certificate, purpose Purpose) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{purpose.extKeyUsage()},
	}

	if _, err := chain[0].Verify(opts); err != nil {
		return err
	}

	return nil
}

// AcceptedIssuers returns the verifier's explicitly configured anchors.
//
// Thread Safety: Safe for concurrent use.
func (v *PoolVerifier) AcceptedIssuers() []*x509.Certificate {
	return v.anchors
}
