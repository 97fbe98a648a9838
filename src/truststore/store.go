// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"sort"
	"sync"
)

// Identity is the key under which an accepted certificate is stored.
// It is derived from the certificate's subject distinguished name, so a
// renewed certificate for the same subject replaces the prior entry.
type Identity string

// IdentityOf derives the store key for a certificate.
func IdentityOf(cert *x509.Certificate) Identity {
	return Identity(cert.Subject.String())
}

// Backend is the persistence capability the store delegates to.
//
// Load must report a missing persisted store as an empty mapping with a nil
// error; only genuinely unreadable or corrupt data is an error. Persist must
// replace the previously persisted contents atomically.
type Backend interface {
	Load() (map[Identity]*x509.Certificate, error)
	Persist(entries map[Identity]*x509.Certificate) error
}

// Store holds the certificates a human operator has accepted with "always"
// semantics. Entries are keyed by subject identity; inserting a certificate
// for an existing identity replaces the prior entry.
//
// Store is safe for concurrent use by multiple goroutines. Callers that need
// accept-persist to be one atomic step against other writers must provide
// their own serialization around the pair; the trust manager does exactly
// that.
type Store struct {
	mu      sync.RWMutex
	entries map[Identity]*x509.Certificate
	backend Backend
}

// Open creates a Store backed by the given Backend and loads the persisted
// entries. A backend reporting no persisted data yields an empty store, not
// an error.
//
// Parameters:
//   - backend: Persistence capability for load and persist
//
// Returns:
//   - *Store: Loaded store
//   - error: Error if the backend failed to read existing data
func Open(backend Backend) (*Store, error) {
	entries, err := backend.Load()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[Identity]*x509.Certificate)
	}
	return &Store{
		entries: entries,
		backend: backend,
	}, nil
}

// Accept inserts every certificate in the chain under its subject identity.
// Within one call, later chain entries overwrite earlier ones that share an
// identity (last-wins, in chain order).
//
// Accept mutates in-memory state only; call Persist to make the change
// durable.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Accept(chain []*x509.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cert := range chain {
		s.entries[IdentityOf(cert)] = cert
	}
}

// Persist writes the current store contents through the backend.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Persist() error {
	s.mu.RLock()
	snapshot := make(map[Identity]*x509.Certificate, len(s.entries))
	for id, cert := range s.entries {
		snapshot[id] = cert
	}
	s.mu.RUnlock()

	return s.backend.Persist(snapshot)
}

// Certificates returns a snapshot of the stored certificates, ordered by
// identity for stable output. The snapshot is the memorized validator's
// anchor set.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Certificates() []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	certs := make([]*x509.Certificate, 0, len(ids))
	for _, id := range ids {
		certs = append(certs, s.entries[Identity(id)])
	}
	return certs
}

// Contains reports whether an entry exists for the given identity.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Contains(id Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[id]
	return ok
}

// Len returns the number of stored entries.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
