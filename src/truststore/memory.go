// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"sync"
)

// MemoryBackend keeps persisted entries in process memory. It is useful for
// tests and for embedders that want memorization without durability.
//
// MemoryBackend is safe for concurrent use by multiple goroutines.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[Identity]*x509.Certificate
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns a copy of the last persisted entries. A backend that has
// never been persisted to yields an empty mapping.
func (b *MemoryBackend) Load() (map[Identity]*x509.Certificate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make(map[Identity]*x509.Certificate, len(b.entries))
	for id, cert := range b.entries {
		entries[id] = cert
	}
	return entries, nil
}

// Persist replaces the backend contents with a copy of entries.
func (b *MemoryBackend) Persist(entries map[Identity]*x509.Certificate) error {
	snapshot := make(map[Identity]*x509.Certificate, len(entries))
	for id, cert := range entries {
		snapshot[id] = cert
	}

	b.mu.Lock()
	b.entries = snapshot
	b.mu.Unlock()
	return nil
}
