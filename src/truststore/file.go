// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/zxiu-bonofa/MemorizingTrustManager/src/internal/helper/gc"
	x509certs "github.com/zxiu-bonofa/MemorizingTrustManager/src/internal/x509/certs"
)

// FileBackend persists the store as a PEM bundle at a configurable path.
//
// Persist writes the bundle to a temporary sibling file and renames it into
// place, so a failed write leaves the previously persisted bundle intact.
// Writes are serialized: concurrent Persist calls never race on the
// temporary file.
type FileBackend struct {
	mu    sync.Mutex
	path  string
	codec *x509certs.Certificate
}

// NewFileBackend creates a FileBackend for the given store path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path:  path,
		codec: x509certs.New(),
	}
}

// Path returns the store location this backend reads and writes.
func (b *FileBackend) Path() string { return b.path }

// Load reads the persisted PEM bundle. A missing file yields an empty
// mapping, not an error.
func (b *FileBackend) Load() (map[Identity]*x509.Certificate, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[Identity]*x509.Certificate), nil
		}
		return nil, fmt.Errorf("truststore: reading %s: %w", b.path, err)
	}

	certs, err := b.codec.DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("truststore: decoding %s: %w", b.path, err)
	}

	entries := make(map[Identity]*x509.Certificate, len(certs))
	for _, cert := range certs {
		entries[IdentityOf(cert)] = cert
	}
	return entries, nil
}

// Persist writes the entries as a PEM bundle via atomic replace.
//
// The bundle is assembled in a pooled buffer, written to <path>.tmp, and
// renamed over the target. Entries are written in identity order so the
// on-disk bundle is stable across rewrites.
func (b *FileBackend) Persist(entries map[Identity]*x509.Certificate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("truststore: creating store directory: %w", err)
		}
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	// Get a buffer from the pool
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	for _, id := range ids {
		if _, err := buf.Write(b.codec.EncodePEM(entries[Identity(id)])); err != nil {
			return fmt.Errorf("truststore: encoding bundle: %w", err)
		}
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("truststore: writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("truststore: replacing %s: %w", b.path, err)
	}

	return nil
}
