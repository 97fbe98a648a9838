// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package truststore holds the certificates a human operator decided to trust
// permanently. Entries are keyed by subject identity and persisted through a
// pluggable [Backend]; the shipped [FileBackend] writes a PEM bundle with
// atomic replace semantics so an interrupted write never corrupts the
// previously persisted store.
package truststore
