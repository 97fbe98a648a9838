// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mtm implements a memorizing trust manager for TLS certificate
// validation: chains are checked against a persisted store of previously
// accepted certificates first, then against the platform's default trusted
// roots, and on double rejection a human operator is asked to decide. An
// "always trust" answer is memorized durably, so the same certificate is
// accepted without prompting on every future connection.
//
// The decision surface is an injected capability ([Surface]), not a
// dependency on any particular UI toolkit: the shipped CLI prompts on a
// terminal, tests resolve deterministically, and embedding applications can
// plug in whatever dialog mechanism they have. The validating goroutine
// blocks in a single-resolution rendezvous while the surface decides;
// context cancellation resolves the wait as abort without affecting other
// pending escalations.
package mtm
