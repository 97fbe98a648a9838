// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// memorizing-tls-dial is a command-line tool that opens TLS connections
// through a memorizing trust manager: unknown certificate chains are shown
// to the operator, and "always trust" answers are persisted to a local
// trust store for future runs.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/zxiu-bonofa/MemorizingTrustManager/cmd/memorizing-tls-dial@latest
//
// # Usage
//
//	memorizing-tls-dial HOST:PORT [FLAGS]
//	memorizing-tls-dial list
//
// # Flags
//
//	-c, --config      Configuration file (.yaml, .yml, .json)
//	    --store       Trust store location (default: platform config dir)
//	-t, --timeout     Dial timeout in seconds, including prompt time (0 disables)
//	    --client-cert Client certificate for mutual TLS
//	    --client-key  Client key for mutual TLS
//
// # Examples
//
// Dial a host with a self-signed certificate and decide interactively:
//
//	memorizing-tls-dial internal.example.net:8443
//
// Keep the trust store in a project-local file:
//
//	memorizing-tls-dial --store ./truststore.pem internal.example.net:8443
//
// Show every memorized certificate:
//
//	memorizing-tls-dial list
//
// Configuration may also come from MTM_-prefixed environment variables,
// e.g. MTM_STORE__PATH=/etc/mtm/truststore.pem.
package main
