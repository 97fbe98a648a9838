// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli implements the memorizing-tls-dial command surface: dialing a
// TLS endpoint through the memorizing trust manager with an interactive
// terminal prompt as the decision surface, and inspecting the memorized
// trust store.
package cli
