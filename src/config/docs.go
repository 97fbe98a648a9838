// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads tool configuration from a file (YAML or JSON),
// MTM_-prefixed environment variables, and command-line flags, layered over
// built-in defaults. The recognized options cover the trust store location,
// dial timeout, and log format.
package config
