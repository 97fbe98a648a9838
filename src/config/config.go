// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the recognized configuration for the memorizing trust
// manager tooling.
type Config struct {
	// Store: where persisted trust data lives
	Store struct {
		// Path is the trust store bundle location on disk.
		Path string `koanf:"path"`
	} `koanf:"store"`

	// Dial: settings for the outbound TLS connection
	Dial struct {
		// Timeout is the connection timeout in seconds.
		Timeout int `koanf:"timeout_seconds"`
	} `koanf:"dial"`

	// Log: output settings
	Log struct {
		// Format selects "text" or "json" log output.
		Format string `koanf:"format"`
	} `koanf:"log"`
}

// Loader is a lightweight wrapper around koanf for loading configuration
// from files, environment variables, and command-line flags.
type Loader struct {
	k          *koanf.Koanf
	configPath string
}

// DefaultStorePath returns the default trust store location:
// <user config dir>/memorizing-trust-manager/truststore.pem, falling back to
// the working directory if the platform config dir cannot be determined.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "truststore.pem"
	}
	return filepath.Join(dir, "memorizing-trust-manager", "truststore.pem")
}

// getDefaults returns the default configuration values
func getDefaults() map[string]interface{} {
	return map[string]interface{}{
		"store.path":           DefaultStorePath(),
		"dial.timeout_seconds": 10,
		"log.format":           "text",
	}
}

// flagMapping maps command-line flag names to configuration keys.
func flagMapping() map[string]string {
	return map[string]string{
		"store":   "store.path",
		"timeout": "dial.timeout_seconds",
	}
}

// NewLoader creates a new configuration loader that reads from a file
// and overlays environment variable overrides with MTM_ prefix.
//
// The file format (YAML or JSON) is auto-detected from the extension.
// Environment variables like MTM_STORE__PATH map to store.path.
// If configPath is empty, only environment variables and defaults are loaded.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (MTM_*)
//  2. Configuration file (if provided)
//  3. Built-in defaults
func NewLoader(configPath string) (*Loader, error) {
	return newLoader(configPath, nil)
}

// NewLoaderWithFlags creates a new configuration loader with command-line
// flag support. Flags take precedence over environment variables, which take
// precedence over the configuration file and the built-in defaults.
func NewLoaderWithFlags(configPath string, flags *pflag.FlagSet) (*Loader, error) {
	return newLoader(configPath, flags)
}

// newLoader is the internal loader implementation
func newLoader(configPath string, flags *pflag.FlagSet) (*Loader, error) {
	k := koanf.New(".")

	// Load defaults (lowest precedence)
	if err := k.Load(confmap.Provider(getDefaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Load from file if provided
	if configPath != "" {
		parser, err := getParserForFile(configPath)
		if err != nil {
			return nil, err
		}

		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Load environment variable overrides with MTM_ prefix.
	// Double underscore (__) nests: MTM_STORE__PATH -> store.path
	if err := k.Load(env.Provider("MTM_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Load command-line flags (highest precedence)
	if flags != nil {
		mapping := flagMapping()

		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			configKey, ok := mapping[f.Name]
			if !ok {
				// Not a config flag, skip it
				return "", nil
			}

			// Only override if the flag was explicitly set
			if !f.Changed {
				return "", nil
			}

			return configKey, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load command-line flags: %w", err)
		}
	}

	return &Loader{
		k:          k,
		configPath: configPath,
	}, nil
}

// Get unmarshals the configuration into a Config struct
func (l *Loader) Get() (*Config, error) {
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// getParserForFile returns the appropriate koanf parser based on file extension
func getParserForFile(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// envTransform transforms environment variable names to config keys.
// Double underscores nest:
//
//	MTM_STORE__PATH -> store.path
//	MTM_DIAL__TIMEOUT_SECONDS -> dial.timeout_seconds
func envTransform(s string) string {
	s = strings.TrimPrefix(s, "MTM_")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "__", ".")
	return s
}
