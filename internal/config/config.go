// Package config holds the console configuration. Values come from
// defaults, an optional .env file, then environment variables, in
// increasing precedence.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is the full console configuration.
type Config struct {
	Backend  BackendConfig
	Identity IdentityConfig
	Log      LogConfig
}

// BackendConfig configures the REST boundary.
type BackendConfig struct {
	// BaseURL is the root of the mission-intel API.
	BaseURL string
}

// IdentityConfig configures the identity-provider boundary.
type IdentityConfig struct {
	// URL is the identity provider base URL.
	URL string

	// Realm is the authentication realm.
	Realm string

	// ClientID identifies this console to the provider.
	ClientID string

	// Username and Password feed the direct-grant login flow.
	Username string
	Password string
}

// LogConfig configures diagnostic logging. The TUI owns the terminal,
// so slog writes to a file.
type LogConfig struct {
	// File is the log destination path.
	File string

	// Level is one of debug, info, warn, error.
	Level string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "https://localhost:8443/api/intel",
		},
		Identity: IdentityConfig{
			URL:      "https://localhost:8444",
			Realm:    "Aegis-Intel",
			ClientID: "aegis-console",
		},
		Log: LogConfig{
			File:  "aegis-console.log",
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the .env file at path
// (ignored when absent), then environment variables.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.ApplyEnvironmentOverrides()
	return cfg, nil
}

// ApplyEnvironmentOverrides checks for environment variables and
// overrides the config values if they are set.
//
// Supported environment variables:
//   - AEGIS_BACKEND_URL: overrides Backend.BaseURL
//   - AEGIS_IDENTITY_URL: overrides Identity.URL
//   - AEGIS_IDENTITY_REALM: overrides Identity.Realm
//   - AEGIS_IDENTITY_CLIENT_ID: overrides Identity.ClientID
//   - AEGIS_USERNAME / AEGIS_PASSWORD: override login credentials
//   - AEGIS_LOG_FILE / AEGIS_LOG_LEVEL: override log destination/level
func (c *Config) ApplyEnvironmentOverrides() {
	if v := os.Getenv("AEGIS_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("AEGIS_IDENTITY_URL"); v != "" {
		c.Identity.URL = v
	}
	if v := os.Getenv("AEGIS_IDENTITY_REALM"); v != "" {
		c.Identity.Realm = v
	}
	if v := os.Getenv("AEGIS_IDENTITY_CLIENT_ID"); v != "" {
		c.Identity.ClientID = v
	}
	if v := os.Getenv("AEGIS_USERNAME"); v != "" {
		c.Identity.Username = v
	}
	if v := os.Getenv("AEGIS_PASSWORD"); v != "" {
		c.Identity.Password = v
	}
	if v := os.Getenv("AEGIS_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("AEGIS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
