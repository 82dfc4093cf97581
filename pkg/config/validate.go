package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "memory", "sqlite", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\", \"sqlite\", or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	if c.Storage.Type == "sqlite" && c.Storage.SQLite.Path == "" {
		errs = append(errs, fmt.Errorf("storage.sqlite.path is required when storage.type is \"sqlite\""))
	}

	switch c.Auth.Provider {
	case "none", "github", "google":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.provider must be \"none\", \"github\", or \"google\", got %q", c.Auth.Provider))
	}

	if c.Auth.Provider == "github" && c.Auth.GitHub.ClientID == "" {
		errs = append(errs, fmt.Errorf("auth.github.client_id is required when auth.provider is \"github\""))
	}
	if c.Auth.Provider == "google" && c.Auth.Google.ClientID == "" {
		errs = append(errs, fmt.Errorf("auth.google.client_id is required when auth.provider is \"google\""))
	}

	if c.Pagination.DefaultSize <= 0 {
		errs = append(errs, fmt.Errorf("pagination.default_size must be > 0, got %d", c.Pagination.DefaultSize))
	}
	if c.Pagination.MaxSize < c.Pagination.DefaultSize {
		errs = append(errs, fmt.Errorf("pagination.max_size must be >= pagination.default_size"))
	}

	return errors.Join(errs...)
}
