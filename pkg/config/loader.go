package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, ARTIKEL_CONFIG env, ./config.yaml, /etc/artikel/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. ARTIKEL_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/artikel/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("ARTIKEL_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/artikel/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps ARTIKEL_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ARTIKEL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ARTIKEL_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("ARTIKEL_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("ARTIKEL_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("ARTIKEL_AUTH_PROVIDER"); v != "" {
		cfg.Auth.Provider = v
	}
	if v := os.Getenv("ARTIKEL_GITHUB_CLIENT_ID"); v != "" {
		cfg.Auth.GitHub.ClientID = v
	}
	if v := os.Getenv("ARTIKEL_GITHUB_CLIENT_SECRET"); v != "" {
		cfg.Auth.GitHub.ClientSecret = v
	}
	if v := os.Getenv("ARTIKEL_GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("ARTIKEL_GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
}

// resolveFileReferences loads values for fields with a _file variant.
// The file content wins over the inline value when both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.Storage.Postgres.DSNFile != "" {
		v, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = v
	}
	if cfg.Auth.GitHub.ClientSecretFile != "" {
		v, err := readSecretFile(cfg.Auth.GitHub.ClientSecretFile)
		if err != nil {
			return fmt.Errorf("auth.github.client_secret_file: %w", err)
		}
		cfg.Auth.GitHub.ClientSecret = v
	}
	if cfg.Auth.Google.ClientSecretFile != "" {
		v, err := readSecretFile(cfg.Auth.Google.ClientSecretFile)
		if err != nil {
			return fmt.Errorf("auth.google.client_secret_file: %w", err)
		}
		cfg.Auth.Google.ClientSecret = v
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
