// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"rowdeck/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	BaseURL            string   `json:"base_url"`
	AuthURL            string   `json:"auth_url"`
	Scopes             []string `json:"scopes"`
	PageSize           int      `json:"page_size"`
	Concurrency        int      `json:"concurrency"`
	MinRequestInterval int      `json:"min_request_interval_ms"`
	LogLevel           string   `json:"log_level"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// defaults returns the configuration used when no file exists yet.
func defaults() Config {
	return Config{
		BaseURL:            "https://data.rowdeck.io",
		AuthURL:            "https://auth.rowdeck.io",
		Scopes:             []string{"data:read", "data:discover"},
		PageSize:           100,
		Concurrency:        8,
		MinRequestInterval: 50,
		LogLevel:           "info",
	}
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults(), nil
		}
		return Config{}, err
	}
	c := defaults()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
