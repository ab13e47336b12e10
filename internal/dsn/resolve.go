// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"os"

	"rowdeck/cli/internal/keychain"
)

// Env variables consulted when no --dsn flag is given.
const (
	EnvDSN      = "ROWDECK_DB_DSN"
	EnvDatabase = "DATABASE_URL"
)

// Resolve finds the sink DSN for the load command: explicit flag value
// first, then ROWDECK_DB_DSN, then DATABASE_URL, then the OS keychain.
// The winning value is validated before being returned.
func Resolve(flagValue string) (string, error) {
	candidates := []string{flagValue, os.Getenv(EnvDSN), os.Getenv(EnvDatabase)}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := Validate(c); err != nil {
			return "", err
		}
		return c, nil
	}

	km, err := keychain.GetManager()
	if err == nil {
		if stored, err := km.LoadDBDSN(); err == nil && stored != "" {
			if err := Validate(stored); err != nil {
				return "", err
			}
			return stored, nil
		}
	}

	return "", NewParseError("", "no database DSN configured",
		"pass --dsn, set ROWDECK_DB_DSN or DATABASE_URL, or store one with 'rowdeck login'")
}
