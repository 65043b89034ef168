// Package storage keeps the operator's notification history. The journal
// lives in SQLite by default and in PostgreSQL when configured with a
// postgres:// connection string.
package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// IsPostgres reports whether the journal setting is a PostgreSQL URL
func IsPostgres(setting string) bool {
	return strings.HasPrefix(setting, "postgres://") || strings.HasPrefix(setting, "postgresql://")
}

// Open returns the provider for a journal setting without connecting.
// The caller runs Init or Load.
func Open(setting string) (Provider, error) {
	if IsPostgres(setting) {
		if err := ValidateConnString(setting); err != nil {
			return nil, err
		}
		return NewPostgresStore(setting), nil
	}
	return NewSQLiteStore(ExpandHome(setting)), nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
