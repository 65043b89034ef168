package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/migration"
	"github.com/julianstephens/resdesk/migrations"
)

// SQLiteStore keeps the journal in a local file
type SQLiteStore struct {
	journal
	path string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		journal: journal{driver: migration.DriverSQLite},
		path:    path,
	}
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	// One writer at a time; the notifier and the CLI share the file
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

// Init creates the journal file if needed and applies pending migrations
func (s *SQLiteStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "journal", s.path)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing journal and checks its schema
func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("journal not initialized, run '%s init' first", constants.AppName)
	}
	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	// Journals created by an older release are brought up to date silently
	if _, err := runner.ApplyMigrations(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub, migration.DriverSQLite)
}

func (s *SQLiteStore) SchemaStatus() (int, int, error) {
	if err := s.ready(); err != nil {
		return 0, 0, err
	}
	return schemaStatus(s.runner)
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func schemaStatus(newRunner func() (*migration.Runner, error)) (int, int, error) {
	runner, err := newRunner()
	if err != nil {
		return 0, 0, err
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}
