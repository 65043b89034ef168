package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/migration"
	"github.com/julianstephens/resdesk/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// PostgresStore keeps the journal in a shared PostgreSQL schema
type PostgresStore struct {
	journal
	connStr string
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		journal: journal{driver: migration.DriverPostgres},
		connStr: withSearchPath(connStr),
	}
}

// withSearchPath pins the connection to the resdesk schema unless the
// caller chose one
func withSearchPath(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		logger.Warn("Journal connection string is not a URL, leaving search_path unset")
		return connStr
	}
	q := u.Query()
	if q.Get("search_path") == "" {
		q.Set("search_path", constants.AppName)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ValidateConnString rejects malformed connection strings and those that
// carry a password. Passwords belong in PGPASSWORD or .pgpass.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if _, set := u.User.Password(); set {
		return ErrEmbeddedCredentials
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidConnectionString)
	}
	return nil
}

func (s *PostgresStore) connect() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") {
			return fmt.Errorf("failed to connect to journal: %w (hint: add ?sslmode=disable)", err)
		}
		return fmt.Errorf("failed to connect to journal: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Init() error {
	if s.db == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "journal", "postgresql")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.connect(); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *PostgresStore) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub, migration.DriverPostgres)
}

func (s *PostgresStore) SchemaStatus() (int, int, error) {
	if err := s.ready(); err != nil {
		return 0, 0, err
	}
	return schemaStatus(s.runner)
}

// GetConfigPath returns a label instead of the connection string
func (s *PostgresStore) GetConfigPath() string {
	return "postgresql"
}
