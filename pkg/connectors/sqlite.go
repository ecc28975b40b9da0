package connectors

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteConfig holds SQLite connector configuration.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:".
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLite stores items as JSON documents in a single relational table keyed
// by (library, name).
type SQLite struct {
	name string
	path string
	db   *sql.DB
}

// NewSQLite opens (creating when needed) a SQLite-backed connector and runs
// its migrations.
func NewSQLite(ctx context.Context, name string, cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite connector: database path is required")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{name: name, path: cfg.Path, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate runs the embedded schema migrations.
func (s *SQLite) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Name implements Connector.
func (s *SQLite) Name() string { return s.name }

// Type implements Connector.
func (s *SQLite) Type() string { return "sqlite" }

// Close implements Connector.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// addItem inserts or upserts one item row.
func (s *SQLite) addItem(ctx context.Context, lib Library, name string, payload []byte, metadata []byte, overwrite bool) error {
	now := time.Now().UTC()
	if overwrite {
		query := `
			INSERT INTO items (library, name, payload, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (library, name) DO UPDATE SET
				payload = excluded.payload,
				metadata = excluded.metadata,
				updated_at = excluded.updated_at
		`
		if _, err := s.db.ExecContext(ctx, query, lib, name, payload, metadata, now, now); err != nil {
			return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
		}
		return nil
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM items WHERE library = ? AND name = ?`, lib, name).Scan(&one)
	switch {
	case err == nil:
		return NewExistsError(lib, name)
	case !errors.Is(err, sql.ErrNoRows):
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	query := `
		INSERT INTO items (library, name, payload, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, lib, name, payload, metadata, now, now); err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return nil
}

// getItem reads one item row.
func (s *SQLite) getItem(ctx context.Context, lib Library, name string) (payload, metadata []byte, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT payload, metadata FROM items WHERE library = ? AND name = ?`,
		lib, name).Scan(&payload, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, NewNotFoundError(lib, name)
	}
	if err != nil {
		return nil, nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return payload, metadata, nil
}

// deleteItem removes one item row.
func (s *SQLite) deleteItem(ctx context.Context, lib Library, name string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE library = ? AND name = ?`, lib, name)
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	if rows == 0 {
		return NewNotFoundError(lib, name)
	}
	return nil
}

// AddSeries implements Connector.
func (s *SQLite) AddSeries(ctx context.Context, lib Library, rec *SeriesRecord, overwrite bool) error {
	if err := validateSeriesAdd(lib, rec); err != nil {
		return err
	}
	payload, err := json.Marshal(rec.Series)
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: rec.Series.Name, Err: err}
	}
	var metadata []byte
	if rec.Metadata != nil {
		if metadata, err = json.Marshal(rec.Metadata); err != nil {
			return &Error{Class: ClassInternal, Library: lib, Name: rec.Series.Name, Err: err}
		}
	}
	return s.addItem(ctx, lib, rec.Series.Name, payload, metadata, overwrite)
}

// GetSeries implements Connector.
func (s *SQLite) GetSeries(ctx context.Context, lib Library, name string) (*SeriesRecord, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	payload, metadata, err := s.getItem(ctx, lib, name)
	if err != nil {
		return nil, err
	}
	var sr series.Series
	if err := json.Unmarshal(payload, &sr); err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	rec := &SeriesRecord{Series: &sr}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
		}
	}
	return rec, nil
}

// DeleteSeries implements Connector.
func (s *SQLite) DeleteSeries(ctx context.Context, lib Library, name string) error {
	if !lib.HoldsSeries() {
		return NewValidationError("library %q does not hold series", lib)
	}
	return s.deleteItem(ctx, lib, name)
}

// SeriesMetadata implements Connector.
func (s *SQLite) SeriesMetadata(ctx context.Context, lib Library, name string) (series.Metadata, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	_, metadata, err := s.getItem(ctx, lib, name)
	if err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		return nil, nil
	}
	var meta series.Metadata
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return meta, nil
}

// AddModel implements Connector.
func (s *SQLite) AddModel(ctx context.Context, rec *models.Record, overwrite bool) error {
	if err := validateModelAdd(rec); err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return &Error{Class: ClassInternal, Library: LibraryModels, Name: rec.Name, Err: err}
	}
	return s.addItem(ctx, LibraryModels, rec.Name, payload, nil, overwrite)
}

// GetModel implements Connector.
func (s *SQLite) GetModel(ctx context.Context, name string) (*models.Record, error) {
	payload, _, err := s.getItem(ctx, LibraryModels, name)
	if err != nil {
		return nil, err
	}
	var rec models.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, &Error{Class: ClassInternal, Library: LibraryModels, Name: name, Err: err}
	}
	return &rec, nil
}

// DeleteModel implements Connector.
func (s *SQLite) DeleteModel(ctx context.Context, name string) error {
	return s.deleteItem(ctx, LibraryModels, name)
}

// Names implements Connector.
func (s *SQLite) Names(ctx context.Context, lib Library) ([]string, error) {
	if !lib.Valid() {
		return nil, NewValidationError("unknown library %q", lib)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM items WHERE library = ? ORDER BY name`, lib)
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Err: err}
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &Error{Class: ClassInternal, Library: lib, Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Err: err}
	}
	return names, nil
}
