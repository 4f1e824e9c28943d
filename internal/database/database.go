package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

type ExtensionDB struct {
	ID          string
	Publisher   string
	Name        string
	DisplayName string
	Description string
	Version     string
	FilePath    string
	FileSize    int64
	InstalledAt time.Time
}

type Database struct {
	db *sql.DB
}

func New(path string, autoMigrate bool) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if autoMigrate {
		if err := createTables(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("database migration error: %w", err)
		}
		log.Debug().Str("path", path).Msg("database migration completed")
	}

	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS extensions (
		id TEXT PRIMARY KEY,
		publisher TEXT NOT NULL,
		name TEXT NOT NULL,
		display_name TEXT,
		description TEXT,
		version TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		installed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extensions_publisher ON extensions(publisher);
	`

	_, err := db.Exec(createTableSQL)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// InsertExtension records a new installation. Inserting an id that is
// already present fails.
func (d *Database) InsertExtension(ctx context.Context, ext *ExtensionDB) error {
	query := `
		INSERT INTO extensions (
			id, publisher, name, display_name, description, version, file_path, file_size, installed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(ctx, query,
		ext.ID, ext.Publisher, ext.Name, ext.DisplayName, ext.Description, ext.Version,
		ext.FilePath, ext.FileSize, ext.InstalledAt,
	)

	return err
}

// GetAllExtensions returns every installed extension in installation order.
func (d *Database) GetAllExtensions(ctx context.Context) ([]ExtensionDB, error) {
	query := `
		SELECT id, publisher, name, display_name, description, version, file_path, file_size, installed_at
		FROM extensions ORDER BY rowid ASC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extensions []ExtensionDB
	for rows.Next() {
		var ext ExtensionDB
		if err := scanExtension(rows, &ext); err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}

	return extensions, rows.Err()
}

// GetExtensionByID returns nil without error when no row matches.
func (d *Database) GetExtensionByID(ctx context.Context, id string) (*ExtensionDB, error) {
	query := `
		SELECT id, publisher, name, display_name, description, version, file_path, file_size, installed_at
		FROM extensions WHERE id = ?
	`

	var ext ExtensionDB
	err := scanExtension(d.db.QueryRowContext(ctx, query, id), &ext)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &ext, nil
}

func (d *Database) DeleteExtension(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM extensions WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExtension(row scanner, ext *ExtensionDB) error {
	var displayName, description sql.NullString
	err := row.Scan(
		&ext.ID, &ext.Publisher, &ext.Name, &displayName, &description, &ext.Version,
		&ext.FilePath, &ext.FileSize, &ext.InstalledAt,
	)
	if err != nil {
		return err
	}
	ext.DisplayName = displayName.String
	ext.Description = description.String
	return nil
}
