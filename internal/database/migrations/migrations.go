// Package migrations applies versioned schema migrations. Each migration
// file registers itself from init(), keyed by a "YYYYMMDD-HHmmss" timestamp
// that orders them; applied versions are tracked in schema_migrations so a
// migration runs at most once per database.
package migrations

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Migration is one schema change: an ordering timestamp, a short
// description, and the statements to apply.
type Migration struct {
	Timestamp   string
	Description string
	Up          []string
}

var registry []Migration

// Register is called from each migration file's init().
func Register(m Migration) {
	registry = append(registry, m)
}

// Run applies every registered migration that has not been applied yet,
// each inside its own transaction.
func Run(db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	sort.Slice(registry, func(i, j int) bool {
		return registry[i].Timestamp < registry[j].Timestamp
	})

	for _, m := range registry {
		if applied[m.Timestamp] {
			continue
		}
		logger.Info("applying migration", "version", m.Timestamp, "description", m.Description)
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %s (%s): %w", m.Timestamp, m.Description, err)
		}
	}

	return nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.Up {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w\n%s", err, stmt)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Timestamp, m.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
