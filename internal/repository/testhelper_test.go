package repository

import (
	"database/sql"
	"testing"

	"github.com/threadcutter/threadcutter-api/internal/database/migrations"
	_ "github.com/tursodatabase/go-libsql"
)

// setupTestDB creates an in-memory SQLite database for testing.
// It runs migrations and returns a database connection that will be cleaned up
// when the test completes.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db)
}

// insertTestChat is a helper to insert a test chat directly.
func insertTestChat(t *testing.T, db *sql.DB, id, userID, title string) {
	t.Helper()
	query := `
		INSERT INTO chats (id, user_id, title, platform, tones_json, use_emojis, created_at, updated_at)
		VALUES (?, ?, ?, 'twitter', '["professional"]', 0, datetime('now'), datetime('now'))
	`
	if _, err := db.Exec(query, id, userID, title); err != nil {
		t.Fatalf("failed to insert test chat: %v", err)
	}
}

// insertTestUsageRecord is a helper to insert a test usage record directly.
func insertTestUsageRecord(t *testing.T, db *sql.DB, identityKey, date string, count int) {
	t.Helper()
	query := `
		INSERT INTO usage_records (identity_key, date, count, updated_at)
		VALUES (?, ?, ?, datetime('now'))
	`
	if _, err := db.Exec(query, identityKey, date, count); err != nil {
		t.Fatalf("failed to insert test usage record: %v", err)
	}
}
