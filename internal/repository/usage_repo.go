package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

// SQLiteUsageRepository implements UsageRepository for SQLite.
type SQLiteUsageRepository struct {
	db *sql.DB
}

// NewSQLiteUsageRepository creates a new SQLite usage repository.
func NewSQLiteUsageRepository(db *sql.DB) *SQLiteUsageRepository {
	return &SQLiteUsageRepository{db: db}
}

func (r *SQLiteUsageRepository) Get(ctx context.Context, identityKey, date string) (*models.UsageRecord, error) {
	query := `SELECT identity_key, date, count, user_id, device_id, updated_at
		FROM usage_records WHERE identity_key = ? AND date = ?`
	var record models.UsageRecord
	var userID, deviceID sql.NullString
	var updatedAt string
	err := r.db.QueryRowContext(ctx, query, identityKey, date).Scan(
		&record.IdentityKey, &record.Date, &record.Count, &userID, &deviceID, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record.UserID = userID.String
	record.DeviceID = deviceID.String
	record.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &record, nil
}

func (r *SQLiteUsageRepository) Upsert(ctx context.Context, record *models.UsageRecord) error {
	query := `INSERT INTO usage_records (identity_key, date, count, user_id, device_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key, date) DO UPDATE SET
			count = excluded.count,
			user_id = COALESCE(NULLIF(excluded.user_id, ''), usage_records.user_id),
			device_id = COALESCE(NULLIF(excluded.device_id, ''), usage_records.device_id),
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		record.IdentityKey, record.Date, record.Count,
		nullIfEmpty(record.UserID), nullIfEmpty(record.DeviceID),
		record.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteUsageRepository) DeleteOlderThan(ctx context.Context, beforeDate string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM usage_records WHERE date < ?`, beforeDate)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
