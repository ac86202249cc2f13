package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

// ========================================
// Subscription Repository
// ========================================

// SQLiteSubscriptionRepository implements SubscriptionRepository for SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new SQLite subscription repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

func (r *SQLiteSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	query := `INSERT INTO subscriptions (id, user_id, plan_type, status, amount_cents, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, string(sub.PlanType), string(sub.Status), sub.AmountCents,
		sub.ExpiresAt.Format(time.RFC3339),
		sub.CreatedAt.Format(time.RFC3339), sub.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteSubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	query := `SELECT id, user_id, plan_type, status, amount_cents, expires_at, created_at, updated_at
		FROM subscriptions WHERE id = ?`
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SQLiteSubscriptionRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	query := `SELECT id, user_id, plan_type, status, amount_cents, expires_at, created_at, updated_at
		FROM subscriptions
		WHERE user_id = ? AND status = 'active' AND expires_at > ?
		ORDER BY expires_at DESC LIMIT 1`
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, userID, now.Format(time.RFC3339)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SQLiteSubscriptionRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Subscription, error) {
	query := `SELECT id, user_id, plan_type, status, amount_cents, expires_at, created_at, updated_at
		FROM subscriptions WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SQLiteSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	query := `UPDATE subscriptions SET plan_type = ?, status = ?, amount_cents = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		string(sub.PlanType), string(sub.Status), sub.AmountCents,
		sub.ExpiresAt.Format(time.RFC3339), sub.UpdatedAt.Format(time.RFC3339), sub.ID)
	return err
}

func (r *SQLiteSubscriptionRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE subscriptions SET status = 'expired', updated_at = ?
		WHERE status = 'active' AND expires_at <= ?`
	ts := now.Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx, query, ts, ts)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var planType, status string
	var expiresAt, createdAt, updatedAt string
	if err := row.Scan(&sub.ID, &sub.UserID, &planType, &status, &sub.AmountCents, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sub.PlanType = models.PlanType(planType)
	sub.Status = models.SubscriptionStatus(status)
	sub.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	sub.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sub.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &sub, nil
}

// ========================================
// Payment Repository
// ========================================

// SQLitePaymentRepository implements PaymentRepository for SQLite.
type SQLitePaymentRepository struct {
	db *sql.DB
}

// NewSQLitePaymentRepository creates a new SQLite payment repository.
func NewSQLitePaymentRepository(db *sql.DB) *SQLitePaymentRepository {
	return &SQLitePaymentRepository{db: db}
}

func (r *SQLitePaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (id, subscription_id, user_id, amount_cents, currency, status, payment_method, transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.SubscriptionID, payment.UserID, payment.AmountCents,
		payment.Currency, string(payment.Status), payment.PaymentMethod,
		nullIfEmpty(payment.TransactionID), payment.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLitePaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	query := `SELECT id, subscription_id, user_id, amount_cents, currency, status, payment_method, transaction_id, created_at
		FROM payments WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLitePaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	query := `SELECT id, subscription_id, user_id, amount_cents, currency, status, payment_method, transaction_id, created_at
		FROM payments WHERE transaction_id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, transactionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var status string
	var transactionID sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.SubscriptionID, &p.UserID, &p.AmountCents, &p.Currency, &status, &p.PaymentMethod, &transactionID, &createdAt); err != nil {
		return nil, err
	}
	p.Status = models.PaymentStatus(status)
	p.TransactionID = transactionID.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}
