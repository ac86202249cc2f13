// Package repository defines repository interfaces for data access.
// Note: user accounts live in the hosted auth service; user_id values here
// are its opaque identifiers.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

// ChatRepository defines methods for chat data access.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Chat, error)
	Update(ctx context.Context, chat *models.Chat) error
	Delete(ctx context.Context, id string) error
	// DeleteOlderThan deletes chats not updated since the given time and
	// returns the deleted chat IDs. Messages cascade.
	DeleteOlderThan(ctx context.Context, before time.Time) ([]string, error)
}

// MessageRepository defines methods for chat message data access.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	GetByChatID(ctx context.Context, chatID string) ([]*models.Message, error)
	Update(ctx context.Context, msg *models.Message) error
	Delete(ctx context.Context, id string) error
}

// UsageRepository defines methods for daily usage record access.
// Records are keyed by (identity_key, date); one row per identity per day.
type UsageRepository interface {
	// Get returns the record for an identity on a date, or nil if none exists.
	Get(ctx context.Context, identityKey, date string) (*models.UsageRecord, error)
	// Upsert inserts or replaces the record for (record.IdentityKey, record.Date).
	Upsert(ctx context.Context, record *models.UsageRecord) error
	// DeleteOlderThan removes records with a date before the given day and
	// returns the number deleted.
	DeleteOlderThan(ctx context.Context, beforeDate string) (int64, error)
}

// SubscriptionRepository defines methods for subscription data access.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	// GetActiveByUserID returns the user's unexpired active subscription with
	// the latest expiry, or nil if none.
	GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	// MarkExpired flips active subscriptions past their expiry to expired and
	// returns the number updated.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// PaymentRepository defines methods for payment data access.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Chat         ChatRepository
	Message      MessageRepository
	Usage        UsageRepository
	Subscription SubscriptionRepository
	Payment      PaymentRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Chat:         NewSQLiteChatRepository(db),
		Message:      NewSQLiteMessageRepository(db),
		Usage:        NewSQLiteUsageRepository(db),
		Subscription: NewSQLiteSubscriptionRepository(db),
		Payment:      NewSQLitePaymentRepository(db),
	}
}
