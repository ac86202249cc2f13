// Package models defines the domain models for the application.
// User accounts live in the hosted auth service; the UserID fields here
// reference its opaque user identifiers.
package models

import (
	"time"
)

// FormatRequest is the immutable input to a format operation.
type FormatRequest struct {
	Text      string   `json:"text"`
	Platform  string   `json:"platform"`
	Tones     []string `json:"tones"`
	UseEmojis bool     `json:"use_emojis"`
	MaxPosts  int      `json:"max_posts"`
}

// RewriteRequest carries an existing post's content plus a free-text
// instruction describing the desired change.
type RewriteRequest struct {
	Content     string   `json:"content"`
	Instruction string   `json:"instruction"`
	Platform    string   `json:"platform"`
	Tones       []string `json:"tones"`
	UseEmojis   bool     `json:"use_emojis"`
}

// Post is a single platform-sized post within a generated thread.
// CharacterCount always equals len(Content); Order is 1-based and dense
// within a batch. Posts are immutable after creation except through an
// explicit edit that produces a new Post with a recomputed count.
type Post struct {
	ID             string   `json:"id"`
	Content        string   `json:"content"`
	Order          int      `json:"order"`
	TotalInBatch   int      `json:"total_in_batch"`
	CharacterCount int      `json:"character_count"`
	Hashtags       []string `json:"hashtags"`
	Mentions       []string `json:"mentions"`
}

// FormatResult is the outcome of a format or rewrite operation.
// Exactly one of (non-empty Posts with Success=true) or (Success=false
// with Error set) holds.
type FormatResult struct {
	Posts           []Post `json:"posts"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	TotalCharacters int    `json:"total_characters"`
	// Fallback reports whether the local splitter produced the result
	// instead of the generative provider.
	Fallback bool `json:"fallback,omitempty"`
}

// UsageRecord tracks format requests for one identity on one calendar day.
type UsageRecord struct {
	IdentityKey string    `json:"identity_key"`
	Count       int       `json:"count"`
	Date        string    `json:"date"` // YYYY-MM-DD
	UserID      string    `json:"user_id,omitempty"`
	DeviceID    string    `json:"device_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageType discriminates who authored a chat message.
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeAI   MessageType = "ai"
)

// Message is a single entry in a chat: the user's raw text or the
// generated thread. Posts is populated only for ai messages.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chat_id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Posts     []Post      `json:"posts,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Chat is a conversation with its formatting settings.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	Tones     []string  `json:"tones"`
	UseEmojis bool      `json:"use_emojis"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// PlanType is the purchased subscription duration.
type PlanType string

const (
	PlanDay   PlanType = "day"
	PlanWeek  PlanType = "week"
	PlanMonth PlanType = "month"
	PlanYear  PlanType = "year"
)

// Days returns the number of days a plan adds to a subscription.
func (p PlanType) Days() int {
	switch p {
	case PlanDay:
		return 1
	case PlanWeek:
		return 7
	case PlanYear:
		return 365
	default:
		return 30
	}
}

// Valid reports whether the plan type is one of the known plans.
func (p PlanType) Valid() bool {
	switch p {
	case PlanDay, PlanWeek, PlanMonth, PlanYear:
		return true
	}
	return false
}

// Subscription is a user's premium subscription.
type Subscription struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	PlanType    PlanType           `json:"plan_type"`
	Status      SubscriptionStatus `json:"status"`
	AmountCents int                `json:"amount_cents"`
	ExpiresAt   time.Time          `json:"expires_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Active reports whether the subscription grants premium at the given time.
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.ExpiresAt.After(now)
}

// PaymentStatus represents the state of a payment.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records a charge against a subscription. The demo flow writes
// method "demo"; Stripe checkouts write method "stripe".
type Payment struct {
	ID             string        `json:"id"`
	SubscriptionID string        `json:"subscription_id"`
	UserID         string        `json:"user_id"`
	AmountCents    int           `json:"amount_cents"`
	Currency       string        `json:"currency"`
	Status         PaymentStatus `json:"status"`
	PaymentMethod  string        `json:"payment_method"`
	TransactionID  string        `json:"transaction_id"`
	CreatedAt      time.Time     `json:"created_at"`
}
