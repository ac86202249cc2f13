package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/repository"
)

var (
	// ErrUnknownPlan indicates an unrecognized plan type.
	ErrUnknownPlan = errors.New("unknown plan type")

	// ErrNoActiveSubscription indicates the user has nothing to cancel.
	ErrNoActiveSubscription = errors.New("no active subscription")

	// ErrDuplicateTransaction indicates a payment was already recorded for
	// the transaction ID.
	ErrDuplicateTransaction = errors.New("transaction already processed")
)

// Plan describes a purchasable premium plan.
type Plan struct {
	Type        models.PlanType `json:"type"`
	DisplayName string          `json:"display_name"`
	AmountCents int             `json:"amount_cents"`
	Days        int             `json:"days"`
}

// planCatalog lists the purchasable plans in display order.
var planCatalog = []Plan{
	{Type: models.PlanDay, DisplayName: "1 Day", AmountCents: 50, Days: 1},
	{Type: models.PlanWeek, DisplayName: "1 Week", AmountCents: 200, Days: 7},
	{Type: models.PlanMonth, DisplayName: "1 Month", AmountCents: 600, Days: 30},
	{Type: models.PlanYear, DisplayName: "1 Year", AmountCents: 3000, Days: 365},
}

// BillingService manages premium subscriptions and payments.
// The demo flow completes instantly without an external processor; Stripe
// checkouts land through Subscribe from the webhook handler with the
// payment intent as the transaction ID.
type BillingService struct {
	subRepo     repository.SubscriptionRepository
	paymentRepo repository.PaymentRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewBillingService creates a new billing service.
func NewBillingService(subRepo repository.SubscriptionRepository, paymentRepo repository.PaymentRepository, logger *slog.Logger) *BillingService {
	return &BillingService{
		subRepo:     subRepo,
		paymentRepo: paymentRepo,
		logger:      logger.With("component", "billing"),
		now:         time.Now,
	}
}

// Plans returns the purchasable plan catalog.
func (s *BillingService) Plans() []Plan {
	return planCatalog
}

// PlanFor returns the catalog entry for a plan type.
func (s *BillingService) PlanFor(planType models.PlanType) (Plan, error) {
	for _, p := range planCatalog {
		if p.Type == planType {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}

// Subscribe purchases a plan for the user using the given payment method
// and transaction ID ("demo" payments synthesize one). An existing active
// subscription is extended from its current expiry rather than replaced.
func (s *BillingService) Subscribe(ctx context.Context, userID string, planType models.PlanType, paymentMethod, transactionID string) (*models.Subscription, error) {
	plan, err := s.PlanFor(planType)
	if err != nil {
		return nil, err
	}

	if transactionID != "" {
		existing, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check transaction: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateTransaction
		}
	}

	now := s.now().UTC()
	start := now
	current, err := s.subRepo.GetActiveByUserID(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if current != nil {
		start = current.ExpiresAt
	}

	sub := &models.Subscription{
		ID:          ulid.Make().String(),
		UserID:      userID,
		PlanType:    planType,
		Status:      models.SubscriptionStatusActive,
		AmountCents: plan.AmountCents,
		ExpiresAt:   start.AddDate(0, 0, plan.Days),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if transactionID == "" {
		transactionID = "txn_demo_" + sub.ID
	}
	payment := &models.Payment{
		ID:             ulid.Make().String(),
		SubscriptionID: sub.ID,
		UserID:         userID,
		AmountCents:    plan.AmountCents,
		Currency:       "usd",
		Status:         models.PaymentStatusCompleted,
		PaymentMethod:  paymentMethod,
		TransactionID:  transactionID,
		CreatedAt:      now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// The subscription exists; losing the payment row is an audit gap,
		// not a reason to revoke access.
		s.logger.Error("failed to record payment",
			"subscription_id", sub.ID,
			"transaction_id", transactionID,
			"error", err,
		)
	}

	s.logger.Info("subscription created",
		"user_id", userID,
		"plan", planType,
		"expires_at", sub.ExpiresAt.Format(time.RFC3339),
		"payment_method", paymentMethod,
	)
	return sub, nil
}

// GetSubscription returns the user's active subscription, or nil.
func (s *BillingService) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.subRepo.GetActiveByUserID(ctx, userID, s.now().UTC())
}

// Cancel cancels the user's active subscription. Access ends immediately.
func (s *BillingService) Cancel(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subRepo.GetActiveByUserID(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrNoActiveSubscription
	}

	sub.Status = models.SubscriptionStatusCancelled
	sub.UpdatedAt = s.now().UTC()
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.Info("subscription cancelled", "user_id", userID, "subscription_id", sub.ID)
	return sub, nil
}

// ListPayments returns the user's payment history, newest first.
func (s *BillingService) ListPayments(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.paymentRepo.GetByUserID(ctx, userID, limit, offset)
}

// ExpireLapsed flips active subscriptions past their expiry to expired.
// Called periodically by the cleanup loop; tier resolution does not depend
// on it since expiry is also checked at read time.
func (s *BillingService) ExpireLapsed(ctx context.Context) (int64, error) {
	n, err := s.subRepo.MarkExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("marked lapsed subscriptions expired", "count", n)
	}
	return n, nil
}
