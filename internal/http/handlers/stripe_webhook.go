package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/threadcutter/threadcutter-api/internal/config"
	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

// StripeWebhookHandler handles Stripe webhook events.
type StripeWebhookHandler struct {
	cfg     *config.Config
	billing *service.BillingService
	logger  *slog.Logger
}

// NewStripeWebhookHandler creates a new Stripe webhook handler.
func NewStripeWebhookHandler(cfg *config.Config, billing *service.BillingService, logger *slog.Logger) *StripeWebhookHandler {
	stripe.Key = cfg.StripeSecretKey

	return &StripeWebhookHandler{
		cfg:     cfg,
		billing: billing,
		logger:  logger.With("component", "stripe_webhook"),
	}
}

// HandleWebhook processes incoming Stripe webhooks.
// This is a raw HTTP handler since signature verification needs the exact
// request body bytes.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodySize = 65536 // 64KB

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.cfg.StripeWebhookSecret)
	if err != nil {
		h.logger.Error("failed to verify webhook signature", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.handleEvent(r.Context(), event); err != nil {
		h.logger.Error("failed to handle webhook event", "type", event.Type, "error", err)
		// Return 200 so Stripe does not retry; the failure is logged for
		// manual follow-up
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleEvent routes events to appropriate handlers.
func (h *StripeWebhookHandler) handleEvent(ctx context.Context, event stripe.Event) error {
	h.logger.Info("received Stripe webhook", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		return h.handleCheckoutComplete(ctx, event)

	case "customer.subscription.deleted":
		return h.handleSubscriptionCanceled(ctx, event)

	default:
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
		return nil
	}
}

// handleCheckoutComplete activates the purchased plan for the user named in
// the checkout metadata.
func (h *StripeWebhookHandler) handleCheckoutComplete(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	userID, ok := session.Metadata["user_id"]
	if !ok || userID == "" {
		h.logger.Warn("checkout session missing user_id", "session_id", session.ID)
		return nil
	}

	planType := models.PlanType(session.Metadata["plan_type"])
	if !planType.Valid() {
		h.logger.Warn("checkout session has unknown plan_type",
			"session_id", session.ID,
			"plan_type", session.Metadata["plan_type"],
		)
		return nil
	}

	transactionID := session.ID
	if session.PaymentIntent != nil {
		transactionID = session.PaymentIntent.ID
	}

	_, err := h.billing.Subscribe(ctx, userID, planType, "stripe", transactionID)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateTransaction) {
			h.logger.Info("duplicate checkout ignored", "transaction_id", transactionID)
			return nil
		}
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	h.logger.Info("stripe subscription activated", "user_id", userID, "plan", planType)
	return nil
}

// handleSubscriptionCanceled ends access when Stripe reports a cancellation.
func (h *StripeWebhookHandler) handleSubscriptionCanceled(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	userID, ok := sub.Metadata["user_id"]
	if !ok || userID == "" {
		h.logger.Warn("subscription event missing user_id", "subscription_id", sub.ID)
		return nil
	}

	_, err := h.billing.Cancel(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSubscription) {
			h.logger.Info("cancellation for user without active subscription", "user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	h.logger.Info("stripe subscription cancelled", "user_id", userID)
	return nil
}
