package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

// BillingHandler handles subscription and payment endpoints.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// ListPlansOutput represents the plan catalog response.
type ListPlansOutput struct {
	Body struct {
		Plans []service.Plan `json:"plans"`
	}
}

// ListPlans returns the purchasable premium plans. Public endpoint for
// pricing pages.
func (h *BillingHandler) ListPlans(ctx context.Context, input *struct{}) (*ListPlansOutput, error) {
	out := &ListPlansOutput{}
	out.Body.Plans = h.billing.Plans()
	return out, nil
}

// SubscriptionOutput wraps a subscription response.
type SubscriptionOutput struct {
	Body struct {
		Subscription *models.Subscription `json:"subscription"`
	}
}

// GetSubscription returns the user's active subscription, null when none.
func (h *BillingHandler) GetSubscription(ctx context.Context, input *struct{}) (*SubscriptionOutput, error) {
	sub, err := h.billing.GetSubscription(ctx, getUserID(ctx))
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load subscription")
	}
	out := &SubscriptionOutput{}
	out.Body.Subscription = sub
	return out, nil
}

// SubscribeInput represents a plan purchase request.
type SubscribeInput struct {
	Body struct {
		PlanType      models.PlanType `json:"plan_type" enum:"day,week,month,year" doc:"Plan to purchase"`
		PaymentMethod string          `json:"payment_method,omitempty" enum:"demo,stripe" default:"demo" doc:"Payment flow; stripe purchases normally land via webhook"`
	}
}

// Subscribe purchases a plan with the demo payment flow. Stripe purchases
// arrive through the webhook instead.
func (h *BillingHandler) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscriptionOutput, error) {
	method := input.Body.PaymentMethod
	if method == "" {
		method = "demo"
	}
	sub, err := h.billing.Subscribe(ctx, getUserID(ctx), input.Body.PlanType, method, "")
	if err != nil {
		return nil, mapBillingError(err)
	}
	out := &SubscriptionOutput{}
	out.Body.Subscription = sub
	return out, nil
}

// CancelSubscription cancels the user's active subscription immediately.
func (h *BillingHandler) CancelSubscription(ctx context.Context, input *struct{}) (*SubscriptionOutput, error) {
	sub, err := h.billing.Cancel(ctx, getUserID(ctx))
	if err != nil {
		return nil, mapBillingError(err)
	}
	out := &SubscriptionOutput{}
	out.Body.Subscription = sub
	return out, nil
}

// ListPaymentsInput represents a payment history request.
type ListPaymentsInput struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"100"`
	Offset int `query:"offset" default:"0" minimum:"0"`
}

// ListPaymentsOutput represents the payment history response.
type ListPaymentsOutput struct {
	Body struct {
		Payments []*models.Payment `json:"payments"`
	}
}

// ListPayments returns the user's payment history, newest first.
func (h *BillingHandler) ListPayments(ctx context.Context, input *ListPaymentsInput) (*ListPaymentsOutput, error) {
	payments, err := h.billing.ListPayments(ctx, getUserID(ctx), input.Limit, input.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list payments")
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	out := &ListPaymentsOutput{}
	out.Body.Payments = payments
	return out, nil
}
