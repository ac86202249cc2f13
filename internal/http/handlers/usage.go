package handlers

import (
	"context"

	"github.com/threadcutter/threadcutter-api/internal/service"
)

// UsageHandler handles usage endpoints.
type UsageHandler struct {
	ledger *service.LedgerService
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(ledger *service.LedgerService) *UsageHandler {
	return &UsageHandler{ledger: ledger}
}

// GetUsageOutput represents the usage response.
type GetUsageOutput struct {
	Body UsageBody
}

// GetUsage returns today's quota view for the requesting identity. Reading
// never consumes quota and works for anonymous devices too.
func (h *UsageHandler) GetUsage(ctx context.Context, input *struct{}) (*GetUsageOutput, error) {
	status := h.ledger.GetUsage(ctx, getIdentity(ctx))
	return &GetUsageOutput{Body: usageBody(status)}, nil
}
