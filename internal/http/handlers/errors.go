package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadcutter/threadcutter-api/internal/service"
)

// mapChatError converts chat service errors to API errors.
func mapChatError(err error) error {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		return huma.Error404NotFound("chat not found")
	case errors.Is(err, service.ErrNotChatOwner):
		// Reported as 404 so probing for other users' chat IDs learns nothing
		return huma.Error404NotFound("chat not found")
	case errors.Is(err, service.ErrMessageNotFound):
		return huma.Error404NotFound("message not found")
	default:
		return huma.Error500InternalServerError("operation failed")
	}
}

// mapBillingError converts billing service errors to API errors.
func mapBillingError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownPlan):
		return huma.Error400BadRequest("unknown plan type")
	case errors.Is(err, service.ErrNoActiveSubscription):
		return huma.Error404NotFound("no active subscription")
	case errors.Is(err, service.ErrDuplicateTransaction):
		return huma.Error409Conflict("transaction already processed")
	default:
		return huma.Error500InternalServerError("operation failed")
	}
}

func errServiceUnavailable(msg string) error {
	return huma.Error503ServiceUnavailable(msg)
}
