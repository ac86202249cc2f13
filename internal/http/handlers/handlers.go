// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"

	"github.com/threadcutter/threadcutter-api/internal/http/mw"
	"github.com/threadcutter/threadcutter-api/internal/identity"
	"github.com/threadcutter/threadcutter-api/internal/version"
)

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Get().Version
	return out, nil
}

// LivezOutput represents the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez is the Kubernetes liveness probe.
func Livez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// DBPinger is the database connectivity check the readiness probe needs.
// *sql.DB satisfies it.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// ReadyzHandler reports readiness based on database connectivity.
type ReadyzHandler struct {
	db DBPinger
}

// NewReadyzHandler creates a readiness probe handler.
func NewReadyzHandler(db DBPinger) *ReadyzHandler {
	return &ReadyzHandler{db: db}
}

// ReadyzOutput represents the readiness probe response.
type ReadyzOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Readyz is the Kubernetes readiness probe.
func (h *ReadyzHandler) Readyz(ctx context.Context, input *struct{}) (*ReadyzOutput, error) {
	if err := h.db.PingContext(ctx); err != nil {
		return nil, errServiceUnavailable("database not reachable")
	}
	out := &ReadyzOutput{}
	out.Body.Status = "ready"
	return out, nil
}

// getUserID extracts the user ID from context, empty for anonymous requests.
func getUserID(ctx context.Context) string {
	claims := mw.GetUserClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// getIdentity extracts the resolved quota identity from context.
func getIdentity(ctx context.Context) identity.Identity {
	return mw.GetIdentity(ctx)
}
