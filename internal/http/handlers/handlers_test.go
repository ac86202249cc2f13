package handlers

import (
	"context"
	"errors"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	output, err := HealthCheck(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "healthy" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "healthy")
	}
	if output.Body.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestLivez(t *testing.T) {
	output, err := Livez(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}
}

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) PingContext(_ context.Context) error {
	return m.err
}

func TestReadyzHealthy(t *testing.T) {
	handler := NewReadyzHandler(&mockDBPinger{})

	output, err := handler.Readyz(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "ready" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ready")
	}
}

func TestReadyzDatabaseDown(t *testing.T) {
	handler := NewReadyzHandler(&mockDBPinger{err: errors.New("connection refused")})

	if _, err := handler.Readyz(context.Background(), nil); err == nil {
		t.Fatal("expected error when database is unreachable")
	}
}

func TestGetUserIDAnonymous(t *testing.T) {
	if got := getUserID(guestCtx()); got != "" {
		t.Errorf("getUserID = %q, want empty", got)
	}
}

func TestGetUserIDAuthenticated(t *testing.T) {
	if got := getUserID(userCtx("u1")); got != "u1" {
		t.Errorf("getUserID = %q, want u1", got)
	}
}

func TestGetIdentityKeys(t *testing.T) {
	if got := getIdentity(guestCtx()); got.Key != "device:fp1" {
		t.Errorf("Key = %q", got.Key)
	}
	if got := getIdentity(userCtx("u1")); got.Key != "user:u1" {
		t.Errorf("Key = %q", got.Key)
	}
}

func TestListTierLimits(t *testing.T) {
	output, err := ListTierLimits(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Tiers) != 3 {
		t.Fatalf("got %d tiers, want 3", len(output.Body.Tiers))
	}
	if output.Body.Tiers[0].Name != "guest" || output.Body.Tiers[2].Name != "premium" {
		t.Errorf("tier order = %v", output.Body.Tiers)
	}
	if output.Body.Tiers[2].DailyThreads != -1 {
		t.Errorf("premium DailyThreads = %d, want -1", output.Body.Tiers[2].DailyThreads)
	}
}

func TestListPlatforms(t *testing.T) {
	output, err := ListPlatforms(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Platforms) != 6 {
		t.Fatalf("got %d platforms, want 6", len(output.Body.Platforms))
	}
	if output.Body.Platforms[0].Name != "twitter" || output.Body.Platforms[0].CharLimit != 280 {
		t.Errorf("first platform = %+v", output.Body.Platforms[0])
	}
}
