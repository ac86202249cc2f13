package service

import (
	"context"
	"testing"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

func TestCleanupPrunesOldUsageAndExpiresSubs(t *testing.T) {
	usage := newMockUsageRepo()
	chats := newMockChatRepo()
	subs := newMockSubscriptionRepo()
	billing := newTestBilling(subs, newMockPaymentRepo())
	svc := NewCleanupService(usage, chats, billing, testLogger())

	now := time.Now().UTC()
	usage.Upsert(context.Background(), &models.UsageRecord{
		IdentityKey: "device:old", Date: now.AddDate(0, 0, -60).Format(DateLayout), Count: 2,
	})
	usage.Upsert(context.Background(), &models.UsageRecord{
		IdentityKey: "device:recent", Date: now.Format(DateLayout), Count: 1,
	})
	subs.Create(context.Background(), &models.Subscription{
		ID: "lapsed", UserID: "u1",
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: now.Add(-time.Hour),
	})

	result, err := svc.Cleanup(context.Background(), 30*24*time.Hour, 0)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if result.UsageRecordsDeleted != 1 {
		t.Errorf("UsageRecordsDeleted = %d, want 1", result.UsageRecordsDeleted)
	}
	if result.SubscriptionsExpired != 1 {
		t.Errorf("SubscriptionsExpired = %d, want 1", result.SubscriptionsExpired)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v", result.Errors)
	}

	kept, _ := usage.Get(context.Background(), "device:recent", now.Format(DateLayout))
	if kept == nil {
		t.Error("recent usage record should survive cleanup")
	}
	sub, _ := subs.GetByID(context.Background(), "lapsed")
	if sub.Status != models.SubscriptionStatusExpired {
		t.Errorf("Status = %q, want expired", sub.Status)
	}
}

func TestCleanupChatRetention(t *testing.T) {
	usage := newMockUsageRepo()
	chats := newMockChatRepo()
	subs := newMockSubscriptionRepo()
	billing := newTestBilling(subs, newMockPaymentRepo())
	svc := NewCleanupService(usage, chats, billing, testLogger())

	now := time.Now().UTC()
	chats.Create(context.Background(), &models.Chat{
		ID: "stale", UserID: "u1", Title: "old thread",
		CreatedAt: now.AddDate(0, 0, -90), UpdatedAt: now.AddDate(0, 0, -90),
	})
	chats.Create(context.Background(), &models.Chat{
		ID: "fresh", UserID: "u1", Title: "recent thread",
		CreatedAt: now, UpdatedAt: now,
	})

	// Retention disabled: nothing is deleted
	result, err := svc.Cleanup(context.Background(), 30*24*time.Hour, 0)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if result.ChatsDeleted != 0 {
		t.Errorf("ChatsDeleted = %d, want 0 with retention disabled", result.ChatsDeleted)
	}

	result, err = svc.Cleanup(context.Background(), 30*24*time.Hour, 60*24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if result.ChatsDeleted != 1 {
		t.Errorf("ChatsDeleted = %d, want 1", result.ChatsDeleted)
	}

	stale, _ := chats.GetByID(context.Background(), "stale")
	if stale != nil {
		t.Error("stale chat should be deleted")
	}
	fresh, _ := chats.GetByID(context.Background(), "fresh")
	if fresh == nil {
		t.Error("fresh chat should survive retention")
	}
}
