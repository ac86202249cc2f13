package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/repository"
)

// CleanupService prunes aged usage records, applies the chat retention
// policy, and sweeps lapsed subscriptions.
type CleanupService struct {
	usageRepo  repository.UsageRepository
	chatRepo   repository.ChatRepository
	billingSvc *BillingService
	logger     *slog.Logger
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(usageRepo repository.UsageRepository, chatRepo repository.ChatRepository, billingSvc *BillingService, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		usageRepo:  usageRepo,
		chatRepo:   chatRepo,
		billingSvc: billingSvc,
		logger:     logger.With("component", "cleanup"),
	}
}

// CleanupResult contains the results of a cleanup pass.
type CleanupResult struct {
	UsageRecordsDeleted  int64
	ChatsDeleted         int64
	SubscriptionsExpired int64
	Errors               []error
}

// Cleanup removes usage records older than maxAgeUsage, deletes chats not
// touched within maxAgeChats (0 keeps chats forever), and marks lapsed
// subscriptions expired. Partial failures are collected, not fatal.
func (s *CleanupService) Cleanup(ctx context.Context, maxAgeUsage, maxAgeChats time.Duration) (*CleanupResult, error) {
	result := &CleanupResult{}
	cutoffDate := time.Now().UTC().Add(-maxAgeUsage).Format(DateLayout)

	s.logger.Info("starting cleanup", "usage_cutoff_date", cutoffDate)

	deleted, err := s.usageRepo.DeleteOlderThan(ctx, cutoffDate)
	if err != nil {
		s.logger.Error("failed to delete old usage records", "error", err)
		result.Errors = append(result.Errors, err)
	} else {
		result.UsageRecordsDeleted = deleted
	}

	if maxAgeChats > 0 {
		chatCutoff := time.Now().UTC().Add(-maxAgeChats)
		ids, err := s.chatRepo.DeleteOlderThan(ctx, chatCutoff)
		if err != nil {
			s.logger.Error("failed to delete old chats", "error", err)
			result.Errors = append(result.Errors, err)
		} else {
			result.ChatsDeleted = int64(len(ids))
		}
	}

	expired, err := s.billingSvc.ExpireLapsed(ctx)
	if err != nil {
		s.logger.Error("failed to expire lapsed subscriptions", "error", err)
		result.Errors = append(result.Errors, err)
	} else {
		result.SubscriptionsExpired = expired
	}

	s.logger.Info("cleanup completed",
		"usage_records_deleted", result.UsageRecordsDeleted,
		"chats_deleted", result.ChatsDeleted,
		"subscriptions_expired", result.SubscriptionsExpired,
		"errors", len(result.Errors),
	)
	return result, nil
}

// RunScheduledCleanup runs cleanup immediately and then at the given
// interval until the context is cancelled.
func (s *CleanupService) RunScheduledCleanup(ctx context.Context, maxAgeUsage, maxAgeChats, interval time.Duration) {
	s.logger.Info("starting scheduled cleanup",
		"max_age_usage", maxAgeUsage.String(),
		"max_age_chats", maxAgeChats.String(),
		"interval", interval.String(),
	)

	if _, err := s.Cleanup(ctx, maxAgeUsage, maxAgeChats); err != nil {
		s.logger.Error("initial cleanup failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduled cleanup stopped")
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx, maxAgeUsage, maxAgeChats); err != nil {
				s.logger.Error("scheduled cleanup failed", "error", err)
			}
		}
	}
}
