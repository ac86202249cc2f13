// Package service contains the business logic layer.
// Note: user accounts live in the hosted auth service; UserID values here
// are its opaque identifiers.
package service

import (
	"fmt"
	"log/slog"

	"github.com/threadcutter/threadcutter-api/internal/config"
	"github.com/threadcutter/threadcutter-api/internal/llm"
	"github.com/threadcutter/threadcutter-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Formatter *FormatterService
	Ledger    *LedgerService
	Chat      *ChatService
	Billing   *BillingService
	Cleanup   *CleanupService
	Settings  *SettingsService
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	gemini := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.GeminiTimeout)
	if !gemini.Configured() {
		logger.Warn("GEMINI_API_KEY not set - all formatting will use the local splitter")
	}

	settingsSvc, err := NewSettingsService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings service: %w", err)
	}

	formatterSvc := NewFormatterService(gemini, cfg.GeminiTimeout, logger)
	ledgerSvc := NewLedgerService(repos.Usage, repos.Subscription, logger)
	chatSvc := NewChatService(repos.Chat, repos.Message, logger)
	billingSvc := NewBillingService(repos.Subscription, repos.Payment, logger)
	cleanupSvc := NewCleanupService(repos.Usage, repos.Chat, billingSvc, logger)

	return &Services{
		Formatter: formatterSvc,
		Ledger:    ledgerSvc,
		Chat:      chatSvc,
		Billing:   billingSvc,
		Cleanup:   cleanupSvc,
		Settings:  settingsSvc,
	}, nil
}
