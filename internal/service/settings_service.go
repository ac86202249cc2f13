package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/threadcutter/threadcutter-api/internal/config"
	"github.com/threadcutter/threadcutter-api/internal/constants"
)

// SettingsService pulls runtime setting overrides from an S3-compatible
// bucket: tier limits and platform specs can be adjusted without a deploy.
// The in-code defaults always apply when the bucket or key is absent.
type SettingsService struct {
	client  *s3.Client
	bucket  string
	key     string
	enabled bool
	logger  *slog.Logger

	mu   sync.Mutex
	etag string
}

// settingsDocument is the JSON shape of the overrides object.
type settingsDocument struct {
	Tiers     map[string]constants.TierLimits   `json:"tiers,omitempty"`
	Platforms map[string]constants.PlatformSpec `json:"platforms,omitempty"`
}

// NewSettingsService creates the settings service. It is disabled (a no-op)
// unless the settings bucket is configured.
func NewSettingsService(cfg *appconfig.Config, logger *slog.Logger) (*SettingsService, error) {
	logger = logger.With("component", "settings")

	if !cfg.SettingsEnabled {
		logger.Info("settings overrides disabled - no bucket configured")
		return &SettingsService{enabled: false, logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SettingsRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.SettingsAccessKey,
			cfg.SettingsSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.SettingsEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SettingsEndpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("settings overrides enabled",
		"bucket", cfg.SettingsBucket,
		"key", cfg.SettingsKey,
	)

	return &SettingsService{
		client:  client,
		bucket:  cfg.SettingsBucket,
		key:     cfg.SettingsKey,
		enabled: true,
		logger:  logger,
	}, nil
}

// IsEnabled returns whether overrides are configured.
func (s *SettingsService) IsEnabled() bool {
	return s.enabled
}

// Refresh fetches the overrides object and applies it. A missing key or an
// unchanged ETag is not an error.
func (s *SettingsService) Refresh(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	currentEtag := s.etag
	s.mu.Unlock()

	input := &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
	}
	if currentEtag != "" {
		quoted := "\"" + currentEtag + "\""
		input.IfNoneMatch = &quoted
	}

	resp, err := s.client.GetObject(ctx, input)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil
		}
		var notModified interface{ ErrorCode() string }
		if errors.As(err, &notModified) && notModified.ErrorCode() == "NotModified" {
			return nil
		}
		return fmt.Errorf("failed to fetch settings: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var doc settingsDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	if len(doc.Tiers) > 0 {
		constants.UpdateTierLimits(doc.Tiers)
	}
	if len(doc.Platforms) > 0 {
		constants.UpdatePlatformSpecs(doc.Platforms)
	}

	newEtag := ""
	if resp.ETag != nil {
		newEtag = strings.Trim(*resp.ETag, "\"")
	}
	s.mu.Lock()
	s.etag = newEtag
	s.mu.Unlock()

	s.logger.Info("settings overrides applied",
		"tiers", len(doc.Tiers),
		"platforms", len(doc.Platforms),
		"etag", newEtag,
	)
	return nil
}

// RunScheduledRefresh refreshes immediately and then at the given interval
// until the context is cancelled.
func (s *SettingsService) RunScheduledRefresh(ctx context.Context, interval time.Duration) {
	if !s.enabled {
		return
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial settings refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("settings refresh failed", "error", err)
			}
		}
	}
}
