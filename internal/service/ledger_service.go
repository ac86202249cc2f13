package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/identity"
	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/repository"
)

// DateLayout is the calendar-day key used by usage records.
const DateLayout = "2006-01-02"

// UsageStatus is the computed quota view for an identity today.
type UsageStatus struct {
	Record    *models.UsageRecord
	Tier      string
	Limit     int // -1 means unlimited
	Remaining int // 0 when unlimited is true and for exhausted quotas
	Unlimited bool
}

// Allowed reports whether one more format request fits the quota.
func (u *UsageStatus) Allowed() bool {
	return u.Unlimited || u.Record.Count < u.Limit
}

// LedgerService tracks per-identity daily usage. Reads are non-destructive:
// a new day simply computes a zero view without touching storage, and
// storage failures degrade to a zero count rather than blocking requests.
type LedgerService struct {
	usageRepo repository.UsageRepository
	subRepo   repository.SubscriptionRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(usageRepo repository.UsageRepository, subRepo repository.SubscriptionRepository, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		usageRepo: usageRepo,
		subRepo:   subRepo,
		logger:    logger.With("component", "ledger"),
		now:       time.Now,
	}
}

// Today returns the current UTC calendar day.
func (s *LedgerService) Today() string {
	return s.now().UTC().Format(DateLayout)
}

// TierFor resolves the tier for an identity: guest for anonymous requests,
// premium for users with an unexpired subscription, free otherwise.
func (s *LedgerService) TierFor(ctx context.Context, ident identity.Identity) string {
	if !ident.Authenticated() {
		return constants.TierGuest
	}

	sub, err := s.subRepo.GetActiveByUserID(ctx, ident.UserID, s.now().UTC())
	if err != nil {
		s.logger.Warn("failed to look up subscription, assuming free tier",
			"user_id", ident.UserID,
			"error", err,
		)
		return constants.TierFree
	}
	if sub != nil {
		return constants.TierPremium
	}
	return constants.TierFree
}

// GetUsage returns today's usage view for an identity. Missing records and
// read failures both yield a zero-count record; nothing is persisted.
func (s *LedgerService) GetUsage(ctx context.Context, ident identity.Identity) *UsageStatus {
	today := s.Today()

	record, err := s.usageRepo.Get(ctx, ident.Key, today)
	if err != nil {
		s.logger.Warn("failed to read usage record, treating as zero",
			"identity_key", ident.Key,
			"error", err,
		)
		record = nil
	}
	if record == nil {
		record = s.zeroRecord(ident, today)
	}

	return s.status(ctx, ident, record)
}

// IncrementUsage records one format request for the identity and returns
// the updated view. Write failures are logged and the computed record is
// returned unpersisted, so a storage outage never blocks formatting.
// Premium usage is recorded too even though no limit applies.
func (s *LedgerService) IncrementUsage(ctx context.Context, ident identity.Identity) *UsageStatus {
	today := s.Today()

	record, err := s.usageRepo.Get(ctx, ident.Key, today)
	if err != nil {
		s.logger.Warn("failed to read usage record before increment, treating as zero",
			"identity_key", ident.Key,
			"error", err,
		)
		record = nil
	}
	if record == nil {
		record = s.zeroRecord(ident, today)
	}

	record.Count++
	record.UpdatedAt = s.now().UTC()

	if err := s.usageRepo.Upsert(ctx, record); err != nil {
		s.logger.Error("failed to persist usage record",
			"identity_key", ident.Key,
			"count", record.Count,
			"error", err,
		)
	}

	return s.status(ctx, ident, record)
}

func (s *LedgerService) zeroRecord(ident identity.Identity, date string) *models.UsageRecord {
	return &models.UsageRecord{
		IdentityKey: ident.Key,
		Count:       0,
		Date:        date,
		UserID:      ident.UserID,
		DeviceID:    ident.DeviceID,
		UpdatedAt:   s.now().UTC(),
	}
}

func (s *LedgerService) status(ctx context.Context, ident identity.Identity, record *models.UsageRecord) *UsageStatus {
	tier := s.TierFor(ctx, ident)
	limit := constants.DailyLimit(tier)

	status := &UsageStatus{
		Record:    record,
		Tier:      tier,
		Limit:     limit,
		Unlimited: limit == constants.UnlimitedDailyThreads,
	}
	if !status.Unlimited && record.Count < limit {
		status.Remaining = limit - record.Count
	}
	return status
}
