// Package constants defines centralized configuration for tier limits,
// platform conventions, and user-facing messages. Change values here to
// update limits across the entire application.
package constants

import (
	"fmt"
	"sync"
	"time"
)

// tiersMu protects concurrent access to the Tiers map.
var tiersMu sync.RWMutex

// Tier names
const (
	TierGuest   = "guest"
	TierFree    = "free"
	TierPremium = "premium"
)

// UnlimitedDailyThreads marks a tier with no daily quota.
const UnlimitedDailyThreads = -1

// TierLimits defines the numeric limits and feature switches for a tier.
type TierLimits struct {
	// DisplayName is the user-facing name for this tier.
	DisplayName string
	// Order controls the display order in pricing tables (lower = first).
	Order int
	// DailyThreads is the max format/rewrite requests per calendar day
	// (UnlimitedDailyThreads = no limit).
	DailyThreads int
	// RequestsPerMinute is the rate limit for API requests (0 = unlimited).
	RequestsPerMinute int
	// MultiTone controls whether more than one tone may be combined.
	MultiTone bool
	// EmojiToggle controls whether the emoji directive may be switched on.
	EmojiToggle bool
}

// Tiers defines limits for each access tier.
var Tiers = map[string]TierLimits{
	TierGuest: {
		DisplayName:       "Guest",
		Order:             0,
		DailyThreads:      3,
		RequestsPerMinute: 10,
		MultiTone:         false,
		EmojiToggle:       false,
	},
	TierFree: {
		DisplayName:       "Free",
		Order:             1,
		DailyThreads:      5,
		RequestsPerMinute: 20,
		MultiTone:         false,
		EmojiToggle:       false,
	},
	TierPremium: {
		DisplayName:       "Premium",
		Order:             2,
		DailyThreads:      UnlimitedDailyThreads,
		RequestsPerMinute: 60,
		MultiTone:         true,
		EmojiToggle:       true,
	},
}

// GetTierLimits returns the limits for a tier, defaulting to guest.
// Thread-safe for concurrent access.
func GetTierLimits(tier string) TierLimits {
	tiersMu.RLock()
	defer tiersMu.RUnlock()

	if limits, ok := Tiers[tier]; ok {
		return limits
	}
	return Tiers[TierGuest]
}

// DailyLimit returns the daily thread quota for a tier
// (UnlimitedDailyThreads for premium).
func DailyLimit(tier string) int {
	return GetTierLimits(tier).DailyThreads
}

// UpdateTierLimits replaces limits for the named tiers. Called by the
// settings loader when S3-backed overrides are configured.
// Thread-safe for concurrent access.
func UpdateTierLimits(overrides map[string]TierLimits) {
	tiersMu.Lock()
	defer tiersMu.Unlock()

	for name, limits := range overrides {
		if _, ok := Tiers[name]; ok {
			Tiers[name] = limits
		}
	}
}

// Global rate limiting defaults
const (
	// GlobalIPRateLimitPerMinute is the fallback rate limit for unidentified requests
	GlobalIPRateLimitPerMinute = 100
	// GlobalConcurrencyLimit is the max concurrent requests the server will handle
	GlobalConcurrencyLimit = 100
	// MaxRequestBodySize is the max request body size in bytes (1MB)
	MaxRequestBodySize = 1 * 1024 * 1024
)

// HTTP request timeouts
const (
	// DefaultRequestTimeout is the timeout for most API endpoints
	DefaultRequestTimeout = 30 * time.Second
	// FormatRequestTimeout is the extended timeout for format/rewrite
	// operations which involve a generative provider call
	FormatRequestTimeout = 2 * time.Minute
)

// QuotaExceededMessage returns a user-friendly message for daily quota exceeded.
func QuotaExceededMessage(tier string) string {
	limits := GetTierLimits(tier)
	switch tier {
	case TierGuest:
		return fmt.Sprintf("You've used all %d free threads for today. Sign up for %d daily threads, or upgrade to Premium for unlimited access.",
			limits.DailyThreads, GetTierLimits(TierFree).DailyThreads)
	case TierFree:
		return fmt.Sprintf("You've reached your daily limit of %d threads. Upgrade to Premium for unlimited threads.",
			limits.DailyThreads)
	default:
		return "You've reached your daily thread limit. Please upgrade your plan or try again tomorrow."
	}
}

// FeatureNotAvailableMessage returns a user-friendly message for a gated feature.
func FeatureNotAvailableMessage(feature string) string {
	switch feature {
	case "multi_tone":
		return "Combining multiple tones is a Premium feature. Upgrade to mix tones in a single thread."
	case "emoji_toggle":
		return "Emoji styling is a Premium feature. Upgrade to enable emojis in your threads."
	default:
		return "This feature is not available on your current plan. Please upgrade to access it."
	}
}
