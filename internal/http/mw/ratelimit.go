package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/httprate"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// TierLimit resolves a tier name to its requests-per-minute limit
	// (0 = unlimited). Resolved per request so settings overrides apply
	// without a restart.
	TierLimit func(tier string) int
	// IPRequestsPerMinute is a fallback rate limit by IP for requests
	// whose identity could not be resolved.
	IPRequestsPerMinute int
}

// DefaultRateLimitConfig resolves tier limits from the live constants
// table, so S3 settings overrides take effect immediately.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		TierLimit: func(tier string) int {
			return constants.GetTierLimits(tier).RequestsPerMinute
		},
		IPRequestsPerMinute: constants.GlobalIPRateLimitPerMinute,
	}
}

// RateLimitByIdentity returns a middleware that rate limits by the resolved
// quota identity, so a signed-in user keeps one budget across devices and an
// anonymous device keeps one budget across IPs. Must be applied after
// Identity. Honors a tier limit of 0 as unlimited.
func RateLimitByIdentity(cfg RateLimitConfig, ledger *service.LedgerService) func(http.Handler) http.Handler {
	if cfg.TierLimit == nil {
		cfg.TierLimit = DefaultRateLimitConfig().TierLimit
	}

	// One limiter per requests-per-minute value, created on first use.
	// Budgets are keyed by identity inside each limiter, so tiers that
	// share a limit sharing a limiter is harmless.
	var mu sync.Mutex
	limiters := make(map[int]*httprate.RateLimiter)

	limiterFor := func(limit int) *httprate.RateLimiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[limit]
		if !ok {
			limiter = httprate.NewRateLimiter(
				limit,
				time.Minute,
				httprate.WithKeyFuncs(identityKeyFunc),
			)
			limiters[limit] = limiter
		}
		return limiter
	}

	fallbackLimiter := httprate.NewRateLimiter(
		cfg.IPRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := GetIdentity(r.Context())
			if ident.Key == "" {
				fallbackLimiter.Handler(next).ServeHTTP(w, r)
				return
			}

			tier := ledger.TierFor(r.Context(), ident)
			limit := cfg.TierLimit(tier)
			if limit == 0 {
				next.ServeHTTP(w, r)
				return
			}

			limiterFor(limit).Handler(next).ServeHTTP(w, r)
		})
	}
}

func identityKeyFunc(r *http.Request) (string, error) {
	ident := GetIdentity(r.Context())
	if ident.Key == "" {
		return httprate.KeyByIP(r)
	}
	return ident.Key, nil
}

// RateLimitByIP returns a middleware that rate limits by IP address.
// Useful as a global outer guard before identities are resolved.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}
