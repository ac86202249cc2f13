package llm

import "errors"

var (
	// ErrNotConfigured indicates no API key is set.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrUnavailable indicates the provider failed or returned an error status.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrRateLimited indicates the provider rejected the request for quota.
	ErrRateLimited = errors.New("llm provider rate limited")

	// ErrEmptyResponse indicates the provider returned no usable candidates,
	// typically due to safety filtering.
	ErrEmptyResponse = errors.New("llm provider returned empty response")
)
