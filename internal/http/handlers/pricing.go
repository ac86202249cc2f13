package handlers

import (
	"context"
	"sort"

	"github.com/threadcutter/threadcutter-api/internal/constants"
)

// TierInfo is the public description of one access tier.
type TierInfo struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	DailyThreads      int    `json:"daily_threads" doc:"-1 = unlimited"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	MultiTone         bool   `json:"multi_tone"`
	EmojiToggle       bool   `json:"emoji_toggle"`
}

// PlatformInfo is the public description of one target platform.
type PlatformInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CharLimit   int    `json:"char_limit"`
}

// ListTiersOutput represents the tier listing response.
type ListTiersOutput struct {
	Body struct {
		Tiers []TierInfo `json:"tiers"`
	}
}

// ListTierLimits returns the access tiers and their limits, for pricing
// pages. Reflects any active settings overrides.
func ListTierLimits(ctx context.Context, input *struct{}) (*ListTiersOutput, error) {
	tiers := make([]TierInfo, 0, 3)
	for _, name := range []string{constants.TierGuest, constants.TierFree, constants.TierPremium} {
		limits := constants.GetTierLimits(name)
		tiers = append(tiers, TierInfo{
			Name:              name,
			DisplayName:       limits.DisplayName,
			DailyThreads:      limits.DailyThreads,
			RequestsPerMinute: limits.RequestsPerMinute,
			MultiTone:         limits.MultiTone,
			EmojiToggle:       limits.EmojiToggle,
		})
	}
	sort.Slice(tiers, func(i, j int) bool {
		return constants.GetTierLimits(tiers[i].Name).Order < constants.GetTierLimits(tiers[j].Name).Order
	})

	out := &ListTiersOutput{}
	out.Body.Tiers = tiers
	return out, nil
}

// ListPlatformsOutput represents the platform listing response.
type ListPlatformsOutput struct {
	Body struct {
		Platforms []PlatformInfo `json:"platforms"`
	}
}

// ListPlatforms returns the supported target platforms and their limits.
func ListPlatforms(ctx context.Context, input *struct{}) (*ListPlatformsOutput, error) {
	names := []string{
		constants.PlatformTwitter,
		constants.PlatformThreads,
		constants.PlatformTikTok,
		constants.PlatformInstagram,
		constants.PlatformLinkedIn,
		constants.PlatformFacebook,
	}
	platforms := make([]PlatformInfo, 0, len(names))
	for _, name := range names {
		spec, ok := constants.GetPlatformSpec(name)
		if !ok {
			continue
		}
		platforms = append(platforms, PlatformInfo{
			Name:        name,
			DisplayName: spec.DisplayName,
			CharLimit:   spec.CharLimit,
		})
	}

	out := &ListPlatformsOutput{}
	out.Body.Platforms = platforms
	return out, nil
}
