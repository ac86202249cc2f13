// Package identity resolves the usage-tracking identity for a request.
// Authenticated requests are keyed by user ID; anonymous requests fall back
// to a device fingerprint derived from client-supplied environment signals.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key prefixes distinguish the two identity classes in storage.
const (
	userKeyPrefix   = "user:"
	deviceKeyPrefix = "device:"
)

// DeviceInfo carries the environment signals a client reports about itself.
// None are trusted individually; together they produce a stable-enough
// fingerprint for daily quota bucketing.
type DeviceInfo struct {
	UserAgent string `json:"user_agent"`
	Language  string `json:"language"`
	Timezone  string `json:"timezone"`
	Screen    string `json:"screen"`
	Platform  string `json:"platform"`
}

// Identity is the resolved quota identity for a request.
// Exactly one of UserID or DeviceID is set.
type Identity struct {
	Key      string
	UserID   string
	DeviceID string
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Provider resolves a request's quota identity.
type Provider interface {
	// Resolve returns the identity for a request. A non-empty userID wins;
	// otherwise the device info is fingerprinted.
	Resolve(userID string, device DeviceInfo) Identity
}

// HMACProvider fingerprints devices with a keyed HMAC so fingerprints are
// stable per deployment but useless outside it.
type HMACProvider struct {
	key []byte
}

// NewHMACProvider creates a provider using the given MAC key.
func NewHMACProvider(key []byte) *HMACProvider {
	return &HMACProvider{key: key}
}

func (p *HMACProvider) Resolve(userID string, device DeviceInfo) Identity {
	if userID != "" {
		return Identity{Key: userKeyPrefix + userID, UserID: userID}
	}
	fp := p.Fingerprint(device)
	return Identity{Key: deviceKeyPrefix + fp, DeviceID: fp}
}

// Fingerprint computes the device fingerprint: HMAC-SHA256 over the joined
// signals, truncated to 16 hex characters.
func (p *HMACProvider) Fingerprint(device DeviceInfo) string {
	canonical := strings.Join([]string{
		device.UserAgent,
		device.Language,
		device.Timezone,
		device.Screen,
		device.Platform,
	}, "|")

	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
