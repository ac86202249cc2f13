package config

import (
	"bytes"
	"testing"
	"time"
)

func TestLoadRequiresServerSecret(t *testing.T) {
	t.Setenv("SERVER_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without SERVER_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_SECRET", "test-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash-exp" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GeminiTimeout != 60*time.Second {
		t.Errorf("GeminiTimeout = %v", cfg.GeminiTimeout)
	}
	if len(cfg.FingerprintKey) != 32 {
		t.Errorf("FingerprintKey length = %d, want 32", len(cfg.FingerprintKey))
	}
	if cfg.SettingsEnabled {
		t.Error("SettingsEnabled should be false without a bucket")
	}
	if cfg.StripeEnabled() {
		t.Error("StripeEnabled() should be false without keys")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_SECRET", "test-secret")
	t.Setenv("PORT", "9999")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CLEANUP_ENABLED", "true")
	t.Setenv("CLEANUP_INTERVAL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two entries", cfg.CORSOrigins)
	}
	if !cfg.CleanupEnabled {
		t.Error("CleanupEnabled should be true")
	}
	if cfg.CleanupInterval != time.Hour {
		t.Errorf("CleanupInterval = %v, want 1h", cfg.CleanupInterval)
	}
}

func TestDeriveKeyIsDeterministicAndPurposeBound(t *testing.T) {
	a := deriveKey("secret", "device-fingerprint-mac")
	b := deriveKey("secret", "device-fingerprint-mac")
	c := deriveKey("secret", "other-purpose")
	d := deriveKey("different", "device-fingerprint-mac")

	if !bytes.Equal(a, b) {
		t.Error("same secret and purpose should derive the same key")
	}
	if bytes.Equal(a, c) {
		t.Error("different purpose should derive a different key")
	}
	if bytes.Equal(a, d) {
		t.Error("different secret should derive a different key")
	}
}
