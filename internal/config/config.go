// Package config handles application configuration.
package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Authentication
	// ServerSecret signs nothing itself; it is the root secret from which the
	// JWT verification key and the fingerprint MAC key are derived.
	ServerSecret   string
	JWTIssuer      string // expected iss claim from the hosted auth service ("" = not checked)
	JWTKey         []byte // 32-byte HMAC key for bearer token verification
	FingerprintKey []byte // 32-byte HMAC key for device fingerprint hashing

	// Generative provider (Gemini)
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// Stripe (optional; the demo payment flow works without it)
	StripeSecretKey     string
	StripeWebhookSecret string

	// CORS
	CORSOrigins []string

	// Settings overrides (S3-compatible object storage)
	SettingsEnabled   bool
	SettingsEndpoint  string
	SettingsAccessKey string
	SettingsSecretKey string
	SettingsBucket    string
	SettingsKey       string
	SettingsRegion    string
	SettingsRefresh   time.Duration

	// Cleanup
	CleanupEnabled     bool
	CleanupMaxAgeUsage time.Duration // how long stale usage records are kept
	CleanupMaxAgeChats time.Duration // chat retention window; 0 keeps chats forever
	CleanupInterval    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:threadcutter.db?_journal=WAL&_timeout=5000"),

		ServerSecret: getEnv("SERVER_SECRET", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout: getEnvDuration("GEMINI_TIMEOUT", 60*time.Second),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		SettingsEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		SettingsAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SettingsSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SettingsBucket:    getEnv("SETTINGS_BUCKET", ""),
		SettingsKey:       getEnv("SETTINGS_KEY", "settings.json"),
		SettingsRegion:    getEnv("AWS_REGION", "auto"),
		SettingsRefresh:   getEnvDuration("SETTINGS_REFRESH", 5*time.Minute),
	}

	cfg.SettingsEnabled = cfg.SettingsBucket != "" && cfg.SettingsEndpoint != ""

	cfg.CleanupEnabled = getEnvBool("CLEANUP_ENABLED", false)
	cfg.CleanupMaxAgeUsage = getEnvDuration("CLEANUP_MAX_AGE_USAGE", 90*24*time.Hour)
	cfg.CleanupMaxAgeChats = getEnvDuration("CLEANUP_MAX_AGE_CHATS", 0)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)

	if cfg.ServerSecret == "" {
		return nil, fmt.Errorf("SERVER_SECRET is required")
	}
	cfg.JWTKey = deriveKey(cfg.ServerSecret, "auth-token-hmac")
	cfg.FingerprintKey = deriveKey(cfg.ServerSecret, "device-fingerprint-mac")

	return cfg, nil
}

// StripeEnabled returns true if the Stripe webhook can be served.
func (c *Config) StripeEnabled() bool {
	return c.StripeSecretKey != "" && c.StripeWebhookSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// deriveKey creates a 32-byte key from the server secret using HKDF-SHA256.
// The info string binds each derived key to its single purpose.
func deriveKey(secret, info string) []byte {
	salt := []byte("threadcutter-api-key-v1")
	r := hkdf.New(sha256.New, []byte(secret), salt, []byte(info))

	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		panic("hkdf: failed to derive key: " + err.Error())
	}
	return key
}

// EncodeKey returns the base64 form of a derived key, used only for debugging
// configuration problems without printing raw key bytes into logs.
func EncodeKey(key []byte) string {
	sum := sha256.Sum256(key)
	return base64.StdEncoding.EncodeToString(sum[:8])
}
