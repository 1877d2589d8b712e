// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// SecretKey is the 32-byte vault key, decoded from base64.
	SecretKey []byte
	DBPath    string

	// AuthBaseURL is the shared identity domain.
	AuthBaseURL string
	// OfficeManagerBaseURL and ShiftManagerBaseURL are the persona domains.
	// When unset they are derived from CountryCode.
	OfficeManagerBaseURL string
	ShiftManagerBaseURL  string
	CountryCode          string

	// APIClientID and APIClientSecret identify this integration to the
	// identity domain's token endpoint for the refresh-token grant.
	APIClientID     string
	APIClientSecret string

	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	// MaxConcurrent bounds how many accounts are refreshed at once.
	// Runs for the same account are always serialized regardless.
	MaxConcurrent int
	// MaxAttempts is how many times a run is restarted from the first
	// stage after a transport failure. Layout and scope failures are
	// never retried.
	MaxAttempts int
	// RetryBackoff is the pause between attempts at the same item.
	RetryBackoff time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. AUTHBRIDGE_SECRET_KEY (base64, 32 bytes decoded) is required.
// Optional variables with defaults: AUTHBRIDGE_DB_PATH (authbridge.db),
// AUTHBRIDGE_COUNTRY_CODE (ru), AUTHBRIDGE_AUTH_BASE_URL
// (https://auth.dodois.io), AUTHBRIDGE_REFRESH_INTERVAL (6h),
// AUTHBRIDGE_HTTP_TIMEOUT (15s), AUTHBRIDGE_MAX_CONCURRENT (4),
// AUTHBRIDGE_MAX_ATTEMPTS (3), AUTHBRIDGE_RETRY_BACKOFF (5s).
// AUTHBRIDGE_API_CLIENT_ID and
// AUTHBRIDGE_API_CLIENT_SECRET are required only for token refresh runs and
// are validated at use, not at load.
func Load() (*Config, error) {
	keyB64 := os.Getenv("AUTHBRIDGE_SECRET_KEY")
	if keyB64 == "" {
		return nil, fmt.Errorf("AUTHBRIDGE_SECRET_KEY is required (base64-encoded 32-byte key)")
	}
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("AUTHBRIDGE_SECRET_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AUTHBRIDGE_SECRET_KEY must decode to 32 bytes, got %d", len(key))
	}

	countryCode := "ru"
	if v, ok := os.LookupEnv("AUTHBRIDGE_COUNTRY_CODE"); ok && v != "" {
		countryCode = v
	}

	authBaseURL := "https://auth.dodois.io"
	if v, ok := os.LookupEnv("AUTHBRIDGE_AUTH_BASE_URL"); ok && v != "" {
		authBaseURL = v
	}

	officeManagerBaseURL := fmt.Sprintf("https://officemanager.dodopizza.%s", countryCode)
	if v, ok := os.LookupEnv("AUTHBRIDGE_OFFICE_MANAGER_BASE_URL"); ok && v != "" {
		officeManagerBaseURL = v
	}

	shiftManagerBaseURL := fmt.Sprintf("https://shiftmanager.dodopizza.%s", countryCode)
	if v, ok := os.LookupEnv("AUTHBRIDGE_SHIFT_MANAGER_BASE_URL"); ok && v != "" {
		shiftManagerBaseURL = v
	}

	dbPath := "authbridge.db"
	if v, ok := os.LookupEnv("AUTHBRIDGE_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	refreshInterval, err := durationEnv("AUTHBRIDGE_REFRESH_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	httpTimeout, err := durationEnv("AUTHBRIDGE_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	retryBackoff, err := durationEnv("AUTHBRIDGE_RETRY_BACKOFF", 5*time.Second)
	if err != nil {
		return nil, err
	}

	maxConcurrent, err := intEnv("AUTHBRIDGE_MAX_CONCURRENT", 4)
	if err != nil {
		return nil, err
	}

	maxAttempts, err := intEnv("AUTHBRIDGE_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	return &Config{
		SecretKey:            key,
		DBPath:               dbPath,
		AuthBaseURL:          authBaseURL,
		OfficeManagerBaseURL: officeManagerBaseURL,
		ShiftManagerBaseURL:  shiftManagerBaseURL,
		CountryCode:          countryCode,
		APIClientID:          os.Getenv("AUTHBRIDGE_API_CLIENT_ID"),
		APIClientSecret:      os.Getenv("AUTHBRIDGE_API_CLIENT_SECRET"),
		RefreshInterval:      refreshInterval,
		HTTPTimeout:          httpTimeout,
		MaxConcurrent:        maxConcurrent,
		MaxAttempts:          maxAttempts,
		RetryBackoff:         retryBackoff,
	}, nil
}

// HasAPIClientCredentials reports whether the token-endpoint client
// credentials are configured. Without them session refresh still works but
// API token refresh is skipped.
func (c *Config) HasAPIClientCredentials() bool {
	return c.APIClientID != "" && c.APIClientSecret != ""
}

// durationEnv reads a positive duration. A zero or negative interval would
// make the scheduler's ticker panic, so both are rejected at load time.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return parsed, nil
}

func intEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return parsed, nil
}
