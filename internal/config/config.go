package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned when no Adobe client id/secret is set.
var ErrMissingCredentials = errors.New("adobe client id and secret are not configured")

// Config holds the runtime settings read from the environment.
type Config struct {
	AdobeClientID     string
	AdobeClientSecret string
	AdobeRegion       string
	// AdobeBaseURL overrides the region endpoint when set.
	AdobeBaseURL string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	JobTimeout     time.Duration
	PollInterval   time.Duration

	Port               string
	LogLevel           string
	MaxUploadSizeBytes int64
	WorkbookCacheTTL   time.Duration
}

// Load reads .env (if present) and the process environment. Unparseable
// values fall back to their defaults; the returned warnings describe them.
func Load() (*Config, []string) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, []string) {
	var warnings []string
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	millis := func(key string, fallback int) time.Duration {
		raw := get(key, strconv.Itoa(fallback))
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid %s %q, using %dms", key, raw, fallback))
			n = fallback
		}
		return time.Duration(n) * time.Millisecond
	}
	seconds := func(key string, fallback int) time.Duration {
		raw := get(key, strconv.Itoa(fallback))
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid %s %q, using %ds", key, raw, fallback))
			n = fallback
		}
		return time.Duration(n) * time.Second
	}
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := get(key, fallback.String())
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid %s %q, using %s", key, raw, fallback))
			d = fallback
		}
		return d
	}

	cfg := &Config{
		AdobeClientID:     get("ADOBE_CLIENT_ID", ""),
		AdobeClientSecret: get("ADOBE_CLIENT_SECRET", ""),
		AdobeRegion:       strings.ToUpper(get("ADOBE_REGION", "US")),
		AdobeBaseURL:      get("ADOBE_BASE_URL", ""),
		ConnectTimeout:    millis("ADOBE_CONNECT_TIMEOUT", 4000),
		ReadTimeout:       millis("ADOBE_READ_TIMEOUT", 10000),
		JobTimeout:        seconds("ADOBE_JOB_TIMEOUT", 600),
		PollInterval:      duration("ADOBE_POLL_INTERVAL", 2*time.Second),
		Port:              get("PORT", "8000"),
		LogLevel:          get("LOG_LEVEL", "info"),
		WorkbookCacheTTL:  duration("WORKBOOK_CACHE_TTL", 30*time.Minute),
	}

	rawSize := get("MAX_UPLOAD_SIZE_BYTES", "33554432")
	size, err := strconv.ParseInt(rawSize, 10, 64)
	if err != nil || size <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid MAX_UPLOAD_SIZE_BYTES %q, using 32MiB", rawSize))
		size = 32 << 20
	}
	cfg.MaxUploadSizeBytes = size

	if path := get("ADOBE_CREDENTIALS_FILE", ""); path != "" && (cfg.AdobeClientID == "" || cfg.AdobeClientSecret == "") {
		id, secret, err := readCredentialsFile(path)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			cfg.AdobeClientID, cfg.AdobeClientSecret = id, secret
		}
	}
	return cfg, warnings
}

// ValidateCredentials reports ErrMissingCredentials when the Adobe
// client id or secret is empty.
func (c *Config) ValidateCredentials() error {
	if c.AdobeClientID == "" || c.AdobeClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// credentialsFile is the pdfservices-api-credentials.json layout.
type credentialsFile struct {
	ClientCredentials struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"client_credentials"`
}

func readCredentialsFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading credentials file: %w", err)
	}
	var f credentialsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", "", fmt.Errorf("parsing credentials file %s: %w", path, err)
	}
	if f.ClientCredentials.ClientID == "" || f.ClientCredentials.ClientSecret == "" {
		return "", "", fmt.Errorf("credentials file %s has no client_credentials", path)
	}
	return f.ClientCredentials.ClientID, f.ClientCredentials.ClientSecret, nil
}
