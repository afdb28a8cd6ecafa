package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, warnings := FromEnv(envMap(nil))
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if cfg.AdobeRegion != "US" {
		t.Errorf("region: got %q, want US", cfg.AdobeRegion)
	}
	if cfg.ConnectTimeout != 4*time.Second {
		t.Errorf("connect timeout: got %v", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout: got %v", cfg.ReadTimeout)
	}
	if cfg.JobTimeout != 600*time.Second {
		t.Errorf("job timeout: got %v", cfg.JobTimeout)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("poll interval: got %v", cfg.PollInterval)
	}
	if cfg.Port != "8000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.MaxUploadSizeBytes != 32<<20 {
		t.Errorf("max upload: got %d", cfg.MaxUploadSizeBytes)
	}
	if cfg.WorkbookCacheTTL != 30*time.Minute {
		t.Errorf("cache ttl: got %v", cfg.WorkbookCacheTTL)
	}
	if err := cfg.ValidateCredentials(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("ValidateCredentials: got %v, want ErrMissingCredentials", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, warnings := FromEnv(envMap(map[string]string{
		"ADOBE_CLIENT_ID":       "id",
		"ADOBE_CLIENT_SECRET":   "secret",
		"ADOBE_REGION":          "eu",
		"ADOBE_CONNECT_TIMEOUT": "1500",
		"ADOBE_JOB_TIMEOUT":     "30",
		"ADOBE_POLL_INTERVAL":   "500ms",
		"PORT":                  "9090",
		"LOG_LEVEL":             "debug",
	}))
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if cfg.AdobeRegion != "EU" {
		t.Errorf("region: got %q, want EU", cfg.AdobeRegion)
	}
	if cfg.ConnectTimeout != 1500*time.Millisecond {
		t.Errorf("connect timeout: got %v", cfg.ConnectTimeout)
	}
	if cfg.JobTimeout != 30*time.Second {
		t.Errorf("job timeout: got %v", cfg.JobTimeout)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("poll interval: got %v", cfg.PollInterval)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Errorf("port/log level: got %q/%q", cfg.Port, cfg.LogLevel)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		t.Errorf("ValidateCredentials: %v", err)
	}
}

func TestFromEnvInvalidValues(t *testing.T) {
	cfg, warnings := FromEnv(envMap(map[string]string{
		"ADOBE_READ_TIMEOUT":    "soon",
		"ADOBE_POLL_INTERVAL":   "-1s",
		"MAX_UPLOAD_SIZE_BYTES": "big",
	}))
	if len(warnings) != 3 {
		t.Errorf("warnings: got %d (%v), want 3", len(warnings), warnings)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout fallback: got %v", cfg.ReadTimeout)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("poll interval fallback: got %v", cfg.PollInterval)
	}
	if cfg.MaxUploadSizeBytes != 32<<20 {
		t.Errorf("max upload fallback: got %d", cfg.MaxUploadSizeBytes)
	}
}

func TestFromEnvCredentialsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfservices-api-credentials.json")
	body := `{"client_credentials":{"client_id":"file-id","client_secret":"file-secret"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, warnings := FromEnv(envMap(map[string]string{"ADOBE_CREDENTIALS_FILE": path}))
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if cfg.AdobeClientID != "file-id" || cfg.AdobeClientSecret != "file-secret" {
		t.Errorf("credentials: got %q/%q", cfg.AdobeClientID, cfg.AdobeClientSecret)
	}
}

func TestFromEnvCredentialsFileMissing(t *testing.T) {
	cfg, warnings := FromEnv(envMap(map[string]string{
		"ADOBE_CREDENTIALS_FILE": filepath.Join(t.TempDir(), "nope.json"),
	}))
	if len(warnings) != 1 {
		t.Errorf("warnings: got %v, want one", warnings)
	}
	if cfg.ValidateCredentials() == nil {
		t.Error("expected missing credentials")
	}
}
