package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golists/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MAX_COMMENT_LENGTH", "BADWORDS_REFRESH", "TRUST_SCORE_FLOOR", "SMTP_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.MaxCommentLength != 2000 {
		t.Errorf("MaxCommentLength = %d, want 2000", cfg.MaxCommentLength)
	}
	if cfg.BadWordsRefresh != 30*time.Second {
		t.Errorf("BadWordsRefresh = %v, want 30s", cfg.BadWordsRefresh)
	}
	if cfg.TrustScoreFloor != -100 {
		t.Errorf("TrustScoreFloor = %d, want -100", cfg.TrustScoreFloor)
	}
	if cfg.IsEmailEnabled() {
		t.Error("IsEmailEnabled() = true, want false by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_SUGGESTION_LENGTH", "80")
	t.Setenv("RECONCILE_INTERVAL", "0")
	t.Setenv("HTTP_RATE_LIMIT", "not-a-number")

	cfg := Load()

	if cfg.MaxSuggestionLength != 80 {
		t.Errorf("MaxSuggestionLength = %d, want 80", cfg.MaxSuggestionLength)
	}
	if cfg.ReconcileInterval != 0 {
		t.Errorf("ReconcileInterval = %v, want 0", cfg.ReconcileInterval)
	}
	if cfg.HTTPRateLimit != 100 {
		t.Errorf("HTTPRateLimit = %d, want fallback 100", cfg.HTTPRateLimit)
	}
}

func TestIsEmailEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"fully configured", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com", SMTPFrom: "noreply@example.com"}, true},
		{"switched off", Config{SMTPEnabled: false, SMTPHost: "smtp.example.com", SMTPFrom: "noreply@example.com"}, false},
		{"missing host", Config{SMTPEnabled: true, SMTPFrom: "noreply@example.com"}, false},
		{"missing from", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEmailEnabled(); got != tt.want {
				t.Errorf("IsEmailEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadModerationConfig_MissingFile(t *testing.T) {
	cfg, err := LoadModerationConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadModerationConfig() error = %v", err)
	}
	if got := cfg.PenaltyScore(models.PenaltyDelete); got != -10 {
		t.Errorf("PenaltyScore(delete) = %d, want -10", got)
	}
	if _, ok := cfg.SeedRateLimits(); ok {
		t.Error("SeedRateLimits() ok = true, want false")
	}
}

func TestLoadModerationConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.yaml")
	data := []byte(`
bad_words:
  - darn
  - heck
penalties:
  edit: -2
rate_limits:
  per_target_minutes: 5
  global_minutes: 1
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadModerationConfig(path)
	if err != nil {
		t.Fatalf("LoadModerationConfig() error = %v", err)
	}

	if len(cfg.BadWords) != 2 {
		t.Errorf("BadWords = %v, want 2 entries", cfg.BadWords)
	}
	if got := cfg.PenaltyScore(models.PenaltyEdit); got != -2 {
		t.Errorf("PenaltyScore(edit) = %d, want -2", got)
	}
	if got := cfg.PenaltyScore(models.PenaltyReport); got != -10 {
		t.Errorf("PenaltyScore(report) = %d, want default -10", got)
	}

	limits, ok := cfg.SeedRateLimits()
	if !ok {
		t.Fatal("SeedRateLimits() ok = false, want true")
	}
	if limits.PerTargetMinutes != 5 || limits.GlobalMinutes == nil || *limits.GlobalMinutes != 1 {
		t.Errorf("SeedRateLimits() = %+v", limits)
	}
	if limits.RejectedCooldownMinutes != nil {
		t.Errorf("RejectedCooldownMinutes = %v, want nil", *limits.RejectedCooldownMinutes)
	}
}

func TestParseModerationConfig_Invalid(t *testing.T) {
	if _, err := ParseModerationConfig([]byte("penalties: [")); err == nil {
		t.Error("ParseModerationConfig() error = nil, want error")
	}
}
