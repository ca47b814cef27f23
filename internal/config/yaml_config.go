package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"golists/internal/models"
)

// ModerationConfig represents the structure of the moderation YAML file.
// It seeds the database-backed settings and holds the default penalty scores.
type ModerationConfig struct {
	BadWords   []string          `yaml:"bad_words"`
	Penalties  PenaltyConfig     `yaml:"penalties"`
	RateLimits *RateLimitsConfig `yaml:"rate_limits,omitempty"`
}

// PenaltyConfig holds the default score per moderator action. Scores are
// deductions, so they are normally negative; 0 disables the penalty.
type PenaltyConfig struct {
	Delete int `yaml:"delete"`
	Edit   int `yaml:"edit"`
	Report int `yaml:"report"`
}

// RateLimitsConfig mirrors models.RateLimits in YAML.
type RateLimitsConfig struct {
	PerTargetMinutes        int  `yaml:"per_target_minutes"`
	GlobalMinutes           *int `yaml:"global_minutes,omitempty"`
	RejectedCooldownMinutes *int `yaml:"rejected_cooldown_minutes,omitempty"`
}

// DefaultModerationConfig is used when no file is present.
func DefaultModerationConfig() *ModerationConfig {
	return &ModerationConfig{
		Penalties: PenaltyConfig{Delete: -10, Edit: -5, Report: -10},
	}
}

// LoadModerationConfig loads the moderation YAML file at path.
// A missing file yields the defaults without error.
func LoadModerationConfig(path string) (*ModerationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultModerationConfig(), nil
		}
		return nil, err
	}

	return ParseModerationConfig(data)
}

// ParseModerationConfig decodes YAML, filling unset penalties with defaults.
func ParseModerationConfig(data []byte) (*ModerationConfig, error) {
	cfg := DefaultModerationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PenaltyScore returns the default score for a penalty action.
func (c *ModerationConfig) PenaltyScore(action string) int {
	if c == nil {
		return 0
	}
	switch action {
	case models.PenaltyDelete:
		return c.Penalties.Delete
	case models.PenaltyEdit:
		return c.Penalties.Edit
	case models.PenaltyReport:
		return c.Penalties.Report
	}
	return 0
}

// SeedRateLimits returns the rate limits set in the file, if any.
func (c *ModerationConfig) SeedRateLimits() (models.RateLimits, bool) {
	if c == nil || c.RateLimits == nil {
		return models.RateLimits{}, false
	}
	return models.RateLimits{
		PerTargetMinutes:        c.RateLimits.PerTargetMinutes,
		GlobalMinutes:           c.RateLimits.GlobalMinutes,
		RejectedCooldownMinutes: c.RateLimits.RejectedCooldownMinutes,
	}, true
}
