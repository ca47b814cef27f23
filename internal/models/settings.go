package models

import "time"

// RateLimits holds the admin-configurable posting cooldowns, in minutes.
// A nil pointer means the limit is not configured.
type RateLimits struct {
	PerTargetMinutes        int  `json:"per_target_minutes"`
	GlobalMinutes           *int `json:"global_minutes"`
	RejectedCooldownMinutes *int `json:"rejected_cooldown_minutes"`
}

// PerTarget returns the per-target cooldown as a duration.
func (r RateLimits) PerTarget() time.Duration {
	return time.Duration(r.PerTargetMinutes) * time.Minute
}

// Global returns the global cooldown and whether it is configured.
func (r RateLimits) Global() (time.Duration, bool) {
	if r.GlobalMinutes == nil {
		return 0, false
	}
	return time.Duration(*r.GlobalMinutes) * time.Minute, true
}

// RejectedCooldown returns the resubmission cooldown for rejected
// suggestions and whether it is configured.
func (r RateLimits) RejectedCooldown() (time.Duration, bool) {
	if r.RejectedCooldownMinutes == nil {
		return 0, false
	}
	return time.Duration(*r.RejectedCooldownMinutes) * time.Minute, true
}
