// Package ratelimit enforces posting cooldowns. There is no counter of its
// own: a user's most recent comment is the rate-limit state, so inserting a
// comment is what records the attempt.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"golists/internal/models"
)

// Scopes name which cooldown denied a request.
const (
	ScopeTarget = "target"
	ScopeGlobal = "global"
)

// History answers "when did this user last comment".
type History interface {
	// LastCommentAt returns the time of the user's latest comment on target.
	LastCommentAt(ctx context.Context, userID, targetID uuid.UUID) (time.Time, bool, error)
	// LastCommentAtAny returns the time of the user's latest comment anywhere.
	LastCommentAtAny(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
}

// Settings supplies the admin-configured cooldowns.
type Settings interface {
	GetRateLimits(ctx context.Context) (models.RateLimits, error)
}

// Admit is run by the store inside the same atomic unit that inserts a
// comment. Returning an error aborts the insert.
type Admit func(ctx context.Context, h History) error

// Decision is the outcome of a check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Scope      string
}

// Limiter checks both cooldowns against a History.
type Limiter struct {
	settings Settings
}

// New creates a limiter. Settings are read on every check.
func New(settings Settings) *Limiter {
	return &Limiter{settings: settings}
}

// Limits reads the current configuration.
func (l *Limiter) Limits(ctx context.Context) (models.RateLimits, error) {
	limits, err := l.settings.GetRateLimits(ctx)
	if err != nil {
		return models.RateLimits{}, fmt.Errorf("load rate limits: %w", err)
	}
	return limits, nil
}

// Check decides whether userID may post on targetID at now. Both the
// per-target and, when configured, the global cooldown must have elapsed.
// Check has no side effects.
func (l *Limiter) Check(ctx context.Context, h History, limits models.RateLimits, userID, targetID uuid.UUID, now time.Time) (Decision, error) {
	var target, global *time.Time

	if limits.PerTargetMinutes > 0 {
		last, ok, err := h.LastCommentAt(ctx, userID, targetID)
		if err != nil {
			return Decision{}, fmt.Errorf("last comment on target: %w", err)
		}
		if ok {
			target = &last
		}
	}

	if window, ok := limits.Global(); ok && window > 0 {
		last, found, err := h.LastCommentAtAny(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("last comment: %w", err)
		}
		if found {
			global = &last
		}
	}

	return Evaluate(limits, target, global, now), nil
}

// Evaluate is the pure decision over the last comment times. When both
// cooldowns deny, the longer wait is reported.
func Evaluate(limits models.RateLimits, lastOnTarget, lastAnywhere *time.Time, now time.Time) Decision {
	d := Decision{Allowed: true}

	if lastOnTarget != nil {
		if wait := remaining(*lastOnTarget, limits.PerTarget(), now); wait > 0 {
			d = Decision{RetryAfter: wait, Scope: ScopeTarget}
		}
	}

	if window, ok := limits.Global(); ok && lastAnywhere != nil {
		if wait := remaining(*lastAnywhere, window, now); wait > 0 && wait > d.RetryAfter {
			d = Decision{RetryAfter: wait, Scope: ScopeGlobal}
		}
	}

	return d
}

func remaining(last time.Time, window time.Duration, now time.Time) time.Duration {
	if window <= 0 {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
