// Package dedup detects near-identical pending suggestions on a list.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"golists/internal/models"
)

// ErrNoMatch is returned by a Finder when nothing matches.
var ErrNoMatch = errors.New("no matching suggestion")

// Normalize reduces a suggestion title to its comparison form: NFC, trimmed,
// case-folded, internal whitespace collapsed to single spaces and leading or
// trailing punctuation removed.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	s = cases.Fold().String(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// Finder looks up suggestions by normalized content.
type Finder interface {
	// FindPendingSuggestion returns the pending suggestion on listID whose
	// normalized content equals normalized, or ErrNoMatch.
	FindPendingSuggestion(ctx context.Context, listID uuid.UUID, normalized string) (*models.Comment, error)
	// LastRejectedAt returns when a suggestion with this normalized content
	// was last rejected on listID.
	LastRejectedAt(ctx context.Context, listID uuid.UUID, normalized string) (time.Time, bool, error)
}

// Deduplicator is the fast pre-check in front of the storage constraint.
type Deduplicator struct {
	finder Finder
}

// New creates a Deduplicator.
func New(finder Finder) *Deduplicator {
	return &Deduplicator{finder: finder}
}

// FindDuplicate returns the id of a pending suggestion on listID that
// normalizes to the same text as title.
func (d *Deduplicator) FindDuplicate(ctx context.Context, listID uuid.UUID, title string) (uuid.UUID, bool, error) {
	normalized := Normalize(title)
	if normalized == "" {
		return uuid.Nil, false, nil
	}

	existing, err := d.finder.FindPendingSuggestion(ctx, listID, normalized)
	if errors.Is(err, ErrNoMatch) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find pending suggestion: %w", err)
	}
	return existing.ID, true, nil
}

// RejectedCooldown returns the remaining wait before title may be suggested
// again on listID, if it was rejected less than cooldown ago.
func (d *Deduplicator) RejectedCooldown(ctx context.Context, listID uuid.UUID, title string, cooldown time.Duration, now time.Time) (time.Duration, error) {
	if cooldown <= 0 {
		return 0, nil
	}
	last, ok, err := d.finder.LastRejectedAt(ctx, listID, Normalize(title))
	if err != nil {
		return 0, fmt.Errorf("last rejection: %w", err)
	}
	if !ok {
		return 0, nil
	}
	if elapsed := now.Sub(last); elapsed < cooldown {
		return cooldown - elapsed, nil
	}
	return 0, nil
}
