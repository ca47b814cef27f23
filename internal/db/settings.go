package db

import (
	"context"
	"strings"

	"golists/internal/models"
)

// GetRateLimits reads the posting cooldowns.
func (d *DB) GetRateLimits(ctx context.Context) (models.RateLimits, error) {
	var limits models.RateLimits
	err := d.Pool.QueryRow(ctx, `
		SELECT rate_limit_minutes, global_rate_limit_minutes, rejected_cooldown_minutes
		FROM moderation_settings
	`).Scan(&limits.PerTargetMinutes, &limits.GlobalMinutes, &limits.RejectedCooldownMinutes)
	return limits, err
}

// SetRateLimits replaces the posting cooldowns.
func (d *DB) SetRateLimits(ctx context.Context, limits models.RateLimits) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO moderation_settings (id, rate_limit_minutes, global_rate_limit_minutes, rejected_cooldown_minutes)
		VALUES (TRUE, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			rate_limit_minutes = EXCLUDED.rate_limit_minutes,
			global_rate_limit_minutes = EXCLUDED.global_rate_limit_minutes,
			rejected_cooldown_minutes = EXCLUDED.rejected_cooldown_minutes,
			updated_at = NOW()
	`, limits.PerTargetMinutes, limits.GlobalMinutes, limits.RejectedCooldownMinutes)
	return err
}

// GetBadWords returns the configured bad-word list.
func (d *DB) GetBadWords(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx, `SELECT word FROM bad_words ORDER BY word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// AddBadWord adds a word to the filter list. Words are stored lowercased.
func (d *DB) AddBadWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return models.ErrInvalidBadWord
	}
	_, err := d.Pool.Exec(ctx, `INSERT INTO bad_words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING`, word)
	return err
}

// RemoveBadWord deletes a word from the filter list. It returns false if
// the word was not present.
func (d *DB) RemoveBadWord(ctx context.Context, word string) (bool, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	result, err := d.Pool.Exec(ctx, `DELETE FROM bad_words WHERE word = $1`, word)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
