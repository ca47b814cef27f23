package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"golists/internal/models"
)

// CastVote records userID's helpful vote on a comment and adjusts the
// comment's counters in the same transaction. Repeating a vote is a no-op;
// switching direction moves one count from one side to the other. The
// comment row is locked so concurrent votes on it serialize.
func (d *DB) CastVote(ctx context.Context, commentID, userID uuid.UUID, value int) (models.VoteTally, error) {
	var tally models.VoteTally

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT helpful_up, helpful_down FROM comments WHERE id = $1 FOR UPDATE
		`, commentID).Scan(&tally.HelpfulUp, &tally.HelpfulDown)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCommentNotFound
		}
		if err != nil {
			return err
		}

		var prior int
		err = tx.QueryRow(ctx, `
			SELECT value FROM comment_votes WHERE user_id = $1 AND comment_id = $2
		`, userID, commentID).Scan(&prior)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		tally.UserVote = value
		if prior == value {
			return nil
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO comment_votes (user_id, comment_id, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, comment_id) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, userID, commentID, value); err != nil {
			return err
		}

		up, down := voteDelta(prior, value)
		tally.HelpfulUp += up
		tally.HelpfulDown += down

		_, err = tx.Exec(ctx, `
			UPDATE comments SET helpful_up = $1, helpful_down = $2 WHERE id = $3
		`, tally.HelpfulUp, tally.HelpfulDown, commentID)
		return err
	})
	if err != nil {
		return models.VoteTally{}, err
	}
	return tally, nil
}

// voteDelta returns the counter changes for moving from prior (0 for no
// vote) to next.
func voteDelta(prior, next int) (up, down int) {
	switch prior {
	case models.VoteUp:
		up--
	case models.VoteDown:
		down--
	}
	switch next {
	case models.VoteUp:
		up++
	case models.VoteDown:
		down++
	}
	return up, down
}

// GetUserVote returns userID's vote on a comment, or 0.
func (d *DB) GetUserVote(ctx context.Context, commentID, userID uuid.UUID) (int, error) {
	var value int
	err := d.Pool.QueryRow(ctx, `
		SELECT value FROM comment_votes WHERE user_id = $1 AND comment_id = $2
	`, userID, commentID).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return value, err
}
