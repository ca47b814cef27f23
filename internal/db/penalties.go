package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"golists/internal/models"
)

const penaltyColumns = `id, target_user_id, moderator_id, score, related_comment_id, action, created_at`

func scanPenalty(row pgx.Row) (*models.PenaltyRecord, error) {
	var p models.PenaltyRecord
	if err := row.Scan(
		&p.ID,
		&p.TargetUserID,
		&p.ModeratorID,
		&p.Score,
		&p.RelatedCommentID,
		&p.Action,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPenalty appends a penalty record. There is at most one record per
// comment and action; a repeat returns the existing record with created
// false, so a retried moderator action cannot deduct twice.
func (d *DB) InsertPenalty(ctx context.Context, p *models.PenaltyRecord) (bool, error) {
	inserted, err := scanPenalty(d.Pool.QueryRow(ctx, `
		INSERT INTO penalty_records (target_user_id, moderator_id, score, related_comment_id, action)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (related_comment_id, action) DO NOTHING
		RETURNING `+penaltyColumns,
		p.TargetUserID, p.ModeratorID, p.Score, p.RelatedCommentID, p.Action))
	if err == nil {
		*p = *inserted
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	existing, err := scanPenalty(d.Pool.QueryRow(ctx, `
		SELECT `+penaltyColumns+` FROM penalty_records
		WHERE related_comment_id = $1 AND action = $2
	`, p.RelatedCommentID, p.Action))
	if err != nil {
		return false, err
	}
	*p = *existing
	return false, nil
}

// ListPenalties returns a user's penalty history, newest first.
func (d *DB) ListPenalties(ctx context.Context, userID uuid.UUID) ([]models.PenaltyRecord, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+penaltyColumns+` FROM penalty_records
		WHERE target_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PenaltyRecord
	for rows.Next() {
		p, err := scanPenalty(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}

	return records, rows.Err()
}

// GetTrustScore sums a user's penalties, clamped at floor.
func (d *DB) GetTrustScore(ctx context.Context, userID uuid.UUID, floor int) (models.TrustScore, error) {
	score := models.TrustScore{UserID: userID}
	err := d.Pool.QueryRow(ctx, `
		SELECT GREATEST($2::int, COALESCE(SUM(score), 0)::int), COUNT(*)
		FROM penalty_records WHERE target_user_id = $1
	`, userID, floor).Scan(&score.Score, &score.Penalties)
	return score, err
}
