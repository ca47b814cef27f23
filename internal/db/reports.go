package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"golists/internal/models"
)

const reportColumns = `id, comment_id, reporter_id, reason, resolved, resolution,
	resolved_by, resolved_at, created_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	err := row.Scan(
		&r.ID,
		&r.CommentID,
		&r.ReporterID,
		&r.Reason,
		&r.Resolved,
		&r.Resolution,
		&r.ResolvedBy,
		&r.ResolvedAt,
		&r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReport files a report. A reporter's second open report on the same
// comment is absorbed: the existing report is returned with created false
// and the comment's report count is unchanged.
func (d *DB) CreateReport(ctx context.Context, r *models.Report) (bool, error) {
	created := false

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM comments WHERE id = $1 FOR UPDATE`, r.CommentID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCommentNotFound
		}
		if err != nil {
			return err
		}

		existing, err := scanReport(tx.QueryRow(ctx, `
			SELECT `+reportColumns+` FROM comment_reports
			WHERE comment_id = $1 AND reporter_id = $2 AND NOT resolved
		`, r.CommentID, r.ReporterID))
		if err == nil {
			*r = *existing
			return nil
		}
		if !errors.Is(err, models.ErrReportNotFound) {
			return err
		}

		inserted, err := scanReport(tx.QueryRow(ctx, `
			INSERT INTO comment_reports (comment_id, reporter_id, reason)
			VALUES ($1, $2, $3)
			RETURNING `+reportColumns,
			r.CommentID, r.ReporterID, r.Reason))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE comments SET report_count = report_count + 1 WHERE id = $1
		`, r.CommentID); err != nil {
			return err
		}

		*r = *inserted
		created = true
		return nil
	})
	return created, err
}

// GetReport retrieves a report by ID.
func (d *DB) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return scanReport(d.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM comment_reports WHERE id = $1`, id))
}

// ResolveReport marks a report resolved and releases its hold on the
// comment's report count. If the report was already resolved it is
// returned unchanged with changed false.
func (d *DB) ResolveReport(ctx context.Context, id, resolverID uuid.UUID, resolution string) (*models.Report, bool, error) {
	var (
		report  *models.Report
		changed bool
	)

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		r, err := scanReport(tx.QueryRow(ctx, `
			UPDATE comment_reports
			SET resolved = TRUE, resolution = $1, resolved_by = $2, resolved_at = NOW()
			WHERE id = $3 AND NOT resolved
			RETURNING `+reportColumns,
			resolution, resolverID, id))
		if errors.Is(err, models.ErrReportNotFound) {
			report, err = scanReport(tx.QueryRow(ctx,
				`SELECT `+reportColumns+` FROM comment_reports WHERE id = $1`, id))
			return err
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE comments SET report_count = GREATEST(report_count - 1, 0) WHERE id = $1
		`, r.CommentID); err != nil {
			return err
		}

		report, changed = r, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return report, changed, nil
}

// ListOpenReports returns unresolved reports, oldest first.
func (d *DB) ListOpenReports(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+reportColumns+` FROM comment_reports
		WHERE NOT resolved
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}
