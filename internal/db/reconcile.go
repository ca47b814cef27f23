package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ReconcileResult counts the comments whose denormalized counters were repaired.
type ReconcileResult struct {
	VoteCounters   int64
	ReportCounters int64
}

// ReconcileCounters recomputes helpful and report counts from the vote and
// report tables, correcting any drift. Both passes run in one transaction.
func (d *DB) ReconcileCounters(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		votes, err := tx.Exec(ctx, `
			UPDATE comments c
			SET helpful_up = t.up, helpful_down = t.down
			FROM (
				SELECT c2.id,
					COUNT(v.value) FILTER (WHERE v.value = 1) AS up,
					COUNT(v.value) FILTER (WHERE v.value = -1) AS down
				FROM comments c2
				LEFT JOIN comment_votes v ON v.comment_id = c2.id
				GROUP BY c2.id
			) t
			WHERE c.id = t.id AND (c.helpful_up <> t.up OR c.helpful_down <> t.down)
		`)
		if err != nil {
			return err
		}
		result.VoteCounters = votes.RowsAffected()

		reports, err := tx.Exec(ctx, `
			UPDATE comments c
			SET report_count = t.open
			FROM (
				SELECT c2.id, COUNT(r.id) FILTER (WHERE NOT r.resolved) AS open
				FROM comments c2
				LEFT JOIN comment_reports r ON r.comment_id = c2.id
				GROUP BY c2.id
			) t
			WHERE c.id = t.id AND c.report_count <> t.open
		`)
		if err != nil {
			return err
		}
		result.ReportCounters = reports.RowsAffected()
		return nil
	})
	return result, err
}
