package db

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ModerationStats are the queue sizes exported as gauges.
type ModerationStats struct {
	PendingSuggestions int
	OpenReports        int
	FlaggedComments    int
}

// GetModerationStats counts the moderation queues concurrently.
func (d *DB) GetModerationStats(ctx context.Context) (ModerationStats, error) {
	var stats ModerationStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM comments WHERE kind = 'suggestion' AND suggestion_status = 'pending'
		`).Scan(&stats.PendingSuggestions)
	})
	g.Go(func() error {
		return d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM comment_reports WHERE NOT resolved`).Scan(&stats.OpenReports)
	})
	g.Go(func() error {
		return d.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM comments WHERE is_filtered OR report_count > 0
		`).Scan(&stats.FlaggedComments)
	})

	if err := g.Wait(); err != nil {
		return ModerationStats{}, err
	}
	return stats, nil
}
