package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"golists/internal/filter"
)

// WordRefresher reloads the bad-word snapshot. *filter.Cache implements it.
type WordRefresher interface {
	Refresh(ctx context.Context) (*filter.BadWordSet, error)
}

// BadWordRefresher keeps the filter snapshot warm so an admin change made on
// another replica reaches this one within one interval.
type BadWordRefresher struct {
	words    WordRefresher
	interval time.Duration
	log      zerolog.Logger
}

// NewBadWordRefresher creates a new refresher.
func NewBadWordRefresher(words WordRefresher, interval time.Duration, log zerolog.Logger) *BadWordRefresher {
	return &BadWordRefresher{words: words, interval: interval, log: log}
}

// Start refreshes once, then on every tick until ctx is cancelled.
func (r *BadWordRefresher) Start(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("bad word refresher started")

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("bad word refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *BadWordRefresher) refresh(ctx context.Context) {
	set, err := r.words.Refresh(ctx)
	if err != nil {
		// The cache keeps serving the previous snapshot.
		r.log.Warn().Err(err).Msg("bad word refresh failed")
		return
	}
	r.log.Debug().Int("words", set.Len()).Msg("bad words refreshed")
}
