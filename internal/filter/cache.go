package filter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Source loads the current bad-word list from configuration storage.
type Source interface {
	GetBadWords(ctx context.Context) ([]string, error)
}

// Cache holds the latest BadWordSet snapshot. Snapshots are replaced, never
// mutated, so a caller keeps a consistent set for the whole operation.
type Cache struct {
	source Source
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time

	flight   singleflight.Group
	mu       sync.RWMutex
	current  *BadWordSet
	loadedAt time.Time
}

// NewCache creates a snapshot cache. A snapshot older than ttl is reloaded on
// the next Snapshot call.
func NewCache(source Source, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// Snapshot returns the current set, loading it if it is missing or stale.
// When a reload fails and an older snapshot exists, the older one is served.
func (c *Cache) Snapshot(ctx context.Context) (*BadWordSet, error) {
	c.mu.RLock()
	set, loadedAt := c.current, c.loadedAt
	c.mu.RUnlock()

	if set != nil && c.now().Sub(loadedAt) < c.ttl {
		return set, nil
	}

	fresh, err := c.Refresh(ctx)
	if err != nil {
		if set != nil {
			c.log.Warn().Err(err).Msg("bad word reload failed, serving stale snapshot")
			return set, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh loads a new snapshot from the source. Concurrent refreshes share a
// single load.
func (c *Cache) Refresh(ctx context.Context) (*BadWordSet, error) {
	v, err, _ := c.flight.Do("badwords", func() (any, error) {
		words, err := c.source.GetBadWords(ctx)
		if err != nil {
			return nil, err
		}
		set := NewBadWordSet(words)

		c.mu.Lock()
		c.current = set
		c.loadedAt = c.now()
		c.mu.Unlock()

		c.log.Debug().Int("words", set.Len()).Msg("bad word snapshot loaded")
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*BadWordSet), nil
}
