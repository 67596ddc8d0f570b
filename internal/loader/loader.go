// Package loader memoizes raw tables per source location for the lifetime of the process.
package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"happydash/domain/happiness"
	"happydash/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Stats counts loader activity
type Stats struct {
	Loads    int64 `json:"loads"`
	Failures int64 `json:"failures"`
	Hits     int64 `json:"hits"`
	Cached   int   `json:"cached"`
}

// Loader caches the table of each source after its first successful load.
// Failed loads are not cached, so the next call tries again.
type Loader struct {
	logger *zap.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	tables map[string]*happiness.Table

	loads    atomic.Int64
	failures atomic.Int64
	hits     atomic.Int64
}

// New creates an empty loader
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
		tables: make(map[string]*happiness.Table),
	}
}

// Table returns the cached table of src, loading it on first use.
// Concurrent first calls for the same location share one load. The shared load does not
// inherit the cancellation of the caller that started it; a caller whose ctx ends stops
// waiting and gets ctx.Err() while the load continues for the others.
func (l *Loader) Table(ctx context.Context, src ports.TableSource) (*happiness.Table, error) {
	key := src.Location()

	l.mu.RLock()
	table, ok := l.tables[key]
	l.mu.RUnlock()
	if ok {
		l.hits.Add(1)
		return table, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		l.mu.RLock()
		cached, ok := l.tables[key]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}

		start := time.Now()
		l.loads.Add(1)
		loaded, err := src.Load(loadCtx)
		if err != nil {
			l.failures.Add(1)
			l.logger.Warn("dataset load failed", zap.String("location", key), zap.Error(err))
			return nil, err
		}

		l.mu.Lock()
		l.tables[key] = loaded
		l.mu.Unlock()

		l.logger.Info("dataset cached",
			zap.String("location", key),
			zap.Int("rows", loaded.Len()),
			zap.Int("countries", len(loaded.Countries())),
			zap.Int("years", len(loaded.Years())),
			zap.Duration("elapsed", time.Since(start)))
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("dataset load shared", zap.String("location", key))
		}
		return res.Val.(*happiness.Table), nil
	}
}

// Stats returns a snapshot of the counters
func (l *Loader) Stats() Stats {
	l.mu.RLock()
	cached := len(l.tables)
	l.mu.RUnlock()
	return Stats{
		Loads:    l.loads.Load(),
		Failures: l.failures.Load(),
		Hits:     l.hits.Load(),
		Cached:   cached,
	}
}
