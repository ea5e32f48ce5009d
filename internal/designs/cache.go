package designs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/MrWong99/starbridge/internal/observe"
)

// ErrNoData is returned by [Cache.Table] when no table has ever been fetched
// successfully. Once a table exists, fetch failures are absorbed and the
// previous table keeps being served.
var ErrNoData = errors.New("designs: no data available")

const (
	defaultInterval = 10 * time.Minute
	defaultTimeout  = 15 * time.Second
)

// Source yields raw design records for a resource path. Implementations must
// respect ctx cancellation.
type Source interface {
	Fetch(ctx context.Context, path string) ([]Record, error)
}

// CacheConfig describes one cached design table.
type CacheConfig struct {
	// Name labels the entity kind in logs and metrics (e.g. "training").
	Name string

	// Path is the resource path passed to [Source.Fetch].
	Path string

	// IDField and NameField name the id and display-name attributes.
	IDField   string
	NameField string

	// Interval is the maximum table age before a read triggers a refetch.
	// Default: 10 minutes.
	Interval time.Duration

	// Timeout bounds a single fetch. Default: 15 seconds.
	Timeout time.Duration

	// Metrics receives refresh instrumentation. Default: [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Cache memoizes the design table of one entity kind and refreshes it when
// it becomes older than the configured interval.
//
// Readers always observe a complete table: a refresh builds the new table
// off to the side and publishes it with an atomic swap. At most one fetch is
// in flight per cache; concurrent callers share its result. A caller that
// already has a stale table available gets it immediately while another
// caller's refresh is running.
type Cache struct {
	src       Source
	name      string
	path      string
	idField   string
	nameField string
	interval  time.Duration
	timeout   time.Duration
	metrics   *observe.Metrics
	now       func() time.Time

	table      atomic.Pointer[Table]
	refreshing atomic.Bool
	group      singleflight.Group
}

// NewCache creates a [Cache] reading from src. No fetch happens until the
// first call to [Cache.Table] or [Cache.Update].
func NewCache(src Source, cfg CacheConfig) *Cache {
	c := &Cache{
		src:       src,
		name:      cfg.Name,
		path:      cfg.Path,
		idField:   cfg.IDField,
		nameField: cfg.NameField,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
	}
	if c.interval <= 0 {
		c.interval = defaultInterval
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Name returns the entity kind label.
func (c *Cache) Name() string { return c.name }

// Table returns the current snapshot, fetching it first when none exists or
// the existing one is stale. A failed refresh with a previous table on hand
// returns the previous table and a nil error.
func (c *Cache) Table(ctx context.Context) (*Table, error) {
	cur := c.table.Load()
	if cur != nil && c.now().Sub(cur.fetchedAt) < c.interval {
		return cur, nil
	}
	if cur != nil && c.refreshing.Load() {
		return cur, nil
	}

	t, err := c.refresh(ctx)
	if err != nil {
		if cur != nil {
			return cur, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	return t, nil
}

// Update forces a refetch regardless of the table's age. On failure the
// previous table stays in place and the error is returned.
func (c *Cache) Update(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

// Peek returns the current snapshot without triggering a fetch. It returns
// nil when nothing has been fetched yet.
func (c *Cache) Peek() *Table {
	return c.table.Load()
}

// refresh joins or starts the single in-flight fetch for this cache.
func (c *Cache) refresh(ctx context.Context) (*Table, error) {
	ch := c.group.DoChan(c.path, func() (any, error) {
		c.refreshing.Store(true)
		defer c.refreshing.Store(false)

		// Shared by all waiters: detached from the starting caller's cancellation.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch retrieves and publishes a new table.
func (c *Cache) fetch(ctx context.Context) (*Table, error) {
	kind := metric.WithAttributes(observe.Attr("kind", c.name))
	start := time.Now()

	records, err := c.src.Fetch(ctx, c.path)
	c.metrics.DesignRefreshDuration.Record(ctx, time.Since(start).Seconds(), kind)
	if err != nil {
		c.metrics.DesignFetchErrors.Add(ctx, 1, kind)
		slog.Warn("designs: fetch failed, keeping previous table",
			"kind", c.name,
			"path", c.path,
			"err", err,
		)
		return nil, fmt.Errorf("designs: fetch %s: %w", c.name, err)
	}

	t := NewTable(records, c.idField, c.nameField)
	t.fetchedAt = c.now()
	if t.Skipped() > 0 {
		slog.Debug("designs: skipped malformed records",
			"kind", c.name,
			"skipped", t.Skipped(),
		)
	}

	c.table.Store(t)
	c.metrics.DesignTableSize.Record(ctx, int64(t.Len()), kind)
	slog.Debug("designs: table refreshed", "kind", c.name, "records", t.Len())
	return t, nil
}
