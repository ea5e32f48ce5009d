package designs

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/starbridge/internal/observe"
)

// SortKeyFunc derives an ordering key for a record. It receives the full
// table so keys may be built from related records (e.g. an ancestor chain).
type SortKeyFunc func(rec Record, table *Table) string

// RetrieverConfig identifies the entity kind a [Retriever] serves.
type RetrieverConfig struct {
	// Name labels the kind in logs and metrics.
	Name string

	// Path is the data source resource path of the full design list.
	Path string

	// IDField and NameField name the id and display-name attributes.
	IDField   string
	NameField string
}

// RetrieverOption configures a [Retriever].
type RetrieverOption func(*retrieverOptions)

type retrieverOptions struct {
	sortKey   SortKeyFunc
	normalize func(string) string
	interval  time.Duration
	timeout   time.Duration
	metrics   *observe.Metrics
	now       func() time.Time
}

// WithSortKey sets the default ordering for [Retriever.InfosByName].
func WithSortKey(fn SortKeyFunc) RetrieverOption {
	return func(o *retrieverOptions) { o.sortKey = fn }
}

// WithNormalizer sets a hook applied to both the query and every candidate
// name before comparing (e.g. stripping punctuation).
func WithNormalizer(fn func(string) string) RetrieverOption {
	return func(o *retrieverOptions) { o.normalize = fn }
}

// WithInterval sets the cache refresh interval.
func WithInterval(d time.Duration) RetrieverOption {
	return func(o *retrieverOptions) { o.interval = d }
}

// WithTimeout bounds a single fetch of the design list.
func WithTimeout(d time.Duration) RetrieverOption {
	return func(o *retrieverOptions) { o.timeout = d }
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m *observe.Metrics) RetrieverOption {
	return func(o *retrieverOptions) { o.metrics = m }
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) RetrieverOption {
	return func(o *retrieverOptions) { o.now = now }
}

// Retriever provides lookups over the cached designs of one entity kind.
// It is safe for concurrent use.
//
// Every query accepts an optional externally supplied *Table. When non-nil
// it is used instead of the cached one, which lets callers join several
// kinds against a single consistent snapshot without refetching.
type Retriever struct {
	cache     *Cache
	name      string
	nameField string
	sortKey   SortKeyFunc
	normalize func(string) string
	metrics   *observe.Metrics
}

// NewRetriever creates a [Retriever] and its backing [Cache].
func NewRetriever(src Source, cfg RetrieverConfig, opts ...RetrieverOption) *Retriever {
	var o retrieverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	cache := NewCache(src, CacheConfig{
		Name:      cfg.Name,
		Path:      cfg.Path,
		IDField:   cfg.IDField,
		NameField: cfg.NameField,
		Interval:  o.interval,
		Timeout:   o.timeout,
		Metrics:   o.metrics,
		Now:       o.now,
	})
	return &Retriever{
		cache:     cache,
		name:      cfg.Name,
		nameField: cfg.NameField,
		sortKey:   o.sortKey,
		normalize: o.normalize,
		metrics:   o.metrics,
	}
}

// Name returns the entity kind label.
func (r *Retriever) Name() string { return r.name }

// Cache exposes the backing cache, e.g. for readiness checks.
func (r *Retriever) Cache() *Cache { return r.cache }

// Table returns data when non-nil, otherwise the cached table.
func (r *Retriever) Table(ctx context.Context, data *Table) (*Table, error) {
	if data != nil {
		return data, nil
	}
	return r.cache.Table(ctx)
}

// ByID returns the record with the given id.
func (r *Retriever) ByID(ctx context.Context, id string, data *Table) (Record, bool) {
	t, err := r.Table(ctx, data)
	if err != nil {
		slog.Warn("designs: lookup without data", "kind", r.name, "err", err)
		return nil, false
	}
	rec, ok := t.Get(id)
	r.recordLookup(ctx, ok)
	return rec, ok
}

// ByName returns the first record whose name matches (see [Retriever.IDsByName]).
// With several matches, the first in source order wins.
func (r *Retriever) ByName(ctx context.Context, name string, data *Table) (Record, bool) {
	t, err := r.Table(ctx, data)
	if err != nil {
		slog.Warn("designs: lookup without data", "kind", r.name, "err", err)
		return nil, false
	}
	ids := r.IDsByName(ctx, name, t)
	if len(ids) == 0 {
		return nil, false
	}
	return t.Get(ids[0])
}

// IDsByName returns the ids of all records whose name contains name as a
// case-insensitive substring. With a normalizer configured, both sides are
// normalized first and an exact normalized match also counts. Ids are
// returned in table source order.
func (r *Retriever) IDsByName(ctx context.Context, name string, data *Table) []string {
	t, err := r.Table(ctx, data)
	if err != nil {
		slog.Warn("designs: lookup without data", "kind", r.name, "err", err)
		return nil
	}

	query := strings.ToLower(name)
	var normQuery string
	if r.normalize != nil {
		normQuery = strings.ToLower(r.normalize(name))
	}

	var ids []string
	for _, id := range t.order {
		candidate, ok := t.byID[id].Get(t.nameField)
		if !ok {
			continue
		}
		if r.matches(query, normQuery, candidate) {
			ids = append(ids, id)
		}
	}
	r.recordLookup(ctx, len(ids) > 0)
	return ids
}

func (r *Retriever) matches(query, normQuery, candidate string) bool {
	if strings.Contains(strings.ToLower(candidate), query) {
		return true
	}
	if r.normalize == nil || normQuery == "" {
		return false
	}
	normCandidate := strings.ToLower(r.normalize(candidate))
	return normCandidate == normQuery || strings.Contains(normCandidate, normQuery)
}

// InfosByName resolves all records matching name. When sortKey is nil the
// retriever's default sort key is used; when both are nil, records stay in
// match order. Sorting is stable.
func (r *Retriever) InfosByName(ctx context.Context, name string, data *Table, sortKey SortKeyFunc) []Record {
	t, err := r.Table(ctx, data)
	if err != nil {
		slog.Warn("designs: lookup without data", "kind", r.name, "err", err)
		return nil
	}
	ids := r.IDsByName(ctx, name, t)
	recs := make([]Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := t.Get(id); ok {
			recs = append(recs, rec)
		}
	}

	if sortKey == nil {
		sortKey = r.sortKey
	}
	if sortKey != nil {
		keys := make(map[string]string, len(recs))
		for _, rec := range recs {
			keys[rec.String(t.idField)] = sortKey(rec, t)
		}
		slices.SortStableFunc(recs, func(a, b Record) int {
			return cmp.Compare(keys[a.String(t.idField)], keys[b.String(t.idField)])
		})
	}
	return recs
}

// Suggest returns up to limit display names most similar to name, best
// first. Names that sound like name (see soundsAlike) and reach
// phoneticFloor rank ahead of the rest; within each group names are
// ordered by Jaro-Winkler similarity. Used to answer lookup misses.
func (r *Retriever) Suggest(ctx context.Context, name string, limit int) []string {
	t, err := r.Table(ctx, nil)
	if err != nil || limit <= 0 {
		return nil
	}

	type scored struct {
		name     string
		score    float64
		phonetic bool
	}
	query := strings.ToLower(name)
	seen := make(map[string]bool)
	var candidates []scored
	for _, id := range t.order {
		n, ok := t.byID[id].Get(t.nameField)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		score := matchr.JaroWinkler(query, strings.ToLower(n), false)
		candidates = append(candidates, scored{
			name:     n,
			score:    score,
			phonetic: score >= phoneticFloor && soundsAlike(query, n),
		})
	}
	slices.SortStableFunc(candidates, func(a, b scored) int {
		if a.phonetic != b.phonetic {
			if a.phonetic {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.name)
	}
	return out
}

// Refresh forces the backing cache to refetch.
func (r *Retriever) Refresh(ctx context.Context) error {
	return r.cache.Update(ctx)
}

func (r *Retriever) recordLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.metrics.DesignLookups.Add(ctx, 1, metric.WithAttributes(
		observe.Attr("kind", r.name),
		observe.Attr("result", result),
	))
}
