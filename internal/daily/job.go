package daily

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/MrWong99/starbridge/internal/designs"
	"github.com/MrWong99/starbridge/internal/observe"
)

const defaultFetchTimeout = 15 * time.Second

// SettingsSource yields the latest game settings record.
type SettingsSource interface {
	LatestSettings(ctx context.Context) (designs.Record, error)
}

// Announcer publishes a changed snapshot. [*Publisher] implements it.
type Announcer interface {
	Publish(ctx context.Context, info Info) (int, error)
}

// Decision is the outcome of comparing the fetched snapshot with the
// persisted one.
type Decision struct {
	Changed     bool
	Fetched     Info
	RetrievedAt time.Time
	Persisted   Info
	PersistedAt *time.Time
}

// RunResult summarizes one [Job.Run].
type RunResult struct {
	// Changed reports whether the fetched info was treated as new.
	Changed bool

	// Posted counts channels the new info was published to.
	Posted int
}

// Job runs change detection: fetch, compare, persist and publish. Runs
// are serialized.
type Job struct {
	mu        sync.Mutex
	source    SettingsSource
	repo      *Repository
	announcer Announcer
	timeout   time.Duration
	metrics   *observe.Metrics
	now       func() time.Time
}

// JobOption configures a [Job].
type JobOption func(*Job)

// WithAnnouncer publishes changed info through a. Without one, Run only
// persists.
func WithAnnouncer(a Announcer) JobOption {
	return func(j *Job) { j.announcer = a }
}

// WithFetchTimeout bounds the settings fetch. Default: 15 seconds.
func WithFetchTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		if d > 0 {
			j.timeout = d
		}
	}
}

// WithJobMetrics overrides the metrics sink.
func WithJobMetrics(m *observe.Metrics) JobOption {
	return func(j *Job) { j.metrics = m }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) JobOption {
	return func(j *Job) { j.now = now }
}

// NewJob creates a [Job] fetching from source and persisting through repo.
func NewJob(source SettingsSource, repo *Repository, opts ...JobOption) *Job {
	j := &Job{
		source:  source,
		repo:    repo,
		timeout: defaultFetchTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(j)
	}
	if j.metrics == nil {
		j.metrics = observe.DefaultMetrics()
	}
	return j
}

// Check fetches the latest info and compares it with the persisted
// snapshot without changing anything.
func (j *Job) Check(ctx context.Context) (Decision, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	raw, err := j.source.LatestSettings(fetchCtx)
	if err != nil {
		return Decision{}, fmt.Errorf("daily: fetch settings: %w", err)
	}
	d := Decision{
		Fetched:     Convert(raw),
		RetrievedAt: j.now().UTC(),
	}
	d.Persisted, d.PersistedAt, err = j.repo.Load(ctx)
	if err != nil {
		return Decision{}, err
	}
	if d.PersistedAt != nil {
		utc := d.PersistedAt.UTC()
		d.PersistedAt = &utc
	}
	d.Changed = HasChanged(d.Fetched, d.RetrievedAt, d.Persisted, d.PersistedAt)
	return d, nil
}

// Run performs one detection pass. When the info changed it is persisted
// and, if an [Announcer] is configured, published. A failed save is logged
// but does not stop publication.
func (j *Job) Run(ctx context.Context) (RunResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ctx = observe.WithRunID(ctx, uuid.NewString())
	ctx, span := observe.StartSpan(ctx, "daily.run")
	defer span.End()
	log := observe.Logger(ctx)

	d, err := j.Check(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.metrics.RecordDailyRun(ctx, "error")
		log.Warn("daily: run failed", "err", err)
		return RunResult{}, err
	}
	span.SetAttributes(attribute.Bool("daily.changed", d.Changed))
	if !d.Changed {
		j.metrics.RecordDailyRun(ctx, "unchanged")
		log.Debug("daily: no change")
		return RunResult{}, nil
	}

	res := RunResult{Changed: true}
	if !j.repo.Save(ctx, d.Fetched, d.RetrievedAt) {
		log.Warn("daily: could not persist new info")
	}
	if j.announcer != nil {
		res.Posted, err = j.announcer.Publish(ctx, d.Fetched)
		if err != nil {
			log.Warn("daily: publish failed", "err", err)
		}
	}
	j.metrics.RecordDailyRun(ctx, "changed")
	log.Info("daily: info changed", "posted", res.Posted)
	return res, nil
}
