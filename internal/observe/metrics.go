// Package observe provides application-wide observability primitives for
// starbridge: OpenTelemetry metrics, tracing, trace-aware logging and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported to
// Prometheus via [InitProvider]. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with their own [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all starbridge metrics.
const meterName = "github.com/MrWong99/starbridge"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Design tables ---

	// DesignRefreshDuration tracks how long fetching a design table takes.
	// Attribute: kind.
	DesignRefreshDuration metric.Float64Histogram

	// DesignFetchErrors counts failed design table fetches. Attribute: kind.
	DesignFetchErrors metric.Int64Counter

	// DesignTableSize reports the record count of the last fetched table.
	// Attribute: kind.
	DesignTableSize metric.Int64Gauge

	// DesignLookups counts retriever lookups. Attributes: kind, result (hit|miss).
	DesignLookups metric.Int64Counter

	// --- Game API ---

	// APIRequests counts game API calls. Attributes: path, status.
	APIRequests metric.Int64Counter

	// APIRequestDuration tracks game API latency. Attribute: path.
	APIRequestDuration metric.Float64Histogram

	// BreakerState reports circuit breaker state (0 closed, 1 open,
	// 2 half-open). Attribute: name.
	BreakerState metric.Int64Gauge

	// --- Daily info ---

	// DailyRuns counts change detection runs. Attribute: result
	// (changed|unchanged|error).
	DailyRuns metric.Int64Counter

	// DailyPosts counts per-channel publication attempts. Attribute: status
	// (sent|edited|failed).
	DailyPosts metric.Int64Counter

	// --- Discord ---

	// CommandInvocations counts slash command invocations. Attributes:
	// command, status.
	CommandInvocations metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	// method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote API round trips.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Design tables.
	if met.DesignRefreshDuration, err = m.Float64Histogram("starbridge.designs.refresh.duration",
		metric.WithDescription("Latency of design table fetches."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DesignFetchErrors, err = m.Int64Counter("starbridge.designs.fetch.errors",
		metric.WithDescription("Total failed design table fetches by kind."),
	); err != nil {
		return nil, err
	}
	if met.DesignTableSize, err = m.Int64Gauge("starbridge.designs.table.size",
		metric.WithDescription("Number of records in the current design table by kind."),
	); err != nil {
		return nil, err
	}
	if met.DesignLookups, err = m.Int64Counter("starbridge.designs.lookups",
		metric.WithDescription("Total design lookups by kind and result."),
	); err != nil {
		return nil, err
	}

	// Game API.
	if met.APIRequests, err = m.Int64Counter("starbridge.api.requests",
		metric.WithDescription("Total game API requests by path and status."),
	); err != nil {
		return nil, err
	}
	if met.APIRequestDuration, err = m.Float64Histogram("starbridge.api.request.duration",
		metric.WithDescription("Latency of game API requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BreakerState, err = m.Int64Gauge("starbridge.breaker.state",
		metric.WithDescription("Circuit breaker state: 0 closed, 1 open, 2 half-open."),
	); err != nil {
		return nil, err
	}

	// Daily info.
	if met.DailyRuns, err = m.Int64Counter("starbridge.daily.runs",
		metric.WithDescription("Total daily change detection runs by result."),
	); err != nil {
		return nil, err
	}
	if met.DailyPosts, err = m.Int64Counter("starbridge.daily.posts",
		metric.WithDescription("Total daily channel publications by status."),
	); err != nil {
		return nil, err
	}

	// Discord.
	if met.CommandInvocations, err = m.Int64Counter("starbridge.discord.commands",
		metric.WithDescription("Total slash command invocations by command and status."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("starbridge.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAPIRequest records one game API call with its latency in seconds.
func (m *Metrics) RecordAPIRequest(ctx context.Context, path, status string, seconds float64) {
	m.APIRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("path", path),
			attribute.String("status", status),
		),
	)
	m.APIRequestDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("path", path)),
	)
}

// RecordDailyRun records the outcome of one change detection run.
func (m *Metrics) RecordDailyRun(ctx context.Context, result string) {
	m.DailyRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordDailyPost records one channel publication attempt.
func (m *Metrics) RecordDailyPost(ctx context.Context, status string) {
	m.DailyPosts.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordCommand records a slash command invocation.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string) {
	m.CommandInvocations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("status", status),
		),
	)
}
