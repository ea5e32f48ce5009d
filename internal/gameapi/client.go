// Package gameapi is the HTTP data source for game designs and settings.
//
// The game API answers every request with an XML document in which each
// design is an element whose attributes are the design's fields. [Client]
// turns such documents into [designs.Record] slices and implements
// [designs.Source].
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/starbridge/internal/designs"
	"github.com/MrWong99/starbridge/internal/observe"
	"github.com/MrWong99/starbridge/internal/resilience"
)

// ErrCircuitOpen is returned when the API has failed repeatedly and calls
// are being short-circuited.
var ErrCircuitOpen = resilience.ErrCircuitOpen

// ErrNoSettings is returned by [Client.LatestSettings] when the response
// contains no Setting element.
var ErrNoSettings = errors.New("gameapi: no settings in response")

// LatestSettingsPath is the resource path of the current game settings,
// which include the daily rotating content.
const LatestSettingsPath = "SettingService/GetLatestVersion3"

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gameapi: GET %s: unexpected status %d", e.Path, e.Code)
}

// APIError reports an error document returned with a 2xx status.
type APIError struct {
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gameapi: GET %s: %s", e.Path, e.Message)
}

// Config configures a [Client].
type Config struct {
	// BaseURL is the API root, e.g. "https://api.pixelstarships.com".
	BaseURL string

	// Language is sent as the languageKey query parameter. Default: "en".
	Language string

	// DeviceType is sent with settings requests. Default: "DeviceTypeAndroid".
	DeviceType string

	// Timeout bounds a single HTTP attempt. Default: 15s.
	Timeout time.Duration

	// Retries is the number of retries on transport errors and 5xx
	// responses. Default: 0.
	Retries int

	// Breaker tunes the circuit breaker guarding all requests.
	Breaker resilience.Config

	// Metrics receives request instrumentation. Default: [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// Client fetches designs and settings from the game API. It is safe for
// concurrent use.
type Client struct {
	http       *resty.Client
	breaker    *resilience.Breaker
	metrics    *observe.Metrics
	deviceType string
}

// New creates a [Client].
func New(cfg Config) *Client {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.DeviceType == "" {
		cfg.DeviceType = "DeviceTypeAndroid"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}

	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/xml").
		SetQueryParam("languageKey", cfg.Language).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.Transport != nil {
		hc.SetTransport(cfg.Transport)
	}

	bcfg := cfg.Breaker
	if bcfg.Name == "" {
		bcfg.Name = "gameapi"
	}
	if bcfg.IsFailure == nil {
		bcfg.IsFailure = isFailure
	}
	metrics := cfg.Metrics
	userHook := bcfg.OnStateChange
	bcfg.OnStateChange = func(name string, from, to resilience.State) {
		metrics.BreakerState.Record(context.Background(), int64(to),
			metric.WithAttributes(observe.Attr("name", name)))
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	return &Client{
		http:       hc,
		breaker:    resilience.New(bcfg),
		metrics:    metrics,
		deviceType: cfg.DeviceType,
	}
}

// isFailure counts transport errors, 5xx responses and timeouts against the
// API. Client-side errors and caller cancellation do not trip the breaker.
func isFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	var ae *APIError
	return !errors.As(err, &ae)
}

// Breaker exposes the circuit breaker, e.g. for readiness checks.
func (c *Client) Breaker() *resilience.Breaker { return c.breaker }

// Fetch retrieves path and returns all attribute-carrying elements as
// records. It implements [designs.Source].
func (c *Client) Fetch(ctx context.Context, path string) ([]designs.Record, error) {
	elements, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	recs := make([]designs.Record, 0, len(elements))
	for _, e := range elements {
		recs = append(recs, e.Record)
	}
	return recs, nil
}

// LatestSettings retrieves the current game settings record, which carries
// the daily rotating content fields.
func (c *Client) LatestSettings(ctx context.Context) (designs.Record, error) {
	elements, err := c.get(ctx, LatestSettingsPath, map[string]string{"deviceType": c.deviceType})
	if err != nil {
		return nil, err
	}
	for _, e := range elements {
		if e.Name == "Setting" {
			return e.Record, nil
		}
	}
	return nil, ErrNoSettings
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) ([]Element, error) {
	ctx, span := observe.StartSpan(ctx, "gameapi.get")
	defer span.End()
	span.SetAttributes(attribute.String("gameapi.path", path))

	var elements []Element
	start := time.Now()
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(path)
		if err != nil {
			return fmt.Errorf("gameapi: GET %s: %w", path, err)
		}
		if resp.IsError() {
			return &StatusError{Path: path, Code: resp.StatusCode()}
		}
		elements, err = Decode(resp.Body())
		if err != nil {
			return fmt.Errorf("gameapi: GET %s: %w", path, err)
		}
		if msg, ok := apiError(elements); ok {
			return &APIError{Path: path, Message: msg}
		}
		return nil
	})

	status := "ok"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		status = "short_circuit"
	case err != nil:
		status = "error"
	}
	c.metrics.RecordAPIRequest(ctx, path, status, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observe.Logger(ctx).Debug("gameapi: request failed", "path", path, "err", err)
		return nil, err
	}
	slog.Debug("gameapi: request completed", "path", path, "elements", len(elements))
	return elements, nil
}
