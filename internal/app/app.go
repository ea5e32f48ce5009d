// Package app wires all starbridge subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves Discord, the scheduler and the operational HTTP
// endpoints, and Shutdown tears everything down in order.
//
// For testing, inject doubles via functional options (WithBackend,
// WithSource, WithSender, etc.). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/starbridge/internal/config"
	"github.com/MrWong99/starbridge/internal/daily"
	"github.com/MrWong99/starbridge/internal/designs"
	"github.com/MrWong99/starbridge/internal/discord"
	"github.com/MrWong99/starbridge/internal/discord/commands"
	"github.com/MrWong99/starbridge/internal/gameapi"
	"github.com/MrWong99/starbridge/internal/health"
	"github.com/MrWong99/starbridge/internal/observe"
	"github.com/MrWong99/starbridge/internal/resilience"
	"github.com/MrWong99/starbridge/internal/scheduler"
	"github.com/MrWong99/starbridge/internal/settings"
	"github.com/MrWong99/starbridge/internal/training"
)

// dailyJobName labels the change detection job in scheduler logs.
const dailyJobName = "daily"

// Source is the game data the bot consumes: design tables and the live
// settings record.
type Source interface {
	designs.Source
	daily.SettingsSource
}

// App owns all subsystem lifetimes.
type App struct {
	cfg     *config.Config
	metrics *observe.Metrics

	// Subsystems: initialised in New, torn down in Shutdown.
	backend   settings.Backend
	source    Source
	breaker   *resilience.Breaker
	trainings *designs.Retriever
	training  *training.Service
	job       *daily.Job
	sender    daily.Sender
	bot       *discord.Bot
	sched     *scheduler.Scheduler
	handler   http.Handler

	telemetry  *observe.Provider
	level      *slog.LevelVar
	configPath string
	watcher    *config.Watcher
	noDiscord  bool
	now        func() time.Time

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithBackend injects a settings backend instead of opening one from config.
func WithBackend(b settings.Backend) Option {
	return func(a *App) { a.backend = b }
}

// WithSource injects the game data source instead of creating an API client.
func WithSource(s Source) Option {
	return func(a *App) { a.source = s }
}

// WithSender injects the daily announcement sender. Without it the Discord
// bot's channel sender is used.
func WithSender(s daily.Sender) Option {
	return func(a *App) { a.sender = s }
}

// WithMetrics overrides the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithTelemetry mounts the provider's Prometheus handler at /metrics and
// flushes it on Shutdown.
func WithTelemetry(p *observe.Provider) Option {
	return func(a *App) { a.telemetry = p }
}

// WithLogLevel lets a config reload adjust level at runtime.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(a *App) { a.level = level }
}

// WithConfigWatch polls path while running and applies live changes.
func WithConfigWatch(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithoutDiscord skips connecting the bot, for one-shot CLI commands.
func WithoutDiscord() Option {
	return func(a *App) { a.noDiscord = true }
}

// WithClock overrides the clock used by the daily job, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. It opens the
// settings backend, builds the game API client and design retrievers,
// connects the Discord bot when a token is configured and assembles the
// daily change detection job. Nothing is scheduled until [App.Run].
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Settings backend ──────────────────────────────────────────────
	if err := a.initBackend(ctx); err != nil {
		return nil, fmt.Errorf("app: init settings: %w", err)
	}

	// ── 2. Game API + design retrievers ──────────────────────────────────
	a.initSource()
	a.initDesigns()

	// ── 3. Discord ───────────────────────────────────────────────────────
	if err := a.initDiscord(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init discord: %w", err)
	}

	// ── 4. Daily change detection ────────────────────────────────────────
	if err := a.initDaily(); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init daily: %w", err)
	}

	// ── 5. Operational HTTP endpoints ────────────────────────────────────
	a.initHTTP()

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

func (a *App) initBackend(ctx context.Context) error {
	if a.backend == nil {
		b, err := settings.Open(ctx, string(a.cfg.Database.Driver), a.cfg.Database.DSN)
		if err != nil {
			return err
		}
		a.backend = b
	}
	a.closers = append(a.closers, a.backend.Close)
	return nil
}

func (a *App) initSource() {
	if a.source != nil {
		return
	}
	api := a.cfg.GameAPI
	client := gameapi.New(gameapi.Config{
		BaseURL:  api.BaseURL,
		Language: api.Language,
		Timeout:  api.Timeout,
		Retries:  api.Retries,
		Breaker: resilience.Config{
			MaxFailures: api.Breaker.MaxFailures,
			Cooldown:    api.Breaker.Cooldown,
		},
		Metrics: a.metrics,
	})
	a.source = client
	a.breaker = client.Breaker()
}

func (a *App) initDesigns() {
	opts := []designs.RetrieverOption{
		designs.WithInterval(a.cfg.Designs.RefreshInterval),
		designs.WithMetrics(a.metrics),
	}
	a.trainings = training.NewRetriever(a.source, opts...)
	research := training.NewResearchRetriever(a.source, opts...)
	a.training = training.NewService(a.trainings, research,
		training.WithBigSetThreshold(a.cfg.Daily.BigSetThreshold))
}

func (a *App) initDiscord(ctx context.Context) error {
	if a.noDiscord {
		return nil
	}
	if a.cfg.Discord.Token == "" {
		slog.Warn("discord token not configured; running without the bot")
		return nil
	}

	bot, err := discord.New(ctx, discord.Config{
		Token:       a.cfg.Discord.Token,
		GuildID:     a.cfg.Discord.GuildID,
		AdminRoleID: a.cfg.Discord.AdminRoleID,
	})
	if err != nil {
		return err
	}
	a.bot = bot
	a.closers = append(a.closers, bot.Close)

	router := bot.Router()
	router.SetMetrics(a.metrics)
	commands.NewTrainingCommands(a.training).Register(router)
	commands.NewDailyCommands(a.source).Register(router)
	commands.NewAutodailyCommands(a.backend, bot.Permissions()).Register(router)

	if a.sender == nil {
		a.sender = bot.Sender()
	}
	return nil
}

func (a *App) initDaily() error {
	jobOpts := []daily.JobOption{daily.WithJobMetrics(a.metrics)}
	if a.now != nil {
		jobOpts = append(jobOpts, daily.WithClock(a.now))
	}
	if a.sender != nil {
		pub := daily.NewPublisher(a.backend, a.sender, daily.WithPublisherMetrics(a.metrics))
		jobOpts = append(jobOpts, daily.WithAnnouncer(pub))
	}
	a.job = daily.NewJob(a.source, daily.NewRepository(a.backend), jobOpts...)

	a.sched = scheduler.New()
	if a.cfg.Daily.Disabled {
		slog.Info("daily change detection disabled")
		return nil
	}
	return a.sched.Add(dailyJobName, a.cfg.Daily.Schedule, func(ctx context.Context) error {
		_, err := a.job.Run(ctx)
		return err
	})
}

func (a *App) initHTTP() {
	checkers := []health.Checker{
		health.Ping("database", a.backend),
		health.Table("training", a.trainings.Cache()),
	}
	if a.breaker != nil {
		checkers = append(checkers, health.Breaker("game_api", a.breaker))
	}

	mux := http.NewServeMux()
	health.New(checkers...).Register(mux)
	if a.telemetry != nil {
		mux.Handle("GET /metrics", a.telemetry.MetricsHandler())
	}
	a.handler = observe.Middleware(a.metrics)(mux)
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Training returns the training lookup service.
func (a *App) Training() *training.Service { return a.training }

// Job returns the daily change detection job.
func (a *App) Job() *daily.Job { return a.job }

// Source returns the game data source.
func (a *App) Source() Source { return a.source }

// Handler returns the operational HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run starts the scheduler, the HTTP server and the Discord bot and blocks
// until ctx is cancelled or one of them fails. It returns ctx.Err() after a
// normal cancellation.
func (a *App) Run(ctx context.Context) error {
	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.applyReload)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.watcher = w
	}

	a.sched.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.trainings.Refresh(gctx); err != nil {
			slog.Warn("initial training table fetch failed", "err", err)
		}
		return nil
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if a.bot != nil {
		g.Go(func() error {
			err := a.bot.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	slog.Info("app running", "daily_schedule", a.cfg.Daily.Schedule, "discord", a.bot != nil)
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// applyReload applies the live-reloadable part of a config change.
func (a *App) applyReload(_, _ *config.Config, d config.ConfigDiff) {
	if d.LogLevelChanged && a.level != nil {
		a.level.Set(d.NewLogLevel.Slog())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
}

// Shutdown stops the scheduler, waiting for a running job within ctx, and
// then closes all subsystems in order. If ctx expires first, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if a.watcher != nil {
			a.watcher.Stop()
		}
		if a.sched != nil {
			if err := a.sched.Stop(ctx); err != nil {
				slog.Warn("scheduler stop", "err", err)
			}
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		if a.telemetry != nil {
			if err := a.telemetry.Shutdown(ctx); err != nil {
				slog.Warn("telemetry shutdown", "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll releases what New opened before failing.
func (a *App) closeAll() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			slog.Warn("closer error", "err", err)
		}
	}
}
