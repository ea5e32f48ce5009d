package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override, e.g.
// STARBRIDGE_DISCORD_TOKEN or STARBRIDGE_DATABASE_DSN.
const EnvPrefix = "STARBRIDGE_"

// Load reads the YAML configuration file at path, applies environment
// overrides and defaults, and returns a validated [Config]. An empty path
// skips the file and builds the config from the environment alone.
//
// A .env file in the working directory is loaded into the process
// environment first when present. Variables already set take precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config: ignoring unreadable .env file", "err", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		if err := decode(bytes.NewReader(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, os.Environ()); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. The environment is not consulted. Useful in tests
// where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overlays STARBRIDGE_* variables from environ (in os.Environ
// form) onto cfg. Unset variables leave the YAML values untouched.
func ApplyEnv(cfg *Config, environ []string) error {
	err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	})
	if err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.GameAPI.BaseURL == "" {
		cfg.GameAPI.BaseURL = DefaultAPIBaseURL
	}
	if cfg.GameAPI.Language == "" {
		cfg.GameAPI.Language = DefaultAPILanguage
	}
	if cfg.GameAPI.Timeout == 0 {
		cfg.GameAPI.Timeout = DefaultAPITimeout
	}
	if cfg.GameAPI.Retries == 0 {
		cfg.GameAPI.Retries = DefaultAPIRetries
	}
	if cfg.GameAPI.Breaker.MaxFailures == 0 {
		cfg.GameAPI.Breaker.MaxFailures = DefaultBreakerFailures
	}
	if cfg.GameAPI.Breaker.Cooldown == 0 {
		cfg.GameAPI.Breaker.Cooldown = DefaultBreakerCooldown
	}
	if cfg.Designs.RefreshInterval == 0 {
		cfg.Designs.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.Daily.Schedule == "" {
		cfg.Daily.Schedule = DefaultDailySchedule
	}
	if cfg.Daily.BigSetThreshold == 0 {
		cfg.Daily.BigSetThreshold = DefaultBigSetThreshold
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = DefaultDatabasePath
	}
}

// scheduleParser matches the parser the scheduler builds its cron with.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.GameAPI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("game_api.timeout must not be negative, got %s", cfg.GameAPI.Timeout))
	}
	if cfg.GameAPI.Retries < 0 {
		errs = append(errs, fmt.Errorf("game_api.retries must not be negative, got %d", cfg.GameAPI.Retries))
	}
	if cfg.GameAPI.Breaker.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("game_api.breaker.max_failures must not be negative, got %d", cfg.GameAPI.Breaker.MaxFailures))
	}
	if cfg.Designs.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("designs.refresh_interval must not be negative, got %s", cfg.Designs.RefreshInterval))
	}
	if cfg.Daily.BigSetThreshold < 0 {
		errs = append(errs, fmt.Errorf("daily.big_set_threshold must not be negative, got %d", cfg.Daily.BigSetThreshold))
	}
	if cfg.Daily.Schedule != "" {
		if _, err := scheduleParser.Parse(cfg.Daily.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("daily.schedule %q is invalid: %w", cfg.Daily.Schedule, err))
		}
	}

	if cfg.Database.Driver != "" && !cfg.Database.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("database.driver %q is invalid; valid values: memory, sqlite, postgres", cfg.Database.Driver))
	}
	if cfg.Database.Driver == DriverPostgres && cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required for the postgres driver"))
	}
	if cfg.Database.Driver == DriverMemory {
		slog.Warn("config: memory database selected; channel settings are lost on restart")
	}

	return errors.Join(errs...)
}
