// Package config provides the configuration schema and loader for the
// starbridge bot.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the starbridge server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l to the matching [slog.Level]. Unknown values map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Driver selects the settings storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// IsValid reports whether d is a recognised storage driver.
func (d Driver) IsValid() bool {
	switch d {
	case DriverMemory, DriverSQLite, DriverPostgres:
		return true
	}
	return false
}

// Defaults applied by [ApplyDefaults] when a value is left empty.
const (
	DefaultListenAddr      = ":8080"
	DefaultAPIBaseURL      = "https://api.pixelstarships.com"
	DefaultAPILanguage     = "en"
	DefaultAPITimeout      = 15 * time.Second
	DefaultAPIRetries      = 2
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
	DefaultRefreshInterval = 10 * time.Minute
	DefaultDailySchedule   = "0 */5 * * * *"
	DefaultBigSetThreshold = 3
	DefaultDatabasePath    = "starbridge.db"
)

// Config is the root configuration structure for starbridge.
type Config struct {
	Server   ServerConfig   `yaml:"server"   envPrefix:"SERVER_"`
	Discord  DiscordConfig  `yaml:"discord"  envPrefix:"DISCORD_"`
	GameAPI  GameAPIConfig  `yaml:"game_api" envPrefix:"API_"`
	Designs  DesignsConfig  `yaml:"designs"`
	Daily    DailyConfig    `yaml:"daily"    envPrefix:"DAILY_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
}

// ServerConfig holds the HTTP listener and logging settings.
type ServerConfig struct {
	// ListenAddr serves /metrics, /healthz and /readyz.
	ListenAddr string   `yaml:"listen_addr" env:"LISTEN_ADDR"`
	LogLevel   LogLevel `yaml:"log_level"   env:"LOG_LEVEL"`
}

// DiscordConfig holds the bot credentials and command scope.
type DiscordConfig struct {
	Token string `yaml:"token" env:"TOKEN"`

	// GuildID registers commands for one guild only. Empty registers them
	// globally.
	GuildID string `yaml:"guild_id" env:"GUILD_ID"`

	// AdminRoleID grants access to the autodaily commands in addition to
	// the Administrator and Manage Server permissions.
	AdminRoleID string `yaml:"admin_role_id" env:"ADMIN_ROLE_ID"`
}

// GameAPIConfig configures the upstream game API client.
type GameAPIConfig struct {
	BaseURL  string        `yaml:"base_url" env:"BASE_URL"`
	Language string        `yaml:"language" env:"LANGUAGE"`
	Timeout  time.Duration `yaml:"timeout"  env:"TIMEOUT"`
	Retries  int           `yaml:"retries"  env:"RETRIES"`
	Breaker  BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding the game API.
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// DesignsConfig tunes the design table caches.
type DesignsConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DailyConfig controls daily info change detection and command output.
type DailyConfig struct {
	// Schedule is a six-field cron expression (with seconds) or a
	// descriptor such as "@every 5m".
	Schedule string `yaml:"schedule" env:"SCHEDULE"`

	// Disabled turns off the scheduled change detection. The /daily
	// command keeps working.
	Disabled bool `yaml:"disabled" env:"DISABLED"`

	// BigSetThreshold is the result count above which lookups render the
	// short one-line form.
	BigSetThreshold int `yaml:"big_set_threshold"`
}

// DatabaseConfig selects where channel settings and daily snapshots live.
type DatabaseConfig struct {
	Driver Driver `yaml:"driver" env:"DRIVER"`

	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `yaml:"dsn" env:"DSN"`
}
