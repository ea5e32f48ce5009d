// Package settings persists bot-wide named settings and per-guild channel
// registrations.
//
// Two contracts are defined: [Store], a timestamped key/value store used for
// the persisted daily info, and [Registry], the per-guild auto-post channel
// table. [Backend] bundles both with connection management; SQLite (sqlx),
// PostgreSQL (pgx) and in-memory implementations are provided.
package settings

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a named setting or guild row does not exist.
var ErrNotFound = errors.New("settings: not found")

// ErrExists is returned by [Registry.CreateDefaults] when the guild already
// has a registration.
var ErrExists = errors.New("settings: already exists")

// Store is a timestamped key/value store.
type Store interface {
	// Get returns the value and last modification time of a setting. A
	// stored NULL value yields a nil value with a non-nil time. A setting
	// that was never written yields [ErrNotFound].
	Get(ctx context.Context, name string) (value *string, modifiedAt *time.Time, err error)

	// Set writes value (nil stores NULL) with modification time at.
	Set(ctx context.Context, name string, value *string, at time.Time) error
}

// Registration is the auto-post configuration of one guild.
type Registration struct {
	GuildID         string  `db:"guild_id"`
	ChannelID       *string `db:"daily_channel_id"`
	CanPost         bool    `db:"daily_can_post"`
	LatestMessageID *string `db:"daily_latest_message_id"`
	DeleteOnChange  *bool   `db:"daily_delete_on_change"`
	NotifyRoleID    *string `db:"daily_notify_role_id"`
}

// Registry stores one [Registration] per guild.
type Registry interface {
	// Registrations lists registrations in creation order, optionally
	// filtered by guild and by the can-post flag.
	Registrations(ctx context.Context, guildID *string, canPost *bool) ([]Registration, error)

	// CreateDefaults inserts an empty registration for guildID.
	CreateDefaults(ctx context.Context, guildID string) error

	// UpdateChannel sets the destination channel of guildID and resets its
	// latest message (a new channel has no message to edit).
	UpdateChannel(ctx context.Context, guildID, channelID string) error

	// UpdateLatestMessage records the id of the last posted daily message.
	UpdateLatestMessage(ctx context.Context, guildID, messageID string) error

	// UpdateCanPost toggles whether the bot may post to the guild's channel.
	UpdateCanPost(ctx context.Context, guildID string, canPost bool) error
}

// Backend is a complete settings persistence implementation.
type Backend interface {
	Store
	Registry

	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
