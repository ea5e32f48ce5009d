package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema is the SQL DDL used by [PostgresStore.Migrate].
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS settings (
    name        TEXT PRIMARY KEY,
    value       TEXT,
    modified_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS server_settings (
    guild_id                TEXT PRIMARY KEY,
    daily_channel_id        TEXT,
    daily_can_post          BOOLEAN NOT NULL DEFAULT TRUE,
    daily_latest_message_id TEXT,
    daily_delete_on_change  BOOLEAN,
    daily_notify_role_id    TEXT,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Backend] backed by PostgreSQL.
type PostgresStore struct {
	db    DB
	ping  func(context.Context) error
	close func()
}

var _ Backend = (*PostgresStore)(nil)

// OpenPostgres connects a pool to dsn.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("settings: connect postgres: %w", err)
	}
	s := NewPostgresStore(pool)
	s.ping = pool.Ping
	s.close = pool.Close
	return s, nil
}

// NewPostgresStore wraps an existing connection or pool. The caller is
// responsible for calling [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate implements [Backend].
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("settings: migrate: %w", err)
	}
	return nil
}

// Ping implements [Backend].
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.ping != nil {
		return s.ping(ctx)
	}
	var one int
	return s.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

// Close implements [Backend].
func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// Get implements [Store].
func (s *PostgresStore) Get(ctx context.Context, name string) (*string, *time.Time, error) {
	var (
		value *string
		at    time.Time
	)
	err := s.db.QueryRow(ctx, `SELECT value, modified_at FROM settings WHERE name = $1`, name).Scan(&value, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("settings: get %q: %w", name, err)
	}
	at = at.UTC()
	return value, &at, nil
}

// Set implements [Store].
func (s *PostgresStore) Set(ctx context.Context, name string, value *string, at time.Time) error {
	const query = `
		INSERT INTO settings (name, value, modified_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, modified_at = EXCLUDED.modified_at`
	if _, err := s.db.Exec(ctx, query, name, value, at.UTC()); err != nil {
		return fmt.Errorf("settings: set %q: %w", name, err)
	}
	return nil
}

// Registrations implements [Registry].
func (s *PostgresStore) Registrations(ctx context.Context, guildID *string, canPost *bool) ([]Registration, error) {
	var (
		where []string
		args  []any
	)
	if guildID != nil {
		args = append(args, *guildID)
		where = append(where, "guild_id = $"+strconv.Itoa(len(args)))
	}
	if canPost != nil {
		args = append(args, *canPost)
		where = append(where, "daily_can_post = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT guild_id, daily_channel_id, daily_can_post, daily_latest_message_id,
		daily_delete_on_change, daily_notify_role_id FROM server_settings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, guild_id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("settings: list registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.GuildID, &r.ChannelID, &r.CanPost, &r.LatestMessageID, &r.DeleteOnChange, &r.NotifyRoleID); err != nil {
			return nil, fmt.Errorf("settings: scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settings: list registrations: %w", err)
	}
	return regs, nil
}

// CreateDefaults implements [Registry].
func (s *PostgresStore) CreateDefaults(ctx context.Context, guildID string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO server_settings (guild_id) VALUES ($1)`, guildID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("settings: create defaults %q: %w", guildID, err)
	}
	return nil
}

// UpdateChannel implements [Registry].
func (s *PostgresStore) UpdateChannel(ctx context.Context, guildID, channelID string) error {
	return s.exec(ctx, "update channel", guildID,
		`UPDATE server_settings SET daily_channel_id = $1, daily_latest_message_id = NULL, daily_can_post = TRUE WHERE guild_id = $2`,
		channelID, guildID)
}

// UpdateLatestMessage implements [Registry].
func (s *PostgresStore) UpdateLatestMessage(ctx context.Context, guildID, messageID string) error {
	return s.exec(ctx, "update latest message", guildID,
		`UPDATE server_settings SET daily_latest_message_id = $1 WHERE guild_id = $2`,
		messageID, guildID)
}

// UpdateCanPost implements [Registry].
func (s *PostgresStore) UpdateCanPost(ctx context.Context, guildID string, canPost bool) error {
	return s.exec(ctx, "update can post", guildID,
		`UPDATE server_settings SET daily_can_post = $1 WHERE guild_id = $2`,
		canPost, guildID)
}

func (s *PostgresStore) exec(ctx context.Context, op, guildID, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("settings: %s %q: %w", op, guildID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
