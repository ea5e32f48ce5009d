package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// SQLiteSchema is the SQL DDL used by [SQLiteStore.Migrate].
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS settings (
    name        TEXT PRIMARY KEY,
    value       TEXT,
    modified_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS server_settings (
    guild_id                TEXT PRIMARY KEY,
    daily_channel_id        TEXT,
    daily_can_post          BOOLEAN NOT NULL DEFAULT 1,
    daily_latest_message_id TEXT,
    daily_delete_on_change  BOOLEAN,
    daily_notify_role_id    TEXT,
    created_at              TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore is a [Backend] backed by an SQLite database through sqlx.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Backend = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("settings: open sqlite %q: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an existing connection.
func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate implements [Backend].
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("settings: migrate: %w", err)
	}
	return nil
}

// Ping implements [Backend].
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements [Backend].
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type settingRow struct {
	Value      sql.NullString `db:"value"`
	ModifiedAt time.Time      `db:"modified_at"`
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, name string) (*string, *time.Time, error) {
	var row settingRow
	err := s.db.GetContext(ctx, &row, `SELECT value, modified_at FROM settings WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("settings: get %q: %w", name, err)
	}
	at := row.ModifiedAt.UTC()
	if !row.Value.Valid {
		return nil, &at, nil
	}
	return &row.Value.String, &at, nil
}

// Set implements [Store].
func (s *SQLiteStore) Set(ctx context.Context, name string, value *string, at time.Time) error {
	const query = `
		INSERT INTO settings (name, value, modified_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, modified_at = excluded.modified_at`
	if _, err := s.db.ExecContext(ctx, query, name, value, at.UTC()); err != nil {
		return fmt.Errorf("settings: set %q: %w", name, err)
	}
	return nil
}

// Registrations implements [Registry].
func (s *SQLiteStore) Registrations(ctx context.Context, guildID *string, canPost *bool) ([]Registration, error) {
	var (
		where []string
		args  []any
	)
	if guildID != nil {
		where = append(where, "guild_id = ?")
		args = append(args, *guildID)
	}
	if canPost != nil {
		where = append(where, "daily_can_post = ?")
		args = append(args, *canPost)
	}
	query := `SELECT guild_id, daily_channel_id, daily_can_post, daily_latest_message_id,
		daily_delete_on_change, daily_notify_role_id FROM server_settings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	var regs []Registration
	if err := s.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("settings: list registrations: %w", err)
	}
	return regs, nil
}

// CreateDefaults implements [Registry].
func (s *SQLiteStore) CreateDefaults(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO server_settings (guild_id) VALUES (?)`, guildID)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrExists
		}
		return fmt.Errorf("settings: create defaults %q: %w", guildID, err)
	}
	return nil
}

// UpdateChannel implements [Registry].
func (s *SQLiteStore) UpdateChannel(ctx context.Context, guildID, channelID string) error {
	return s.exec(ctx, "update channel", guildID,
		`UPDATE server_settings SET daily_channel_id = ?, daily_latest_message_id = NULL, daily_can_post = 1 WHERE guild_id = ?`,
		channelID, guildID)
}

// UpdateLatestMessage implements [Registry].
func (s *SQLiteStore) UpdateLatestMessage(ctx context.Context, guildID, messageID string) error {
	return s.exec(ctx, "update latest message", guildID,
		`UPDATE server_settings SET daily_latest_message_id = ? WHERE guild_id = ?`,
		messageID, guildID)
}

// UpdateCanPost implements [Registry].
func (s *SQLiteStore) UpdateCanPost(ctx context.Context, guildID string, canPost bool) error {
	return s.exec(ctx, "update can post", guildID,
		`UPDATE server_settings SET daily_can_post = ? WHERE guild_id = ?`,
		canPost, guildID)
}

func (s *SQLiteStore) exec(ctx context.Context, op, guildID, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("settings: %s %q: %w", op, guildID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settings: %s %q: %w", op, guildID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
