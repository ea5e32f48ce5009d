package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/starbridge/internal/settings"
)

// Repository persists daily info snapshots in a [settings.Store], one
// setting per field (see [SettingName]).
type Repository struct {
	store settings.Store
}

// NewRepository returns a [Repository] over store.
func NewRepository(store settings.Store) *Repository {
	return &Repository{store: store}
}

// Load reconstructs the persisted snapshot. The effective timestamp is the
// latest modification time of all fields. When any field was never stored
// (or lacks a timestamp) the snapshot is incomplete and Load returns an
// empty [Info] with a nil time. A stored NULL value counts as present.
func (r *Repository) Load(ctx context.Context) (Info, *time.Time, error) {
	info := make(Info, len(Fields))
	var latest time.Time
	for _, f := range Fields {
		v, at, err := r.store.Get(ctx, SettingName(f))
		if errors.Is(err, settings.ErrNotFound) {
			return Info{}, nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("daily: load %s: %w", f, err)
		}
		if at == nil {
			return Info{}, nil, nil
		}
		info[f] = v
		if at.After(latest) {
			latest = *at
		}
	}
	return info, &latest, nil
}

// Save writes every field of info with modification time at. It attempts
// all writes and reports false if any of them failed.
func (r *Repository) Save(ctx context.Context, info Info, at time.Time) bool {
	ok := true
	for _, f := range Fields {
		if err := r.store.Set(ctx, SettingName(f), info[f], at); err != nil {
			slog.Warn("daily: failed to persist field", "field", f, "err", err)
			ok = false
		}
	}
	return ok
}
