package daily_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/starbridge/internal/daily"
	"github.com/MrWong99/starbridge/internal/settings"
)

func TestRepository_LoadEmpty(t *testing.T) {
	t.Parallel()

	repo := daily.NewRepository(settings.NewMemStore())
	info, ts, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !info.Empty() || ts != nil {
		t.Errorf("Load() = %v, %v, want empty info and nil time", info, ts)
	}
}

func TestRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := settings.NewMemStore()
	repo := daily.NewRepository(store)
	info := sampleInfo()
	info[daily.CargoPrices] = nil
	saved := at(10, 8)

	if !repo.Save(ctx, info, saved) {
		t.Fatal("Save() = false, want true")
	}
	got, ts, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ts == nil || !ts.Equal(saved) {
		t.Errorf("timestamp = %v, want %v", ts, saved)
	}
	for _, f := range daily.Fields {
		want, have := info[f], got[f]
		if (want == nil) != (have == nil) || (want != nil && *want != *have) {
			t.Errorf("field %s = %v, want %v", f, have, want)
		}
	}

	// Same day, same content: the detector must see no change.
	if daily.HasChanged(info, at(10, 12), got, ts) {
		t.Error("reloaded snapshot differs from the saved one")
	}
}

func TestRepository_LoadUsesLatestTimestamp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := settings.NewMemStore()
	repo := daily.NewRepository(store)
	if !repo.Save(ctx, sampleInfo(), at(10, 8)) {
		t.Fatal("Save() = false")
	}
	later := at(10, 9)
	v := "changed"
	if err := store.Set(ctx, daily.SettingName(daily.News), &v, later); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, ts, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ts == nil || !ts.Equal(later) {
		t.Errorf("timestamp = %v, want %v", ts, later)
	}
}

func TestRepository_LoadIncomplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := settings.NewMemStore()
	v := "344"
	if err := store.Set(ctx, daily.SettingName(daily.SaleArgument), &v, at(10, 8)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, ts, err := daily.NewRepository(store).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !info.Empty() || ts != nil {
		t.Errorf("Load() = %v, %v, want empty info and nil time", info, ts)
	}
}

func TestRepository_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("disk full")
	store := settings.NewMemStore()
	repo := daily.NewRepository(store)

	store.FailOn("Set", boom)
	if repo.Save(ctx, sampleInfo(), time.Now()) {
		t.Error("Save() = true with a failing store, want false")
	}

	store.FailOn("Get", boom)
	if _, _, err := repo.Load(ctx); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want %v", err, boom)
	}
}
