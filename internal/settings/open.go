package settings

import (
	"context"
	"fmt"
)

// Driver names accepted by [Open].
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open connects the backend selected by driver and applies its schema.
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch driver {
	case DriverSQLite:
		b, err = OpenSQLite(dsn)
	case DriverPostgres:
		b, err = OpenPostgres(ctx, dsn)
	case DriverMemory:
		b = NewMemStore()
	default:
		return nil, fmt.Errorf("settings: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := b.Migrate(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}
