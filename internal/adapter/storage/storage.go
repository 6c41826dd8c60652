package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

// Keys of the persisted client state.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

const (
	DriverLevelDB  = "leveldb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	ErrCorrupted     = domain.ErrCorrupted
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Open returns the key-value store selected by driver.
//
// path is used by leveldb, dsn by postgres.
func Open(ctx context.Context, driver, path, dsn string) (port.KVStore, error) {
	const op = "storage.Open"

	var (
		s   port.KVStore
		err error
	)
	switch driver {
	case DriverLevelDB, "":
		s, err = NewLevelDBStore(path)
	case DriverPostgres:
		s, err = NewSQLStore(ctx, dsn)
	case DriverMemory:
		s, err = NewMemLevelDBStore()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}
