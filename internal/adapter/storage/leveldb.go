package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/techstore/internal/core/port"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

var _ port.KVStore = (*LevelDBStore)(nil)

// A LevelDBStore keeps the client state in a local LevelDB directory.
//
// LevelDB locks the directory, so a second process opening the same path
// gets an error instead of interleaving writes.
type LevelDBStore struct {
	db *leveldb.DB
}

func NewLevelDBStore(path string) (LevelDBStore, error) {
	const op = "NewLevelDBStore"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return LevelDBStore{}, fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("local store is open", "op", op, "path", path)
	return LevelDBStore{db}, nil
}

// NewMemLevelDBStore returns a store that lives only as long as the process.
func NewMemLevelDBStore() (LevelDBStore, error) {
	const op = "NewMemLevelDBStore"

	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return LevelDBStore{}, fmt.Errorf("%s: %w", op, err)
	}
	return LevelDBStore{db}, nil
}

func (s LevelDBStore) Get(
	ctx context.Context, key string,
) ([]byte, bool, error) {
	const op = "LevelDBStore.Get"

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	v, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (s LevelDBStore) Put(ctx context.Context, key string, value []byte) error {
	return s.Apply(ctx, port.Mutation{Key: key, Value: value})
}

func (s LevelDBStore) Delete(ctx context.Context, key string) error {
	return s.Apply(ctx, port.Mutation{Key: key, Delete: true})
}

// Apply writes all mutations in one synced batch.
func (s LevelDBStore) Apply(ctx context.Context, ms ...port.Mutation) error {
	const op = "LevelDBStore.Apply"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	batch := new(leveldb.Batch)
	for _, m := range ms {
		if m.Delete {
			batch.Delete([]byte(m.Key))
			continue
		}
		batch.Put([]byte(m.Key), m.Value)
	}

	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s LevelDBStore) Close() {
	const op = "LevelDBStore.Close"
	log := slog.With("op", op)

	log.Info("closing local store...")
	if err := s.db.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("local store is closed")
}
