package badger

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

const putChunkSize = 1000

// VectorCache implements storage.VectorCache for BadgerDB.
type VectorCache struct {
	backend *Backend
}

var _ storage.VectorCache = (*VectorCache)(nil)

// NewVectorCache creates a vector cache on top of backend.
func NewVectorCache(backend *Backend) (storage.VectorCache, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &VectorCache{backend: backend}, nil
}

// GetVectors returns the cached vectors for keys. Misses are skipped.
func (c *VectorCache) GetVectors(ctx context.Context, keys ...core.ID) (map[core.ID][]float32, error) {
	found := make(map[core.ID][]float32, len(keys))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeVectorKey(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				vec, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[key] = vec
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutVectors stores entries in chunks so large pools stay under badger's
// transaction size limit.
func (c *VectorCache) PutVectors(ctx context.Context, entries map[core.ID][]float32) error {
	keys := slices.Collect(maps.Keys(entries))
	slices.Sort(keys)
	for start := 0; start < len(keys); start += putChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := keys[start:min(start+putChunkSize, len(keys))]
		err := c.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range chunk {
				if err := tx.Set(makeVectorKey(key), storage.MarshalVector(entries[key])); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the backend owns the database.
func (c *VectorCache) Close() error {
	return nil
}
