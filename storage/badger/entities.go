package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) *GraphRepository {
	return &GraphRepository{backend: backend}
}

// Close is a no-op; the underlying backend owns the database handle.
func (r *GraphRepository) Close() error {
	return nil
}

// GetEntity retrieves a single graph entity by its stable key.
func (r *GraphRepository) GetEntity(ctx context.Context, key string) (*core.EnrichedEntity, error) {
	var result *core.EnrichedEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntityKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalEntity(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutEntities inserts or replaces one or more graph entities.
func (r *GraphRepository) PutEntities(ctx context.Context, entities ...*core.EnrichedEntity) ([]*core.EnrichedEntity, error) {
	for _, entity := range entities {
		if err := core.ValidateEntity(entity); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			if entity.InsertedAt.IsZero() {
				entity.InsertedAt = time.Now().UTC()
			}
			entity.UpdatedAt = time.Now().UTC()

			key := makeEntityKey(entity.Key)
			value := storage.MarshalEntity(entity)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entities, err
}

// DeleteEntities removes graph entities by their keys.
func (r *GraphRepository) DeleteEntities(ctx context.Context, keys ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			bk := makeEntityKey(key)
			if _, err := tx.Get(bk); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(bk); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
