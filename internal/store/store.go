package store

import (
	"context"
	"errors"

	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// ErrStoreClosed is returned by any operation on a closed store
var ErrStoreClosed = errors.New("store closed")

// Store defines the interface for entity persistence.
// A Get issued after a Set on the same Store value observes the write, including inside WithTx.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	CursorStore

	// Get loads the entity with the given id into dst. It returns false when no such entity exists.
	Get(ctx context.Context, id string, dst schema.Entity) (bool, error)
	// Set upserts entity by its id. entity must be a pointer to a schema model.
	Set(ctx context.Context, entity schema.Entity) error
	// GetAll loads every entity of model's table into dst, a pointer to a slice of the model type, ordered by id
	GetAll(ctx context.Context, model schema.Entity, dst any) error
	// WithTx runs fn against a transactional view of the store.
	// Writes made through the view are applied atomically when fn returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	// Close releases the underlying database
	Close() error
}

// modelPtr constrains PT to a pointer to T that is a schema.Entity
type modelPtr[T any] interface {
	*T
	schema.Entity
}

// Get loads the entity of type T with the given id, or returns nil if it does not exist
func Get[T any, PT modelPtr[T]](ctx context.Context, s Store, id string) (*T, error) {
	var v T
	found, err := s.Get(ctx, id, PT(&v))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &v, nil
}

// GetAll loads every entity of type T, ordered by id
func GetAll[T any, PT modelPtr[T]](ctx context.Context, s Store) ([]T, error) {
	var model T
	var out []T
	if err := s.GetAll(ctx, PT(&model), &out); err != nil {
		return nil, err
	}
	return out, nil
}
