package port

import (
	"context"
	"errors"

	"taskboard/internal/core/domain"
)

var ErrStateNotFound = errors.New("state not found")

// StateRepository is a durable key-value backend holding opaque blobs.
type StateRepository interface {
	Put(ctx context.Context, key string, value []byte) error
	// Get returns ErrStateNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

// Persistence stores the whole application state under one key. It never
// returns errors: failures are logged and reported as "nothing stored".
type Persistence interface {
	Save(ctx context.Context, state *domain.State)
	Load(ctx context.Context) *domain.State
	Clear(ctx context.Context)
	Exists(ctx context.Context) bool
}
