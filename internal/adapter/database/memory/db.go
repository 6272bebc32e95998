package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const backend = "memory"

// memoryRepository keeps blobs for the life of the process.
type memoryRepository struct {
	cache     *cache.Cache
	telemetry port.Telemetry
}

func NewMemoryRepository(telemetry port.Telemetry) port.StateRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &memoryRepository{
		cache:     cache.New(cache.NoExpiration, 0),
		telemetry: telemetry,
	}
}

func (c *memoryRepository) Put(ctx context.Context, key string, value []byte) error {
	op := tel.StartOperation(c.telemetry, ctx, "Put", backend)

	stored := make([]byte, len(value))
	copy(stored, value)
	c.cache.Set(key, stored, cache.NoExpiration)

	op.End(nil)
	return nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	op := tel.StartOperation(c.telemetry, ctx, "Get", backend)
	defer op.End(nil)

	value, ok := c.cache.Get(key)
	if !ok {
		return nil, port.ErrStateNotFound
	}

	stored := value.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)

	return out, nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	op := tel.StartOperation(c.telemetry, ctx, "Delete", backend)

	c.cache.Delete(key)

	op.End(nil)
	return nil
}

func (c *memoryRepository) Has(ctx context.Context, key string) (bool, error) {
	_, ok := c.cache.Get(key)
	return ok, nil
}

func (c *memoryRepository) Close() error {
	c.cache.Flush()
	return nil
}
