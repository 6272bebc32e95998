package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const backend = "redis"

type redisRepository struct {
	client    *goredis.Client
	telemetry port.Telemetry
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisRepository(ctx context.Context, cfg Config, telemetry port.Telemetry) (port.StateRepository, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is not set")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &redisRepository{client: client, telemetry: telemetry}, nil
}

func (r *redisRepository) Put(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Put", backend, map[string]interface{}{"state.key": key})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Put", backend)
	defer func() { op.End(err) }()

	if err = r.client.Set(ctx, key, value, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (r *redisRepository) Get(ctx context.Context, key string) (value []byte, err error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Get", backend, map[string]interface{}{"state.key": key})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Get", backend)
	defer func() { op.End(err) }()

	value, err = r.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, port.ErrStateNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return value, nil
}

func (r *redisRepository) Delete(ctx context.Context, key string) (err error) {
	op := tel.StartOperation(r.telemetry, ctx, "Delete", backend)
	defer func() { op.End(err) }()

	if err = r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

func (r *redisRepository) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}

	return n > 0, nil
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}
