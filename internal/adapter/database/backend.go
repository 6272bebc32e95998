package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"taskboard/internal/adapter/database/file"
	"taskboard/internal/adapter/database/memory"
	"taskboard/internal/adapter/database/mysql"
	mysqlrepo "taskboard/internal/adapter/database/mysql/repository"
	"taskboard/internal/adapter/database/postgres"
	postgresrepo "taskboard/internal/adapter/database/postgres/repository"
	"taskboard/internal/adapter/database/redis"
	"taskboard/internal/adapter/database/sqlite"
	sqliterepo "taskboard/internal/adapter/database/sqlite/repository"
	"taskboard/internal/core/port"
	"taskboard/pkg/config"
)

// Open connects the state repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, telemetry port.Telemetry, sqlLogger zerolog.Logger) (port.StateRepository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewMemoryRepository(telemetry), nil

	case config.DriverFile:
		return file.NewFileRepository(cfg.DataDir, telemetry)

	case config.DriverSQLite:
		path, err := sqlitePath(cfg)
		if err != nil {
			return nil, err
		}

		db, err := sqlite.Open(path, sqlLogger)
		if err != nil {
			return nil, err
		}

		return sqliterepo.NewStateRepository(db, telemetry), nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}

		return postgresrepo.NewStateRepository(db, telemetry), nil

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}

		return mysqlrepo.NewStateRepository(db, telemetry), nil

	case config.DriverRedis:
		return redis.NewRedisRepository(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, telemetry)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// sqlitePath resolves a relative database path against the data directory.
func sqlitePath(cfg config.StorageConfig) (string, error) {
	path := cfg.SQLitePath
	if path == sqlite.MemoryPath || filepath.IsAbs(path) || cfg.DataDir == "" {
		return path, nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	return filepath.Join(cfg.DataDir, path), nil
}
