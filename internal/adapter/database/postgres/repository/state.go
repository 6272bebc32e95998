package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"taskboard/internal/adapter/database/migrations"
	"taskboard/internal/adapter/database/postgres"
	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const backend = migrations.Postgres

type StateRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewStateRepository(db *postgres.DB, telemetry port.Telemetry) port.StateRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &StateRepository{db: db, telemetry: telemetry}
}

func (r *StateRepository) Put(ctx context.Context, key string, value []byte) error {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Put", backend, map[string]interface{}{
		"db.table":    migrations.Table,
		"state.key":   key,
		"state.bytes": len(value),
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Put", backend)

	query, args, err := r.db.QueryBuilder.Insert(migrations.Table).
		Columns(migrations.KeyColumn, migrations.ValueColumn, migrations.UpdateColumn).
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (state_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fail(span, op, "build put", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fail(span, op, "put state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return nil
}

func (r *StateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Get", backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Get", backend)

	query, args, err := r.db.QueryBuilder.Select(migrations.ValueColumn).
		From(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		ToSql()
	if err != nil {
		return nil, fail(span, op, "build get", err)
	}

	var value []byte
	err = r.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(map[string]interface{}{"state.found": false})
		op.End(nil)
		return nil, port.ErrStateNotFound
	}
	if err != nil {
		return nil, fail(span, op, "get state", err)
	}

	span.SetAttributes(map[string]interface{}{"state.found": true, "state.bytes": len(value)})
	span.SetStatus("ok", "")
	op.End(nil)

	return value, nil
}

func (r *StateRepository) Delete(ctx context.Context, key string) error {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Delete", backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Delete", backend)

	query, args, err := r.db.QueryBuilder.Delete(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		ToSql()
	if err != nil {
		return fail(span, op, "build delete", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fail(span, op, "delete state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return nil
}

func (r *StateRepository) Has(ctx context.Context, key string) (bool, error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Has", backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Has", backend)

	query, args, err := r.db.QueryBuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fail(span, op, "build has", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fail(span, op, "check state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return exists, nil
}

func (r *StateRepository) Close() error {
	r.db.Close()
	return nil
}

func fail(span port.Span, op *tel.TelemetryOperation, action string, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	op.End(err)

	return fmt.Errorf("postgres %s: %w", action, err)
}
