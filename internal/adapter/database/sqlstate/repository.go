// Package sqlstate stores state blobs in the app_state table through
// database/sql. Dialects differ only in placeholders and upsert syntax.
package sqlstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskboard/internal/adapter/database/migrations"
	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

type Dialect struct {
	Backend string
	// Upsert is appended to the insert statement to overwrite an existing key.
	Upsert string
}

var (
	SQLite = Dialect{
		Backend: migrations.SQLite,
		Upsert:  "ON CONFLICT(state_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at",
	}
	MySQL = Dialect{
		Backend: migrations.MySQL,
		Upsert:  "ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)",
	}
)

type Repository struct {
	db        *sql.DB
	builder   sq.StatementBuilderType
	dialect   Dialect
	telemetry port.Telemetry
}

func New(db *sql.DB, builder sq.StatementBuilderType, dialect Dialect, telemetry port.Telemetry) *Repository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &Repository{
		db:        db,
		builder:   builder,
		dialect:   dialect,
		telemetry: telemetry,
	}
}

func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Put", r.dialect.Backend, map[string]interface{}{
		"db.table":    migrations.Table,
		"state.key":   key,
		"state.bytes": len(value),
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Put", r.dialect.Backend)

	query, args, err := r.builder.Insert(migrations.Table).
		Columns(migrations.KeyColumn, migrations.ValueColumn, migrations.UpdateColumn).
		Values(key, value, time.Now().UTC()).
		Suffix(r.dialect.Upsert).
		ToSql()
	if err != nil {
		return r.fail(span, op, "build put", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return r.fail(span, op, "put state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return nil
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Get", r.dialect.Backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Get", r.dialect.Backend)

	query, args, err := r.builder.Select(migrations.ValueColumn).
		From(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		ToSql()
	if err != nil {
		return nil, r.fail(span, op, "build get", err)
	}

	var value []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(map[string]interface{}{"state.found": false})
		op.End(nil)
		return nil, port.ErrStateNotFound
	}
	if err != nil {
		return nil, r.fail(span, op, "get state", err)
	}

	span.SetAttributes(map[string]interface{}{"state.found": true, "state.bytes": len(value)})
	span.SetStatus("ok", "")
	op.End(nil)

	return value, nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Delete", r.dialect.Backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Delete", r.dialect.Backend)

	query, args, err := r.builder.Delete(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		ToSql()
	if err != nil {
		return r.fail(span, op, "build delete", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return r.fail(span, op, "delete state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return nil
}

func (r *Repository) Has(ctx context.Context, key string) (bool, error) {
	ctx, span := r.telemetry.StartStorageSpan(ctx, "Has", r.dialect.Backend, map[string]interface{}{
		"db.table":  migrations.Table,
		"state.key": key,
	})
	defer span.End()
	op := tel.StartOperation(r.telemetry, ctx, "Has", r.dialect.Backend)

	query, args, err := r.builder.Select("COUNT(*)").
		From(migrations.Table).
		Where(sq.Eq{migrations.KeyColumn: key}).
		ToSql()
	if err != nil {
		return false, r.fail(span, op, "build has", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, r.fail(span, op, "count state", err)
	}

	span.SetStatus("ok", "")
	op.End(nil)

	return count > 0, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) fail(span port.Span, op *tel.TelemetryOperation, action string, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	op.End(err)

	return fmt.Errorf("%s %s: %w", r.dialect.Backend, action, err)
}
