package repository

import (
	"taskboard/internal/adapter/database/sqlite"
	"taskboard/internal/adapter/database/sqlstate"
	"taskboard/internal/core/port"
)

func NewStateRepository(db *sqlite.DB, telemetry port.Telemetry) port.StateRepository {
	return sqlstate.New(db.DB, *db.QueryBuilder, sqlstate.SQLite, telemetry)
}
