package repository

import (
	"taskboard/internal/adapter/database/mysql"
	"taskboard/internal/adapter/database/sqlstate"
	"taskboard/internal/core/port"
)

func NewStateRepository(db *mysql.DB, telemetry port.Telemetry) port.StateRepository {
	return sqlstate.New(db.DB, *db.QueryBuilder, sqlstate.MySQL, telemetry)
}
