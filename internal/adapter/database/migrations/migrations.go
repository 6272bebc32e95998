package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

const (
	Table        = "app_state"
	KeyColumn    = "state_key"
	ValueColumn  = "payload"
	UpdateColumn = "updated_at"
)

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var files embed.FS

// Up applies every pending migration for dialect through an already open
// database driver. The caller keeps ownership of the underlying connection.
func Up(dialect string, driver database.Driver) error {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run %s migrations: %w", dialect, err)
	}

	return nil
}
