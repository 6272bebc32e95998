package test

import (
	"log"
	"testing"

	"github.com/rs/zerolog"

	"taskboard/internal/adapter/database/sqlite"
)

// InitTestDB opens a migrated in-memory SQLite database with statement logging
// disabled.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.Open(sqlite.MemoryPath, zerolog.Nop())
	if err != nil {
		log.Fatal(err)
	}

	return db
}

// CleanDB empties every application table, leaving the migration bookkeeping.
func CleanDB(t *testing.T, db *sqlite.DB) {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			rows.Close()
			t.Fatalf("Failed to scan table name: %v", err)
		}
		tables = append(tables, table)
	}
	rows.Close()

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}
