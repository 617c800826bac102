package db

import (
	"fmt"
	"log/slog"
	"strings"
)

// columnMigration adds columns that databases created by older
// releases do not have yet
type columnMigration struct {
	name    string
	table   string
	columns []columnDef
}

type columnDef struct {
	name string
	decl string
}

var columnMigrations = []columnMigration{
	{
		name:  "channel verification timestamp",
		table: "channels",
		columns: []columnDef{
			{name: "verified_at", decl: "TIMESTAMP"},
		},
	},
	{
		name:  "contact external ids",
		table: "contacts",
		columns: []columnDef{
			{name: "external_id", decl: "TEXT"},
		},
	},
}

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	// Tables added after the first release
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS intents (
		    id INTEGER PRIMARY KEY AUTOINCREMENT,
		    contact_id INTEGER NOT NULL,
		    type TEXT NOT NULL DEFAULT 'other',
		    state TEXT NOT NULL DEFAULT 'open',
		    abstract TEXT NOT NULL,
		    notes TEXT,
		    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		    FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_intents_contact ON intents (contact_id);
	`); err != nil {
		return fmt.Errorf("creating intents table: %w", err)
	}

	for _, m := range columnMigrations {
		if err := db.runColumnMigration(m); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) runColumnMigration(m columnMigration) error {
	names := make([]string, len(m.columns))
	args := make([]interface{}, 0, len(m.columns)+1)
	args = append(args, m.table)
	for i, c := range m.columns {
		names[i] = "?"
		args = append(args, c.name)
	}

	// Check which of the columns exist
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info(?)
		WHERE name IN (`+strings.Join(names, ", ")+`)
	`, args...).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for %s columns: %w", m.name, err)
	}

	if count == len(m.columns) {
		return nil
	}

	slog.Info("running migration", "migration", m.name)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range m.columns {
		_, err = tx.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, m.table, c.name, c.decl))
		if err != nil && err.Error() != "duplicate column name: "+c.name {
			return fmt.Errorf("adding %s column: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s migration: %w", m.name, err)
	}

	slog.Info("migration completed", "migration", m.name)
	return nil
}
