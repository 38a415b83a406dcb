package shared

import (
	"database/sql"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("expected migrations to apply, got %v", err)
	}

	t.Run("Creates Tables", func(t *testing.T) {
		for _, table := range []string{"artists", "cache_records", "schema_migrations"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Errorf("expected rerun to be a no-op, got %v", err)
		}
	})

	t.Run("Nothing Applied Leaves Version Zero", func(t *testing.T) {
		fresh, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer fresh.Close()

		if err := createMigrationsTable(fresh); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		version, err := getCurrentVersion(fresh)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0 before any migration, got %d", version)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}

		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='cache_records'").Scan(&name)
		if err == nil {
			t.Error("expected cache_records to be dropped")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing left to rollback")
		}
	})
}

func TestExecStatements(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Comments may carry semicolons; the splitter must not treat them as
	// statement boundaries.
	script := `
-- scratch table; rows are whole-row replacements
CREATE TABLE scratch (
    id INTEGER PRIMARY KEY
);

INSERT INTO scratch (id) VALUES (1) -- seed row; keep it
`

	if err := execStatements(db, script, func(*sql.Tx) error { return nil }); err != nil {
		t.Fatalf("expected script to apply, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM scratch").Scan(&count); err != nil {
		t.Fatalf("expected scratch table to exist: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 seeded row, got %d", count)
	}
}
