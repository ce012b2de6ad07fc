package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("ValidateEmbedded: %v", err)
	}
}

func TestValidateFSRejectsBadMigrations(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {
			"m/1_add.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\n")},
		},
		"duplicate version": {
			"m/20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\n")},
			"m/20240101000000_b.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\n")},
		},
		"missing down": {
			"m/20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		},
		"empty up": {
			"m/20240101000000_a.sql": {Data: []byte("-- +goose Up\n-- nothing yet\n-- +goose Down\nSELECT 1;\n")},
		},
	}
	for name, fsys := range cases {
		if err := ValidateFS(fsys, "m"); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	ok := fstest.MapFS{"m/20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")}}
	if err := ValidateFS(ok, "m"); err != nil {
		t.Fatalf("expected valid migration, got %v", err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	embedded, err := fs.Glob(Migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) == 0 || len(embedded) != len(onDisk) {
		t.Fatalf("expected embedded migrations to mirror disk, got %d vs %d", len(embedded), len(onDisk))
	}
}

func TestTradeMigrationEnforcesCartUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_trade_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CONSTRAINT uq_carts_restaurant_member UNIQUE (restaurant_id, member_id)",
		"order_id BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE",
		"price NUMERIC(12, 2) NOT NULL DEFAULT 0",
		"CREATE TABLE IF NOT EXISTS dining_tables",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRegistrationMigrationIndexesQueueOrder(t *testing.T) {
	content := readMigration(t, "*_create_registrations_table.sql")
	for _, sub := range []string{
		"ON registrations (table_type_id, status, id)",
		"WHERE status = 'waiting'",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Table Notes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_table_notes.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
