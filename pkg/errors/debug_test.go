package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpCollectsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_tables_restaurant_code", TableName: "tables"}
	err := Wrap(CodeConflict, fmt.Errorf("insert table: %w", pgErr), "table code already used")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "uq_tables_restaurant_code" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected unwrap chain, got %v", d.Chain)
	}

	fields := d.Fields()
	if fields["pg_table"] != "tables" {
		t.Fatalf("expected pg_table in fields, got %v", fields)
	}
	if _, ok := fields["pg_detail"]; ok {
		t.Fatalf("empty pg fields should be omitted")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
