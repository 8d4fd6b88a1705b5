package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := DSN("pos", "secret", "localhost", "3306", "restaurant")
	want := "pos:secret@tcp(localhost:3306)/restaurant?charset=utf8mb4&parseTime=true&loc=UTC"
	if got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
	if got := DSN("pos", "", "db", "3306", "r"); !strings.HasPrefix(got, "pos@tcp(db:3306)/r?") {
		t.Fatalf("DSN without password = %q", got)
	}
}

func TestStatementsAreIdempotentCreates(t *testing.T) {
	stmts := Statements()
	if len(stmts) != 8 {
		t.Fatalf("statements = %d, want 8", len(stmts))
	}
	for _, s := range stmts {
		if !strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			t.Fatalf("unexpected statement: %.40s", s)
		}
	}
	if !strings.Contains(schema, "UNIQUE KEY uq_sales_order (order_id)") {
		t.Fatal("sales.order_id must be unique")
	}
}
