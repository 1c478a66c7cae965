package database

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schema)
	if len(stmts) != 8 {
		t.Fatalf("statements = %d, want 8", len(stmts))
	}
	for i, s := range stmts {
		if !strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("statement %d does not start with CREATE TABLE: %.40q", i, s)
		}
	}
}

func TestSplitStatementsDropsComments(t *testing.T) {
	in := "-- leading comment\nCREATE TABLE a (x INT);\n-- trailing comment\n"
	stmts := splitStatements(in)
	if len(stmts) != 1 {
		t.Fatalf("statements = %d, want 1", len(stmts))
	}
	if strings.Contains(stmts[0], "--") {
		t.Errorf("comment leaked into statement: %q", stmts[0])
	}
}
