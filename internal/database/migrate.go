package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema.  Every statement is written to
// be idempotent (CREATE TABLE IF NOT EXISTS), so running it on every
// startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// splitStatements breaks the schema on semicolons at end of line.  The
// schema contains no procedures or string literals with semicolons, so
// a simple split is enough.
func splitStatements(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		// drop comment-only lines so bare comments between statements
		// don't become empty statements
		var lines []string
		for _, ln := range strings.Split(part, "\n") {
			t := strings.TrimSpace(ln)
			if t == "" || strings.HasPrefix(t, "--") {
				continue
			}
			lines = append(lines, ln)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
