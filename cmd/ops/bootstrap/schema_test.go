package main

import (
	"strings"
	"testing"
)

func TestSchemaStatementsAreIdempotent(t *testing.T) {
	for i, stmt := range schemaStatements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("statement %d is not idempotent:\n%s", i+1, stmt)
		}
	}
}

func TestSchemaCoversArchiveTables(t *testing.T) {
	joined := strings.Join(schemaStatements, "\n")
	for _, table := range []string{"decisions", "spot_scores"} {
		if !strings.Contains(joined, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %s", table)
		}
	}
	// Columns the repositories read and write.
	for _, col := range []string{"run_date", "run_id", "ruleset_version", "data_quality", "no_go", "generated_at", "document", "overall_score", "region"} {
		if !strings.Contains(joined, col) {
			t.Errorf("schema missing column %s", col)
		}
	}
}
