package main

// schemaStatements holds the archive DDL in execution order. Every
// statement is idempotent so the tool can be re-run safely.
//
// decisions holds one document per run date; the columns beside the
// JSONB exist for listing and retention queries only. spot_scores holds
// one row per run date and spot for the score lookup endpoints.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS decisions (
		run_date        DATE PRIMARY KEY,
		run_id          TEXT NOT NULL,
		ruleset_version TEXT NOT NULL,
		data_quality    TEXT NOT NULL,
		no_go           BOOLEAN NOT NULL DEFAULT FALSE,
		generated_at    TIMESTAMPTZ NOT NULL,
		document        JSONB NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_decisions_generated_at
		ON decisions (generated_at)`,

	`CREATE TABLE IF NOT EXISTS spot_scores (
		run_date      DATE NOT NULL,
		spot_id       TEXT NOT NULL,
		region        TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		no_go         BOOLEAN NOT NULL DEFAULT FALSE,
		document      JSONB NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_date, spot_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_spot_scores_region
		ON spot_scores (run_date, region)`,
}
