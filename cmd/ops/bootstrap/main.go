// Package main implements the schema bootstrap tool for the FishCast
// archive database.
//
// The tool applies the idempotent DDL for the two archive tables
// (decisions, spot_scores) so a fresh environment can serve its first
// archived run. It is meant for operators, not for automated migration
// pipelines: the schema is small and changes rarely.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap --env=dev
//	go run ./cmd/ops/bootstrap --env=prod --database-url=postgres://...
//
// The database URL is taken from --database-url, falling back to the
// DATABASE_URL environment variable. Targeting prod requires an explicit
// interactive confirmation ("yes").
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Supported environments for the bootstrap tool.
var validEnvironments = map[string]bool{
	"local":   true,
	"dev":     true,
	"staging": true,
	"prod":    true,
}

func main() {
	envFlag := flag.String("env", "", "Target environment (local/dev/staging/prod) [required]")
	urlFlag := flag.String("database-url", "", "Postgres connection URL (default: DATABASE_URL env var)")
	timeoutFlag := flag.Duration("timeout", 30*time.Second, "Overall execution timeout")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "FishCast Schema Bootstrap\n\n")
		fmt.Fprintf(os.Stderr, "Applies the archive schema (decisions, spot_scores) to the target\n")
		fmt.Fprintf(os.Stderr, "database. All statements are idempotent.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  bootstrap --env=dev [--database-url=URL]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if !validEnvironments[*envFlag] {
		fmt.Fprintf(os.Stderr, "error: --env must be one of local, dev, staging, prod\n\n")
		flag.Usage()
		os.Exit(2)
	}

	databaseURL := *urlFlag
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "error: no database URL; pass --database-url or set DATABASE_URL")
		os.Exit(2)
	}

	if *envFlag == "prod" && !confirmProd(os.Stdin, os.Stderr) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if err := run(ctx, databaseURL, *envFlag, logger); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
}

// confirmProd requires the operator to type "yes" before touching prod.
func confirmProd(in *os.File, out *os.File) bool {
	fmt.Fprint(out, "You are about to modify the PROD database schema. Type 'yes' to continue: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "yes"
}

func run(ctx context.Context, databaseURL, env string, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("applying archive schema", "env", env, "statements", len(schemaStatements))
	for i, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}

	logger.Info("schema bootstrap complete", "env", env)
	return nil
}
