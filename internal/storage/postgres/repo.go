// Package postgres implements the run-summary repository on Postgres using
// pgx v5: a single INSERT for the summary row and a COPY for row failures.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dqcheck/internal/validate"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // run-summary table; failures go to Table + "_failures"
}

// Repository is a Postgres-backed run-summary sink.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository connects a pool, ensures the schema, and returns the
// Repository plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	r := &Repository{pool: pool, cfg: cfg}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	closeFn := func() { pool.Close() }
	return r, closeFn, nil
}

func (r *Repository) failuresTable() string { return r.cfg.Table + "_failures" }

func (r *Repository) ensureSchema(ctx context.Context) error {
	runs := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id             TEXT PRIMARY KEY,
		job                TEXT NOT NULL,
		started_at         TIMESTAMPTZ NOT NULL,
		duration_ms        BIGINT NOT NULL,
		total_rows         INTEGER NOT NULL,
		valid_rows         INTEGER NOT NULL,
		invalid_rows       INTEGER NOT NULL,
		skipped_rows       INTEGER NOT NULL,
		failed_constraints INTEGER NOT NULL,
		overall_pass       BOOLEAN NOT NULL,
		fingerprint        TEXT NOT NULL DEFAULT ''
	)`, pgx.Identifier{r.cfg.Table}.Sanitize())

	failures := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id    TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		reason    TEXT NOT NULL
	)`, pgx.Identifier{r.failuresTable()}.Sanitize())

	for _, ddl := range []string{runs, failures} {
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}

// insertSQL renders the summary INSERT for a sanitized table identifier.
func insertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s
		(run_id, job, started_at, duration_ms, total_rows, valid_rows,
		 invalid_rows, skipped_rows, failed_constraints, overall_pass, fingerprint)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		pgx.Identifier{table}.Sanitize())
}

// failureRows renders report failures into CopyFrom rows, preserving order.
func failureRows(rep validate.Report) [][]any {
	rows := make([][]any, 0, len(rep.Failures))
	for _, f := range rep.Failures {
		rows = append(rows, []any{rep.RunID, f.Index, f.Reason})
	}
	return rows
}

// Save inserts the summary row, then bulk-copies the row failures.
func (r *Repository) Save(ctx context.Context, rep validate.Report) error {
	_, err := r.pool.Exec(ctx, insertSQL(r.cfg.Table),
		rep.RunID, rep.Job, rep.StartedAt, rep.DurationMs,
		rep.TotalRows, rep.ValidRows, rep.InvalidRows, rep.SkippedRows,
		rep.FailedConstraints, rep.OverallPass, rep.Fingerprint)
	if err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}

	if len(rep.Failures) == 0 {
		return nil
	}

	_, err = r.pool.CopyFrom(ctx,
		pgx.Identifier{r.failuresTable()},
		[]string{"run_id", "row_index", "reason"},
		pgx.CopyFromRows(failureRows(rep)))
	if err != nil {
		return fmt.Errorf("postgres: copy failures: %w", err)
	}
	return nil
}
