// Package sqldb implements the run-summary repository on database/sql. One
// implementation serves the sqlite, mysql, and mssql drivers; placeholder
// rendering and table DDL are the only per-driver differences, captured in a
// dialect table. Failure rows go in batched INSERTs inside a transaction,
// which keeps performance acceptable for moderate volumes.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"dqcheck/internal/validate"
)

// Config holds generic SQL repository configuration.
type Config struct {
	Driver string // one of "sqlite", "mysql", "mssql"
	DSN    string // passed directly to database/sql
	Table  string // run-summary table; failures go to Table + "_failures"
}

// dialect captures the per-driver differences: the registered driver name,
// placeholder rendering, and the CREATE TABLE statements. started_at is
// stored as RFC 3339 text so the three drivers bind it identically.
type dialect struct {
	driverName  string
	placeholder func(n int) string // n is the 1-based argument position
	runsDDL     string             // format arg: runs table name
	failuresDDL string             // format arg: failures table name
}

func questionMark(int) string { return "?" }

var dialects = map[string]dialect{
	"sqlite": {
		driverName:  "sqlite",
		placeholder: questionMark,
		runsDDL: `CREATE TABLE IF NOT EXISTS %s (
			run_id             TEXT PRIMARY KEY,
			job                TEXT NOT NULL,
			started_at         TEXT NOT NULL,
			duration_ms        INTEGER NOT NULL,
			total_rows         INTEGER NOT NULL,
			valid_rows         INTEGER NOT NULL,
			invalid_rows       INTEGER NOT NULL,
			skipped_rows       INTEGER NOT NULL,
			failed_constraints INTEGER NOT NULL,
			overall_pass       INTEGER NOT NULL,
			fingerprint        TEXT NOT NULL DEFAULT ''
		)`,
		failuresDDL: `CREATE TABLE IF NOT EXISTS %s (
			run_id    TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			reason    TEXT NOT NULL
		)`,
	},
	"mysql": {
		driverName:  "mysql",
		placeholder: questionMark,
		runsDDL: `CREATE TABLE IF NOT EXISTS %s (
			run_id             VARCHAR(64) PRIMARY KEY,
			job                VARCHAR(255) NOT NULL,
			started_at         VARCHAR(64) NOT NULL,
			duration_ms        BIGINT NOT NULL,
			total_rows         INT NOT NULL,
			valid_rows         INT NOT NULL,
			invalid_rows       INT NOT NULL,
			skipped_rows       INT NOT NULL,
			failed_constraints INT NOT NULL,
			overall_pass       TINYINT(1) NOT NULL,
			fingerprint        VARCHAR(64) NOT NULL DEFAULT ''
		)`,
		failuresDDL: `CREATE TABLE IF NOT EXISTS %s (
			run_id    VARCHAR(64) NOT NULL,
			row_index INT NOT NULL,
			reason    TEXT NOT NULL
		)`,
	},
	"mssql": {
		driverName:  "sqlserver",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		runsDDL: `IF OBJECT_ID(N'%[1]s', N'U') IS NULL
		CREATE TABLE %[1]s (
			run_id             NVARCHAR(64) NOT NULL PRIMARY KEY,
			job                NVARCHAR(255) NOT NULL,
			started_at         NVARCHAR(64) NOT NULL,
			duration_ms        BIGINT NOT NULL,
			total_rows         INT NOT NULL,
			valid_rows         INT NOT NULL,
			invalid_rows       INT NOT NULL,
			skipped_rows       INT NOT NULL,
			failed_constraints INT NOT NULL,
			overall_pass       BIT NOT NULL,
			fingerprint        NVARCHAR(64) NOT NULL DEFAULT ''
		)`,
		failuresDDL: `IF OBJECT_ID(N'%[1]s', N'U') IS NULL
		CREATE TABLE %[1]s (
			run_id    NVARCHAR(64) NOT NULL,
			row_index INT NOT NULL,
			reason    NVARCHAR(MAX) NOT NULL
		)`,
	},
}

// Repository is a database/sql-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
	d   dialect
}

// NewRepository opens a connection for the configured driver, ensures the
// schema, and returns a Repository plus a close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	sqlite: "file:dq.db?cache=shared"
//	mysql:  "dq:dq@tcp(localhost:3306)/dq"
//	mssql:  "sqlserver://dq:dq@localhost:1433?database=dq"
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqldb: DSN must not be empty")
	}
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, nil, fmt.Errorf("sqldb: unknown driver %q", cfg.Driver)
	}

	db, err := sql.Open(d.driverName, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqldb: open: %w", err)
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqldb: ping: %w", err)
	}

	r := &Repository{db: db, cfg: cfg, d: d}
	if err := r.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() { db.Close() }
	return r, closeFn, nil
}

func (r *Repository) failuresTable() string { return r.cfg.Table + "_failures" }

func (r *Repository) ensureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(r.d.runsDDL, r.cfg.Table),
		fmt.Sprintf(r.d.failuresDDL, r.failuresTable()),
	}
	for _, ddl := range stmts {
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqldb: ensure schema: %w", err)
		}
	}
	return nil
}

// Save inserts the summary row, then the row failures inside a single
// transaction with a prepared statement.
func (r *Repository) Save(ctx context.Context, rep validate.Report) error {
	cols := []string{
		"run_id", "job", "started_at", "duration_ms", "total_rows",
		"valid_rows", "invalid_rows", "skipped_rows", "failed_constraints",
		"overall_pass", "fingerprint",
	}
	ph := make([]string, len(cols))
	for i := range ph {
		ph[i] = r.d.placeholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.cfg.Table, strings.Join(cols, ", "), strings.Join(ph, ", "))

	_, err := r.db.ExecContext(ctx, insert,
		rep.RunID, rep.Job, rep.StartedAt.UTC().Format(time.RFC3339Nano),
		rep.DurationMs, rep.TotalRows, rep.ValidRows, rep.InvalidRows,
		rep.SkippedRows, rep.FailedConstraints, boolInt(rep.OverallPass),
		rep.Fingerprint)
	if err != nil {
		return fmt.Errorf("sqldb: insert run: %w", err)
	}

	if len(rep.Failures) == 0 {
		return nil
	}
	return r.insertFailures(ctx, rep)
}

func (r *Repository) insertFailures(ctx context.Context, rep validate.Report) error {
	stmtSQL := fmt.Sprintf("INSERT INTO %s (run_id, row_index, reason) VALUES (%s, %s, %s)",
		r.failuresTable(), r.d.placeholder(1), r.d.placeholder(2), r.d.placeholder(3))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqldb: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqldb: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range rep.Failures {
		if _, err := stmt.ExecContext(ctx, rep.RunID, f.Index, f.Reason); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqldb: insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqldb: commit: %w", err)
	}
	return nil
}

// boolInt renders a bool as 0/1 so every dialect binds it the same way.
func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
