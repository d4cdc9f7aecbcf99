// Package main wires the check run end-to-end: fetch → parse → validate →
// artifacts → alert → store. This file keeps the CLI layer thin: it depends
// only on storage-agnostic interfaces and never imports database drivers or
// backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/zeebo/xxh3"

	"dqcheck/internal/alert"
	"dqcheck/internal/artifact"
	"dqcheck/internal/config"
	"dqcheck/internal/datasource"
	"dqcheck/internal/datasource/file"
	"dqcheck/internal/datasource/httpds"
	"dqcheck/internal/metrics"
	csvparser "dqcheck/internal/parser/csv"
	"dqcheck/internal/schema"
	"dqcheck/internal/storage"
	"dqcheck/internal/validate"
)

// Exit code contract for CI: all checks passed, at least one check failed,
// or the run could not produce a verdict at all (bad config, unreadable
// source, malformed CSV).
const (
	exitPass        = 0
	exitCheckFailed = 1
	exitStructural  = 2
)

type Repository = storage.Repository

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = openSource
)

// execute runs one check suite end to end. A failed check is reflected in
// the returned report, not in the error; the error path is reserved for
// structural problems that prevented a verdict. On a structural fetch or
// parse failure the CSV artifacts are still created, zero-byte, so CI steps
// that collect them never miss a file.
func execute(ctx context.Context, suite config.Suite) (validate.Report, error) {
	job := suite.Job
	start := time.Now()

	writer := &artifact.Writer{
		Dir:     suite.Artifacts.Dir,
		Valid:   suite.Artifacts.Valid,
		Invalid: suite.Artifacts.Invalid,
	}

	// 1) Fetch: open the source and layer the optional transcoder.
	t0 := time.Now()
	rc, err := openSourceFn(ctx, suite)
	if err == nil {
		var raw io.ReadCloser = rc
		rc, err = datasource.Transcode(raw, suite.Source.Encoding)
		if err != nil {
			raw.Close()
		}
	}
	metrics.RecordStep(job, "fetch", err, time.Since(t0))
	if err != nil {
		writeEmptyArtifacts(writer)
		return validate.Report{}, fmt.Errorf("source open: %w", err)
	}
	defer rc.Close()

	// The fingerprint covers the bytes exactly as the parser consumed them.
	hasher := xxh3.New()
	tee := io.TeeReader(rc, hasher)

	p, err := buildParser(suite.Parser)
	if err != nil {
		writeEmptyArtifacts(writer)
		return validate.Report{}, err
	}

	// 2) Parse the whole batch; both layers need full columns in memory.
	t0 = time.Now()
	batch, err := p.Parse(tee)
	metrics.RecordStep(job, "parse", err, time.Since(t0))
	if err != nil {
		writeEmptyArtifacts(writer)
		return validate.Report{}, fmt.Errorf("parse: %w", err)
	}

	// 3) Validate: row layer and dataset layer run concurrently.
	checks := suite.Checks.Options
	row := &validate.Row{
		Contract:   schema.Orders(),
		Currencies: checks.StringSlice("currencies"),
		Countries:  checks.StringSlice("countries"),
		Layouts:    checks.StringSlice("date_layouts"),
		SkipBlank:  checks.Bool("skip_blank_rows", true),
	}
	statuses := checks.StringSlice("statuses")
	if len(statuses) == 0 {
		statuses = schema.Statuses
	}
	ds := &validate.Dataset{Constraints: validate.OrderConstraints(statuses)}
	eng := validate.Engine{Row: row, Dataset: ds, Workers: suite.Runtime.RowWorkers}

	t0 = time.Now()
	verdicts, constraints, err := eng.Run(ctx, batch)
	metrics.RecordStep(job, "validate", err, time.Since(t0))
	if err != nil {
		return validate.Report{}, fmt.Errorf("validate: %w", err)
	}

	rep := validate.Summarize(job, verdicts, constraints)
	rep.StartedAt = start.UTC()
	rep.DurationMs = time.Since(start).Milliseconds()
	rep.Fingerprint = fmt.Sprintf("%016x", hasher.Sum64())

	metrics.RecordRows(job, "total", int64(rep.TotalRows))
	metrics.RecordRows(job, "valid", int64(rep.ValidRows))
	metrics.RecordRows(job, "invalid", int64(rep.InvalidRows))
	metrics.RecordRows(job, "skipped", int64(rep.SkippedRows))
	metrics.RecordRun(job, rep.OverallPass)

	// 4) Artifacts: valid/invalid row files plus the JSON report.
	t0 = time.Now()
	err = writer.Write(batch, verdicts)
	if err == nil {
		err = writer.WriteReport(rep)
	}
	metrics.RecordStep(job, "artifacts", err, time.Since(t0))
	if err != nil {
		return validate.Report{}, fmt.Errorf("artifacts: %w", err)
	}

	// 5) Alert on failed runs. Delivery problems are logged, never fatal:
	// a dead webhook must not mask the verdict.
	if !rep.OverallPass {
		notifier := alert.NewSlack(suite.Alert.WebhookURL, suite.Alert.Repository,
			time.Duration(suite.Alert.TimeoutSeconds)*time.Second)
		if notifier.Enabled() {
			t0 = time.Now()
			nerr := notifier.Notify(ctx, rep)
			metrics.RecordStep(job, "alert", nerr, time.Since(t0))
			if nerr != nil {
				log.Printf("alert: %v", nerr)
			}
		}
	}

	// 6) Persist the run summary when a storage backend is configured. A
	// configured sink is part of the run contract, so failures here are
	// structural.
	if suite.Storage.Kind != "" {
		t0 = time.Now()
		serr := persistReport(ctx, suite, rep)
		metrics.RecordStep(job, "store", serr, time.Since(t0))
		if serr != nil {
			return validate.Report{}, fmt.Errorf("store: %w", serr)
		}
	}

	return rep, nil
}

// persistReport constructs the configured storage repository, saves the
// report, and closes the backend.
func persistReport(ctx context.Context, suite config.Suite, rep validate.Report) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:   suite.Storage.Kind,
		Driver: suite.Storage.DB.Driver,
		DSN:    suite.Storage.DB.DSN,
		Table:  suite.Storage.DB.Table,
	})
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()
	return repo.Save(ctx, rep)
}

// openSource maps the suite source onto a byte stream.
func openSource(ctx context.Context, suite config.Suite) (io.ReadCloser, error) {
	switch suite.Source.Kind {
	case "file":
		return file.NewLocal(suite.Source.File.Path).Open(ctx)
	case "http":
		src := suite.Source.HTTP
		headers := http.Header{}
		for k, v := range src.Headers {
			headers.Set(k, v)
		}
		cfg := httpds.Config{
			Timeout:     time.Duration(src.TimeoutSeconds) * time.Second,
			MaxRetries:  src.MaxRetries,
			BaseHeaders: headers,
		}
		return httpds.NewRemote(src.URL, cfg).Open(ctx)
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", suite.Source.Kind)
	}
}

// buildParser maps parser configuration into a concrete parser implementation.
func buildParser(p config.Parser) (*csvparser.Parser, error) {
	switch p.Kind {
	case "csv":
		opt := csvparser.Options{
			HasHeader: p.Options.Bool("has_header", true),
			Comma:     p.Options.Rune("comma", ','),
			TrimSpace: p.Options.Bool("trim_space", true),
			HeaderMap: p.Options.StringMap("header_map"),
		}
		return csvparser.NewParser(opt), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

// writeEmptyArtifacts keeps the artifact contract on structural failures:
// both CSV files exist as zero-byte placeholders.
func writeEmptyArtifacts(w *artifact.Writer) {
	if err := w.WriteEmpty(); err != nil {
		log.Printf("artifacts: %v", err)
	}
}
