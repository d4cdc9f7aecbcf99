package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dqcheck/internal/config"
	"dqcheck/internal/metrics"
	"dqcheck/internal/metrics/datadog"
	"dqcheck/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "dqcheck/internal/storage/all"
)

// main is the entry point for the dqcheck binary. It loads the suite config,
// optionally initializes a metrics backend, executes the run, and maps the
// outcome onto the exit code contract: 0 all checks passed, 1 at least one
// check failed, 2 the run could not be completed.
func main() {
	var (
		cfgPath           string
		inputPath         string
		outDir            string
		jobName           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validateOnly      bool
	)

	flag.StringVar(&cfgPath, "config", "", "suite config JSON path (env DQCHECK_CONFIG)")
	flag.StringVar(&inputPath, "input", "", "override the source with a local CSV path (env DQCHECK_INPUT)")
	flag.StringVar(&outDir, "out", "", "override the artifacts directory")
	flag.StringVar(&jobName, "job", "", "override the job name used in the report and metrics")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none; env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// Decide config path: flag → env → default.
	if cfgPath == "" {
		cfgPath = os.Getenv("DQCHECK_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = "configs/suites/orders.json"
	}

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf(exitStructural, "open config: %v", err)
	}

	var suite config.Suite
	err = json.NewDecoder(f).Decode(&suite)
	f.Close()
	if err != nil {
		fatalf(exitStructural, "decode config: %v", err)
	}

	// Lint the suite config.
	issues := config.ValidateSuite(suite)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(exitStructural)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validateOnly {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(exitPass)
	}

	applyOverrides(&suite, inputPath, outDir, jobName)

	initMetricsBackend(metricsBackendFlg, pushGatewayURLFlg, suite.Job, *verbose)

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("suite: job=%s source=%s parser=%s storage=%s",
			suite.Job, suite.Source.Kind, suite.Parser.Kind, suite.Storage.Kind)
	}

	rep, err := execute(ctx, suite)

	code := exitPass
	switch {
	case err != nil:
		log.Printf("%v", err)
		code = exitStructural
	case !rep.OverallPass:
		log.Printf("checks failed: invalid_rows=%d failed_constraints=%d",
			rep.InvalidRows, rep.FailedConstraints)
		code = exitCheckFailed
	default:
		log.Printf("checks passed: total_rows=%d valid_rows=%d skipped_rows=%d",
			rep.TotalRows, rep.ValidRows, rep.SkippedRows)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}

	// Flush explicitly: os.Exit skips deferred functions.
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
	os.Exit(code)
}

// applyOverrides layers the CLI flags and process environment on top of the
// decoded suite file.
func applyOverrides(suite *config.Suite, inputPath, outDir, jobName string) {
	if inputPath == "" {
		inputPath = os.Getenv("DQCHECK_INPUT")
	}
	if inputPath != "" {
		suite.Source.Kind = "file"
		suite.Source.File.Path = inputPath
	}
	if outDir != "" {
		suite.Artifacts.Dir = outDir
	}
	if jobName != "" {
		suite.Job = jobName
	}
	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" {
		suite.Alert.WebhookURL = url
	}
}

// initMetricsBackend decides the metrics backend (flag → env → default) and
// installs it. Failures degrade to the nop backend: metrics never block a
// check run.
func initMetricsBackend(backendName, gatewayURL, job string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}

		jobName := job
		if jobName == "" {
			jobName = "dqcheck"
		}

		b, err := prompush.NewBackend(jobName, gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gatewayURL, backendName, jobName)
		metrics.SetBackend(b)

	case "datadog":
		addr := os.Getenv("DQCHECK_STATSD_ADDR")
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "dq.",
			GlobalTags: []string{"service:dqcheck", "job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v", addr, backendName)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(code int, format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(code)
}
