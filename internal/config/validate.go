// This file adds a lightweight linter for Suite values. It performs static
// checks over a decoded Suite and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not
	// necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding for a Suite.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "storage.db.dsn"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where callers expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateSuite performs static validation of a Suite. It does not mutate
// the suite; callers decide whether warnings are fatal.
func ValidateSuite(s Suite) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics, reports and persisted runs",
		})
	}
	issues = append(issues, validateSource(s.Source)...)
	issues = append(issues, validateParser(s.Parser)...)
	issues = append(issues, validateChecks(s.Checks)...)
	issues = append(issues, validateAlert(s.Alert)...)
	issues = append(issues, validateStorage(s.Storage)...)
	issues = append(issues, validateRuntime(s.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	// Unknown kinds are warnings for forward compatibility.
	known := map[string]struct{}{
		"file": {},
		"http": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		if strings.TrimSpace(s.HTTP.URL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  "http source requires a non-empty url",
			})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.max_retries",
				Message:  "max_retries must be >= 0",
			})
		}
	}

	switch s.Encoding {
	case "", "latin1":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.encoding",
			Message:  fmt.Sprintf("unsupported encoding %q (supported: latin1)", s.Encoding),
		})
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}
	if p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; ensure a matching implementation exists", p.Kind),
		})
	}
	if p.Kind == "csv" && !p.Options.Bool("has_header", true) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.has_header",
			Message:  "header row is required; columns are matched by name",
		})
	}
	return issues
}

func validateChecks(c Checks) []Issue {
	var issues []Issue

	// Overridable acceptance sets must not be overridden to empty.
	for _, key := range []string{"currencies", "countries", "statuses", "date_layouts"} {
		if v, ok := c.Options[key]; ok {
			if vals := c.Options.StringSlice(key); len(vals) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "checks.options." + key,
					Message:  fmt.Sprintf("%s overrides the default set but is empty (got %v)", key, v),
				})
			}
		}
	}
	return issues
}

func validateAlert(a Alert) []Issue {
	var issues []Issue

	if a.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "alert.timeout_seconds",
			Message:  "timeout_seconds must be >= 0",
		})
	}
	if a.WebhookURL != "" && !strings.HasPrefix(a.WebhookURL, "https://") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "alert.webhook_url",
			Message:  "webhook url is not https",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case "":
		// persistence disabled
		return issues
	case "postgres":
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.dsn",
				Message:  "postgres storage requires a dsn",
			})
		}
	case "sqldb":
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.dsn",
				Message:  "sqldb storage requires a dsn",
			})
		}
		switch s.DB.Driver {
		case "sqlite", "mssql", "mysql":
		case "":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.driver",
				Message:  "sqldb storage requires a driver (sqlite, mssql, mysql)",
			})
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.driver",
				Message:  fmt.Sprintf("unknown driver %q (supported: sqlite, mssql, mysql)", s.DB.Driver),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching implementation exists", s.Kind),
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.RowWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.row_workers",
			Message:  "row_workers must be >= 0 (0 = GOMAXPROCS)",
		})
	}
	return issues
}
