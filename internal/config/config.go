// Package config defines the JSON-serializable configuration model for a
// data-quality check run. It is intentionally small, explicit, and
// dependency-free so suites can be loaded from disk and handed through the
// program without glue code.
//
// Example (trimmed):
//
//	{
//	  "job":    "amazon_orders",
//	  "source": { "kind": "file", "file": { "path": "data/orders.csv" } },
//	  "parser": { "kind": "csv", "options": { "has_header": true, "trim_space": true } },
//	  "checks": { "options": { "skip_blank_rows": true } },
//	  "artifacts": { "dir": "artifacts" },
//	  "alert":  { "repository": "data-quality-ci-pipeline" },
//	  "storage": { "kind": "postgres", "db": { "dsn": "postgresql://...", "table": "dq_runs" } }
//	}
package config

// Suite is the top-level object decoded from a suite file
// (e.g., configs/suites/*.json). It names the job and wires the source,
// parser, check options, artifact output, alerting and optional persistence.
type Suite struct {
	// Job labels the run in metrics, the report, and persisted summaries.
	Job string `json:"job"`

	// Source describes where the input batch comes from (file or http).
	Source Source `json:"source"`

	// Parser configures how raw bytes become records. Current kind: "csv".
	Parser Parser `json:"parser"`

	// Checks carries options for the validation layers (row + dataset).
	Checks Checks `json:"checks"`

	// Artifacts configures where valid/invalid row files are written.
	Artifacts Artifacts `json:"artifacts"`

	// Alert configures the failure webhook. Disabled when the URL resolves
	// to empty (flag, then config, then SLACK_WEBHOOK_URL).
	Alert Alert `json:"alert"`

	// Storage optionally persists run summaries. Disabled when kind is "".
	Storage Storage `json:"storage"`

	// Runtime controls concurrency for the row layer.
	Runtime RuntimeConfig `json:"runtime"`
}

// Source identifies the data source. Kinds: "file", "http".
type Source struct {
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`

	// Encoding optionally names a source character encoding to decode from
	// before parsing. Supported: "" (UTF-8 passthrough), "latin1".
	Encoding string `json:"encoding,omitempty"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL            string            `json:"url"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	MaxRetries     int               `json:"max_retries"`
	Headers        map[string]string `json:"headers,omitempty"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys: has_header (bool), comma (string),
	// trim_space (bool), header_map (object).
	Options Options `json:"options"`
}

// Checks carries the options bag for the validation layers. Typical keys:
// skip_blank_rows (bool), currencies/countries/statuses (string arrays),
// date_layouts (string array).
type Checks struct {
	Options Options `json:"options"`
}

// Artifacts configures row artifact output. Valid and Invalid default to
// "valid_rows.csv" and "invalid_rows.csv" under Dir.
type Artifacts struct {
	Dir     string `json:"dir"`
	Valid   string `json:"valid,omitempty"`
	Invalid string `json:"invalid,omitempty"`
}

// Alert configures the failure webhook payload and delivery.
type Alert struct {
	WebhookURL     string `json:"webhook_url,omitempty"`
	Repository     string `json:"repository"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Storage selects the run-summary sink. Kinds: "" (disabled), "postgres",
// "sqldb".
type Storage struct {
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// Driver names the database/sql driver for the "sqldb" kind
	// (sqlite, mssql, mysql). Ignored by the "postgres" kind.
	Driver string `json:"driver,omitempty"`

	// DSN is the connection string (pgx URL or driver-specific form).
	DSN string `json:"dsn"`

	// Table is the run-summary table name. Defaults to "dq_runs".
	Table string `json:"table,omitempty"`
}

// RuntimeConfig controls row-layer concurrency. Zero values mean defaults
// (GOMAXPROCS workers).
type RuntimeConfig struct {
	RowWorkers int `json:"row_workers"`
}

// Options fetches typed values from arbitrary JSON maps without a config
// library. It performs only minimal coercion and returns the provided
// default when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so float64 is accepted and truncated.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def. Useful for
// single-character parser settings such as the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// with string values. Non-string values are skipped. Missing or mistyped
// keys yield an empty map.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings (or of interface values holding strings). Nil when missing.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}
