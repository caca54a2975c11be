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
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config, e.g. "warehouse.kind".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Kinds lists what Validate accepts; the caller fills it from the
// registries of the source and storage packages.
type Kinds struct {
	Source    []string
	Warehouse []string
}

// Validate performs static checks over a resolved Config. It does not touch
// the network.
func Validate(c Config, k Kinds) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels logs and metrics")
	}

	if !contains(k.Source, c.Source.Kind) {
		add(SeverityError, "source.kind", "unsupported source kind %q (supported: %s)", c.Source.Kind, strings.Join(k.Source, ", "))
	}
	if strings.TrimSpace(c.Source.DSN) == "" {
		add(SeverityError, "source.dsn", "no source DSN: set source.dsn, source.url or the LOCAL_* variables")
	}

	if !contains(k.Warehouse, c.Warehouse.Kind) {
		add(SeverityError, "warehouse.kind", "unsupported warehouse kind %q (supported: %s)", c.Warehouse.Kind, strings.Join(k.Warehouse, ", "))
	}
	if strings.TrimSpace(c.Warehouse.DSN) == "" {
		add(SeverityError, "warehouse.dsn", "no warehouse DSN: set warehouse.dsn, warehouse.url or the ONLINE_* variables")
	}
	if c.Warehouse.MaxConns < 0 {
		add(SeverityError, "warehouse.max_conns", "must be >= 0")
	}
	if c.Source.DSN != "" && c.Source.Kind == c.Warehouse.Kind && c.Source.DSN == c.Warehouse.DSN {
		add(SeverityWarning, "warehouse.dsn", "source and warehouse point at the same database")
	}

	r := c.Runtime
	switch {
	case r.BatchSize < 0:
		add(SeverityError, "runtime.batch_size", "must be >= 0 (0 uses the default %d)", DefaultBatchSize)
	case r.BatchSize > 100000:
		add(SeverityWarning, "runtime.batch_size", "%d rows per batch holds a large transaction open", r.BatchSize)
	}
	if r.StageTimeout < 0 {
		add(SeverityError, "runtime.stage_timeout", "must not be negative")
	}
	if r.BatchTimeout < 0 {
		add(SeverityError, "runtime.batch_timeout", "must not be negative")
	}
	if r.StageTimeout > 0 && r.BatchTimeout > r.StageTimeout {
		add(SeverityWarning, "runtime.batch_timeout", "exceeds stage_timeout (%s > %s)", r.BatchTimeout, r.StageTimeout)
	}
	if r.ParallelDimensions && c.Warehouse.Kind == "sqlite" {
		add(SeverityWarning, "runtime.parallel_dimensions", "sqlite serializes writers; dimension stages will queue on the database lock")
	}

	switch c.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if c.Metrics.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "required for the pushgateway backend")
		}
	case "datadog":
		if c.Metrics.DatadogAddr == "" {
			add(SeverityError, "metrics.datadog_addr", "required for the datadog backend")
		}
	default:
		add(SeverityWarning, "metrics.backend", "unknown backend %q; metrics disabled", c.Metrics.Backend)
	}
	return issues
}

// HasErrors reports whether issues contains an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
