package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is a dotted path into the config,
// e.g. "metrics.pushgateway.url".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints t without mutating it.
func Validate(t Tool) []Issue {
	var issues []Issue
	issues = append(issues, validateLog(t.Log)...)
	issues = append(issues, validateMetrics(t.Metrics)...)
	issues = append(issues, validateDDL(t.DDL)...)
	issues = append(issues, validateValidation(t.Validation)...)
	return issues
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if !oneOf(strings.ToLower(l.Level), "", "debug", "info", "warning", "warn", "error", "critical") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown level %q; use debug, info, warning, error or critical", l.Level),
		})
	}
	if !oneOf(strings.ToLower(l.Format), "", "json", "text") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown format %q; use json or text", l.Format),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
		return nil
	case "prompush":
		u := strings.TrimSpace(m.Pushgateway.URL)
		if u == "" {
			return append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway.url",
				Message:  "prompush backend requires a Pushgateway URL",
			})
		}
		if parsed, err := url.Parse(u); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway.url",
				Message:  fmt.Sprintf("%q is not an absolute URL", u),
			})
		}
	case "datadog":
		if strings.TrimSpace(m.Datadog.Addr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog.addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; use none, prompush or datadog", m.Backend),
		})
	}

	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "job is empty; metrics will be grouped under the backend default",
		})
	}
	return issues
}

func validateDDL(d DDL) []Issue {
	var issues []Issue
	if strings.TrimSpace(d.Dialect) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "ddl.dialect",
			Message:  "ddl.dialect must not be empty",
		})
	}
	// Dialects can be registered by other packages, so an unknown name is
	// only a warning.
	if !oneOf(d.Dialect, "postgres", "mssql", "sqlite") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "ddl.dialect",
			Message:  fmt.Sprintf("unknown dialect %q; ensure a matching implementation is registered", d.Dialect),
		})
	}
	if v, ok := d.Options["schema"]; ok {
		if s, isStr := v.(string); !isStr || strings.TrimSpace(s) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "ddl.options.schema",
				Message:  "schema must be a non-empty string",
			})
		}
	}
	return issues
}

func validateValidation(v Validation) []Issue {
	if v.Jobs < 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "validation.jobs",
			Message:  fmt.Sprintf("jobs must be >= 0, got %d", v.Jobs),
		}}
	}
	return nil
}
