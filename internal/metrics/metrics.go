// Package metrics records operational metrics of the odcs tool behind a
// small, backend-agnostic interface.
//
// The global backend defaults to a no-op, so recording is always safe even
// when nothing is configured. Concrete systems live in subpackages
// (prompush, datadog) and are installed with SetBackend.
package metrics

import (
	"errors"
	"time"

	"yggdrasil/internal/contract"
)

// Metric names emitted by this package.
const (
	ValidationsTotal          = "odcs_validations_total"
	ValidationDurationSeconds = "odcs_validation_duration_seconds"
	FieldErrorsTotal          = "odcs_field_errors_total"
	DDLStatementsTotal        = "odcs_ddl_statements_total"
)

// Validation outcomes used as the "status" label.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// Status classifies the outcome of handling one document: a rejected
// contract is "invalid", any other error (unreadable, malformed) "failure".
func Status(err error) string {
	if err == nil {
		return StatusSuccess
	}
	var ve *contract.ValidationError
	if errors.As(err, &ve) {
		return StatusInvalid
	}
	return StatusFailure
}

// RecordValidation counts one handled document and its duration, labelled by
// the command that handled it and the outcome.
func RecordValidation(command string, err error, d time.Duration) {
	lbls := Labels{
		"command": command,
		"status":  Status(err),
	}
	backend.IncCounter(ValidationsTotal, 1, lbls)
	backend.ObserveHistogram(ValidationDurationSeconds, d.Seconds(), lbls)
}

// RecordFieldErrors counts the field errors carried by err per kind. Errors
// that are not validation failures record nothing.
func RecordFieldErrors(err error) {
	counts := map[contract.Kind]int{}
	for _, fe := range contract.FieldErrors(err) {
		counts[fe.Kind]++
	}
	for kind, n := range counts {
		backend.IncCounter(FieldErrorsTotal, float64(n), Labels{"kind": string(kind)})
	}
}

// RecordStatements counts generated CREATE TABLE statements for a dialect.
func RecordStatements(dialect string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(DDLStatementsTotal, float64(n), Labels{"dialect": dialect})
}
