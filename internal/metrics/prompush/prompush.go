// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A one-shot CLI run cannot be scraped, so collected
// metrics are pushed on Flush.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"yggdrasil/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	validations   *prometheus.CounterVec // odcs_validations_total
	duration      *prometheus.SummaryVec // odcs_validation_duration_seconds
	fieldErrors   *prometheus.CounterVec // odcs_field_errors_total
	ddlStatements *prometheus.CounterVec // odcs_ddl_statements_total
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// grouping job and defaults to "odcs".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "odcs"
	}

	reg := prometheus.NewRegistry()

	validations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.ValidationsTotal,
			Help: "Contract documents handled, partitioned by command and status.",
		},
		[]string{"command", "status"},
	)
	duration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.ValidationDurationSeconds,
			Help:       "Time to load and validate one contract document in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"command", "status"},
	)
	fieldErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.FieldErrorsTotal,
			Help: "Field-level validation errors, partitioned by error kind.",
		},
		[]string{"kind"},
	)
	ddlStatements := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.DDLStatementsTotal,
			Help: "CREATE TABLE statements rendered, partitioned by SQL dialect.",
		},
		[]string{"dialect"},
	)

	for name, c := range map[string]prometheus.Collector{
		"validation counter":    validations,
		"validation summary":    duration,
		"field error counter":   fieldErrors,
		"ddl statement counter": ddlStatements,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		validations:   validations,
		duration:      duration,
		fieldErrors:   fieldErrors,
		ddlStatements: ddlStatements,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.ValidationsTotal:
		if b.validations == nil {
			return
		}
		b.validations.WithLabelValues(labels["command"], labels["status"]).Add(delta)

	case metrics.FieldErrorsTotal:
		if b.fieldErrors == nil {
			return
		}
		b.fieldErrors.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.DDLStatementsTotal:
		if b.ddlStatements == nil {
			return
		}
		b.ddlStatements.WithLabelValues(labels["dialect"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.ValidationDurationSeconds || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(labels["command"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
