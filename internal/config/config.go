// Package config defines the configuration of the odcs tool. Values come
// from an optional JSON or YAML file, are overridden by ODCS_* environment
// variables, and finally by command-line flags in cmd/odcs.
//
// Example (YAML):
//
//	log:
//	  level: info
//	  format: json
//	metrics:
//	  backend: prompush
//	  job: contracts-ci
//	  pushgateway: { url: http://pushgateway:9091 }
//	ddl:
//	  dialect: postgres
//	  options: { schema: analytics }
//	validation:
//	  conditional_rules: true
//	  jobs: 8
package config

import "runtime"

// Tool is the top-level configuration object.
type Tool struct {
	Log        Log        `json:"log" yaml:"log"`
	Metrics    Metrics    `json:"metrics" yaml:"metrics"`
	DDL        DDL        `json:"ddl" yaml:"ddl"`
	Validation Validation `json:"validation" yaml:"validation"`
}

// Log selects level and rendering of the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Metrics selects the metrics backend. Backend is "none", "prompush" or
// "datadog".
type Metrics struct {
	Backend     string      `json:"backend" yaml:"backend"`
	Job         string      `json:"job" yaml:"job"`
	Pushgateway Pushgateway `json:"pushgateway" yaml:"pushgateway"`
	Datadog     Datadog     `json:"datadog" yaml:"datadog"`
}

type Pushgateway struct {
	URL string `json:"url" yaml:"url"`
}

type Datadog struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125".
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// DDL configures the ddl command. Options is passed to the table builder;
// "schema" qualifies every generated table name.
type DDL struct {
	Dialect string  `json:"dialect" yaml:"dialect"`
	Options Options `json:"options" yaml:"options"`
}

// Validation configures the validate command.
type Validation struct {
	ConditionalRules bool `json:"conditional_rules" yaml:"conditional_rules"`
	// Jobs bounds how many documents are validated at once.
	Jobs int `json:"jobs" yaml:"jobs"`
}

// Default returns the configuration used when nothing is set.
func Default() Tool {
	return Tool{
		Log:        Log{Level: "info", Format: "json"},
		Metrics:    Metrics{Backend: "none", Job: "odcs"},
		DDL:        DDL{Dialect: "postgres", Options: Options{}},
		Validation: Validation{Jobs: runtime.GOMAXPROCS(0)},
	}
}

// Options holds dialect-specific settings as a free-form map.
type Options map[string]any

// String returns the string at key, or def when the key is absent or holds
// another type.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}
