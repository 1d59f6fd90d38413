package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a JSON or YAML file over Default. Keys absent from the file keep
// their default values.
func Load(path string) (Tool, error) {
	t := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if t.DDL.Options == nil {
		t.DDL.Options = Options{}
	}
	return t, nil
}

// Env names the variables read by ApplyEnv.
const (
	EnvLogLevel         = "ODCS_LOG_LEVEL"
	EnvLogFormat        = "ODCS_LOG_FORMAT"
	EnvMetricsBackend   = "ODCS_METRICS_BACKEND"
	EnvPushgatewayURL   = "ODCS_PUSHGATEWAY_URL"
	EnvDogStatsDAddr    = "ODCS_DOGSTATSD_ADDR"
	EnvDDLDialect       = "ODCS_DDL_DIALECT"
	EnvConditionalRules = "ODCS_CONDITIONAL_RULES"
)

// ApplyEnv overrides t with every non-empty variable returned by getenv.
// Pass os.Getenv in production.
func ApplyEnv(t Tool, getenv func(string) string) (Tool, error) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&t.Log.Level, EnvLogLevel)
	set(&t.Log.Format, EnvLogFormat)
	set(&t.Metrics.Backend, EnvMetricsBackend)
	set(&t.Metrics.Pushgateway.URL, EnvPushgatewayURL)
	set(&t.Metrics.Datadog.Addr, EnvDogStatsDAddr)
	set(&t.DDL.Dialect, EnvDDLDialect)

	if v := strings.TrimSpace(getenv(EnvConditionalRules)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return t, fmt.Errorf("config: %s: %w", EnvConditionalRules, err)
		}
		t.Validation.ConditionalRules = b
	}
	return t, nil
}
