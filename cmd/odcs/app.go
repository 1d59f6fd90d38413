package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"yggdrasil/internal/config"
	"yggdrasil/internal/contract"
	"yggdrasil/internal/document"
	"yggdrasil/internal/logging"
	"yggdrasil/internal/metrics"
	"yggdrasil/internal/metrics/datadog"
	"yggdrasil/internal/metrics/prompush"
)

// errRejected is returned when at least one document failed; details have
// already been printed.
var errRejected = errors.New("one or more documents were rejected")

// app carries the process dependencies shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	getenv func(string) string
	// initLog builds the process logger; logging.Init in production.
	initLog func(io.Writer, logging.Config) (*slog.Logger, error)

	cfg     config.Tool
	log     *logging.Logger
	metered bool
}

// globalFlags hold the persistent flags of the root command.
type globalFlags struct {
	configPath     string
	logLevel       string
	logFormat      string
	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string
}

func (a *app) run(args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if ferr := a.flushMetrics(); ferr != nil && a.log != nil {
		a.log.Warning("metrics flush failed", "err", ferr)
	}
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	var gf globalFlags
	root := &cobra.Command{
		Use:           "odcs",
		Short:         "Validate and transform Open Data Contract Standard documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, gf)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetIn(a.stdin)

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "path to a JSON or YAML configuration file")
	pf.StringVar(&gf.logLevel, "log-level", "", "debug, info, warning, error or critical (overrides "+config.EnvLogLevel+")")
	pf.StringVar(&gf.logFormat, "log-format", "", "json or text (overrides "+config.EnvLogFormat+")")
	pf.StringVar(&gf.metricsBackend, "metrics-backend", "", "none, prompush or datadog (overrides "+config.EnvMetricsBackend+")")
	pf.StringVar(&gf.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides "+config.EnvPushgatewayURL+")")
	pf.StringVar(&gf.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (overrides "+config.EnvDogStatsDAddr+")")

	root.AddCommand(
		a.newValidateCmd(),
		a.newNormalizeCmd(),
		a.newFingerprintCmd(),
		a.newDDLCmd(),
		newVersionCmd(),
	)
	return root
}

// setup resolves configuration (flag, then env, then file, then default),
// lints it, and wires logging and metrics.
func (a *app) setup(cmd *cobra.Command, gf globalFlags) error {
	cfg := config.Default()
	if gf.configPath != "" {
		var err error
		if cfg, err = config.Load(gf.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.ApplyEnv(cfg, a.getenv)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(dst *string, name, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override(&cfg.Log.Level, "log-level", gf.logLevel)
	override(&cfg.Log.Format, "log-format", gf.logFormat)
	override(&cfg.Metrics.Backend, "metrics-backend", gf.metricsBackend)
	override(&cfg.Metrics.Pushgateway.URL, "pushgateway-url", gf.pushgatewayURL)
	override(&cfg.Metrics.Datadog.Addr, "dogstatsd-addr", gf.dogstatsdAddr)

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(a.stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errors.New("configuration is invalid")
	}
	a.cfg = cfg

	base, err := a.initLog(a.stderr, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a.log = logging.New(base, "").With("command", cmd.Name())
	a.log.Debug("configuration resolved", "metrics_backend", cfg.Metrics.Backend, "ddl_dialect", cfg.DDL.Dialect)

	return a.setupMetrics(cfg.Metrics)
}

func (a *app) setupMetrics(m config.Metrics) error {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "", "none":
		return nil
	case "prompush":
		b, err = prompush.NewBackend(m.Job, m.Pushgateway.URL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.Datadog.Addr,
			Namespace:  m.Datadog.Namespace,
			GlobalTags: m.Datadog.Tags,
		})
	}
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metrics.SetBackend(b)
	a.metered = true
	a.log.Info("metrics enabled", "backend", m.Backend, "job", m.Job)
	return nil
}

func (a *app) flushMetrics() error {
	if !a.metered {
		return nil
	}
	a.metered = false
	return metrics.Flush()
}

// source maps a command-line argument to a document source; "-" is stdin.
func (a *app) source(arg string) document.Source {
	if arg == "-" {
		return document.NewReader("<stdin>", a.stdin)
	}
	return document.NewFile(arg)
}

// loadContract reads and validates one document.
func (a *app) loadContract(ctx context.Context, command, arg string, opts ...contract.Option) (*contract.DataContract, error) {
	src := a.source(arg)
	doc, err := document.LoadSource(ctx, src)
	return a.decodeContract(command, document.Loaded{Name: src.Name(), Doc: doc, Err: err}, opts...)
}

// sources maps command-line arguments to document sources. Stdin may be
// named once.
func (a *app) sources(args []string) ([]document.Source, error) {
	srcs := make([]document.Source, len(args))
	stdin := false
	for i, arg := range args {
		if arg == "-" {
			if stdin {
				return nil, errors.New("stdin (-) can be read only once")
			}
			stdin = true
		}
		srcs[i] = a.source(arg)
	}
	return srcs, nil
}

// decodeContract validates a loaded document and records its outcome. A
// read failure is recorded and returned unchanged.
func (a *app) decodeContract(command string, l document.Loaded, opts ...contract.Option) (*contract.DataContract, error) {
	start := time.Now()
	var dc *contract.DataContract
	err := l.Err
	if err == nil {
		dc, err = contract.Decode(l.Doc, opts...)
	}

	metrics.RecordValidation(command, err, time.Since(start))
	metrics.RecordFieldErrors(err)

	log := a.log.With("file", l.Name)
	switch metrics.Status(err) {
	case metrics.StatusSuccess:
		log.Debug("document valid", "duration", time.Since(start))
	case metrics.StatusInvalid:
		log.Warning("document rejected", "field_errors", len(contract.FieldErrors(err)))
	default:
		log.Error("document unreadable", "err", err)
	}
	return dc, err
}

// report prints the failure of one document, one line per field error.
func (a *app) report(name string, err error) {
	if fields := contract.FieldErrors(err); len(fields) > 0 {
		for _, fe := range fields {
			fmt.Fprintf(a.stdout, "%s: %s\n", name, fe.Error())
		}
		return
	}
	fmt.Fprintf(a.stdout, "%s: %v\n", name, err)
}
