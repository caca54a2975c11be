package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salesdw/internal/config"
	"salesdw/internal/logging"
	"salesdw/internal/metrics"
	"salesdw/internal/metrics/datadog"
	"salesdw/internal/metrics/prompush"
	"salesdw/internal/source"
	"salesdw/internal/storage"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "salesdw",
		Short:         "Load the sales star schema from the operational store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "config file (YAML or JSON); environment variables override it")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logs")

	root.AddCommand(newRunCmd(f), newValidateCmd(f), newSchemaCmd(f))
	return root
}

// loadConfig reads the config and reports its issues. Errors make it fail;
// warnings are only printed.
func loadConfig(cmd *cobra.Command, f *rootFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	issues := config.Validate(cfg, config.Kinds{Source: source.Kinds(), Warehouse: storage.ListKinds()})
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return cfg, fmt.Errorf("configuration is invalid")
	}
	return cfg, nil
}

func newLogger(f *rootFlags) (*zap.Logger, error) {
	return logging.New(f.verbose)
}

// newMetrics builds the recorder for cfg. A backend that cannot be built is
// logged and replaced by the nop backend.
func newMetrics(cfg config.Config, log *zap.Logger) *metrics.Recorder {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  cfg.Metrics.Namespace,
			GlobalTags: cfg.Metrics.Tags,
		})
	}
	if err != nil {
		log.Warn("metrics disabled", zap.String("backend", cfg.Metrics.Backend), zap.Error(err))
		b = nil
	} else if b != nil {
		log.Info("metrics enabled", zap.String("backend", cfg.Metrics.Backend))
	}
	return metrics.New(cfg.Job, b)
}

// commandContext cancels on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return notifyContext(ctx)
}
