package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salesdw/internal/pipeline"
	"salesdw/internal/source"
	"salesdw/internal/storage"
)

func newRunCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one full load and print its summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log, err := newLogger(f)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			rec := newMetrics(cfg, log)
			defer func() {
				if err := rec.Flush(); err != nil {
					log.Warn("metrics flush", zap.Error(err))
				}
			}()

			ctx, stop := commandContext(cmd)
			defer stop()

			runner := pipeline.New(pipeline.Config{
				Job:                cfg.Job,
				Source:             source.Config{Kind: cfg.Source.Kind, DSN: cfg.Source.DSN},
				Warehouse:          storage.Config{Kind: cfg.Warehouse.Kind, DSN: cfg.Warehouse.DSN, MaxConns: cfg.Warehouse.MaxConns},
				BatchSize:          cfg.Runtime.BatchSize,
				ParallelDimensions: cfg.Runtime.ParallelDimensions,
				EnsureSchema:       cfg.Warehouse.EnsureSchema,
				StageTimeout:       cfg.Runtime.StageTimeout.Std(),
				BatchTimeout:       cfg.Runtime.BatchTimeout.Std(),
			}, pipeline.WithLogger(log), pipeline.WithMetrics(rec))

			sum, runErr := runner.Run(ctx)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(sum); err != nil {
				return err
			}
			return runErr
		},
	}
}
