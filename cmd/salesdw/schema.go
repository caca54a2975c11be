package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salesdw/internal/schema"
	"salesdw/internal/storage"
)

func newSchemaCmd(f *rootFlags) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create missing warehouse tables (or print their DDL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				kind, err := cmd.Flags().GetString("kind")
				if err != nil {
					return err
				}
				if kind == "" {
					cfg, err := loadConfig(cmd, f)
					if err != nil {
						return err
					}
					kind = cfg.Warehouse.Kind
				}
				stmts, err := storage.RenderSchema(kind, schema.Warehouse())
				if err != nil {
					return err
				}
				for _, s := range stmts {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			}

			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log, err := newLogger(f)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := commandContext(cmd)
			defer stop()

			wh, err := storage.New(ctx, storage.Config{Kind: cfg.Warehouse.Kind, DSN: cfg.Warehouse.DSN, MaxConns: cfg.Warehouse.MaxConns})
			if err != nil {
				return err
			}
			defer wh.Close()
			if err := storage.EnsureSchema(ctx, cfg.Warehouse.Kind, wh, schema.Warehouse()); err != nil {
				return err
			}
			log.Info("schema ensured", zap.String("warehouse", cfg.Warehouse.Kind), zap.Int("tables", len(schema.Warehouse())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of executing it")
	cmd.Flags().String("kind", "", "warehouse kind for --print (defaults to the configured one)")
	return cmd
}
