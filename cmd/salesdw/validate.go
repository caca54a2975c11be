package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesdw/internal/schema"
	"salesdw/internal/source"
)

func newValidateCmd(f *rootFlags) *cobra.Command {
	var checkSource bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if checkSource {
				ctx, stop := commandContext(cmd)
				defer stop()

				src, err := source.Open(ctx, source.Config{Kind: cfg.Source.Kind, DSN: cfg.Source.DSN})
				if err != nil {
					return err
				}
				defer src.Close()
				if err := schema.Check(ctx, src, schema.Source); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkSource, "check-source", false, "also connect to the source and check its columns")
	return cmd
}
