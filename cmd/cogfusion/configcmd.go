package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cogfusion/internal/logger"
	"cogfusion/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// The file may not exist or may be invalid yet, so skip loading it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(a.logLevel, "console")
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default configuration (YAML, or TOML for a .toml path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workers:     %d\n", cfg.Processing.NumWorkers)
			fmt.Fprintf(cmd.OutOrStdout(), "permissive:  %t\n", cfg.Processing.Permissive)
			fmt.Fprintf(cmd.OutOrStdout(), "sigma A:     %v\n", cfg.Smoothing.SigmaA)
			fmt.Fprintf(cmd.OutOrStdout(), "sigma B:     %v\n", cfg.Smoothing.SigmaB)
			fmt.Fprintf(cmd.OutOrStdout(), "truncate:    %g\n", cfg.Smoothing.Truncate)
			fmt.Fprintf(cmd.OutOrStdout(), "mode:        %s\n", cfg.Smoothing.Mode)
			fmt.Fprintf(cmd.OutOrStdout(), "format:      %s\n", cfg.Output.Format)
			return nil
		},
	})
	return cmd
}
