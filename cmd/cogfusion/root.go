package main

import (
	"github.com/spf13/cobra"

	"cogfusion/internal/logger"
	"cogfusion/pkg/config"
	"cogfusion/pkg/similarity"
)

// app carries the global flags and the configuration resolved from them.
type app struct {
	configPath string
	logLevel   string
	workers    int
	permissive bool
	format     string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cogfusion",
		Short: "Mask-weighted cosine similarity between sets of contrast images",
		Long: `cogfusion compares sets of 3D statistical contrast images inside a mask.

"average" averages each list and compares the two means; "pairwise" compares
every image of the first list with every image of the second.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "cogfusion.yaml", "configuration file (YAML, or TOML by extension); missing file means defaults")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.IntVar(&a.workers, "workers", 0, "goroutines used for pairwise comparisons (default from config)")
	pf.BoolVar(&a.permissive, "permissive", false, "return non-finite scores instead of failing on a zero norm")
	pf.StringVar(&a.format, "format", "", "output format: text or json (default from config)")

	root.AddCommand(
		newAverageCmd(a),
		newPairwiseCmd(a),
		newMeanCmd(a),
		newSlicesCmd(a),
		newHarnessCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Processing.NumWorkers = a.workers
	}
	if flags.Changed("permissive") {
		cfg.Processing.Permissive = a.permissive
	}
	if flags.Changed("format") {
		cfg.Output.Format = a.format
	}
	if a.logLevel != "" {
		cfg.Output.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.Output.LogLevel, cfg.Output.LogFormat); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

func (a *app) engine() *similarity.Engine {
	return similarity.NewEngine(
		similarity.WithWorkers(a.cfg.Processing.NumWorkers),
		similarity.WithPermissive(a.cfg.Processing.Permissive),
		similarity.WithSmoothing(a.cfg.SmoothingOptions()...),
	)
}
