package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/chart"
	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/logging"
	"github.com/signalnine/mapfbench/internal/runner"
)

func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MAPFBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "mapfbench",
		Short:         "Aggregate MAPF experiment results and plot them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(v.GetString("log-level"), v.GetString("log-file"))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return renderAll(cmd.Context(), cfg, cfg.Plots, v.GetInt("parallel"))
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "config.yaml", "config file path")
	pf.String("out-dir", "", "override the chart output directory")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "also append JSON log lines to this file")
	pf.StringSlice("map", nil, "restrict to these maps (name or label)")
	pf.StringSlice("solver", nil, "restrict to these solvers (name or label)")
	pf.Int("parallel", 1, "max charts rendered concurrently")
	_ = v.BindPFlags(pf)

	root.AddCommand(newPlotCmd(v))
	root.AddCommand(newRatioCmd(v))
	root.AddCommand(newSummaryCmd(v))
	root.AddCommand(newMergeCmd(v))
	root.AddCommand(newCheckCmd(v))
	root.AddCommand(newListCmd(v))
	return root
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if dir := v.GetString("out-dir"); dir != "" {
		cfg.OutDir = dir
	}
	if names := v.GetStringSlice("map"); len(names) > 0 {
		cfg.Maps = filterMaps(cfg.Maps, names)
		if len(cfg.Maps) == 0 {
			return nil, fmt.Errorf("no maps match %v", names)
		}
	}
	if names := v.GetStringSlice("solver"); len(names) > 0 {
		cfg.Solvers = filterSolvers(cfg.Solvers, names)
		if len(cfg.Solvers) == 0 {
			return nil, fmt.Errorf("no solvers match %v", names)
		}
	}
	log.Debug().Int("maps", len(cfg.Maps)).Int("solvers", len(cfg.Solvers)).Str("exp_path", cfg.ExpPath).Msg("config loaded")
	return cfg, nil
}

func filterMaps(maps []config.Map, names []string) []config.Map {
	var filtered []config.Map
	for _, m := range maps {
		if matchAny(names, m.Name, m.Label) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func filterSolvers(solvers []config.Solver, names []string) []config.Solver {
	var filtered []config.Solver
	for _, s := range solvers {
		if matchAny(names, s.Name, s.Label) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func matchAny(names []string, candidates ...string) bool {
	for _, n := range names {
		for _, c := range candidates {
			if n == c {
				return true
			}
		}
	}
	return false
}

// renderAll draws every requested chart on the worker pool.
func renderAll(ctx context.Context, cfg *config.Config, plots []config.Plot, parallel int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	agg := aggregate.New(cfg)
	renderer := chart.New(cfg)

	jobs := make([]runner.Job, 0, len(plots))
	for _, p := range plots {
		x, err := aggregate.ParseAxis(p.X)
		if err != nil {
			return err
		}
		if x == aggregate.Weight && len(cfg.FWeights) == 0 {
			return fmt.Errorf("sweeping w requires f_weights in the config")
		}
		y := p.Y
		jobs = append(jobs, runner.Job{
			Name: string(x) + "_" + y,
			Run: func() error {
				res, err := agg.Collect(x, y, agg.Options(true))
				if err != nil {
					return err
				}
				_, err = renderer.Render(x, y, res, cfg.Maps)
				return err
			},
		})
	}

	errs := runner.RunPool(ctx, parallel, jobs)
	for _, err := range errs {
		log.Error().Err(err).Msg("chart failed")
	}
	return errors.Join(errs...)
}
