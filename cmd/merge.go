package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/metric"
	"github.com/signalnine/mapfbench/internal/result"
)

func newMergeCmd(v *viper.Viper) *cobra.Command {
	var mode, objective, family string
	cmd := &cobra.Command{
		Use:   "merge SOLVER...",
		Short: "Build a virtual solver by picking, per instance, the min/mid/max solver",
		Long: "For every map, scenario and agent count, rank the given solvers by the objective column " +
			"on each instance and write the picked rows as <family>_<mode>_<objective>.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			sources := mergeSources(cfg.Solvers, args)

			var written int
			for _, m := range cfg.Maps {
				for _, scen := range m.Scens {
					for _, agents := range m.NumOfAgents {
						path, err := result.Merge(&result.MergeOpts{
							Root:      cfg.ExpPath,
							Map:       m.Name,
							Scen:      scen,
							Agents:    agents,
							InsNum:    cfg.InsNum,
							Sources:   sources,
							Mode:      mode,
							Objective: objective,
							Family:    family,
						})
						if err != nil {
							return fmt.Errorf("merging %s/%s/%d: %w", m.Name, scen, agents, err)
						}
						log.Debug().Str("file", path).Msg("merged")
						written++
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d merged files\n", written)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "min", "rank to pick (min, mid, max)")
	cmd.Flags().StringVar(&objective, "objective", metric.ColRuntime, "column the solvers are ranked by")
	cmd.Flags().StringVar(&family, "family", "", "name prefix of the virtual solver (default: prefix of the first solver)")
	return cmd
}

// mergeSources resolves solver arguments against the config so configured
// directories are honored; unknown names are taken as name and directory.
func mergeSources(solvers []config.Solver, names []string) []result.Source {
	sources := make([]result.Source, 0, len(names))
	for _, name := range names {
		src := result.Source{Name: name, Dir: name}
		for _, s := range solvers {
			if s.Name == name || s.Label == name {
				src = result.Source{Name: s.FileName(config.Params{}), Dir: s.DirName(config.Params{})}
				break
			}
		}
		sources = append(sources, src)
	}
	return sources
}
