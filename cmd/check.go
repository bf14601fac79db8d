package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/result"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
)

type checkStats struct {
	files   int
	missing int
	short   int
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify every expected result file exists and holds ins_num rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			stats, err := checkResults(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if stats.missing > 0 {
				fmt.Fprintf(out, "%s %d of %d files missing, %d short\n", failText("FAIL"), stats.missing, stats.files, stats.short)
				return fmt.Errorf("%d result files missing", stats.missing)
			}
			fmt.Fprintf(out, "%s %d files, %d short\n", okText("OK"), stats.files, stats.short)
			return nil
		},
	}
}

func checkResults(cfg *config.Config) (checkStats, error) {
	var stats checkStats
	for _, s := range cfg.Solvers {
		for _, p := range sweepParams(s, cfg.FWeights) {
			for _, m := range cfg.Maps {
				for _, scen := range m.Scens {
					for _, agents := range m.NumOfAgents {
						path := result.Path(cfg.ExpPath, m.Name, scen, agents, s.FileName(p), s.DirName(p))
						stats.files++
						t, err := result.Load(path)
						switch {
						case errors.Is(err, result.ErrMissing):
							stats.missing++
							log.Error().Str("file", path).Msg("missing")
						case err != nil:
							return stats, err
						case len(t.Rows) != cfg.InsNum:
							stats.short++
							log.Warn().Str("file", path).Int("rows", len(t.Rows)).Int("expected", cfg.InsNum).Msg("row count mismatch")
						}
					}
				}
			}
		}
	}
	return stats, nil
}

// sweepParams lists the parameter sets a solver's files exist for: one per
// configured weight when its name or directory is weight-templated.
func sweepParams(s config.Solver, weights []float64) []config.Params {
	if len(weights) == 0 || !strings.Contains(s.Name+s.Dir, "{w}") {
		return []config.Params{{}}
	}
	params := make([]config.Params, len(weights))
	for i, w := range weights {
		params[i] = config.Params{}.WithWeight(w)
	}
	return params
}
