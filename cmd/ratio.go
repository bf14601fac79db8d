package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/chart"
	"github.com/signalnine/mapfbench/internal/config"
)

// allMaps names the single pseudo-map produced by --across-maps.
var allMaps = config.Map{Name: "all", Label: "All maps"}

func newRatioCmd(v *viper.Viper) *cobra.Command {
	var (
		x, num, den, op, y string
		acrossMaps         bool
	)
	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "Plot two summed metrics combined point by point",
		Example: `  mapfbench ratio --num "#low-level in focal" --den "#findPathForSingleAgent"
  mapfbench ratio --x w --num num_in_conf --den num_total_conf --across-maps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ax, err := aggregate.ParseAxis(x)
			if err != nil {
				return err
			}
			res, maps, err := ratioResults(cfg, ax, num, den, op, acrossMaps)
			if err != nil {
				return err
			}
			path, err := chart.New(cfg).Render(ax, y, res, maps)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&x, "x", "num", "sweep axis (num, w)")
	cmd.Flags().StringVar(&num, "num", "", "numerator metric")
	cmd.Flags().StringVar(&den, "den", "", "denominator metric")
	cmd.Flags().StringVar(&op, "op", "div", "combining operator (add, sub, mul, div)")
	cmd.Flags().StringVar(&y, "name", "Ratio", "metric id used for the y label and file name")
	cmd.Flags().BoolVar(&acrossMaps, "across-maps", false, "combine per map, then sum the per-map results over all maps")
	_ = cmd.MarkFlagRequired("num")
	_ = cmd.MarkFlagRequired("den")
	return cmd
}

// ratioResults combines the per-map sums of num and den. With acrossMaps the
// combined series are summed over maps into the single allMaps entry.
func ratioResults(cfg *config.Config, ax aggregate.Axis, num, den, op string, acrossMaps bool) (aggregate.Results, []config.Map, error) {
	if ax == aggregate.Instance {
		return nil, nil, fmt.Errorf("ratio needs an aggregated sweep (num or w)")
	}
	if ax == aggregate.Weight && len(cfg.FWeights) == 0 {
		return nil, nil, fmt.Errorf("sweeping w requires f_weights in the config")
	}

	agg := aggregate.New(cfg)
	a, err := agg.Collect(ax, num, aggregate.Options{})
	if err != nil {
		return nil, nil, err
	}
	b, err := agg.Collect(ax, den, aggregate.Options{})
	if err != nil {
		return nil, nil, err
	}
	res, err := aggregate.Combine(a, b, op)
	if err != nil {
		return nil, nil, err
	}
	if !acrossMaps {
		return res, cfg.Maps, nil
	}
	if res, err = aggregate.AcrossMaps(res, cfg.Maps, allMaps.Name); err != nil {
		return nil, nil, err
	}
	return res, []config.Map{allMaps}, nil
}
