package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/report"
)

func newSummaryCmd(v *viper.Viper) *cobra.Command {
	var x, metricName, minus, format string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-solver sums of a metric's per-map averages over all maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ax, err := aggregate.ParseAxis(x)
			if err != nil {
				return err
			}

			agg := aggregate.New(cfg)
			res, err := agg.Collect(ax, metricName, aggregate.Options{Average: true})
			if err != nil {
				return err
			}
			title := metricName
			if minus != "" {
				other, err := agg.Collect(ax, minus, aggregate.Options{Average: true})
				if err != nil {
					return err
				}
				if res, err = aggregate.Combine(res, other, "sub"); err != nil {
					return err
				}
				title += " - " + minus
			}

			sums, err := aggregate.SumAcrossMaps(res, cfg.Maps)
			if err != nil {
				return err
			}
			return report.Generate(report.Build(sums, cfg.Solvers), title, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&x, "x", "w", "sweep axis (num, w, ins)")
	cmd.Flags().StringVar(&metricName, "metric", "", "metric to sum")
	cmd.Flags().StringVar(&minus, "minus", "", "metric subtracted point by point before summing")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, markdown, json, pretty)")
	_ = cmd.MarkFlagRequired("metric")
	return cmd
}
