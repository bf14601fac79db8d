package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/config"
)

func newPlotCmd(v *viper.Viper) *cobra.Command {
	var x, y string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a single chart",
		Example: `  mapfbench plot --x num --y runtime
  mapfbench plot --x w --y "#low-level expanded" --map random-32-32-20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return renderAll(cmd.Context(), cfg, []config.Plot{{X: x, Y: y}}, v.GetInt("parallel"))
		},
	}
	cmd.Flags().StringVar(&x, "x", "num", "sweep axis (num, w, ins)")
	cmd.Flags().StringVar(&y, "y", "succ", "metric to plot")
	return cmd
}
