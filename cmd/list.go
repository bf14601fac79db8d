package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/mapfbench/internal/config"
)

var heading = color.New(color.Bold).SprintFunc()

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured maps and solvers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading("Maps:"))
			for _, m := range cfg.Maps {
				fmt.Fprintf(out, "  - %s (%s) agents=%v scens=%v\n", m.Name, m.Label, m.NumOfAgents, m.Scens)
			}
			fmt.Fprintln(out, heading("\nSolvers:"))
			for _, s := range cfg.Solvers {
				fmt.Fprintf(out, "  - %s (%s) dir=%s\n", s.Name, s.Label, s.DirName(config.Params{}))
			}
			return nil
		},
	}
}
