package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPresetsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			reg, err := registry(cfg)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tCATEGORY\tSTEPS")
			for _, p := range reg.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Name, p.Title, p.Category, len(p.Steps))
			}
			return tw.Flush()
		},
	}
}
