package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newEnginesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List supported game engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := newRegistry()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported Engines:")
			for _, t := range reg.Types() {
				eng, err := reg.Get(t)
				if err != nil {
					return err
				}
				s := eng.Settings()
				fmt.Fprintf(out, "  %-10s %s %s (data: %s, %d files)\n",
					t, s.Name, s.Version, s.DataDir, len(s.RequiredFiles))
				fmt.Fprintf(out, "  %-10s resources: %s\n", "", strings.Join(s.ResourceTypes, ", "))
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
