package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "translate-ai — AI translation for game data files")
			fmt.Fprintln(out, "https://github.com/KATBlackCoder/Translate-AI-sub001")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
