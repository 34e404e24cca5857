package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/config"
)

func newValidateCmd() *cobra.Command {
	var engineType string
	cmd := &cobra.Command{
		Use:   "validate <project-root>",
		Short: "Check that a directory is a translatable project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("project root is required")
			}
			return runValidate(cmd, args[0], engineType)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&engineType, "engine", "rpgmv", "Game engine type (see 'translate-ai engines')")
	return cmd
}

func runValidate(cmd *cobra.Command, root, engineType string) error {
	if pf, err := config.Load(root); err != nil {
		return err
	} else if pf != nil && pf.Engine != "" && !cmd.Flags().Changed("engine") {
		engineType = pf.Engine
	}

	eng, err := newRegistry().Get(engineType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	v := eng.ValidateProject(root)
	if v.Valid {
		fmt.Fprintf(out, "OK: %s is a valid %s project\n", root, eng.Settings().Name)
		return nil
	}
	fmt.Fprintf(out, "Invalid %s project: %s\n", eng.Settings().Name, root)
	for _, p := range v.Problems {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	return fmt.Errorf("project validation failed with %d problems", len(v.Problems))
}
