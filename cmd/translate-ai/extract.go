package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/config"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
)

func newExtractCmd() *cobra.Command {
	var engineType, outPath string
	cmd := &cobra.Command{
		Use:   "extract <project-root>",
		Short: "Extract translatable text units as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("project root is required")
			}
			return runExtract(cmd, args[0], engineType, outPath)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&engineType, "engine", "rpgmv", "Game engine type (see 'translate-ai engines')")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write units to this file instead of stdout")
	return cmd
}

func runExtract(cmd *cobra.Command, root, engineType, outPath string) error {
	if pf, err := config.Load(root); err != nil {
		return err
	} else if pf != nil && pf.Engine != "" && !cmd.Flags().Changed("engine") {
		engineType = pf.Engine
	}

	eng, err := newRegistry().Get(engineType)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	if v := eng.ValidateProject(absRoot); !v.Valid {
		return fmt.Errorf("project validation failed with %d problems (run 'translate-ai validate %s')", len(v.Problems), root)
	}

	resourceFiles, err := eng.ReadProject(absRoot)
	if err != nil {
		return err
	}
	units := eng.ExtractTranslations(resourceFiles)
	docs, err := toUnitDocs(absRoot, units)
	if err != nil {
		return err
	}

	doc := unitsDoc{Version: unitsDocVersion, Engine: engineType, Units: docs}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := files.RejectSymlinkPath(outPath); err != nil {
		return err
	}
	if err := files.AtomicWrite(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "Extracted %d units to %s\n", len(units), outPath)
	return nil
}
