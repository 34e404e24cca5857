package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/config"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/prompt"
)

type applyOptions struct {
	engineType string
	output     string
	yes        bool
}

func newApplyCmd() *cobra.Command {
	opts := applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <project-root> <units.json>",
		Short: "Reinject translated units from an extract document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				_ = cmd.Usage()
				return fmt.Errorf("project root and units file are required")
			}
			return runApply(cmd, args[0], args[1], &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.engineType, "engine", "rpgmv", "Game engine type (see 'translate-ai engines')")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output root for the translated copy (default: apply in place)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite existing files without asking")
	return cmd
}

func runApply(cmd *cobra.Command, root, unitsPath string, opts *applyOptions) error {
	if pf, err := config.Load(root); err != nil {
		return err
	} else if pf != nil && pf.Engine != "" && !cmd.Flags().Changed("engine") {
		opts.engineType = pf.Engine
	}

	eng, err := newRegistry().Get(opts.engineType)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	var fs files.Disk
	var doc unitsDoc
	if err := fs.ReadJSON(unitsPath, &doc); err != nil {
		return err
	}
	if doc.Version != unitsDocVersion {
		return fmt.Errorf("unsupported units document version: %d", doc.Version)
	}
	if doc.Engine != "" && doc.Engine != opts.engineType {
		return fmt.Errorf("units document was extracted for engine %q, not %q", doc.Engine, opts.engineType)
	}
	units, err := fromUnitDocs(absRoot, doc.Units)
	if err != nil {
		return err
	}
	translated := 0
	for _, u := range units {
		if u.Translated() {
			translated++
		}
	}
	if translated == 0 {
		return fmt.Errorf("units document contains no translated units (fill the target fields first)")
	}

	if v := eng.ValidateProject(absRoot); !v.Valid {
		return fmt.Errorf("project validation failed with %d problems (run 'translate-ai validate %s')", len(v.Problems), root)
	}
	resourceFiles, err := eng.ReadProject(absRoot)
	if err != nil {
		return err
	}
	applied := eng.ApplyTranslations(resourceFiles, units)

	inPlace := opts.output == ""
	outRoot := absRoot
	if !inPlace {
		outRoot, err = filepath.Abs(opts.output)
		if err != nil {
			return fmt.Errorf("failed to resolve output root: %w", err)
		}
		if outRoot == absRoot {
			inPlace = true
		}
	}
	if inPlace {
		confirmed, err := prompt.DefaultConfirmer().ConfirmOverwrite(absRoot, opts.yes)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	changed := make(map[string]bool)
	for _, u := range units {
		if u.Translated() {
			changed[u.File] = true
		}
	}
	written := 0
	for _, f := range applied {
		if inPlace && !changed[f.Path] {
			continue
		}
		rel, err := filepath.Rel(absRoot, f.Path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", f.Path, err)
		}
		dest := filepath.Join(outRoot, rel)
		if !inPlace {
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
		}
		if err := fs.WriteJSON(dest, f.Content); err != nil {
			return err
		}
		written++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d translated units; wrote %d files under %s\n", translated, written, outRoot)
	return nil
}
