package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duskforge/throwgen/internal/export"
	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
	"github.com/duskforge/throwgen/internal/store"
)

// runGenerate executes one inference pass and writes its outputs.
func runGenerate(ctx context.Context, flags cliFlags) error {
	opts := pipeline.Options{
		ProjectRoot: flags.ProjectRoot,
		Languages:   parseLanguages(flags.Languages),
		ExcludeDirs: splitComma(flags.ExcludeDirs),
		Verbose:     flags.Verbose,
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	st := result.Stats
	fmt.Fprintf(os.Stderr, "scanned %d files, %d usage sites, %d drafts -> %d specs (%d conflicts)\n",
		st.FilesScanned, st.UsageSites, st.Drafts, st.Specs, st.Conflicts)

	if !flags.DryRun {
		outDir := flags.OutputDir
		if outDir == "" {
			outDir = filepath.Join(flags.ProjectRoot, ".throwgen", "generated")
		}
		written, err := pipeline.WriteDeclarations(result.Declarations, outDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			if flags.Verbose {
				fmt.Fprintf(os.Stderr, "wrote %s\n", path)
			}
		}
		fmt.Fprintf(os.Stderr, "wrote %d declaration files to %s\n", len(written), outDir)
	}

	if flags.JSONPath != "" {
		if err := writeReport(flags, result); err != nil {
			return err
		}
	}

	if flags.DiagramPath != "" {
		diagram := export.GenerateMermaid(result)
		if err := os.WriteFile(flags.DiagramPath, []byte(diagram), 0o644); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
	}

	if flags.Persist {
		if err := persistResult(ctx, flags.ProjectRoot, result); err != nil {
			return fmt.Errorf("persist graph: %w", err)
		}
	}

	return nil
}

// writeReport renders the JSON report to the configured path or stdout.
func writeReport(flags cliFlags, result *pipeline.Result) error {
	report := export.BuildReport(flags.ProjectRoot, result)
	data, err := export.MarshalReport(report)
	if err != nil {
		return err
	}
	if flags.JSONPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flags.JSONPath, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// persistResult writes the pass result into a file-based KuzuDB under
// <projectRoot>/.throwgen/graph, replacing any previous graph.
func persistResult(ctx context.Context, projectRoot string, result *pipeline.Result) error {
	graphPath := filepath.Join(projectRoot, ".throwgen", "graph")
	os.RemoveAll(graphPath)

	st, err := store.NewKuzuFileStore(graphPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return store.Persist(ctx, st, result)
}

func parseLanguages(csv string) []infer.Language {
	var out []infer.Language
	for _, item := range splitComma(csv) {
		out = append(out, infer.Language(strings.ToLower(item)))
	}
	return out
}

func splitComma(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
