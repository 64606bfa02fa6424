package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/duskforge/throwgen/internal/config"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	OutputDir   string
	Languages   string
	ExcludeDirs string
	DryRun      bool
	JSONPath    string
	DiagramPath string
	Persist     bool
	Verbose     bool
	ServeMCP    bool
	Addr        string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("throwgen", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the project to scan")
	fs.StringVar(&flags.OutputDir, "out", "", "output directory for generated declarations (default: <project-root>/.throwgen/generated)")
	fs.StringVar(&flags.Languages, "languages", "", "comma-separated languages to scan: typescript, python, go (default: all)")
	fs.StringVar(&flags.ExcludeDirs, "exclude", "", "comma-separated directory names to skip")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "infer and report without writing declaration files")
	fs.StringVar(&flags.JSONPath, "json", "", "write a JSON report to this path (- for stdout)")
	fs.StringVar(&flags.DiagramPath, "diagram", "", "write a Mermaid usage diagram to this path")
	fs.BoolVar(&flags.Persist, "persist", false, "persist the usage graph to <project-root>/.throwgen/graph")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server instead of a one-shot pass")
	fs.StringVar(&flags.Addr, "addr", "localhost:8123", "listen address for -serve-mcp")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return err
	}
	applyConfig(&flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP {
		return runServe(ctx, flags)
	}
	return runGenerate(ctx, flags)
}

// applyConfig fills unset flags from the project config file.
func applyConfig(flags *cliFlags, cfg *config.ProjectConfig) {
	if flags.OutputDir == "" && cfg.OutputDir != "" {
		flags.OutputDir = cfg.OutputDir
	}
	if flags.Languages == "" && len(cfg.Languages) > 0 {
		flags.Languages = strings.Join(cfg.Languages, ",")
	}
	if flags.ExcludeDirs == "" && len(cfg.ExcludeDirs) > 0 {
		flags.ExcludeDirs = strings.Join(cfg.ExcludeDirs, ",")
	}
	if cfg.Persist {
		flags.Persist = true
	}
	if cfg.Verbose {
		flags.Verbose = true
	}
}
