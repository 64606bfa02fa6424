package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/duskforge/throwgen/internal/frontend"
	"github.com/duskforge/throwgen/internal/infer"
)

// Options configures one inference pass.
type Options struct {
	// ProjectRoot is the directory to scan.
	ProjectRoot string

	// Languages restricts the pass; empty means all supported languages.
	Languages []infer.Language

	// ExcludeDirs are directory names skipped during the walk, in addition
	// to the built-in set (.git, node_modules, vendor, __pycache__).
	ExcludeDirs []string

	// Verbose enables progress output on stderr.
	Verbose bool
}

// UsageRecord is one usage site that produced a draft, kept for host
// bookkeeping (the store, MCP queries, reports).
type UsageRecord struct {
	Language infer.Language     `json:"language"`
	TypeName string             `json:"typeName"`
	Form     infer.UsageForm    `json:"form"`
	Context  infer.UsageContext `json:"context"`
	Site     infer.SourceSpan   `json:"site"`
}

// Result is the complete output of one pass. A pass either completes and
// returns a full result, or returns an error and no result; partial output
// is never exposed.
type Result struct {
	Specs        []infer.MergedExceptionSpec `json:"specs"`
	Declarations []infer.Declaration         `json:"declarations"`
	Usages       []UsageRecord               `json:"usages"`
	Stats        infer.Stats                 `json:"stats"`
}

// Run executes one full batch pass: walk, parse, scan, extract, merge,
// emit. The scan and extract stages fan out per file; the complete draft
// set is collected before merging, which the merge's conflict resolution
// depends on.
func Run(ctx context.Context, opts Options) (*Result, error) {
	root := opts.ProjectRoot
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	allowed := allowedLanguages(opts.Languages)
	paths, err := collectFiles(root, allowed, opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	logf(opts, "scanning %d files under %s\n", len(paths), root)

	files, err := parseAll(ctx, root, paths)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	byLang := make(map[infer.Language][]*frontend.SourceFile)
	for _, f := range files {
		byLang[f.Lang] = append(byLang[f.Lang], f)
	}

	result := &Result{Stats: infer.Stats{FilesScanned: len(files)}}
	var drafts []infer.ExceptionDraft
	for _, lang := range infer.SupportedLanguages {
		langFiles := byLang[lang]
		if len(langFiles) == 0 {
			continue
		}
		fe, ok := frontend.FrontendFor(lang)
		if !ok {
			continue
		}

		model := fe.BuildModel(langFiles)
		langDrafts, sites, err := extractAll(ctx, fe, model, langFiles)
		if err != nil {
			return nil, err
		}
		result.Stats.UsageSites += sites
		drafts = append(drafts, langDrafts...)
		logf(opts, "%s: %d usage sites, %d drafts\n", lang, sites, len(langDrafts))
	}

	result.Stats.Drafts = len(drafts)
	result.Usages = usageRecords(drafts)
	result.Specs = infer.Merge(drafts)
	result.Declarations = infer.RenderAll(result.Specs)
	result.Stats.Specs = len(result.Specs)
	for i := range result.Specs {
		if result.Specs[i].ReferencesConflict() {
			result.Stats.Conflicts++
		}
	}
	logf(opts, "merged %d specs (%d with conflicts)\n", result.Stats.Specs, result.Stats.Conflicts)

	return result, nil
}

// builtinExcludes are always skipped regardless of configuration.
var builtinExcludes = map[string]bool{
	".git":         true,
	".throwgen":    true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

func allowedLanguages(langs []infer.Language) map[infer.Language]bool {
	allowed := make(map[infer.Language]bool)
	if len(langs) == 0 {
		for _, l := range infer.SupportedLanguages {
			allowed[l] = true
		}
		return allowed
	}
	for _, l := range langs {
		allowed[l] = true
	}
	return allowed
}

// collectFiles gathers the repo-relative paths of every scannable file.
func collectFiles(root string, allowed map[infer.Language]bool, excludeDirs []string) ([]string, error) {
	excludes := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excludes[d] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			name := d.Name()
			if builtinExcludes[name] || excludes[name] {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := frontend.LanguageForPath(path)
		if !ok || !allowed[lang] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll parses every file in parallel. Unreadable or unparseable files
// are skipped, not fatal.
func parseAll(ctx context.Context, root string, paths []string) ([]*frontend.SourceFile, error) {
	parser := frontend.NewParser()
	parsed := make([]*frontend.SourceFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lang, _ := frontend.LanguageForPath(rel)
			source, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				return nil
			}
			file, err := parser.Parse(rel, source, lang)
			if err != nil {
				return nil
			}
			parsed[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range parsed {
			if f != nil {
				f.Close()
			}
		}
		return nil, err
	}

	files := make([]*frontend.SourceFile, 0, len(parsed))
	for _, f := range parsed {
		if f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}

// extractAll scans and extracts every file of one language in parallel.
// Each file is touched by exactly one goroutine; the model is read-only.
func extractAll(
	ctx context.Context,
	fe frontend.Frontend,
	model infer.SemanticModel,
	files []*frontend.SourceFile,
) ([]infer.ExceptionDraft, int, error) {
	perFile := make([][]infer.ExceptionDraft, len(files))
	siteCounts := make([]int, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			usages := fe.ScanUsages(file)
			siteCounts[i] = len(usages)
			for j := range usages {
				if draft := fe.Extract(&usages[j], model); draft != nil {
					perFile[i] = append(perFile[i], *draft)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var drafts []infer.ExceptionDraft
	sites := 0
	for i := range files {
		drafts = append(drafts, perFile[i]...)
		sites += siteCounts[i]
	}
	return drafts, sites, nil
}

// usageRecords projects drafts onto bookkeeping records, sorted by site.
func usageRecords(drafts []infer.ExceptionDraft) []UsageRecord {
	records := make([]UsageRecord, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, UsageRecord{
			Language: d.Language,
			TypeName: d.Name,
			Form:     d.Form,
			Context:  d.Context,
			Site:     d.Site,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Site, records[j].Site
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return records[i].TypeName < records[j].TypeName
	})
	return records
}

func logf(opts Options, format string, args ...any) {
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
