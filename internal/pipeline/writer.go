package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/duskforge/throwgen/internal/infer"
)

// langSubdir maps each language to its output subdirectory, the fixed
// namespace generated declarations are injected under.
var langSubdir = map[infer.Language]string{
	infer.LangTypeScript: "ts",
	infer.LangPython:     "py",
	infer.LangGo:         "go",
}

// WriteDeclarations writes every declaration under outDir, one file per
// declaration in a per-language subdirectory. Stale files from earlier
// passes are removed first so the directory always mirrors the current spec
// set. Returns the written paths, sorted.
func WriteDeclarations(decls []infer.Declaration, outDir string) ([]string, error) {
	for _, sub := range langSubdir {
		if err := os.RemoveAll(filepath.Join(outDir, sub)); err != nil {
			return nil, fmt.Errorf("clear output dir: %w", err)
		}
	}

	var written []string
	for _, d := range decls {
		sub, ok := langSubdir[d.Language]
		if !ok {
			continue
		}
		dir := filepath.Join(outDir, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		path := filepath.Join(dir, d.FileName)
		if err := os.WriteFile(path, []byte(d.Source), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)
	return written, nil
}
