package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/duskforge/throwgen/internal/infer"
)

// SourceFile is one parsed source file. It owns the tree-sitter tree; Close
// releases the C memory once scanning is done.
type SourceFile struct {
	Path   string
	Lang   infer.Language
	Source []byte
	tree   *tree_sitter.Tree
}

// Root returns the root syntax node.
func (f *SourceFile) Root() *tree_sitter.Node {
	return f.tree.RootNode()
}

// Close releases the parse tree.
func (f *SourceFile) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Usage is one candidate node matched by a frontend's scanner: a throw-like
// construct wrapping a "construct a type by bare name" expression with at
// most MaxPositionalArgs positional arguments, possibly under an explicit
// cast. The closed variant set is Form x Context; anything outside it is
// rejected at the scan boundary, never inside extraction.
type Usage struct {
	Form    infer.UsageForm
	Context infer.UsageContext

	// Name is the bare constructed type name.
	Name string

	// CastTarget is the cast target's name for FormCastThrow, otherwise "".
	CastTarget string

	// File and Node locate the construction for extraction and bookkeeping.
	File *SourceFile
	Node *tree_sitter.Node

	// Args are the positional construction argument expressions.
	Args []*tree_sitter.Node

	// Init is the initializer construct (object literal, keyword arguments,
	// keyed composite-literal elements), nil when the usage carries none.
	Init []InitEntry
}

// InitEntry is one top-level `field = expression` entry of an initializer
// whose left side is a simple identifier.
type InitEntry struct {
	Name  string
	Value *tree_sitter.Node
}

// Span returns the usage's source span for host bookkeeping.
func (u *Usage) Span() infer.SourceSpan {
	return infer.SourceSpan{
		FilePath:  u.File.Path,
		StartLine: int(u.Node.StartPosition().Row) + 1,
		EndLine:   int(u.Node.EndPosition().Row) + 1,
	}
}

// Frontend binds the inference core's abstract usage grammar to one host
// language. Implementations are stateless; the semantic model built by
// BuildModel carries all per-project state and is read-only afterwards, so
// ScanUsages and Extract may run concurrently across files.
type Frontend interface {
	Language() infer.Language

	// BuildModel indexes every declared type in the language's files and
	// returns the semantic model the extractor consults.
	BuildModel(files []*SourceFile) infer.SemanticModel

	// ScanUsages yields the candidate usage nodes of one file, in traversal
	// order. Order must not affect the final merged output.
	ScanUsages(file *SourceFile) []Usage

	// Extract produces a draft from one usage, or nil when the usage does
	// not qualify (wrong suffix, already-resolved name, unresolvable cast
	// target). Extraction never aborts the pass for a malformed node.
	Extract(u *Usage, model infer.SemanticModel) *infer.ExceptionDraft
}

var frontends = map[infer.Language]Frontend{
	infer.LangTypeScript: &tsFrontend{},
	infer.LangPython:     &pyFrontend{},
	infer.LangGo:         &goFrontend{},
}

// FrontendFor returns the frontend for lang.
func FrontendFor(lang infer.Language) (Frontend, bool) {
	f, ok := frontends[lang]
	return f, ok
}

// extToLanguage maps file extensions to languages.
var extToLanguage = map[string]infer.Language{
	".ts":  infer.LangTypeScript,
	".tsx": infer.LangTypeScript,
	".py":  infer.LangPython,
	".go":  infer.LangGo,
}

// LanguageForPath routes a file path to a frontend language. Generated and
// declaration-only files are excluded so a re-run never scans its own
// output.
func LanguageForPath(path string) (infer.Language, bool) {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".d.ts") ||
		strings.HasSuffix(base, ".gen.ts") ||
		strings.HasSuffix(base, "_gen.py") ||
		strings.HasSuffix(base, "_gen.go") ||
		strings.HasSuffix(base, "_test.go") {
		return "", false
	}
	lang, ok := extToLanguage[filepath.Ext(path)]
	return lang, ok
}

// Parser parses source files with tree-sitter grammars. A tree-sitter
// parser is created per Parse call, so Parser is safe for concurrent use.
type Parser struct {
	languages map[infer.Language]*tree_sitter.Language
}

// NewParser creates a Parser with the TypeScript, Python, and Go grammars
// registered.
func NewParser() *Parser {
	return &Parser{
		languages: map[infer.Language]*tree_sitter.Language{
			infer.LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			infer.LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			infer.LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		},
	}
}

// Parse parses one source file. The caller owns the returned SourceFile and
// must Close it.
func (p *Parser) Parse(path string, source []byte, lang infer.Language) (*SourceFile, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}

	return &SourceFile{
		Path:   path,
		Lang:   lang,
		Source: source,
		tree:   tree,
	}, nil
}

// walk visits every node of the subtree rooted at the cursor's node,
// parents before children.
func walk(cursor *tree_sitter.TreeCursor, visit func(n *tree_sitter.Node)) {
	visit(cursor.Node())
	if cursor.GotoFirstChild() {
		walk(cursor, visit)
		for cursor.GotoNextSibling() {
			walk(cursor, visit)
		}
		cursor.GotoParent()
	}
}

// walkTree walks the whole file.
func walkTree(file *SourceFile, visit func(n *tree_sitter.Node)) {
	cursor := file.Root().Walk()
	defer cursor.Close()
	walk(cursor, visit)
}
