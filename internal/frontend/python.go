package frontend

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duskforge/throwgen/internal/infer"
)

// pyFrontend scans Python sources. The only usage form is the plain raise
// statement, `raise FooError("boom", port=8080)`: keyword arguments are the
// initializer entries and positional arguments fall under the count guard.
// Python has no cast syntax, so drafts never carry a base class and every
// generated type extends the root Exception.
type pyFrontend struct{}

func (e *pyFrontend) Language() infer.Language { return infer.LangPython }

func (e *pyFrontend) ScanUsages(file *SourceFile) []Usage {
	var usages []Usage
	walkTree(file, func(n *tree_sitter.Node) {
		if n.Kind() != "raise_statement" {
			return
		}
		raised := n.NamedChild(0)
		if raised == nil {
			return // bare re-raise
		}
		if u := e.matchCandidate(file, raised); u != nil {
			usages = append(usages, *u)
		}
	})
	return usages
}

func (e *pyFrontend) matchCandidate(file *SourceFile, expr *tree_sitter.Node) *Usage {
	for expr != nil && expr.Kind() == "parenthesized_expression" {
		expr = expr.NamedChild(0)
	}
	if expr == nil || expr.Kind() != "call" {
		return nil // raising a class or a variable, not a construction
	}
	fn := expr.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return nil
	}

	var args []*tree_sitter.Node
	var init []InitEntry
	if list := expr.ChildByFieldName("arguments"); list != nil {
		for i := uint(0); i < list.NamedChildCount(); i++ {
			arg := list.NamedChild(i)
			switch arg.Kind() {
			case "comment":
			case "keyword_argument":
				name := arg.ChildByFieldName("name")
				value := arg.ChildByFieldName("value")
				if name != nil && value != nil && name.Kind() == "identifier" {
					init = append(init, InitEntry{
						Name:  name.Utf8Text(file.Source),
						Value: value,
					})
				}
			default:
				args = append(args, arg)
			}
		}
	}
	if len(args) > infer.MaxPositionalArgs {
		return nil
	}

	return &Usage{
		Form:    infer.FormPlainThrow,
		Context: infer.ContextStatement,
		Name:    fn.Utf8Text(file.Source),
		File:    file,
		Node:    expr,
		Args:    args,
		Init:    init,
	}
}

func (e *pyFrontend) Extract(u *Usage, model infer.SemanticModel) *infer.ExceptionDraft {
	if !strings.HasSuffix(u.Name, infer.ExceptionSuffix) {
		return nil
	}
	if strings.ContainsRune(u.Name, '.') {
		return nil
	}
	if _, known := model.ResolveSymbol(u.Name); known {
		return nil
	}

	draft := &infer.ExceptionDraft{
		Language: infer.LangPython,
		Name:     u.Name,
		Form:     u.Form,
		Context:  u.Context,
		Site:     u.Span(),
	}

	for _, entry := range u.Init {
		typ, ok := pyLiteralType(entry.Value, u.File.Source)
		if !ok {
			continue
		}
		draft.Fields = append(draft.Fields, infer.FieldDraft{Name: entry.Name, Type: typ})
	}

	return draft
}

// pyModel resolves declared and imported names plus the interpreter's
// builtin exceptions. Read-only after BuildModel.
type pyModel struct {
	symbols map[string]infer.Symbol
}

func (e *pyFrontend) BuildModel(files []*SourceFile) infer.SemanticModel {
	m := &pyModel{symbols: make(map[string]infer.Symbol)}
	for _, f := range files {
		m.indexFile(f)
	}
	return m
}

func (m *pyModel) indexFile(file *SourceFile) {
	src := file.Source
	walkTree(file, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "class_definition":
			m.addNamed(n, src, file.Path, infer.SymbolKindClass)
		case "function_definition":
			m.addNamed(n, src, file.Path, infer.SymbolKindFunction)
		case "assignment":
			if left := n.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
				m.add(infer.Symbol{
					Name:     left.Utf8Text(src),
					Kind:     infer.SymbolKindType,
					FilePath: file.Path,
				})
			}
		case "import_from_statement":
			m.indexImportFrom(n, src, file.Path)
		}
	})
}

func (m *pyModel) addNamed(n *tree_sitter.Node, src []byte, path string, kind infer.SymbolKind) {
	if name := n.ChildByFieldName("name"); name != nil {
		m.add(infer.Symbol{Name: name.Utf8Text(src), Kind: kind, FilePath: path})
	}
}

func (m *pyModel) add(sym infer.Symbol) {
	if _, exists := m.symbols[sym.Name]; !exists {
		m.symbols[sym.Name] = sym
	}
}

// indexImportFrom records the names bound by `from mod import a, b as c`.
func (m *pyModel) indexImportFrom(n *tree_sitter.Node, src []byte, path string) {
	module := n.ChildByFieldName("module_name")
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		var bound string
		switch child.Kind() {
		case "dotted_name":
			bound = lastIdentifier(child, src)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				bound = alias.Utf8Text(src)
			}
		}
		if bound != "" {
			m.add(infer.Symbol{Name: bound, Kind: infer.SymbolKindType, FilePath: path})
		}
	}
}

func lastIdentifier(dotted *tree_sitter.Node, src []byte) string {
	count := dotted.NamedChildCount()
	if count == 0 {
		return dotted.Utf8Text(src)
	}
	return dotted.NamedChild(count - 1).Utf8Text(src)
}

func (m *pyModel) ResolveSymbol(name string) (infer.Symbol, bool) {
	if sym, ok := m.symbols[name]; ok {
		return sym, true
	}
	if pyBuiltinExceptions[name] {
		return infer.Symbol{Name: name, Kind: infer.SymbolKindBuiltin}, true
	}
	return infer.Symbol{}, false
}

// ResolveThrowable always fails: Python usages have no cast form, so no
// draft ever names a base class.
func (m *pyModel) ResolveThrowable(string) (infer.TypeDescriptor, bool) {
	return infer.TypeDescriptor{}, false
}

func (m *pyModel) PublicConstructors(infer.TypeDescriptor) []infer.ConstructorShape {
	return nil
}

// pyLiteralType evaluates the static type of a keyword-argument value:
// literals, sign prefixes, and parentheses only.
func pyLiteralType(n *tree_sitter.Node, source []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "string", "concatenated_string":
		text := n.Utf8Text(source)
		if len(text) > 0 && (text[0] == 'b' || text[0] == 'B') {
			return "bytes", true
		}
		return "str", true
	case "integer":
		return "int", true
	case "float":
		return "float", true
	case "true", "false":
		return "bool", true
	case "parenthesized_expression":
		return pyLiteralType(n.NamedChild(0), source)
	case "unary_operator":
		typ, ok := pyLiteralType(n.ChildByFieldName("argument"), source)
		if ok && (typ == "int" || typ == "float") {
			return typ, true
		}
	}
	return "", false
}

// pyBuiltinExceptions are the interpreter's predeclared exception names that
// end in the family suffix; raising one is never an inference candidate.
var pyBuiltinExceptions = map[string]bool{
	"ArithmeticError": true, "AssertionError": true, "AttributeError": true,
	"BlockingIOError": true, "BrokenPipeError": true, "BufferError": true,
	"ChildProcessError": true, "ConnectionAbortedError": true,
	"ConnectionError": true, "ConnectionRefusedError": true,
	"ConnectionResetError": true, "EOFError": true, "FileExistsError": true,
	"FileNotFoundError": true, "FloatingPointError": true, "ImportError": true,
	"IndentationError": true, "IndexError": true, "InterruptedError": true,
	"IsADirectoryError": true, "KeyError": true, "LookupError": true,
	"MemoryError": true, "ModuleNotFoundError": true, "NameError": true,
	"NotADirectoryError": true, "NotImplementedError": true, "OSError": true,
	"OverflowError": true, "PermissionError": true, "ProcessLookupError": true,
	"RecursionError": true, "ReferenceError": true, "RuntimeError": true,
	"SyntaxError": true, "SystemError": true, "TabError": true,
	"TimeoutError": true, "TypeError": true, "UnboundLocalError": true,
	"UnicodeDecodeError": true, "UnicodeEncodeError": true,
	"UnicodeError": true, "UnicodeTranslateError": true, "ValueError": true,
	"ZeroDivisionError": true,
}
