package frontend

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duskforge/throwgen/internal/infer"
)

// goFrontend scans Go sources. The usage form is a panic over a bare-name
// composite literal, `panic(FooError{Port: 8080})` or `panic(&FooError{...})`:
// keyed elements are the initializer entries, unkeyed elements the
// positional arguments. Go has no cast form, so drafts never carry a base
// class; generated types satisfy error through an Error method instead.
type goFrontend struct{}

func (e *goFrontend) Language() infer.Language { return infer.LangGo }

func (e *goFrontend) ScanUsages(file *SourceFile) []Usage {
	var usages []Usage
	walkTree(file, func(n *tree_sitter.Node) {
		if n.Kind() != "call_expression" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "identifier" || fn.Utf8Text(file.Source) != "panic" {
			return
		}
		args := n.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() != 1 {
			return
		}
		if u := e.matchCandidate(file, args.NamedChild(0)); u != nil {
			usages = append(usages, *u)
		}
	})
	return usages
}

func (e *goFrontend) matchCandidate(file *SourceFile, expr *tree_sitter.Node) *Usage {
	for expr != nil {
		switch expr.Kind() {
		case "parenthesized_expression":
			expr = expr.NamedChild(0)
			continue
		case "unary_expression":
			op := expr.ChildByFieldName("operator")
			if op == nil || op.Utf8Text(file.Source) != "&" {
				return nil
			}
			expr = expr.ChildByFieldName("operand")
			continue
		}
		break
	}
	if expr == nil || expr.Kind() != "composite_literal" {
		return nil
	}

	typ := expr.ChildByFieldName("type")
	if typ == nil || typ.Kind() != "type_identifier" {
		return nil // slice, map, or qualified type: not a bare name
	}

	var args []*tree_sitter.Node
	var init []InitEntry
	if body := expr.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			elem := body.NamedChild(i)
			switch elem.Kind() {
			case "comment":
			case "keyed_element":
				if entry, ok := keyedElement(elem, file.Source); ok {
					init = append(init, entry)
				}
			default:
				args = append(args, unwrapElement(elem))
			}
		}
	}
	if len(args) > infer.MaxPositionalArgs {
		return nil
	}

	return &Usage{
		Form:    infer.FormPlainThrow,
		Context: infer.ContextStatement,
		Name:    typ.Utf8Text(file.Source),
		File:    file,
		Node:    expr,
		Args:    args,
		Init:    init,
	}
}

// keyedElement reads one `Field: value` element of a composite literal.
// Non-identifier keys (index or nested literals) are dropped.
func keyedElement(elem *tree_sitter.Node, source []byte) (InitEntry, bool) {
	if elem.NamedChildCount() < 2 {
		return InitEntry{}, false
	}
	key := unwrapElement(elem.NamedChild(0))
	value := unwrapElement(elem.NamedChild(1))
	if key == nil || value == nil {
		return InitEntry{}, false
	}
	if key.Kind() != "field_identifier" && key.Kind() != "identifier" {
		return InitEntry{}, false
	}
	return InitEntry{Name: key.Utf8Text(source), Value: value}, true
}

// unwrapElement strips the literal_element wrapper around keys and values.
func unwrapElement(n *tree_sitter.Node) *tree_sitter.Node {
	if n != nil && n.Kind() == "literal_element" && n.NamedChildCount() > 0 {
		return n.NamedChild(0)
	}
	return n
}

func (e *goFrontend) Extract(u *Usage, model infer.SemanticModel) *infer.ExceptionDraft {
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
		Language: infer.LangGo,
		Name:     u.Name,
		Form:     u.Form,
		Context:  u.Context,
		Site:     u.Span(),
	}

	for _, entry := range u.Init {
		typ, ok := goLiteralType(entry.Value, u.File.Source)
		if !ok {
			continue
		}
		draft.Fields = append(draft.Fields, infer.FieldDraft{Name: entry.Name, Type: typ})
	}

	return draft
}

// goModel resolves package-level declared names. Read-only after BuildModel.
type goModel struct {
	symbols map[string]infer.Symbol
}

func (e *goFrontend) BuildModel(files []*SourceFile) infer.SemanticModel {
	m := &goModel{symbols: make(map[string]infer.Symbol)}
	for _, f := range files {
		m.indexFile(f)
	}
	return m
}

func (m *goModel) indexFile(file *SourceFile) {
	src := file.Source
	walkTree(file, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "type_spec":
			m.addNamed(n, src, file.Path, infer.SymbolKindType)
		case "function_declaration":
			m.addNamed(n, src, file.Path, infer.SymbolKindFunction)
		case "const_spec", "var_spec":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				child := n.NamedChild(i)
				if child.Kind() != "identifier" {
					break // identifiers come first; stop at type/value
				}
				m.add(infer.Symbol{
					Name:     child.Utf8Text(src),
					Kind:     infer.SymbolKindType,
					FilePath: file.Path,
				})
			}
		}
	})
}

func (m *goModel) addNamed(n *tree_sitter.Node, src []byte, path string, kind infer.SymbolKind) {
	if name := n.ChildByFieldName("name"); name != nil {
		m.add(infer.Symbol{Name: name.Utf8Text(src), Kind: kind, FilePath: path})
	}
}

func (m *goModel) add(sym infer.Symbol) {
	if _, exists := m.symbols[sym.Name]; !exists {
		m.symbols[sym.Name] = sym
	}
}

func (m *goModel) ResolveSymbol(name string) (infer.Symbol, bool) {
	sym, ok := m.symbols[name]
	return sym, ok
}

// ResolveThrowable always fails: Go usages have no cast form.
func (m *goModel) ResolveThrowable(string) (infer.TypeDescriptor, bool) {
	return infer.TypeDescriptor{}, false
}

func (m *goModel) PublicConstructors(infer.TypeDescriptor) []infer.ConstructorShape {
	return nil
}

// goLiteralType evaluates the static type of a composite-literal value:
// literals, sign prefixes, and parentheses only.
func goLiteralType(n *tree_sitter.Node, source []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "interpreted_string_literal", "raw_string_literal":
		return "string", true
	case "int_literal":
		return "int", true
	case "float_literal":
		return "float64", true
	case "rune_literal":
		return "rune", true
	case "true", "false":
		return "bool", true
	case "parenthesized_expression":
		return goLiteralType(n.NamedChild(0), source)
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		if op == nil {
			return "", false
		}
		switch op.Utf8Text(source) {
		case "-", "+":
			typ, ok := goLiteralType(n.ChildByFieldName("operand"), source)
			if ok && typ != "string" && typ != "bool" {
				return typ, true
			}
		}
	}
	return "", false
}
