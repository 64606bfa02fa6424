package frontend

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duskforge/throwgen/internal/infer"
)

// tsFrontend scans TypeScript sources. Plain throws are `throw new X(...)`
// statements and `Promise.reject(new X(...))` expressions; cast throws wrap
// the construction in an `as` cast (or legacy angle-bracket assertion) to an
// existing Error-derived type. A trailing object-literal argument carries
// the initializer entries.
type tsFrontend struct{}

func (e *tsFrontend) Language() infer.Language { return infer.LangTypeScript }

func (e *tsFrontend) ScanUsages(file *SourceFile) []Usage {
	var usages []Usage
	walkTree(file, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "throw_statement":
			if expr := n.NamedChild(0); expr != nil {
				if u := e.matchCandidate(file, expr, infer.ContextStatement); u != nil {
					usages = append(usages, *u)
				}
			}
		case "call_expression":
			if arg := promiseRejectArg(n, file.Source); arg != nil {
				if u := e.matchCandidate(file, arg, infer.ContextExpression); u != nil {
					usages = append(usages, *u)
				}
			}
		}
	})
	return usages
}

// matchCandidate matches one throw operand against the closed candidate set:
// an optional cast wrapper around a bare-name `new` expression with at most
// MaxPositionalArgs positional arguments.
func (e *tsFrontend) matchCandidate(file *SourceFile, expr *tree_sitter.Node, ctx infer.UsageContext) *Usage {
	expr = stripWrappers(expr)

	form := infer.FormPlainThrow
	castTarget := ""
	if inner, target, ok := unwrapCast(expr, file.Source); ok {
		form = infer.FormCastThrow
		castTarget = target
		expr = stripWrappers(inner)
	}

	if expr == nil || expr.Kind() != "new_expression" {
		return nil
	}
	ctor := expr.ChildByFieldName("constructor")
	if ctor == nil || ctor.Kind() != "identifier" {
		return nil // qualified or computed constructor: not a bare name
	}

	args, init := partitionArguments(expr.ChildByFieldName("arguments"), file.Source)
	if len(args) > infer.MaxPositionalArgs {
		return nil
	}

	return &Usage{
		Form:       form,
		Context:    ctx,
		Name:       ctor.Utf8Text(file.Source),
		CastTarget: castTarget,
		File:       file,
		Node:       expr,
		Args:       args,
		Init:       init,
	}
}

func (e *tsFrontend) Extract(u *Usage, model infer.SemanticModel) *infer.ExceptionDraft {
	if !strings.HasSuffix(u.Name, infer.ExceptionSuffix) {
		return nil
	}
	if strings.ContainsRune(u.Name, '.') {
		return nil
	}
	if _, known := model.ResolveSymbol(u.Name); known {
		return nil // already declared: not a candidate for generation
	}

	draft := &infer.ExceptionDraft{
		Language: infer.LangTypeScript,
		Name:     u.Name,
		Form:     u.Form,
		Context:  u.Context,
		Site:     u.Span(),
	}

	if u.Form == infer.FormCastThrow {
		target, ok := model.ResolveThrowable(u.CastTarget)
		if !ok {
			return nil // cast to something outside the exception family
		}
		draft.BaseClass = target.Name
		draft.BaseConstructors = model.PublicConstructors(target)
	}

	catalog := infer.CatalogFor(infer.LangTypeScript)
	for _, entry := range u.Init {
		typ, ok := tsLiteralType(entry.Value, u.File.Source, catalog)
		if !ok {
			continue // non-primitive fields are never inferred
		}
		draft.Fields = append(draft.Fields, infer.FieldDraft{Name: entry.Name, Type: typ})
	}

	return draft
}

// promiseRejectArg returns the single argument of a `Promise.reject(x)`
// call, or nil when the call is anything else.
func promiseRejectArg(call *tree_sitter.Node, source []byte) *tree_sitter.Node {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "member_expression" {
		return nil
	}
	obj := fn.ChildByFieldName("object")
	prop := fn.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return nil
	}
	if obj.Kind() != "identifier" || obj.Utf8Text(source) != "Promise" || prop.Utf8Text(source) != "reject" {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return nil
	}
	return args.NamedChild(0)
}

// stripWrappers removes parentheses and non-null assertions.
func stripWrappers(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "parenthesized_expression", "non_null_expression":
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

// unwrapCast matches `expr as T` and `<T>expr` where T is a simple type
// identifier, returning the inner expression and the target name.
func unwrapCast(n *tree_sitter.Node, source []byte) (*tree_sitter.Node, string, bool) {
	if n == nil {
		return nil, "", false
	}
	switch n.Kind() {
	case "as_expression":
		// Named children: expression, type.
		if n.NamedChildCount() < 2 {
			return nil, "", false
		}
		inner := n.NamedChild(0)
		typ := n.NamedChild(n.NamedChildCount() - 1)
		if typ == nil || typ.Kind() != "type_identifier" {
			return nil, "", false
		}
		return inner, typ.Utf8Text(source), true

	case "type_assertion":
		var inner, typ *tree_sitter.Node
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child.Kind() == "type_arguments" {
				typ = child.NamedChild(0)
			} else {
				inner = child
			}
		}
		if inner == nil || typ == nil || typ.Kind() != "type_identifier" {
			return nil, "", false
		}
		return inner, typ.Utf8Text(source), true
	}
	return nil, "", false
}

// partitionArguments splits a `new` expression's argument list into the
// positional arguments and, when the last argument is an object literal,
// the initializer entries. Entries whose key is not a simple identifier are
// silently dropped.
func partitionArguments(args *tree_sitter.Node, source []byte) ([]*tree_sitter.Node, []InitEntry) {
	if args == nil {
		return nil, nil
	}

	var exprs []*tree_sitter.Node
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		exprs = append(exprs, child)
	}
	if len(exprs) == 0 {
		return nil, nil
	}

	last := exprs[len(exprs)-1]
	if last.Kind() != "object" {
		return exprs, nil
	}
	return exprs[:len(exprs)-1], objectEntries(last, source)
}

// objectEntries extracts the identifier-keyed pairs of an object literal.
func objectEntries(obj *tree_sitter.Node, source []byte) []InitEntry {
	var entries []InitEntry
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		pair := obj.NamedChild(i)
		if pair.Kind() != "pair" {
			continue // shorthand, spread, method: no inferable assignment
		}
		key := pair.ChildByFieldName("key")
		value := pair.ChildByFieldName("value")
		if key == nil || value == nil || key.Kind() != "property_identifier" {
			continue
		}
		entries = append(entries, InitEntry{
			Name:  key.Utf8Text(source),
			Value: value,
		})
	}
	return entries
}

// tsLiteralType evaluates the static type of an initializer value without a
// type checker: literals, template strings, sign prefixes, parentheses,
// primitive `as` casts, and literal arithmetic. Anything else is not
// primitive.
func tsLiteralType(n *tree_sitter.Node, source []byte, catalog *infer.Catalog) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "string", "template_string":
		return "string", true
	case "number":
		if strings.HasSuffix(n.Utf8Text(source), "n") {
			return "bigint", true
		}
		return "number", true
	case "true", "false":
		return "boolean", true
	case "parenthesized_expression":
		return tsLiteralType(n.NamedChild(0), source, catalog)
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op == nil || arg == nil {
			return "", false
		}
		switch op.Utf8Text(source) {
		case "-", "+":
			typ, ok := tsLiteralType(arg, source, catalog)
			if ok && (typ == "number" || typ == "bigint") {
				return typ, true
			}
		case "!":
			return "boolean", true
		}
		return "", false
	case "binary_expression":
		return tsBinaryType(n, source, catalog)
	case "as_expression":
		typ := n.NamedChild(n.NamedChildCount() - 1)
		if typ == nil {
			return "", false
		}
		return catalog.Canonical(typ.Utf8Text(source))
	}
	return "", false
}

// tsBinaryType types literal arithmetic: `+` concatenates to string when
// either side is a string; the other arithmetic operators stay numeric.
func tsBinaryType(n *tree_sitter.Node, source []byte, catalog *infer.Catalog) (string, bool) {
	op := n.ChildByFieldName("operator")
	left, lok := tsLiteralType(n.ChildByFieldName("left"), source, catalog)
	right, rok := tsLiteralType(n.ChildByFieldName("right"), source, catalog)
	if op == nil || !lok || !rok {
		return "", false
	}
	switch op.Utf8Text(source) {
	case "+":
		if left == "string" || right == "string" {
			return "string", true
		}
		fallthrough
	case "-", "*", "/", "%", "**":
		if left == right && (left == "number" || left == "bigint") {
			return left, true
		}
	}
	return "", false
}
