package frontend

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duskforge/throwgen/internal/infer"
)

// tsClassInfo is one project-declared TypeScript class: its direct base name
// and its public constructor shapes, captured syntactically.
type tsClassInfo struct {
	name     string
	filePath string
	extends  string
	ctors    []infer.ConstructorShape
}

// tsModel is the TypeScript semantic model: every declared or imported name
// in the scanned files plus the host runtime's well-known error types.
// Read-only after BuildModel, safe for concurrent use.
type tsModel struct {
	symbols map[string]infer.Symbol
	classes map[string]*tsClassInfo
}

func (e *tsFrontend) BuildModel(files []*SourceFile) infer.SemanticModel {
	m := &tsModel{
		symbols: make(map[string]infer.Symbol),
		classes: make(map[string]*tsClassInfo),
	}
	for _, f := range files {
		m.indexFile(f)
	}
	return m
}

func (m *tsModel) indexFile(file *SourceFile) {
	src := file.Source
	walkTree(file, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "class_declaration", "abstract_class_declaration":
			m.indexClass(n, file)
		case "interface_declaration", "type_alias_declaration":
			m.addNamed(n, src, file.Path, infer.SymbolKindType)
		case "enum_declaration":
			m.addNamed(n, src, file.Path, infer.SymbolKindEnum)
		case "function_declaration":
			m.addNamed(n, src, file.Path, infer.SymbolKindFunction)
		case "variable_declarator":
			m.addNamed(n, src, file.Path, infer.SymbolKindType)
		case "import_specifier":
			// Imported names resolve; the local alias wins when present.
			name := n.ChildByFieldName("alias")
			if name == nil {
				name = n.ChildByFieldName("name")
			}
			if name != nil {
				m.add(infer.Symbol{
					Name:     name.Utf8Text(src),
					Kind:     infer.SymbolKindType,
					FilePath: file.Path,
				})
			}
		}
	})
}

func (m *tsModel) addNamed(n *tree_sitter.Node, src []byte, path string, kind infer.SymbolKind) {
	name := n.ChildByFieldName("name")
	if name == nil || name.Kind() == "array_pattern" || name.Kind() == "object_pattern" {
		return
	}
	m.add(infer.Symbol{Name: name.Utf8Text(src), Kind: kind, FilePath: path})
}

func (m *tsModel) add(sym infer.Symbol) {
	if _, exists := m.symbols[sym.Name]; !exists {
		m.symbols[sym.Name] = sym
	}
}

// indexClass records a class declaration: symbol, heritage, constructors.
func (m *tsModel) indexClass(n *tree_sitter.Node, file *SourceFile) {
	src := file.Source
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	info := &tsClassInfo{
		name:     nameNode.Utf8Text(src),
		filePath: file.Path,
		extends:  heritageBase(n, src),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		info.ctors = classConstructors(body, src)
	}

	m.add(infer.Symbol{Name: info.name, Kind: infer.SymbolKindClass, FilePath: file.Path})
	if _, exists := m.classes[info.name]; !exists {
		m.classes[info.name] = info
	}
}

// heritageBase returns the direct base class name of a class declaration,
// or "" when it extends nothing (or something other than a bare name).
func heritageBase(class *tree_sitter.Node, src []byte) string {
	for i := uint(0); i < class.ChildCount(); i++ {
		child := class.Child(i)
		if child == nil || child.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			clause := child.NamedChild(j)
			if clause.Kind() != "extends_clause" {
				continue
			}
			value := clause.ChildByFieldName("value")
			if value != nil && value.Kind() == "identifier" {
				return value.Utf8Text(src)
			}
		}
	}
	return ""
}

// classConstructors collects the public constructor shapes declared in a
// class body. Overload signatures take precedence over the implementation
// signature; private and protected constructors are excluded.
func classConstructors(body *tree_sitter.Node, src []byte) []infer.ConstructorShape {
	var signatures, impls []infer.ConstructorShape
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		kind := member.Kind()
		if kind != "method_definition" && kind != "method_signature" {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || name.Utf8Text(src) != "constructor" {
			continue
		}
		if isRestricted(member, src) {
			continue
		}
		shape := constructorShape(member.ChildByFieldName("parameters"), src)
		if kind == "method_signature" {
			signatures = append(signatures, shape)
		} else {
			impls = append(impls, shape)
		}
	}
	if len(signatures) > 0 {
		return signatures
	}
	return impls
}

// isRestricted reports whether a class member carries a private or
// protected accessibility modifier.
func isRestricted(member *tree_sitter.Node, src []byte) bool {
	for i := uint(0); i < member.ChildCount(); i++ {
		child := member.Child(i)
		if child != nil && child.Kind() == "accessibility_modifier" {
			text := child.Utf8Text(src)
			return text == "private" || text == "protected"
		}
	}
	return false
}

// constructorShape reads one formal parameter list into a ConstructorShape.
// Primitive annotations fold to their canonical short names; everything else
// keeps its declared display spelling.
func constructorShape(params *tree_sitter.Node, src []byte) infer.ConstructorShape {
	catalog := infer.CatalogFor(infer.LangTypeScript)
	var shape infer.ConstructorShape
	if params == nil {
		return shape
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		kind := p.Kind()
		if kind != "required_parameter" && kind != "optional_parameter" {
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() != "identifier" {
			continue // destructured parameters cannot be forwarded by name
		}
		name := pattern.Utf8Text(src)

		typeName := "unknown"
		if ann := p.ChildByFieldName("type"); ann != nil && ann.NamedChildCount() > 0 {
			spelled := ann.NamedChild(0).Utf8Text(src)
			if canonical, ok := catalog.Canonical(spelled); ok {
				typeName = canonical
			} else {
				typeName = spelled
			}
		}

		shape.Params = append(shape.Params, infer.Param{
			Type:     typeName,
			Name:     name,
			Optional: kind == "optional_parameter",
		})
		shape.BaseCallArgs = append(shape.BaseCallArgs, name)
	}
	return shape
}

// --- infer.SemanticModel ---

func (m *tsModel) ResolveSymbol(name string) (infer.Symbol, bool) {
	if sym, ok := m.symbols[name]; ok {
		return sym, true
	}
	if infer.IsWellKnownBase(infer.LangTypeScript, name) {
		return infer.Symbol{Name: name, Kind: infer.SymbolKindBuiltin}, true
	}
	return infer.Symbol{}, false
}

func (m *tsModel) ResolveThrowable(name string) (infer.TypeDescriptor, bool) {
	if infer.IsWellKnownBase(infer.LangTypeScript, name) {
		return infer.TypeDescriptor{Name: name, Builtin: true}, true
	}
	if m.extendsErrorRoot(name) {
		return infer.TypeDescriptor{Name: name, Builtin: false}, true
	}
	return infer.TypeDescriptor{}, false
}

// extendsErrorRoot walks the declared heritage chain until it reaches a
// well-known error type. The visited set guards against heritage cycles in
// malformed input.
func (m *tsModel) extendsErrorRoot(name string) bool {
	visited := make(map[string]bool)
	for cur := m.classes[name]; cur != nil && !visited[cur.name]; cur = m.classes[cur.extends] {
		visited[cur.name] = true
		if infer.IsWellKnownBase(infer.LangTypeScript, cur.extends) {
			return true
		}
	}
	return false
}

func (m *tsModel) PublicConstructors(t infer.TypeDescriptor) []infer.ConstructorShape {
	if t.Builtin {
		shapes, _ := infer.WellKnownBase(infer.LangTypeScript, t.Name)
		return shapes
	}

	// A class without a declared constructor inherits its base's, so walk up
	// until a declared set or a well-known base is found.
	visited := make(map[string]bool)
	for cur := m.classes[t.Name]; cur != nil && !visited[cur.name]; cur = m.classes[cur.extends] {
		visited[cur.name] = true
		if len(cur.ctors) > 0 {
			return cur.ctors
		}
		if shapes, ok := infer.WellKnownBase(infer.LangTypeScript, cur.extends); ok {
			return shapes
		}
	}
	return nil
}
