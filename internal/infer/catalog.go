package infer

// Catalog maps a language's recognized scalar type spellings (including
// qualified and wrapper-object aliases) to canonical names. Pure lookup,
// no state.
type Catalog struct {
	canonical map[string]string
}

// Canonical returns the canonical name for spelling and whether the spelling
// is a recognized primitive.
func (c *Catalog) Canonical(spelling string) (string, bool) {
	name, ok := c.canonical[spelling]
	return name, ok
}

// IsPrimitive reports whether spelling names a recognized primitive type.
func (c *Catalog) IsPrimitive(spelling string) bool {
	_, ok := c.canonical[spelling]
	return ok
}

// newCatalog builds a catalog where every canonical name maps to itself and
// every alias maps to its canonical name.
func newCatalog(canonical []string, aliases map[string]string) *Catalog {
	m := make(map[string]string, len(canonical)+len(aliases))
	for _, name := range canonical {
		m[name] = name
	}
	for alias, name := range aliases {
		m[alias] = name
	}
	return &Catalog{canonical: m}
}

var catalogs = map[Language]*Catalog{
	LangTypeScript: newCatalog(
		[]string{"string", "number", "boolean", "bigint"},
		map[string]string{
			"String":             "string",
			"Number":             "number",
			"Boolean":            "boolean",
			"BigInt":             "bigint",
			"globalThis.String":  "string",
			"globalThis.Number":  "number",
			"globalThis.Boolean": "boolean",
			"globalThis.BigInt":  "bigint",
		},
	),
	LangPython: newCatalog(
		[]string{"str", "int", "float", "bool", "bytes"},
		map[string]string{
			"builtins.str":   "str",
			"builtins.int":   "int",
			"builtins.float": "float",
			"builtins.bool":  "bool",
			"builtins.bytes": "bytes",
		},
	),
	LangGo: newCatalog(
		[]string{"string", "int", "int64", "float64", "bool", "byte", "rune"},
		map[string]string{
			"uint8": "byte",
			"int32": "rune",
		},
	),
}

// CatalogFor returns the primitive type catalog for lang. Unknown languages
// get an empty catalog, so every lookup misses.
func CatalogFor(lang Language) *Catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return &Catalog{canonical: map[string]string{}}
}
