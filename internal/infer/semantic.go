package infer

// SymbolKind classifies declared symbols reported by a frontend's symbol
// table.
type SymbolKind string

const (
	SymbolKindClass    SymbolKind = "class"
	SymbolKindType     SymbolKind = "type"
	SymbolKindEnum     SymbolKind = "enum"
	SymbolKindFunction SymbolKind = "function"
	SymbolKindBuiltin  SymbolKind = "builtin"
)

// Symbol is a resolved, already-declared name in the scanned program (or a
// host runtime builtin). Any name that resolves is never a candidate for
// generation.
type Symbol struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	FilePath string     `json:"filePath,omitempty"` // empty for builtins
}

// TypeDescriptor identifies a resolvable type used as an explicit cast
// target at a usage site.
type TypeDescriptor struct {
	Name    string `json:"name"`
	Builtin bool   `json:"builtin"` // host runtime type, not project-declared
}

// SemanticModel is the frontend-provided resolver the draft extractor
// consults. Implementations are read-only during a scan pass and safe for
// concurrent use.
type SemanticModel interface {
	// ResolveSymbol reports whether name already denotes a known symbol in
	// the current program or host runtime.
	ResolveSymbol(name string) (Symbol, bool)

	// ResolveThrowable resolves name to a type that is transitively derived
	// from the language's root exception type. Names that resolve to
	// anything else are rejected.
	ResolveThrowable(name string) (TypeDescriptor, bool)

	// PublicConstructors returns the public, non-family-restricted
	// constructor shapes of t, in declaration order. Well-known base types
	// come from a closed table; anything else is introspected from the
	// declared source.
	PublicConstructors(t TypeDescriptor) []ConstructorShape
}
