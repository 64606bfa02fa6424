package infer

// errorOptionsShape is the ES2022 `(message?, options?)` constructor carried
// by every standard Error subclass.
var errorOptionsShape = ConstructorShape{
	Params: []Param{
		{Type: "string", Name: "message", Optional: true},
		{Type: "ErrorOptions", Name: "options", Optional: true},
	},
	BaseCallArgs: []string{"message", "options"},
}

// wellKnownTSBases is the closed table of standard TypeScript error types
// with bespoke constructor shapes. Cast targets outside this table fall back
// to generic introspection via SemanticModel.PublicConstructors.
var wellKnownTSBases = map[string][]ConstructorShape{
	"Error":          {errorOptionsShape},
	"TypeError":      {errorOptionsShape},
	"RangeError":     {errorOptionsShape},
	"SyntaxError":    {errorOptionsShape},
	"ReferenceError": {errorOptionsShape},
	"EvalError":      {errorOptionsShape},
	"URIError":       {errorOptionsShape},
	"AggregateError": {
		{
			Params: []Param{
				{Type: "Iterable<unknown>", Name: "errors", Optional: false},
				{Type: "string", Name: "message", Optional: true},
				{Type: "ErrorOptions", Name: "options", Optional: true},
			},
			BaseCallArgs: []string{"errors", "message", "options"},
		},
	},
}

// WellKnownBase returns the bespoke constructor shapes for a standard error
// type of lang, if the name is in the closed table.
func WellKnownBase(lang Language, name string) ([]ConstructorShape, bool) {
	if lang != LangTypeScript {
		return nil, false
	}
	shapes, ok := wellKnownTSBases[name]
	return shapes, ok
}

// IsWellKnownBase reports whether name is in the closed well-known table.
func IsWellKnownBase(lang Language, name string) bool {
	_, ok := WellKnownBase(lang, name)
	return ok
}
