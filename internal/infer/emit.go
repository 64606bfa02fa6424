package infer

import "sort"

// genHeader marks every generated file. Kept identical across languages so
// the host's integration tooling can recognize throwgen output.
const genHeader = "Code generated by throwgen; DO NOT EDIT."

// Emitter renders merged specs as textual declarations in one host
// language's concrete syntax. Rendering is a pure function of the spec:
// re-running with an unchanged spec yields byte-identical output.
type Emitter interface {
	Language() Language

	// Render produces the declaration for one spec.
	Render(spec *MergedExceptionSpec) Declaration

	// RenderConflictMarker produces the shared, deliberately
	// non-constructible placeholder declaration for ConflictTypeName.
	RenderConflictMarker() Declaration
}

var emitters = map[Language]Emitter{
	LangTypeScript: &tsEmitter{},
	LangPython:     &pyEmitter{},
	LangGo:         &goEmitter{},
}

// EmitterFor returns the emitter for lang.
func EmitterFor(lang Language) (Emitter, bool) {
	e, ok := emitters[lang]
	return e, ok
}

// RenderAll renders one declaration per spec, ordered by (language, name),
// plus, per language, exactly one conflict-marker declaration if and only
// if at least one of that language's specs references the marker.
func RenderAll(specs []MergedExceptionSpec) []Declaration {
	ordered := make([]MergedExceptionSpec, len(specs))
	copy(ordered, specs)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Language != ordered[j].Language {
			return ordered[i].Language < ordered[j].Language
		}
		return ordered[i].Name < ordered[j].Name
	})

	needMarker := make(map[Language]bool)
	var decls []Declaration
	for i := range ordered {
		spec := &ordered[i]
		e, ok := EmitterFor(spec.Language)
		if !ok {
			continue
		}
		decls = append(decls, e.Render(spec))
		if spec.ReferencesConflict() {
			needMarker[spec.Language] = true
		}
	}

	for _, lang := range SupportedLanguages {
		if !needMarker[lang] {
			continue
		}
		e, _ := EmitterFor(lang)
		decls = append(decls, e.RenderConflictMarker())
	}
	return decls
}
