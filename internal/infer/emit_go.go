package infer

import (
	"fmt"
	"strings"
)

// goEmitter renders Go error structs. A generated type satisfies the error
// interface through Error and Unwrap methods; the three canonical
// constructors become New<Name>, New<Name>Msg, and New<Name>MsgCause
// functions, and inferred fields become exported struct fields so panic
// sites can keep constructing the type with a composite literal.
type goEmitter struct{}

// goGenPackage is the fixed package every generated Go declaration lives in.
const goGenPackage = "throwables"

func (e *goEmitter) Language() Language { return LangGo }

func (e *goEmitter) Render(spec *MergedExceptionSpec) Declaration {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n\n", genHeader)
	fmt.Fprintf(&b, "package %s\n\n", goGenPackage)

	// Message and Cause are built in; inferred fields with those names
	// would duplicate them.
	fields := make([]MergedField, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.Name == "Message" || f.Name == "Cause" {
			continue
		}
		fields = append(fields, f)
	}

	fmt.Fprintf(&b, "type %s struct {\n", spec.Name)
	b.WriteString("\tMessage string\n")
	b.WriteString("\tCause   error\n")
	if len(fields) > 0 {
		b.WriteString("\n")
		width := 0
		for _, f := range fields {
			if len(f.Name) > width {
				width = len(f.Name)
			}
		}
		for _, f := range fields {
			fmt.Fprintf(&b, "\t%-*s %s\n", width, f.Name, f.Type)
		}
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func New%s() *%s {\n", spec.Name, spec.Name)
	fmt.Fprintf(&b, "\treturn &%s{}\n", spec.Name)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func New%sMsg(message string) *%s {\n", spec.Name, spec.Name)
	fmt.Fprintf(&b, "\treturn &%s{Message: message}\n", spec.Name)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func New%sMsgCause(message string, cause error) *%s {\n", spec.Name, spec.Name)
	fmt.Fprintf(&b, "\treturn &%s{Message: message, Cause: cause}\n", spec.Name)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func (e *%s) Error() string {\n", spec.Name)
	b.WriteString("\treturn e.Message\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func (e *%s) Unwrap() error {\n", spec.Name)
	b.WriteString("\treturn e.Cause\n")
	b.WriteString("}\n")

	return Declaration{
		Language: LangGo,
		Name:     spec.Name,
		FileName: snakeCase(spec.Name) + "_gen.go",
		Source:   b.String(),
	}
}

func (e *goEmitter) RenderConflictMarker() Declaration {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n\n", genHeader)
	fmt.Fprintf(&b, "package %s\n\n", goGenPackage)
	fmt.Fprintf(&b, "// %s marks inferred usages that could not be unified: the same\n", ConflictTypeName)
	b.WriteString("// field was used with incompatible types at different panic sites. No type\n")
	b.WriteString("// satisfies it, so every assignment to such a field fails to compile,\n")
	b.WriteString("// pointing back at the sites that disagree.\n")
	fmt.Fprintf(&b, "type %s interface {\n", ConflictTypeName)
	b.WriteString("\tusageConflict()\n")
	b.WriteString("}\n")

	return Declaration{
		Language: LangGo,
		Name:     ConflictTypeName,
		FileName: snakeCase(ConflictTypeName) + "_gen.go",
		Source:   b.String(),
	}
}
