package infer

import (
	"fmt"
	"strings"
	"unicode"
)

// pyEmitter renders Python exception classes. The three canonical
// constructor arities (no-arg, message, message+cause) are expressed by one
// initializer with defaulted parameters, which is how Python spells
// overloads; inferred fields arrive as keyword arguments.
type pyEmitter struct{}

func (e *pyEmitter) Language() Language { return LangPython }

func (e *pyEmitter) Render(spec *MergedExceptionSpec) Declaration {
	base := spec.BaseClass
	if base == "" {
		base = "Exception"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n\n", genHeader)
	fmt.Fprintf(&b, "class %s(%s):\n", spec.Name, base)

	var conflicted []string
	for _, f := range spec.Fields {
		// Quoted annotations keep the declaration self-contained even when
		// the type is the (unresolvable) conflict marker.
		fmt.Fprintf(&b, "    %s: \"%s | None\" = None\n", f.Name, f.Type)
		if f.Conflicted() {
			conflicted = append(conflicted, f.Name)
		}
	}
	if len(spec.Fields) > 0 {
		b.WriteString("\n")
	}

	params := "self, message=None, cause=None"
	if len(spec.Fields) > 0 {
		params += ", **fields"
	}
	fmt.Fprintf(&b, "    def __init__(%s):\n", params)
	b.WriteString("        if message is None:\n")
	b.WriteString("            super().__init__()\n")
	b.WriteString("        else:\n")
	b.WriteString("            super().__init__(message)\n")
	b.WriteString("        if cause is not None:\n")
	b.WriteString("            self.__cause__ = cause\n")
	if len(spec.Fields) > 0 {
		b.WriteString("        for name, value in fields.items():\n")
		if len(conflicted) > 0 {
			quoted := make([]string, len(conflicted))
			for i, name := range conflicted {
				quoted[i] = fmt.Sprintf("%q", name)
			}
			fmt.Fprintf(&b, "            if name in (%s,):\n", strings.Join(quoted, ", "))
			b.WriteString("                raise TypeError(\n")
			b.WriteString("                    f\"field {name!r} was inferred with conflicting types\"\n")
			b.WriteString("                )\n")
		}
		b.WriteString("            setattr(self, name, value)\n")
	}

	return Declaration{
		Language: LangPython,
		Name:     spec.Name,
		FileName: snakeCase(spec.Name) + "_gen.py",
		Source:   b.String(),
	}
}

func (e *pyEmitter) RenderConflictMarker() Declaration {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n\n", genHeader)
	fmt.Fprintf(&b, "class %s:\n", ConflictTypeName)
	b.WriteString("    \"\"\"Marks inferred usages that could not be unified.\n\n")
	b.WriteString("    The same field or base class was used with incompatible types at\n")
	b.WriteString("    different raise sites. This class is deliberately non-constructible;\n")
	b.WriteString("    fix the disagreeing sites instead of using it.\n")
	b.WriteString("    \"\"\"\n\n")
	b.WriteString("    def __init__(self, *args, **kwargs):\n")
	fmt.Fprintf(&b, "        raise TypeError(\"%s is not constructible\")\n\n", ConflictTypeName)
	b.WriteString("    def __init_subclass__(cls, **kwargs):\n")
	fmt.Fprintf(&b, "        raise TypeError(\"%s cannot be subclassed\")\n", ConflictTypeName)

	return Declaration{
		Language: LangPython,
		Name:     ConflictTypeName,
		FileName: snakeCase(ConflictTypeName) + "_gen.py",
		Source:   b.String(),
	}
}

// snakeCase converts a CamelCase identifier to snake_case, keeping acronym
// runs together: "HTTPTimeoutError" -> "http_timeout_error".
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && !unicode.IsUpper(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
