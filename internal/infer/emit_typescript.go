package infer

import (
	"fmt"
	"strings"
)

// tsEmitter renders TypeScript class declarations. Generated classes extend
// the root `Error` type unless a base class was inferred from a cast, carry
// one readonly optional property per unified field, and accept an optional
// trailing `init` object mirroring the initializer form of the usage sites.
type tsEmitter struct{}

func (e *tsEmitter) Language() Language { return LangTypeScript }

func (e *tsEmitter) Render(spec *MergedExceptionSpec) Declaration {
	base := spec.BaseClass
	if base == "" {
		base = "Error"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n\n", genHeader)
	fmt.Fprintf(&b, "export class %s extends %s {\n", spec.Name, base)

	for _, f := range spec.Fields {
		fmt.Fprintf(&b, "  readonly %s?: %s;\n", f.Name, f.Type)
	}
	if len(spec.Fields) > 0 {
		b.WriteString("\n")
	}

	if len(spec.Constructors) == 0 {
		e.renderDefaultConstructors(&b, spec)
	} else {
		e.renderBaseConstructors(&b, spec)
	}

	b.WriteString("}\n")

	return Declaration{
		Language: LangTypeScript,
		Name:     spec.Name,
		FileName: spec.Name + ".gen.ts",
		Source:   b.String(),
	}
}

// renderDefaultConstructors emits the canonical three overloads: no-arg,
// message-only, and message-plus-cause, each forwarding to the implicit
// base. When the spec has fields, every overload gains an optional trailing
// init parameter.
func (e *tsEmitter) renderDefaultConstructors(b *strings.Builder, spec *MergedExceptionSpec) {
	if len(spec.Fields) == 0 {
		b.WriteString("  constructor();\n")
		b.WriteString("  constructor(message: string);\n")
		b.WriteString("  constructor(message: string, cause: unknown);\n")
		b.WriteString("  constructor(message?: string, cause?: unknown) {\n")
		b.WriteString("    super(message);\n")
		fmt.Fprintf(b, "    this.name = %q;\n", spec.Name)
		b.WriteString("    if (cause !== undefined) {\n")
		b.WriteString("      this.cause = cause;\n")
		b.WriteString("    }\n")
		b.WriteString("  }\n")
		return
	}

	init := initTypeLiteral(spec.Fields)
	fmt.Fprintf(b, "  constructor(init?: %s);\n", init)
	fmt.Fprintf(b, "  constructor(message: string, init?: %s);\n", init)
	fmt.Fprintf(b, "  constructor(message: string, cause: unknown, init?: %s);\n", init)
	b.WriteString("  constructor(...args: unknown[]) {\n")
	writeInitPop(b, init)
	b.WriteString("    const [message, cause] = args as [string?, unknown?];\n")
	b.WriteString("    super(message);\n")
	fmt.Fprintf(b, "    this.name = %q;\n", spec.Name)
	b.WriteString("    if (cause !== undefined) {\n")
	b.WriteString("      this.cause = cause;\n")
	b.WriteString("    }\n")
	writeInitAssign(b)
	b.WriteString("  }\n")
}

// renderBaseConstructors emits the constructor set captured from the base
// type, in extraction order, each forwarding its arguments to the base
// constructor call.
func (e *tsEmitter) renderBaseConstructors(b *strings.Builder, spec *MergedExceptionSpec) {
	init := ""
	if len(spec.Fields) > 0 {
		init = initTypeLiteral(spec.Fields)
	}

	if len(spec.Constructors) == 1 {
		shape := spec.Constructors[0]
		params := paramList(shape.Params)
		if init != "" {
			params = appendParam(params, "init?: "+init)
		}
		fmt.Fprintf(b, "  constructor(%s) {\n", params)
		fmt.Fprintf(b, "    super(%s);\n", strings.Join(shape.BaseCallArgs, ", "))
		fmt.Fprintf(b, "    this.name = %q;\n", spec.Name)
		if init != "" {
			writeInitAssign(b)
		}
		b.WriteString("  }\n")
		return
	}

	for _, shape := range spec.Constructors {
		params := paramList(shape.Params)
		if init != "" {
			params = appendParam(params, "init?: "+init)
		}
		fmt.Fprintf(b, "  constructor(%s);\n", params)
	}
	b.WriteString("  constructor(...args: any[]) {\n")
	if init != "" {
		writeInitPop(b, init)
	}
	b.WriteString("    super(...args);\n")
	fmt.Fprintf(b, "    this.name = %q;\n", spec.Name)
	if init != "" {
		writeInitAssign(b)
	}
	b.WriteString("  }\n")
}

func (e *tsEmitter) RenderConflictMarker() Declaration {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n\n", genHeader)
	b.WriteString("// " + ConflictTypeName + " marks inferred usages that could not be unified:\n")
	b.WriteString("// the same field or base class was used with incompatible types at\n")
	b.WriteString("// different throw sites. It is deliberately non-constructible; every\n")
	b.WriteString("// reference to it fails type checking, pointing back at the sites that\n")
	b.WriteString("// disagree.\n")
	fmt.Fprintf(&b, "export class %s {\n", ConflictTypeName)
	b.WriteString("  private constructor(witness: never) {\n")
	b.WriteString("    void witness;\n")
	b.WriteString("  }\n")
	b.WriteString("}\n")

	return Declaration{
		Language: LangTypeScript,
		Name:     ConflictTypeName,
		FileName: ConflictTypeName + ".gen.ts",
		Source:   b.String(),
	}
}

// initTypeLiteral renders the inline object type of the trailing init
// parameter, e.g. "{ port?: number; reason?: string }".
func initTypeLiteral(fields []MergedField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s?: %s", f.Name, f.Type)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// writeInitPop emits the runtime split of the trailing init argument from
// the positional arguments. A plain object that is not an Error instance is
// taken as the initializer.
func writeInitPop(b *strings.Builder, init string) {
	b.WriteString("    const last = args[args.length - 1];\n")
	b.WriteString("    const init =\n")
	b.WriteString("      typeof last === \"object\" && last !== null && !(last instanceof Error)\n")
	fmt.Fprintf(b, "        ? (args.pop() as %s)\n", init)
	b.WriteString("        : undefined;\n")
}

func writeInitAssign(b *strings.Builder) {
	b.WriteString("    if (init !== undefined) {\n")
	b.WriteString("      Object.assign(this, init);\n")
	b.WriteString("    }\n")
}

// paramList renders constructor parameters with the host's optional marker.
func paramList(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		opt := ""
		if p.Optional {
			opt = "?"
		}
		parts[i] = fmt.Sprintf("%s%s: %s", p.Name, opt, p.Type)
	}
	return strings.Join(parts, ", ")
}

func appendParam(params, extra string) string {
	if params == "" {
		return extra
	}
	return params + ", " + extra
}
