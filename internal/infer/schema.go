package infer

// --- Enums ---

// Language identifies a host language whose sources are scanned for
// throw-like usages of undeclared exception types.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangGo         Language = "go"
)

// SupportedLanguages are the languages with a frontend and an emitter.
var SupportedLanguages = []Language{LangTypeScript, LangPython, LangGo}

// Supported reports whether the language has a frontend and an emitter.
func (l Language) Supported() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// UsageForm distinguishes plain throws from throws wrapped in an explicit
// cast to an existing exception-family type.
type UsageForm string

const (
	FormPlainThrow UsageForm = "plain"
	FormCastThrow  UsageForm = "cast"
)

// UsageContext distinguishes the statement and expression variants of a
// throw-like construct (e.g. a `throw` statement vs. `Promise.reject(...)`).
type UsageContext string

const (
	ContextStatement  UsageContext = "statement"
	ContextExpression UsageContext = "expression"
)

// ExceptionSuffix is the identifier suffix that marks a bare type name as a
// candidate for inference. Names without it are never generated.
const ExceptionSuffix = "Error"

// ConflictTypeName is the shared, deliberately non-constructible placeholder
// type substituted wherever unification cannot agree on a field type or base
// class. Its presence in generated code is the downstream error signal.
const ConflictTypeName = "UsageConflict"

// MaxPositionalArgs is the argument-count guard: a construction with more
// positional arguments is assumed to be a real, already-declared type being
// built through an unusual overload, and is skipped.
const MaxPositionalArgs = 2

// --- Models ---

// SourceSpan locates a usage site. It is host bookkeeping only and takes no
// part in draft equality or merging.
type SourceSpan struct {
	FilePath  string `json:"filePath"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// FieldDraft is one inferred data field, produced per property assignment in
// a usage site's initializer whose value has a catalog-recognized primitive
// static type.
type FieldDraft struct {
	Name string `json:"name"`
	Type string `json:"type"` // canonical catalog name
}

// Param is one parameter of a constructor shape. Optional renders as the
// host language's nullable/optional marker.
type Param struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

// ConstructorShape is one public constructor overload of a referenced base
// type. BaseCallArgs are the parameter names forwarded verbatim to the base
// constructor call.
type ConstructorShape struct {
	Params       []Param  `json:"params"`
	BaseCallArgs []string `json:"baseCallArgs"`
}

// ExceptionDraft is the per-usage-site structural guess at a missing type's
// shape. Drafts are born and die within one scan pass.
type ExceptionDraft struct {
	Language         Language           `json:"language"`
	Name             string             `json:"name"`
	Fields           []FieldDraft       `json:"fields,omitempty"`
	BaseClass        string             `json:"baseClass,omitempty"`
	BaseConstructors []ConstructorShape `json:"baseConstructors,omitempty"`
	Form             UsageForm          `json:"form"`
	Context          UsageContext       `json:"context"`
	Site             SourceSpan         `json:"site"`
}

// MergedField is one unified field of a merged spec. Type is either a
// canonical primitive or ConflictTypeName; it is never left unresolved.
type MergedField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Conflicted reports whether the field's unification failed.
func (f MergedField) Conflicted() bool {
	return f.Type == ConflictTypeName
}

// MergedExceptionSpec is the single, final shape for one inferred type name
// across one language's scan pass. Specs are recomputed wholesale each pass.
type MergedExceptionSpec struct {
	Language Language `json:"language"`
	Name     string   `json:"name"`

	// Fields are sorted by name; names are unique after merge.
	Fields []MergedField `json:"fields,omitempty"`

	// BaseClass is empty (root exception type), a single agreed name, or
	// ConflictTypeName when drafts disagreed.
	BaseClass string `json:"baseClass,omitempty"`

	// Constructors is the base-derived constructor set, in extraction order.
	// Empty means the default three-constructor shape.
	Constructors []ConstructorShape `json:"constructors,omitempty"`

	// Sites are the usage sites that contributed to this spec, sorted by
	// (file, start line). Host bookkeeping only.
	Sites []SourceSpan `json:"sites,omitempty"`
}

// BaseConflict reports whether the drafts disagreed on the base class.
func (s *MergedExceptionSpec) BaseConflict() bool {
	return s.BaseClass == ConflictTypeName
}

// ReferencesConflict reports whether the spec mentions the conflict marker
// as a field type or base class, requiring the shared marker declaration.
func (s *MergedExceptionSpec) ReferencesConflict() bool {
	if s.BaseConflict() {
		return true
	}
	for _, f := range s.Fields {
		if f.Conflicted() {
			return true
		}
	}
	return false
}

// Declaration is one rendered type declaration ready for the host's
// code-integration collaborator.
type Declaration struct {
	Language Language `json:"language"`
	Name     string   `json:"name"`
	FileName string   `json:"fileName"` // suggested output file name
	Source   string   `json:"source"`
}

// Stats summarizes one full inference pass.
type Stats struct {
	FilesScanned int `json:"filesScanned"`
	UsageSites   int `json:"usageSites"`
	Drafts       int `json:"drafts"`
	Specs        int `json:"specs"`
	Conflicts    int `json:"conflicts"` // specs referencing the conflict marker
}
