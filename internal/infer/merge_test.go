package infer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func draftAt(name string, file string, line int, fields ...FieldDraft) ExceptionDraft {
	return ExceptionDraft{
		Language: LangTypeScript,
		Name:     name,
		Fields:   fields,
		Form:     FormPlainThrow,
		Context:  ContextStatement,
		Site:     SourceSpan{FilePath: file, StartLine: line, EndLine: line},
	}
}

func findSpec(specs []MergedExceptionSpec, lang Language, name string) *MergedExceptionSpec {
	for i := range specs {
		if specs[i].Language == lang && specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// TestMerge_FieldUnion
// ---------------------------------------------------------------------------

func TestMerge_FieldUnion(t *testing.T) {
	drafts := []ExceptionDraft{
		draftAt("PortError", "a.ts", 10, FieldDraft{Name: "port", Type: "number"}),
		draftAt("PortError", "b.ts", 20, FieldDraft{Name: "host", Type: "string"}),
		draftAt("PortError", "c.ts", 5),
	}

	specs := Merge(drafts)
	require.Len(t, specs, 1)

	spec := specs[0]
	assert.Equal(t, "PortError", spec.Name)
	assert.Empty(t, spec.BaseClass)
	require.Len(t, spec.Fields, 2, "fields from all sites should union")
	assert.Equal(t, MergedField{Name: "host", Type: "string"}, spec.Fields[0])
	assert.Equal(t, MergedField{Name: "port", Type: "number"}, spec.Fields[1])

	require.Len(t, spec.Sites, 3)
	assert.Equal(t, "a.ts", spec.Sites[0].FilePath, "sites sorted by file")
	assert.Equal(t, "b.ts", spec.Sites[1].FilePath)
	assert.Equal(t, "c.ts", spec.Sites[2].FilePath)
}

// ---------------------------------------------------------------------------
// TestMerge_FieldTypeConflict
// ---------------------------------------------------------------------------

func TestMerge_FieldTypeConflict(t *testing.T) {
	drafts := []ExceptionDraft{
		draftAt("ParseError", "a.ts", 1, FieldDraft{Name: "line", Type: "number"}),
		draftAt("ParseError", "b.ts", 2, FieldDraft{Name: "line", Type: "string"}),
		draftAt("ParseError", "c.ts", 3, FieldDraft{Name: "col", Type: "number"}),
	}

	specs := Merge(drafts)
	require.Len(t, specs, 1)

	spec := specs[0]
	require.Len(t, spec.Fields, 2)
	assert.Equal(t, MergedField{Name: "col", Type: "number"}, spec.Fields[0], "agreeing field keeps its type")
	assert.Equal(t, MergedField{Name: "line", Type: ConflictTypeName}, spec.Fields[1], "disagreeing field becomes the marker")
	assert.True(t, spec.Fields[1].Conflicted())
	assert.True(t, spec.ReferencesConflict())
	assert.False(t, spec.BaseConflict())
}

// ---------------------------------------------------------------------------
// TestMerge_BaseClass
// ---------------------------------------------------------------------------

func TestMerge_BaseClass(t *testing.T) {
	ctorSet := []ConstructorShape{{
		Params:       []Param{{Type: "number", Name: "status"}},
		BaseCallArgs: []string{"status"},
	}}

	t.Run("single base wins over absent", func(t *testing.T) {
		withBase := draftAt("NotFoundError", "b.ts", 2)
		withBase.Form = FormCastThrow
		withBase.BaseClass = "HttpError"
		withBase.BaseConstructors = ctorSet

		specs := Merge([]ExceptionDraft{draftAt("NotFoundError", "a.ts", 1), withBase})
		require.Len(t, specs, 1)
		assert.Equal(t, "HttpError", specs[0].BaseClass)
		assert.Equal(t, ctorSet, specs[0].Constructors)
	})

	t.Run("disagreeing bases conflict", func(t *testing.T) {
		d1 := draftAt("NotFoundError", "a.ts", 1)
		d1.BaseClass = "HttpError"
		d1.BaseConstructors = ctorSet
		d2 := draftAt("NotFoundError", "b.ts", 2)
		d2.BaseClass = "RangeError"

		specs := Merge([]ExceptionDraft{d1, d2})
		require.Len(t, specs, 1)
		assert.Equal(t, ConflictTypeName, specs[0].BaseClass)
		assert.True(t, specs[0].BaseConflict())
		assert.Nil(t, specs[0].Constructors, "conflicted base drops captured constructors")
	})
}

// ---------------------------------------------------------------------------
// TestMerge_Grouping
// ---------------------------------------------------------------------------

func TestMerge_Grouping(t *testing.T) {
	tsDraft := draftAt("DiskError", "a.ts", 1)
	pyDraft := ExceptionDraft{
		Language: LangPython,
		Name:     "DiskError",
		Form:     FormPlainThrow,
		Context:  ContextStatement,
		Site:     SourceSpan{FilePath: "a.py", StartLine: 1, EndLine: 1},
	}

	specs := Merge([]ExceptionDraft{tsDraft, pyDraft})
	require.Len(t, specs, 2, "same name in different languages stays separate")
	assert.NotNil(t, findSpec(specs, LangTypeScript, "DiskError"))
	assert.NotNil(t, findSpec(specs, LangPython, "DiskError"))
}

// ---------------------------------------------------------------------------
// TestMerge_OrderIndependence
// ---------------------------------------------------------------------------

func TestMerge_OrderIndependence(t *testing.T) {
	base := draftAt("QuotaError", "m.ts", 7)
	base.BaseClass = "Error"
	drafts := []ExceptionDraft{
		draftAt("QuotaError", "a.ts", 3, FieldDraft{Name: "limit", Type: "number"}),
		draftAt("QuotaError", "z.ts", 1, FieldDraft{Name: "limit", Type: "string"}),
		draftAt("QuotaError", "k.ts", 9, FieldDraft{Name: "scope", Type: "string"}),
		base,
		draftAt("RateError", "a.ts", 30),
		draftAt("ParseError", "b.ts", 2, FieldDraft{Name: "line", Type: "number"}),
	}

	want := Merge(drafts)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]ExceptionDraft, len(drafts))
		copy(shuffled, drafts)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, Merge(shuffled), "permutation %d must merge identically", i)
	}
}

// ---------------------------------------------------------------------------
// TestMerge_Idempotence
// ---------------------------------------------------------------------------

func TestMerge_Idempotence(t *testing.T) {
	drafts := []ExceptionDraft{
		draftAt("RetryError", "a.ts", 1, FieldDraft{Name: "attempts", Type: "number"}),
		draftAt("RetryError", "a.ts", 1, FieldDraft{Name: "attempts", Type: "number"}),
	}

	specs := Merge(drafts)
	require.Len(t, specs, 1)
	assert.Len(t, specs[0].Sites, 1, "duplicate drafts collapse to one site")
	require.Len(t, specs[0].Fields, 1)
	assert.Equal(t, "number", specs[0].Fields[0].Type, "same type twice is not a conflict")
}

// ---------------------------------------------------------------------------
// TestMerge_Empty
// ---------------------------------------------------------------------------

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]ExceptionDraft{}))
}
