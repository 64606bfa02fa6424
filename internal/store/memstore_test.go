package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func usageAt(file string, line int, name string) pipeline.UsageRecord {
	return pipeline.UsageRecord{
		Language: infer.LangTypeScript,
		TypeName: name,
		Form:     infer.FormPlainThrow,
		Context:  infer.ContextStatement,
		Site:     infer.SourceSpan{FilePath: file, StartLine: line, EndLine: line},
	}
}

func specRec(lang infer.Language, name string, conflicted bool) SpecRecord {
	return SpecRecord{
		Language:    lang,
		Name:        name,
		FieldCount:  1,
		Conflicted:  conflicted,
		Declaration: "// " + name,
	}
}

// ---------------------------------------------------------------------------
// TestMemStore_SpecRoundTrip
// ---------------------------------------------------------------------------

func TestMemStore_SpecRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	defer s.Close()
	require.NoError(t, s.InitSchema(ctx))

	rec := SpecRecord{
		Language:    infer.LangTypeScript,
		Name:        "PaymentDeclinedError",
		BaseClass:   "HttpError",
		FieldCount:  3,
		Declaration: "export class PaymentDeclinedError extends HttpError {}",
	}
	require.NoError(t, s.AddSpec(ctx, rec))

	got, err := s.GetSpec(ctx, infer.LangTypeScript, "PaymentDeclinedError")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	_, err = s.GetSpec(ctx, infer.LangGo, "PaymentDeclinedError")
	require.Error(t, err, "lookup is keyed by language and name")
}

// ---------------------------------------------------------------------------
// TestMemStore_ListSpecs
// ---------------------------------------------------------------------------

func TestMemStore_ListSpecs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangTypeScript, "BError", false)))
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangGo, "ZError", false)))
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangTypeScript, "AError", false)))

	specs, err := s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, "ZError", specs[0].Name)
	assert.Equal(t, "AError", specs[1].Name)
	assert.Equal(t, "BError", specs[2].Name)
}

// ---------------------------------------------------------------------------
// TestMemStore_QueryUsages
// ---------------------------------------------------------------------------

func TestMemStore_QueryUsages(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.AddUsage(ctx, usageAt("b.ts", 5, "TimeoutError")))
	require.NoError(t, s.AddUsage(ctx, usageAt("a.ts", 9, "TimeoutError")))
	require.NoError(t, s.AddUsage(ctx, usageAt("a.ts", 2, "ParseError")))

	t.Run("no filter, sorted by site", func(t *testing.T) {
		usages, err := s.QueryUsages(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, usages, 3)
		assert.Equal(t, "ParseError", usages[0].TypeName)
		assert.Equal(t, "a.ts", usages[1].Site.FilePath)
		assert.Equal(t, "b.ts", usages[2].Site.FilePath)
	})

	t.Run("case-insensitive name filter", func(t *testing.T) {
		usages, err := s.QueryUsages(ctx, "timeouterror", 0)
		require.NoError(t, err)
		assert.Len(t, usages, 2)
	})

	t.Run("limit", func(t *testing.T) {
		usages, err := s.QueryUsages(ctx, "", 1)
		require.NoError(t, err)
		require.Len(t, usages, 1)
		assert.Equal(t, "ParseError", usages[0].TypeName)
	})
}

// ---------------------------------------------------------------------------
// TestMemStore_Links
// ---------------------------------------------------------------------------

func TestMemStore_Links(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	u := usageAt("a.ts", 3, "TimeoutError")
	require.NoError(t, s.AddUsage(ctx, u))
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangTypeScript, "TimeoutError", false)))

	require.NoError(t, s.LinkUsage(ctx, UsageID(u), infer.LangTypeScript, "TimeoutError"))

	err := s.LinkUsage(ctx, "nope:1:X", infer.LangTypeScript, "TimeoutError")
	require.Error(t, err, "unknown usage id")

	err = s.LinkUsage(ctx, UsageID(u), infer.LangTypeScript, "OtherError")
	require.Error(t, err, "unknown spec")
}

// ---------------------------------------------------------------------------
// TestMemStore_Stats
// ---------------------------------------------------------------------------

func TestMemStore_Stats(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	u := usageAt("a.ts", 3, "AError")
	require.NoError(t, s.AddUsage(ctx, u))
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangTypeScript, "AError", false)))
	require.NoError(t, s.AddSpec(ctx, specRec(infer.LangTypeScript, "BError", true)))
	require.NoError(t, s.LinkUsage(ctx, UsageID(u), infer.LangTypeScript, "AError"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{UsageCount: 1, SpecCount: 2, ConflictCount: 1, LinkCount: 1}, st)

	require.NoError(t, s.InitSchema(ctx))
	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, st, "init clears all tables")
}

// ---------------------------------------------------------------------------
// TestPersist
// ---------------------------------------------------------------------------

func TestPersist(t *testing.T) {
	ctx := context.Background()
	result := &pipeline.Result{
		Specs: []infer.MergedExceptionSpec{
			{
				Language: infer.LangTypeScript,
				Name:     "TimeoutError",
				Fields:   []infer.MergedField{{Name: "ms", Type: "number"}},
			},
			{
				Language: infer.LangTypeScript,
				Name:     "HeaderParseError",
				Fields:   []infer.MergedField{{Name: "line", Type: infer.ConflictTypeName}},
			},
		},
		Declarations: []infer.Declaration{
			{Language: infer.LangTypeScript, Name: "TimeoutError", Source: "export class TimeoutError {}"},
		},
		Usages: []pipeline.UsageRecord{
			usageAt("a.ts", 3, "TimeoutError"),
			usageAt("b.ts", 7, "HeaderParseError"),
		},
	}

	s := NewMemStore()
	require.NoError(t, Persist(ctx, s, result))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{UsageCount: 2, SpecCount: 2, ConflictCount: 1, LinkCount: 2}, st)

	got, err := s.GetSpec(ctx, infer.LangTypeScript, "TimeoutError")
	require.NoError(t, err)
	assert.Equal(t, "export class TimeoutError {}", got.Declaration)
	assert.Equal(t, 1, got.FieldCount)

	got, err = s.GetSpec(ctx, infer.LangTypeScript, "HeaderParseError")
	require.NoError(t, err)
	assert.True(t, got.Conflicted)
	assert.Empty(t, got.Declaration, "no declaration rendered for this spec")

	t.Run("replaces previous contents", func(t *testing.T) {
		require.NoError(t, Persist(ctx, s, result))
		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, st.UsageCount)
		assert.Equal(t, 2, st.SpecCount)
	})
}
