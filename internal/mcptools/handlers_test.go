package mcptools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
	"github.com/duskforge/throwgen/internal/store"
)

// seededService returns a service whose store holds one spec and one usage.
func seededService(t *testing.T) *ThrowgenService {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemStore()
	t.Cleanup(func() { _ = st.Close() })

	u := pipeline.UsageRecord{
		Language: infer.LangTypeScript,
		TypeName: "TimeoutError",
		Form:     infer.FormPlainThrow,
		Context:  infer.ContextStatement,
		Site:     infer.SourceSpan{FilePath: "src/client.ts", StartLine: 4, EndLine: 4},
	}
	require.NoError(t, st.AddUsage(ctx, u))
	require.NoError(t, st.AddSpec(ctx, store.SpecRecord{
		Language:    infer.LangTypeScript,
		Name:        "TimeoutError",
		FieldCount:  1,
		Declaration: "export class TimeoutError extends Error {}",
	}))
	require.NoError(t, st.LinkUsage(ctx, store.UsageID(u), infer.LangTypeScript, "TimeoutError"))

	return NewThrowgenService(st)
}

// ---------------------------------------------------------------------------
// infer_throwables
// ---------------------------------------------------------------------------

func TestInferThrowables(t *testing.T) {
	svc := NewThrowgenService(store.NewMemStore())
	ctx := context.Background()

	_, out, err := svc.InferThrowables(ctx, nil, InferThrowablesInput{
		ProjectRoot: "../../testdata/fixtures/go_project",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Stats.Specs)
	assert.Empty(t, out.WrittenFiles, "no output dir requested")

	// The store now answers follow-up queries.
	_, decl, err := svc.GetDeclaration(ctx, nil, GetDeclarationInput{Language: "go", Name: "JobTimeoutError"})
	require.NoError(t, err)
	assert.Contains(t, decl.Spec.Declaration, "type JobTimeoutError struct")
}

func TestInferThrowables_WritesFiles(t *testing.T) {
	svc := NewThrowgenService(store.NewMemStore())

	_, out, err := svc.InferThrowables(context.Background(), nil, InferThrowablesInput{
		ProjectRoot: "../../testdata/fixtures/go_project",
		OutputDir:   t.TempDir(),
	})
	require.NoError(t, err)
	assert.Len(t, out.WrittenFiles, 2)
}

func TestInferThrowables_Validation(t *testing.T) {
	svc := NewThrowgenService(store.NewMemStore())

	_, _, err := svc.InferThrowables(context.Background(), nil, InferThrowablesInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projectRoot is required")
}

// ---------------------------------------------------------------------------
// get_declaration
// ---------------------------------------------------------------------------

func TestGetDeclaration(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, out, err := svc.GetDeclaration(ctx, nil, GetDeclarationInput{Language: "TypeScript", Name: "TimeoutError"})
	require.NoError(t, err, "language is case-insensitive")
	assert.Equal(t, "TimeoutError", out.Spec.Name)
	assert.Equal(t, "export class TimeoutError extends Error {}", out.Spec.Declaration)

	_, _, err = svc.GetDeclaration(ctx, nil, GetDeclarationInput{Language: "rust", Name: "TimeoutError"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")

	_, _, err = svc.GetDeclaration(ctx, nil, GetDeclarationInput{Language: "typescript"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, _, err = svc.GetDeclaration(ctx, nil, GetDeclarationInput{Language: "python", Name: "TimeoutError"})
	require.Error(t, err, "lookup is scoped per language")
}

// ---------------------------------------------------------------------------
// query_usages
// ---------------------------------------------------------------------------

func TestQueryUsages(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, out, err := svc.QueryUsages(ctx, nil, QueryUsagesInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "TimeoutError", out.Usages[0].TypeName)

	_, out, err = svc.QueryUsages(ctx, nil, QueryUsagesInput{TypeName: "NoSuchError"})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Usages)
}

// ---------------------------------------------------------------------------
// get_stats
// ---------------------------------------------------------------------------

func TestGetStats(t *testing.T) {
	svc := seededService(t)

	_, out, err := svc.GetStats(context.Background(), nil, GetStatsInput{})
	require.NoError(t, err)
	assert.Equal(t, store.Stats{UsageCount: 1, SpecCount: 1, LinkCount: 1}, out.Stats)
}
