package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskforge/throwgen/internal/infer"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixture returns the path of a fixture project relative to this package.
func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func runFixture(t *testing.T, name string) *Result {
	t.Helper()
	result, err := Run(context.Background(), Options{ProjectRoot: fixture(name)})
	require.NoError(t, err, "pass over %s", name)
	require.NotNil(t, result)
	return result
}

func findSpec(specs []infer.MergedExceptionSpec, lang infer.Language, name string) *infer.MergedExceptionSpec {
	for i := range specs {
		if specs[i].Language == lang && specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}

func findDecl(decls []infer.Declaration, lang infer.Language, name string) *infer.Declaration {
	for i := range decls {
		if decls[i].Language == lang && decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// TestRun_TSProject
// ---------------------------------------------------------------------------

func TestRun_TSProject(t *testing.T) {
	result := runFixture(t, "ts_project")

	assert.Equal(t, 3, result.Stats.FilesScanned)
	assert.Equal(t, 5, result.Stats.Specs)
	assert.Equal(t, 1, result.Stats.Conflicts)

	t.Run("fields union across sites", func(t *testing.T) {
		spec := findSpec(result.Specs, infer.LangTypeScript, "PaymentDeclinedError")
		require.NotNil(t, spec)
		require.Len(t, spec.Fields, 3)
		assert.Equal(t, infer.MergedField{Name: "amount", Type: "number"}, spec.Fields[0])
		assert.Equal(t, infer.MergedField{Name: "orderId", Type: "string"}, spec.Fields[1])
		assert.Equal(t, infer.MergedField{Name: "retryable", Type: "boolean"}, spec.Fields[2])
		assert.Len(t, spec.Sites, 2)
	})

	t.Run("promise reject produces an expression usage", func(t *testing.T) {
		spec := findSpec(result.Specs, infer.LangTypeScript, "TimeoutError")
		require.NotNil(t, spec)
		assert.Empty(t, spec.Fields)

		var found bool
		for _, u := range result.Usages {
			if u.TypeName == "TimeoutError" {
				found = true
				assert.Equal(t, infer.ContextExpression, u.Context)
			}
		}
		assert.True(t, found)
	})

	t.Run("cast binds declared base and constructors", func(t *testing.T) {
		spec := findSpec(result.Specs, infer.LangTypeScript, "NotFoundError")
		require.NotNil(t, spec)
		assert.Equal(t, "HttpError", spec.BaseClass)
		require.Len(t, spec.Constructors, 1)
		assert.Equal(t, []string{"status", "message"}, spec.Constructors[0].BaseCallArgs)

		decl := findDecl(result.Declarations, infer.LangTypeScript, "NotFoundError")
		require.NotNil(t, decl)
		assert.Contains(t, decl.Source, "export class NotFoundError extends HttpError {")
		assert.Contains(t, decl.Source, "super(status, message);")
	})

	t.Run("cast binds well-known base", func(t *testing.T) {
		spec := findSpec(result.Specs, infer.LangTypeScript, "InsecureSchemeError")
		require.NotNil(t, spec)
		assert.Equal(t, "RangeError", spec.BaseClass)
	})

	t.Run("conflicting field types surface the marker", func(t *testing.T) {
		spec := findSpec(result.Specs, infer.LangTypeScript, "HeaderParseError")
		require.NotNil(t, spec)
		require.Len(t, spec.Fields, 1)
		assert.Equal(t, infer.ConflictTypeName, spec.Fields[0].Type)

		marker := findDecl(result.Declarations, infer.LangTypeScript, infer.ConflictTypeName)
		require.NotNil(t, marker, "marker declaration emitted alongside the conflicted spec")
	})

	t.Run("declared types are not regenerated", func(t *testing.T) {
		assert.Nil(t, findSpec(result.Specs, infer.LangTypeScript, "KnownError"))
		assert.Nil(t, findSpec(result.Specs, infer.LangTypeScript, "HttpError"))
	})
}

// ---------------------------------------------------------------------------
// TestRun_PyProject
// ---------------------------------------------------------------------------

func TestRun_PyProject(t *testing.T) {
	result := runFixture(t, "py_project")

	assert.Equal(t, 2, result.Stats.FilesScanned)
	assert.Equal(t, 2, result.Stats.Specs)
	assert.Equal(t, 0, result.Stats.Conflicts)

	spec := findSpec(result.Specs, infer.LangPython, "QueueFullError")
	require.NotNil(t, spec)
	require.Len(t, spec.Fields, 2)
	assert.Equal(t, infer.MergedField{Name: "batch", Type: "str"}, spec.Fields[0])
	assert.Equal(t, infer.MergedField{Name: "limit", Type: "int"}, spec.Fields[1])

	require.NotNil(t, findSpec(result.Specs, infer.LangPython, "EmptyItemError"))
	assert.Nil(t, findSpec(result.Specs, infer.LangPython, "ValueError"), "builtins are skipped")

	decl := findDecl(result.Declarations, infer.LangPython, "QueueFullError")
	require.NotNil(t, decl)
	assert.Equal(t, "queue_full_error_gen.py", decl.FileName)
	assert.Contains(t, decl.Source, "class QueueFullError(Exception):")
}

// ---------------------------------------------------------------------------
// TestRun_GoProject
// ---------------------------------------------------------------------------

func TestRun_GoProject(t *testing.T) {
	result := runFixture(t, "go_project")

	assert.Equal(t, 2, result.Stats.FilesScanned)
	assert.Equal(t, 2, result.Stats.Specs)

	spec := findSpec(result.Specs, infer.LangGo, "QueueOverflowError")
	require.NotNil(t, spec)
	require.Len(t, spec.Fields, 1, "identifier-valued element carries no type")
	assert.Equal(t, infer.MergedField{Name: "Queue", Type: "string"}, spec.Fields[0])

	spec = findSpec(result.Specs, infer.LangGo, "JobTimeoutError")
	require.NotNil(t, spec)
	require.Len(t, spec.Fields, 1)
	assert.Equal(t, infer.MergedField{Name: "Seconds", Type: "int"}, spec.Fields[0])

	assert.Nil(t, findSpec(result.Specs, infer.LangGo, "KnownError"), "declared types are skipped")
}

// ---------------------------------------------------------------------------
// TestRun_Determinism
// ---------------------------------------------------------------------------

func TestRun_Determinism(t *testing.T) {
	first := runFixture(t, "ts_project")
	second := runFixture(t, "ts_project")
	assert.Equal(t, first, second, "two passes over unchanged input are byte-identical")
}

// ---------------------------------------------------------------------------
// TestRun_Options
// ---------------------------------------------------------------------------

func TestRun_Options(t *testing.T) {
	t.Run("language filter", func(t *testing.T) {
		result, err := Run(context.Background(), Options{
			ProjectRoot: fixture("ts_project"),
			Languages:   []infer.Language{infer.LangGo},
		})
		require.NoError(t, err)
		assert.Zero(t, result.Stats.FilesScanned, "no Go files in the TS fixture")
		assert.Empty(t, result.Specs)
	})

	t.Run("exclude dirs", func(t *testing.T) {
		result, err := Run(context.Background(), Options{
			ProjectRoot: fixture("ts_project"),
			ExcludeDirs: []string{"src"},
		})
		require.NoError(t, err)
		assert.Zero(t, result.Stats.FilesScanned)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := Run(context.Background(), Options{ProjectRoot: fixture("no_such_project")})
		require.Error(t, err)
	})
}

// ---------------------------------------------------------------------------
// TestWriteDeclarations
// ---------------------------------------------------------------------------

func TestWriteDeclarations(t *testing.T) {
	result := runFixture(t, "ts_project")
	outDir := t.TempDir()

	written, err := WriteDeclarations(result.Declarations, outDir)
	require.NoError(t, err)
	require.Len(t, written, len(result.Declarations))

	for _, path := range written {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Code generated by throwgen; DO NOT EDIT.")
	}

	_, err = os.Stat(filepath.Join(outDir, "ts", "PaymentDeclinedError.gen.ts"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "ts", "UsageConflict.gen.ts"))
	assert.NoError(t, err)

	t.Run("stale files are cleared", func(t *testing.T) {
		stale := filepath.Join(outDir, "ts", "OldError.gen.ts")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

		_, err := WriteDeclarations(result.Declarations, outDir)
		require.NoError(t, err)
		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err), "stale declaration removed on re-run")
	})
}
