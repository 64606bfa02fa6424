package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
	"github.com/duskforge/throwgen/internal/store"
)

// ThrowgenService holds the usage store queried by the MCP tool handlers.
// The infer_throwables tool repopulates it on every call.
type ThrowgenService struct {
	store store.Store
}

// NewThrowgenService creates a ThrowgenService backed by the given store.
func NewThrowgenService(st store.Store) *ThrowgenService {
	return &ThrowgenService{store: st}
}

// InferThrowables scans a project, infers missing exception declarations,
// repopulates the store, and optionally writes the generated files.
func (s *ThrowgenService) InferThrowables(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InferThrowablesInput,
) (*mcp.CallToolResult, InferThrowablesOutput, error) {
	if input.ProjectRoot == "" {
		return nil, InferThrowablesOutput{}, fmt.Errorf("projectRoot is required")
	}

	langs := make([]infer.Language, 0, len(input.Languages))
	for _, l := range input.Languages {
		langs = append(langs, infer.Language(strings.ToLower(l)))
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		ProjectRoot: input.ProjectRoot,
		Languages:   langs,
		ExcludeDirs: input.ExcludeDirs,
	})
	if err != nil {
		return nil, InferThrowablesOutput{}, fmt.Errorf("run inference: %w", err)
	}

	if err := store.Persist(ctx, s.store, result); err != nil {
		return nil, InferThrowablesOutput{}, fmt.Errorf("persist result: %w", err)
	}

	out := InferThrowablesOutput{Stats: result.Stats}
	if input.OutputDir != "" {
		written, err := pipeline.WriteDeclarations(result.Declarations, input.OutputDir)
		if err != nil {
			return nil, InferThrowablesOutput{}, fmt.Errorf("write declarations: %w", err)
		}
		out.WrittenFiles = written
	}

	return nil, out, nil
}

// GetDeclaration returns one generated declaration by language and name.
func (s *ThrowgenService) GetDeclaration(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDeclarationInput,
) (*mcp.CallToolResult, GetDeclarationOutput, error) {
	if input.Name == "" {
		return nil, GetDeclarationOutput{}, fmt.Errorf("name is required")
	}
	lang := infer.Language(strings.ToLower(input.Language))
	if !lang.Supported() {
		return nil, GetDeclarationOutput{}, fmt.Errorf("unsupported language: %q", input.Language)
	}

	rec, err := s.store.GetSpec(ctx, lang, input.Name)
	if err != nil {
		return nil, GetDeclarationOutput{}, fmt.Errorf("get spec: %w", err)
	}

	return nil, GetDeclarationOutput{Spec: *rec}, nil
}

// QueryUsages returns recorded usage sites, optionally filtered by type name.
func (s *ThrowgenService) QueryUsages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryUsagesInput,
) (*mcp.CallToolResult, QueryUsagesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	usages, err := s.store.QueryUsages(ctx, input.TypeName, limit)
	if err != nil {
		return nil, QueryUsagesOutput{}, fmt.Errorf("query usages: %w", err)
	}

	return nil, QueryUsagesOutput{
		Usages: usages,
		Total:  len(usages),
	}, nil
}

// GetStats returns counts of the stored inference graph.
func (s *ThrowgenService) GetStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetStatsInput,
) (*mcp.CallToolResult, GetStatsOutput, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, GetStatsOutput{}, fmt.Errorf("stats: %w", err)
	}

	return nil, GetStatsOutput{Stats: *stats}, nil
}
