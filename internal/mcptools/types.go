package mcptools

import (
	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
	"github.com/duskforge/throwgen/internal/store"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// InferThrowablesInput is the input for the infer_throwables MCP tool.
type InferThrowablesInput struct {
	ProjectRoot string   `json:"projectRoot" jsonschema:"the absolute path to the project to scan"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to scan (default: all). Values: typescript, python, go"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from scanning (e.g. vendor, node_modules)"`
	OutputDir   string   `json:"outputDir,omitempty" jsonschema:"where to write generated declaration files. Empty means do not write files"`
}

// InferThrowablesOutput is the result of the infer_throwables MCP tool.
type InferThrowablesOutput struct {
	Stats        infer.Stats `json:"stats"`
	WrittenFiles []string    `json:"writtenFiles,omitempty"`
}

// GetDeclarationInput is the input for the get_declaration MCP tool.
type GetDeclarationInput struct {
	Language string `json:"language" jsonschema:"language of the generated type: typescript, python, go"`
	Name     string `json:"name" jsonschema:"name of the generated exception type"`
}

// GetDeclarationOutput is the result of the get_declaration MCP tool.
type GetDeclarationOutput struct {
	Spec store.SpecRecord `json:"spec"`
}

// QueryUsagesInput is the input for the query_usages MCP tool.
type QueryUsagesInput struct {
	TypeName string `json:"typeName,omitempty" jsonschema:"filter usage sites by exception type name (case-insensitive exact match)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 50)"`
}

// QueryUsagesOutput is the result of the query_usages MCP tool.
type QueryUsagesOutput struct {
	Usages []pipeline.UsageRecord `json:"usages"`
	Total  int                    `json:"total"`
}

// GetStatsInput is the input for the get_stats MCP tool.
type GetStatsInput struct{}

// GetStatsOutput is the result of the get_stats MCP tool.
type GetStatsOutput struct {
	Stats store.Stats `json:"stats"`
}
