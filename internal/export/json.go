package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
)

// Report is the top-level JSON export structure for one inference pass.
type Report struct {
	ProjectRoot string        `json:"projectRoot"`
	ExportedAt  string        `json:"exportedAt"`
	Stats       infer.Stats   `json:"stats"`
	Specs       []SpecExport  `json:"specs,omitempty"`
	Usages      []UsageExport `json:"usages,omitempty"`
}

// SpecExport describes one generated declaration.
type SpecExport struct {
	Language   string   `json:"language"`
	Name       string   `json:"name"`
	BaseClass  string   `json:"baseClass,omitempty"`
	Fields     []string `json:"fields,omitempty"` // "name type" pairs
	Conflicted bool     `json:"conflicted,omitempty"`
	FileName   string   `json:"fileName"`
}

// UsageExport describes one usage site that fed the inference.
type UsageExport struct {
	Language string `json:"language"`
	TypeName string `json:"typeName"`
	Form     string `json:"form"`
	Context  string `json:"context"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// BuildReport converts a pass result into the export structure.
func BuildReport(projectRoot string, result *pipeline.Result) *Report {
	report := &Report{
		ProjectRoot: projectRoot,
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Stats:       result.Stats,
	}

	fileNames := make(map[string]string, len(result.Declarations))
	for _, d := range result.Declarations {
		fileNames[string(d.Language)+":"+d.Name] = d.FileName
	}

	for i := range result.Specs {
		spec := &result.Specs[i]
		se := SpecExport{
			Language:   string(spec.Language),
			Name:       spec.Name,
			BaseClass:  spec.BaseClass,
			Conflicted: spec.ReferencesConflict(),
			FileName:   fileNames[string(spec.Language)+":"+spec.Name],
		}
		for _, f := range spec.Fields {
			se.Fields = append(se.Fields, f.Name+" "+f.Type)
		}
		report.Specs = append(report.Specs, se)
	}

	for _, u := range result.Usages {
		report.Usages = append(report.Usages, UsageExport{
			Language: string(u.Language),
			TypeName: u.TypeName,
			Form:     string(u.Form),
			Context:  string(u.Context),
			File:     u.Site.FilePath,
			Line:     u.Site.StartLine,
		})
	}

	return report
}

// MarshalReport renders the report as indented JSON with a trailing newline.
func MarshalReport(report *Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal report: %w", err)
	}
	return append(data, '\n'), nil
}
