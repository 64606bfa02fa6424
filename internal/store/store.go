package store

import (
	"context"
	"fmt"
	"io"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
)

// SpecRecord is the persisted projection of one merged spec together with
// its rendered declaration.
type SpecRecord struct {
	Language    infer.Language `json:"language"`
	Name        string         `json:"name"`
	BaseClass   string         `json:"baseClass,omitempty"`
	FieldCount  int            `json:"fieldCount"`
	Conflicted  bool           `json:"conflicted"`
	Declaration string         `json:"declaration"`
}

// Stats summarizes the stored inference graph.
type Stats struct {
	UsageCount    int `json:"usageCount"`
	SpecCount     int `json:"specCount"`
	ConflictCount int `json:"conflictCount"`
	LinkCount     int `json:"linkCount"`
}

// Store is the interface for the inference bookkeeping graph: which usage
// sites were seen and which generated spec each one fed.
// Implementations: KuzuStore (production persistence), MemStore (testing).
type Store interface {
	io.Closer

	// Schema setup: called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddUsage(ctx context.Context, u pipeline.UsageRecord) error
	AddSpec(ctx context.Context, rec SpecRecord) error
	LinkUsage(ctx context.Context, usageID string, lang infer.Language, specName string) error

	// Read operations.
	GetSpec(ctx context.Context, lang infer.Language, name string) (*SpecRecord, error)
	ListSpecs(ctx context.Context) ([]SpecRecord, error)
	QueryUsages(ctx context.Context, typeName string, limit int) ([]pipeline.UsageRecord, error)

	// Stats.
	Stats(ctx context.Context) (*Stats, error)
}

// UsageID builds the deterministic identifier of a usage record.
func UsageID(u pipeline.UsageRecord) string {
	return fmt.Sprintf("%s:%d:%s", u.Site.FilePath, u.Site.StartLine, u.TypeName)
}

// SpecID builds the deterministic identifier of a spec record.
func SpecID(lang infer.Language, name string) string {
	return string(lang) + ":" + name
}

// Persist replaces the store contents with one pass's result: every spec
// with its declaration, every usage, and one INFERS link per usage.
func Persist(ctx context.Context, s Store, result *pipeline.Result) error {
	if err := s.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	declarations := make(map[string]string, len(result.Declarations))
	for _, d := range result.Declarations {
		declarations[SpecID(d.Language, d.Name)] = d.Source
	}

	for i := range result.Specs {
		spec := &result.Specs[i]
		rec := SpecRecord{
			Language:    spec.Language,
			Name:        spec.Name,
			BaseClass:   spec.BaseClass,
			FieldCount:  len(spec.Fields),
			Conflicted:  spec.ReferencesConflict(),
			Declaration: declarations[SpecID(spec.Language, spec.Name)],
		}
		if err := s.AddSpec(ctx, rec); err != nil {
			return fmt.Errorf("add spec %s: %w", spec.Name, err)
		}
	}

	for _, u := range result.Usages {
		if err := s.AddUsage(ctx, u); err != nil {
			return fmt.Errorf("add usage %s: %w", UsageID(u), err)
		}
		if err := s.LinkUsage(ctx, UsageID(u), u.Language, u.TypeName); err != nil {
			return fmt.Errorf("link usage %s: %w", UsageID(u), err)
		}
	}

	return nil
}
