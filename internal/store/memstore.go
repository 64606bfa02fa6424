package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu     sync.RWMutex
	usages map[string]pipeline.UsageRecord
	specs  map[string]SpecRecord
	links  map[string]string // usage id -> spec id
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		usages: make(map[string]pipeline.UsageRecord),
		specs:  make(map[string]SpecRecord),
		links:  make(map[string]string),
	}
}

func (m *MemStore) InitSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usages = make(map[string]pipeline.UsageRecord)
	m.specs = make(map[string]SpecRecord)
	m.links = make(map[string]string)
	return nil
}

func (m *MemStore) AddUsage(ctx context.Context, u pipeline.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usages[UsageID(u)] = u
	return nil
}

func (m *MemStore) AddSpec(ctx context.Context, rec SpecRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[SpecID(rec.Language, rec.Name)] = rec
	return nil
}

func (m *MemStore) LinkUsage(ctx context.Context, usageID string, lang infer.Language, specName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usages[usageID]; !ok {
		return fmt.Errorf("memstore: link: unknown usage %q", usageID)
	}
	specID := SpecID(lang, specName)
	if _, ok := m.specs[specID]; !ok {
		return fmt.Errorf("memstore: link: unknown spec %q", specID)
	}
	m.links[usageID] = specID
	return nil
}

func (m *MemStore) GetSpec(ctx context.Context, lang infer.Language, name string) (*SpecRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.specs[SpecID(lang, name)]
	if !ok {
		return nil, fmt.Errorf("memstore: spec %s/%s not found", lang, name)
	}
	return &rec, nil
}

func (m *MemStore) ListSpecs(ctx context.Context) ([]SpecRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SpecRecord, 0, len(m.specs))
	for _, rec := range m.specs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemStore) QueryUsages(ctx context.Context, typeName string, limit int) ([]pipeline.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pipeline.UsageRecord, 0, len(m.usages))
	for _, u := range m.usages {
		if typeName != "" && !strings.EqualFold(u.TypeName, typeName) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Site.FilePath != out[j].Site.FilePath {
			return out[i].Site.FilePath < out[j].Site.FilePath
		}
		if out[i].Site.StartLine != out[j].Site.StartLine {
			return out[i].Site.StartLine < out[j].Site.StartLine
		}
		return out[i].TypeName < out[j].TypeName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &Stats{
		UsageCount: len(m.usages),
		SpecCount:  len(m.specs),
		LinkCount:  len(m.links),
	}
	for _, rec := range m.specs {
		if rec.Conflicted {
			st.ConflictCount++
		}
	}
	return st, nil
}

func (m *MemStore) Close() error { return nil }
