//go:build cgo

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/duskforge/throwgen/internal/infer"
	"github.com/duskforge/throwgen/internal/pipeline"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself for new
// databases; for existing ones the directory must contain valid KuzuDB files.
// This lets usage graphs from earlier passes survive across runs.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Usage(
		id STRING,
		language STRING,
		type_name STRING,
		form STRING,
		context STRING,
		file_path STRING,
		start_line INT64,
		end_line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Spec(
		id STRING,
		language STRING,
		name STRING,
		base_class STRING,
		field_count INT64,
		conflicted BOOLEAN,
		declaration STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS INFERS(FROM Usage TO Spec)`,
}

// InitSchema creates the node and relationship tables if they do not exist,
// then clears any rows left over from a previous pass. A pass always writes
// the full result set, so stale rows would otherwise shadow deletions.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	for _, stmt := range []string{
		"MATCH (u:Usage) DETACH DELETE u",
		"MATCH (sp:Spec) DETACH DELETE sp",
	} {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: clear tables: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddUsage inserts a Usage node.
func (s *KuzuStore) AddUsage(_ context.Context, u pipeline.UsageRecord) error {
	return s.exec(
		`CREATE (u:Usage {
			id: $id,
			language: $lang,
			type_name: $tn,
			form: $form,
			context: $ctx,
			file_path: $fp,
			start_line: $sl,
			end_line: $el
		})`,
		map[string]any{
			"id":   UsageID(u),
			"lang": string(u.Language),
			"tn":   u.TypeName,
			"form": string(u.Form),
			"ctx":  string(u.Context),
			"fp":   u.Site.FilePath,
			"sl":   int64(u.Site.StartLine),
			"el":   int64(u.Site.EndLine),
		},
	)
}

// AddSpec inserts a Spec node.
func (s *KuzuStore) AddSpec(_ context.Context, rec SpecRecord) error {
	return s.exec(
		`CREATE (sp:Spec {
			id: $id,
			language: $lang,
			name: $name,
			base_class: $base,
			field_count: $fc,
			conflicted: $conf,
			declaration: $decl
		})`,
		map[string]any{
			"id":   SpecID(rec.Language, rec.Name),
			"lang": string(rec.Language),
			"name": rec.Name,
			"base": rec.BaseClass,
			"fc":   int64(rec.FieldCount),
			"conf": rec.Conflicted,
			"decl": rec.Declaration,
		},
	)
}

// LinkUsage inserts an INFERS edge from a usage site to the spec it fed.
func (s *KuzuStore) LinkUsage(_ context.Context, usageID string, lang infer.Language, specName string) error {
	return s.exec(
		`MATCH (u:Usage {id: $src}), (sp:Spec {id: $dst})
		 CREATE (u)-[:INFERS]->(sp)`,
		map[string]any{
			"src": usageID,
			"dst": SpecID(lang, specName),
		},
	)
}

// ---------- Read operations ----------

// GetSpec retrieves a single Spec by language and name.
func (s *KuzuStore) GetSpec(_ context.Context, lang infer.Language, name string) (*SpecRecord, error) {
	rows, err := s.query(
		`MATCH (sp:Spec {id: $id})
		 RETURN sp.language, sp.name, sp.base_class, sp.field_count, sp.conflicted, sp.declaration`,
		map[string]any{"id": SpecID(lang, name)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("kuzu: spec %s/%s not found", lang, name)
	}
	return rowToSpec(rows[0]), nil
}

// ListSpecs returns all Spec nodes ordered by language then name.
func (s *KuzuStore) ListSpecs(_ context.Context) ([]SpecRecord, error) {
	rows, err := s.query(
		`MATCH (sp:Spec)
		 RETURN sp.language, sp.name, sp.base_class, sp.field_count, sp.conflicted, sp.declaration
		 ORDER BY sp.language, sp.name`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]SpecRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSpec(r))
	}
	return out, nil
}

// QueryUsages returns usage sites, optionally filtered by type name.
// Results are ordered by file path then line.
func (s *KuzuStore) QueryUsages(_ context.Context, typeName string, limit int) ([]pipeline.UsageRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	cypher := `MATCH (u:Usage)
		 RETURN u.language, u.type_name, u.form, u.context, u.file_path, u.start_line, u.end_line
		 ORDER BY u.file_path, u.start_line, u.type_name
		 LIMIT $lim`
	params := map[string]any{"lim": int64(limit)}
	if typeName != "" {
		cypher = `MATCH (u:Usage) WHERE lower(u.type_name) = lower($tn)
		 RETURN u.language, u.type_name, u.form, u.context, u.file_path, u.start_line, u.end_line
		 ORDER BY u.file_path, u.start_line, u.type_name
		 LIMIT $lim`
		params["tn"] = typeName
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.UsageRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, pipeline.UsageRecord{
			Language: infer.Language(toString(r[0])),
			TypeName: toString(r[1]),
			Form:     infer.UsageForm(toString(r[2])),
			Context:  infer.UsageContext(toString(r[3])),
			Site: infer.SourceSpan{
				FilePath:  toString(r[4]),
				StartLine: toInt(r[5]),
				EndLine:   toInt(r[6]),
			},
		})
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of both node tables and the INFERS edge table.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	usages, err := s.countTable("Usage")
	if err != nil {
		return nil, err
	}
	specs, err := s.countTable("Spec")
	if err != nil {
		return nil, err
	}
	conflicts, err := s.countConflicts()
	if err != nil {
		return nil, err
	}
	links, err := s.countLinks()
	if err != nil {
		return nil, err
	}
	return &Stats{
		UsageCount:    usages,
		SpecCount:     specs,
		ConflictCount: conflicts,
		LinkCount:     links,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countConflicts returns the number of Spec rows flagged as conflicted.
func (s *KuzuStore) countConflicts() (int, error) {
	rows, err := s.query("MATCH (sp:Spec) WHERE sp.conflicted RETURN count(sp)", nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countLinks returns the number of INFERS edges.
func (s *KuzuStore) countLinks() (int, error) {
	rows, err := s.query("MATCH ()-[r:INFERS]->() RETURN count(r)", nil)
	if err != nil {
		// Table may not exist yet; treat as zero.
		return 0, nil
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToSpec converts a 6-column result row into a SpecRecord.
// Column order: language, name, base_class, field_count, conflicted, declaration.
func rowToSpec(r []any) *SpecRecord {
	return &SpecRecord{
		Language:    infer.Language(toString(r[0])),
		Name:        toString(r[1]),
		BaseClass:   toString(r[2]),
		FieldCount:  toInt(r[3]),
		Conflicted:  toBool(r[4]),
		Declaration: toString(r[5]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
