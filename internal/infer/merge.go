package infer

import "sort"

// Merge folds the complete, unordered collection of drafts from one scan
// pass into one MergedExceptionSpec per distinct (language, name). The fold
// is order-independent: any permutation of drafts yields a bit-for-bit
// identical result, so callers may collect drafts under any traversal order
// or in parallel, as long as the full set is present before calling.
//
// There is no error return. Irreconcilable field or base-class disagreements
// are recorded in-band as ConflictTypeName.
func Merge(drafts []ExceptionDraft) []MergedExceptionSpec {
	type groupKey struct {
		lang Language
		name string
	}

	groups := make(map[groupKey][]ExceptionDraft)
	for _, d := range drafts {
		k := groupKey{lang: d.Language, name: d.Name}
		groups[k] = append(groups[k], d)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lang != keys[j].lang {
			return keys[i].lang < keys[j].lang
		}
		return keys[i].name < keys[j].name
	})

	specs := make([]MergedExceptionSpec, 0, len(keys))
	for _, k := range keys {
		specs = append(specs, mergeGroup(k.lang, k.name, groups[k]))
	}
	return specs
}

// mergeGroup unifies all drafts sharing one name into a single spec.
func mergeGroup(lang Language, name string, group []ExceptionDraft) MergedExceptionSpec {
	spec := MergedExceptionSpec{
		Language: lang,
		Name:     name,
		Fields:   unifyFields(group),
		Sites:    collectSites(group),
	}
	spec.BaseClass, spec.Constructors = unifyBase(group)
	return spec
}

// unifyFields groups field drafts by name across the whole group. A field
// name seen with exactly one type keeps that type; two or more distinct
// types become the conflict marker. Guessing one of the types would hide a
// real inconsistency at the usage sites, so the disagreement is surfaced as
// a downstream compile error instead.
func unifyFields(group []ExceptionDraft) []MergedField {
	types := make(map[string]map[string]bool)
	for _, d := range group {
		for _, f := range d.Fields {
			if types[f.Name] == nil {
				types[f.Name] = make(map[string]bool)
			}
			types[f.Name][f.Type] = true
		}
	}
	if len(types) == 0 {
		return nil
	}

	names := make([]string, 0, len(types))
	for n := range types {
		names = append(names, n)
	}
	sort.Strings(names)

	fields := make([]MergedField, 0, len(names))
	for _, n := range names {
		merged := MergedField{Name: n, Type: ConflictTypeName}
		if len(types[n]) == 1 {
			for t := range types[n] {
				merged.Type = t
			}
		}
		fields = append(fields, merged)
	}
	return fields
}

// unifyBase collects the distinct non-absent base-class names in the group.
// Zero names: absent base, default constructor shape. One name: that base,
// with the constructor set captured from the lexicographically-least site
// carrying it (all such drafts resolved the same type, so the sets are
// equal; picking by site keeps the fold order-independent). More than one:
// conflict marker, default constructor shape.
func unifyBase(group []ExceptionDraft) (string, []ConstructorShape) {
	distinct := make(map[string]bool)
	var carrier *ExceptionDraft
	for i := range group {
		d := &group[i]
		if d.BaseClass == "" {
			continue
		}
		distinct[d.BaseClass] = true
		if carrier == nil || spanLess(d.Site, carrier.Site) {
			carrier = d
		}
	}

	switch len(distinct) {
	case 0:
		return "", nil
	case 1:
		return carrier.BaseClass, carrier.BaseConstructors
	default:
		return ConflictTypeName, nil
	}
}

// collectSites returns the deduplicated usage sites of the group, sorted by
// (file, start line).
func collectSites(group []ExceptionDraft) []SourceSpan {
	seen := make(map[SourceSpan]bool, len(group))
	sites := make([]SourceSpan, 0, len(group))
	for _, d := range group {
		if seen[d.Site] {
			continue
		}
		seen[d.Site] = true
		sites = append(sites, d.Site)
	}
	sort.Slice(sites, func(i, j int) bool {
		return spanLess(sites[i], sites[j])
	})
	return sites
}

func spanLess(a, b SourceSpan) bool {
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	return a.StartLine < b.StartLine
}
