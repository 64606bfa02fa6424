package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duskforge/throwgen/internal/pipeline"
)

// GenerateMermaid produces a Mermaid graph TD diagram of one pass: usage
// sites grouped per language, with arrows to the spec each site fed.
func GenerateMermaid(result *pipeline.Result) string {
	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	// Group usages by language so the subgraph order is stable.
	byLang := make(map[string][]pipeline.UsageRecord)
	for _, u := range result.Usages {
		byLang[string(u.Language)] = append(byLang[string(u.Language)], u)
	}
	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, lang := range langs {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID(lang+"_lang"), lang))
		for _, u := range byLang[lang] {
			key := usageKey(u)
			label := fmt.Sprintf("%s:%d", shortPath(u.Site.FilePath), u.Site.StartLine)
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(key), label))
		}
		sb.WriteString("  end\n")
	}

	for i := range result.Specs {
		spec := &result.Specs[i]
		key := string(spec.Language) + ":" + spec.Name
		sb.WriteString(fmt.Sprintf("  %s((\"%s\"))\n", getID("spec_"+key), spec.Name))
	}

	for _, u := range result.Usages {
		srcID := getID(usageKey(u))
		tgtID := getID("spec_" + string(u.Language) + ":" + u.TypeName)
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", srcID, tgtID))
	}

	return sb.String()
}

func usageKey(u pipeline.UsageRecord) string {
	return fmt.Sprintf("%s:%d:%s", u.Site.FilePath, u.Site.StartLine, u.TypeName)
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
