package engine

import (
	"strings"
)

// ============================================================================
// COLUMN RESOLVER — reconciles requested names with the real schema
// ============================================================================
// Language-model output paraphrases column names ("coffee type" for
// Coffee_Type). Names are compared after lower-casing and removing spaces
// and underscores. An exact match always wins; otherwise exactly one column
// may normalize to the requested key.
// ============================================================================

// NormalizeName lower-cases s and strips spaces and underscores.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// ResolveColumn returns the available column matching requested.
func ResolveColumn(requested string, available []string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", NotFound("column name cannot be empty")
	}

	for _, col := range available {
		if col == requested {
			return col, nil
		}
	}

	key := NormalizeName(requested)
	var matches []string
	for _, col := range available {
		if NormalizeName(col) == key {
			matches = append(matches, col)
		}
	}

	switch len(matches) {
	case 0:
		return "", NotFound("column not found: %s", requested)
	case 1:
		return matches[0], nil
	default:
		return "", NotFound("column %q is ambiguous: %s", requested, strings.Join(matches, ", "))
	}
}

// ResolveColumns resolves every name, failing on the first unresolvable one.
func ResolveColumns(requested []string, available []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	out := make([]string, len(requested))
	for i, name := range requested {
		col, err := ResolveColumn(name, available)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}
