package translator

import (
	"fmt"
	"strings"
)

// ============================================================================
// PROMPT BUILDER — Catalog-Driven AI Prompt Generation
// ============================================================================
// The prompt is generated from the operation catalog text plus the dataset's
// column names. Total data sent to AI: the catalog and the header row.
// Never raw data.
// ============================================================================

// BuildPrompt generates the complete system prompt for the AI translator.
func BuildPrompt(catalogText string, columns []string) string {
	var b strings.Builder

	// ── Header ────────────────────────────────────────────────────────────
	b.WriteString(`You are an expert at routing a user's request about a tabular dataset to the correct operation.
Select the appropriate operation and extract its parameters.
You are a TRANSLATOR ONLY — do NOT compute any values. The engine will do all computation locally.

`)

	// ── Dataset Columns ───────────────────────────────────────────────────
	b.WriteString("DATASET COLUMNS:\n")
	if len(columns) == 0 {
		b.WriteString("(none)\n")
	}
	for _, c := range columns {
		b.WriteString(fmt.Sprintf("- %q\n", c))
	}
	b.WriteString("\n")

	// ── Catalog ───────────────────────────────────────────────────────────
	b.WriteString(catalogText)
	return b.String()
}
