package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spektr-org/askdata/engine"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry with every built-in operation.
// It is built on first use and never modified afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = Builtin()
	})
	return defaultRegistry
}

// Builtin builds a fresh registry with every built-in operation.
func Builtin() *Registry {
	r := NewRegistry()
	for _, fn := range engine.AggFuncs {
		r.MustRegister(Aggregate(fn))
	}
	return r.MustRegister(ValueCounts(), Describe(), Plot())
}

// DescribeAll renders the default registry for the parser.
func DescribeAll() string { return Default().DescribeAll() }

// ============================================================================
// PARSER GROUNDING TEXT
// ============================================================================

// DescribeAll renders every entry's name, description, trigger words and
// parameter schema, followed by the response-format rules.
func (r *Registry) DescribeAll() string {
	var sb strings.Builder
	sb.WriteString("Available operations:\n")
	for _, op := range r.Operations() {
		schema, err := json.MarshalIndent(op.Schema(), "", "  ")
		if err != nil {
			schema = []byte("[]")
		}
		sb.WriteString("\n---\n")
		fmt.Fprintf(&sb, "Operation: \"%s\"\n", op.Name())
		fmt.Fprintf(&sb, "Description: %s\n", op.Description())
		fmt.Fprintf(&sb, "Trigger words: %s\n", strings.Join(op.TriggerWords(), ", "))
		fmt.Fprintf(&sb, "Parameters: %s\n", schema)
	}
	sb.WriteString("\n---\n")
	sb.WriteString(responseRules)
	return sb.String()
}

const responseRules = `RESPONSE RULES:
1. Respond with ONLY a single valid JSON object. No markdown, no explanation.
2. The object must have an "operation" key whose value is one of the operation names listed above.
3. Every other key must be a parameter accepted by that operation. Omit parameters you do not need.
4. Use column names exactly as they appear in the dataset.
5. "filters" maps a column name to a single value; rows must equal that value.
6. "sort_order" is "ascending" or "descending". "limit" is a positive integer.
7. You may add a short "description" of what you understood.

Example:
User Query: "what is the total sales for espresso?"
Response:
{
  "operation": "sum",
  "target_column": "Sales",
  "group_by": ["Coffee_Type"],
  "filters": {"Coffee_Type": "Espresso"},
  "description": "Total sales for espresso"
}
`
