package translator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// RESPONSE PARSER — Extracts an Intent from the AI response
// ============================================================================
// Two shapes are accepted:
//
//	flat:    {"operation": "sum", "target_column": "Sales", ...}
//	catalog: {"command_name": "aggregate_data", "parameters": {"agg_func": "sum", ...}}
//
// Anything else is an upstream failure.
// ============================================================================

var (
	pathParameters = jp.MustParseString("$.parameters")
	pathCommand    = jp.MustParseString("$.command_name")
)

// ParseIntent decodes a model reply into an Intent.
func ParseIntent(raw string) (engine.Intent, error) {
	body, err := extractObject(raw)
	if err != nil {
		return engine.Intent{}, err
	}

	data, err := oj.ParseString(body)
	if err != nil {
		return engine.Intent{}, engine.Upstream(err, "could not parse the response from the language model")
	}
	root, ok := data.(map[string]any)
	if !ok {
		return engine.Intent{}, engine.Upstream(nil, "language model response is not a JSON object")
	}

	fields := root
	operation := ""
	if cmd := pathCommand.First(root); cmd != nil {
		params, _ := pathParameters.First(root).(map[string]any)
		if params == nil {
			params = map[string]any{}
		}
		fields = params
		if operation, err = commandOperation(fmt.Sprint(cmd), params); err != nil {
			return engine.Intent{}, err
		}
	} else {
		operation = stringField(root, "operation")
		if operation == "" {
			if fn := stringField(root, "agg_func"); fn != "" {
				if operation, err = aggOperation(fn); err != nil {
					return engine.Intent{}, err
				}
			}
		}
	}
	if operation == "" {
		return engine.Intent{}, engine.Upstream(nil, "language model response names no operation")
	}

	intent := engine.Intent{
		Operation:    operation,
		TargetColumn: stringField(fields, "target_column"),
		GroupBy:      stringList(fields["group_by"]),
		PlotType:     stringField(fields, "plot_type"),
		Description:  stringField(fields, "description"),
		SortOrder:    engine.SortOrder(stringField(fields, "sort_order")),
	}
	if intent.Description == "" {
		intent.Description = stringField(root, "description")
	}
	if filters, ok := fields["filters"].(map[string]any); ok && len(filters) > 0 {
		intent.Filters = filters
	}
	if intent.Limit, err = intField(fields["limit"]); err != nil {
		return engine.Intent{}, err
	}
	return intent, nil
}

// commandOperation maps a catalog-shape command onto an operation name.
func commandOperation(command string, params map[string]any) (string, error) {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "aggregate_data", "aggregate":
		return aggOperation(stringField(params, "agg_func"))
	case "plot_data":
		return engine.OpPlot, nil
	case "describe_data":
		return engine.OpDescribe, nil
	case "value_counts_data", "count_values":
		return engine.OpValueCounts, nil
	}
	return command, nil
}

func aggOperation(fn string) (string, error) {
	if fn == "" {
		return "", engine.MissingParameter("aggregate_data requires 'agg_func'")
	}
	agg, ok := engine.ParseAggFunc(fn)
	if !ok {
		return "", engine.Validation("unsupported aggregation function: %s", fn)
	}
	return string(agg), nil
}

// extractObject strips markdown fences and returns the outermost {...} span.
func extractObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", engine.Upstream(nil, "no JSON object in language model response: %s", truncate(raw, 200))
	}
	return s[start : end+1], nil
}

// ============================================================================
// FIELD HELPERS
// ============================================================================

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return engine.Stringify(v)
	}
}

// stringList accepts a single name or an array of names.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := engine.Stringify(item); strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intField(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, engine.Validation("limit must be an integer, got %v", n)
		}
		return int(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, engine.Validation("limit must be an integer, got %q", n)
		}
		return i, nil
	}
	return 0, engine.Validation("limit must be an integer, got %v", v)
}
