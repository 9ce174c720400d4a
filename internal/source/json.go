package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

// rowArrayKeys are the top-level keys searched for a row array when a
// JSON document has no explicit resultsPath.
var rowArrayKeys = []string{"results", "data", "items", "rows", "examples"}

func jsonRows(data []byte, cfg *types.EvalSourceConfig) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	raw, err := locateRows(doc, cfg.ResultsPath)
	if err != nil {
		return nil, err
	}
	return flattenRows(raw), nil
}

func jsonlRows(data []byte) ([]map[string]any, error) {
	var raw []any
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, fmt.Errorf("parse jsonl line %d: %w", i+1, err)
		}
		raw = append(raw, v)
	}
	return flattenRows(raw), nil
}

func locateRows(doc any, path string) ([]any, error) {
	if path != "" {
		cur := doc
		for _, seg := range strings.Split(path, ".") {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q hit a non-object at %q", ErrResultsPath, path, seg)
			}
			cur, ok = obj[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %q has no key %q", ErrResultsPath, path, seg)
			}
		}
		arr, ok := cur.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrResultsPath, path)
		}
		return arr, nil
	}

	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range rowArrayKeys {
			if arr, ok := v[key].([]any); ok {
				return arr, nil
			}
		}
		// A single object stands in for a one-row array.
		return []any{v}, nil
	}
	return nil, fmt.Errorf("json document is neither an object nor an array")
}

// flattenRows keeps object rows only, flattening nested objects into
// dot-joined keys and serializing nested arrays to JSON strings.
func flattenRows(raw []any) []map[string]any {
	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		flat := make(map[string]any, len(obj))
		flattenInto(flat, "", obj)
		rows = append(rows, flat)
	}
	return rows
}

func flattenInto(out map[string]any, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			flattenInto(out, key, nested)
		case []any:
			b, err := json.Marshal(nested)
			if err != nil {
				out[key] = fmt.Sprintf("%v", nested)
				continue
			}
			out[key] = string(b)
		default:
			out[key] = v
		}
	}
}
