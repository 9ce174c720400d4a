package source

import (
	"path/filepath"
	"strings"
)

const (
	TypeCSV   = "csv"
	TypeJSON  = "json"
	TypeJSONL = "jsonl"
)

// DetectType classifies a file as csv, json, or jsonl. The extension
// wins when recognized; otherwise the content is sniffed: a leading
// brace or bracket means JSON, a comma-bearing first line without JSON
// brackets means CSV, and anything else is treated as JSON so the parse
// error names the real problem.
func DetectType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return TypeCSV
	case ".json":
		return TypeJSON
	case ".jsonl", ".ndjson":
		return TypeJSONL
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return TypeJSON
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return TypeJSON
	}
	firstLine := trimmed
	if i := strings.IndexAny(firstLine, "\r\n"); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.Contains(firstLine, ",") && !strings.ContainsAny(firstLine, "{}[]") {
		return TypeCSV
	}
	return TypeJSON
}
