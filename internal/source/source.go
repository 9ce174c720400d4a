// Package source turns raw CSV/JSON/JSONL eval exports into normalized
// results, driven by user-authored source configs carried in the
// contract.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evalgate/evalgate/pkg/types"
)

// Parse reduces raw export content of an explicit type to one
// normalized result.
func Parse(data []byte, fileType string, cfg *types.EvalSourceConfig) (types.NormalizedEvalResult, error) {
	if cfg == nil {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: %s", ErrNoSourceConfig, fileType)
	}

	var (
		rows []map[string]any
		err  error
	)
	switch fileType {
	case TypeCSV:
		rows, err = csvRows(stripBOM(string(data)), cfg)
	case TypeJSON:
		rows, err = jsonRows(data, cfg)
	case TypeJSONL:
		rows, err = jsonlRows(data)
	default:
		err = fmt.Errorf("unsupported source type %q", fileType)
	}
	if err != nil {
		return types.NormalizedEvalResult{}, err
	}
	return normalize(rows, cfg)
}

// ParseSource sniffs the content type and parses with cfg. Used when no
// file name is available.
func ParseSource(data []byte, cfg *types.EvalSourceConfig) (types.NormalizedEvalResult, error) {
	return Parse(data, DetectType("", data), cfg)
}

// ParseFile reads one eval export and parses it with the source config
// the contract declares for its detected type.
func ParseFile(path string, sources *types.SourcesConfig) (types.NormalizedEvalResult, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return types.NormalizedEvalResult{}, err
	}
	return ParseBytes(data, path, sources)
}

// ParseBytes is ParseFile on in-memory content. JSON payloads already in
// normalized shape are accepted without a source config; everything else
// requires the contract to carry one for the detected type.
func ParseBytes(data []byte, path string, sources *types.SourcesConfig) (types.NormalizedEvalResult, error) {
	fileType := DetectType(path, data)
	cfg := sources.ForType(fileType)
	if cfg != nil {
		return Parse(data, fileType, cfg)
	}

	if fileType == TypeJSON {
		if res, ok := normalizedShape(data); ok {
			return res, nil
		}
	}
	return types.NormalizedEvalResult{}, fmt.Errorf(
		"%w: %s file %s needs a sources.%s entry in the contract", ErrNoSourceConfig, fileType, path, fileType)
}

// normalizedShape accepts JSON payloads that already look like a
// NormalizedEvalResult: evalName and metrics at top level.
func normalizedShape(data []byte) (types.NormalizedEvalResult, bool) {
	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		return types.NormalizedEvalResult{}, false
	}
	name, _ := probe["evalName"].(string)
	_, hasMetrics := probe["metrics"].(map[string]any)
	if name == "" || !hasMetrics {
		return types.NormalizedEvalResult{}, false
	}

	var res types.NormalizedEvalResult
	if err := json.Unmarshal(data, &res); err != nil {
		return types.NormalizedEvalResult{}, false
	}
	if res.RunID == "" {
		res.RunID = generatedRunID()
	}
	return res, true
}

func normalize(rows []map[string]any, cfg *types.EvalSourceConfig) (types.NormalizedEvalResult, error) {
	if len(cfg.Metrics) == 0 {
		return types.NormalizedEvalResult{}, ErrNoMetricColumns
	}

	metrics := make(map[string]types.MetricValue, len(cfg.Metrics))
	for _, mc := range cfg.Metrics {
		filtered := applyFilter(rows, mc.Filter)
		value, err := aggregate(columnValues(filtered, mc.Column), mc.Aggregate)
		if err != nil {
			return types.NormalizedEvalResult{}, fmt.Errorf("metric %q: %w", mc.Column, err)
		}
		name := mc.As
		if name == "" {
			name = mc.Column
		}
		metrics[name] = value
	}

	res := types.NormalizedEvalResult{
		EvalName: resolveIdentity(cfg.EvalName, cfg.EvalNameColumn, rows, "eval"),
		RunID:    resolveIdentity(cfg.RunID, cfg.RunIDColumn, rows, ""),
		Metrics:  metrics,
	}
	if res.RunID == "" {
		res.RunID = generatedRunID()
	}

	if cfg.TimestampColumn != "" && len(rows) > 0 {
		if v, ok := rows[0][cfg.TimestampColumn]; ok && v != nil {
			res.Timestamp = types.Format(v)
		}
	}
	if len(cfg.MetadataColumns) > 0 && len(rows) > 0 {
		meta := make(map[string]any, len(cfg.MetadataColumns))
		for key, column := range cfg.MetadataColumns {
			if v, ok := rows[0][column]; ok {
				meta[key] = v
			}
		}
		if len(meta) > 0 {
			res.Metadata = meta
		}
	}
	return res, nil
}

// resolveIdentity picks a fixed literal first, then the named column of
// the first row, then the fallback.
func resolveIdentity(literal, column string, rows []map[string]any, fallback string) string {
	if literal != "" {
		return literal
	}
	if column != "" && len(rows) > 0 {
		if v, ok := rows[0][column]; ok && v != nil {
			return types.Format(v)
		}
	}
	return fallback
}

func generatedRunID() string {
	return "run-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
