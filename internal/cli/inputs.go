package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/evalgate/evalgate/internal/adapters"
	"github.com/evalgate/evalgate/internal/source"
	"github.com/evalgate/evalgate/pkg/types"
)

// loadResults normalizes one eval export. A source config in the
// contract wins for its file type; JSON files without one go through
// adapter auto-detection. CSV and JSONL always need a source config, so
// the fall-through produces the corrective error naming the missing
// contract entry.
func loadResults(path, adapterName string, sources *types.SourcesConfig) (types.NormalizedEvalResult, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return types.NormalizedEvalResult{}, err
	}

	fileType := source.DetectType(path, data)
	reg := adapters.DefaultRegistry()

	if adapterName != "" {
		if fileType != source.TypeJSON {
			return types.NormalizedEvalResult{}, fmt.Errorf("--adapter needs a JSON export, %s is %s", path, fileType)
		}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return types.NormalizedEvalResult{}, fmt.Errorf("adapter payload must be a JSON object: %w", err)
		}
		return reg.ParseWith(adapterName, payload)
	}

	if cfg := sources.ForType(fileType); cfg != nil {
		return source.Parse(data, fileType, cfg)
	}
	if fileType == source.TypeJSON {
		return reg.ParseBytes(data)
	}
	return source.ParseBytes(data, path, sources)
}

// loadBaselines accepts either a map of eval name to baseline snapshot
// or an array of previously recorded normalized results.
func loadBaselines(path string) (map[string]types.BaselineData, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var results []types.NormalizedEvalResult
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("baseline file %s: %w", path, err)
		}
		baselines := make(map[string]types.BaselineData, len(results))
		for _, r := range results {
			baselines[r.EvalName] = types.BaselineData{
				Type:    types.BaselinePrevious,
				Metrics: r.Metrics,
				Source:  path,
			}
		}
		return baselines, nil
	}

	var baselines map[string]types.BaselineData
	if err := json.Unmarshal(data, &baselines); err != nil {
		return nil, fmt.Errorf("baseline file %s: %w", path, err)
	}
	return baselines, nil
}

// loadSignals reads a JSON array of release signals.
func loadSignals(path string) ([]types.Signal, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var signals []types.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("signals file %s: %w", path, err)
	}
	return signals, nil
}

// loadResultSet reads normalized results for diffing: a JSON array or a
// single result object.
func loadResultSet(path string) ([]types.NormalizedEvalResult, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var results []types.NormalizedEvalResult
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("results file %s: %w", path, err)
		}
		return results, nil
	}
	var res types.NormalizedEvalResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("results file %s: %w", path, err)
	}
	return []types.NormalizedEvalResult{res}, nil
}
