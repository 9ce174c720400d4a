package adapters

import (
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
	"github.com/google/uuid"
)

// openEvalsAdapter reads OpenEvals-style exports: a summary object
// and/or result rows with per-row scores and passed flags, plus an
// optional precomputed metrics map.
type openEvalsAdapter struct{}

func (openEvalsAdapter) Name() string { return "openevals" }

func (openEvalsAdapter) Supports(payload map[string]any) bool {
	// A top-level string evalName marks the generic shape; never claim it.
	if _, ok := stringField(payload, "evalName"); ok {
		return false
	}
	if results, ok := arrayField(payload, "results"); ok {
		if first, ok := firstObject(results); ok {
			if _, ok := first["scores"]; ok {
				return true
			}
			if _, ok := first["passed"]; ok {
				return true
			}
		}
	}
	if summary, ok := objectField(payload, "summary"); ok {
		if _, ok := summary["passed"]; ok {
			return true
		}
		if _, ok := summary["accuracy"]; ok {
			return true
		}
	}
	if _, ok := objectField(payload, "metrics"); ok {
		for _, key := range []string{"eval_name", "eval_id", "dataset"} {
			if _, ok := payload[key]; ok {
				return true
			}
		}
	}
	return false
}

func (a openEvalsAdapter) Parse(payload map[string]any) (types.NormalizedEvalResult, error) {
	metrics := map[string]types.MetricValue{}
	if raw, ok := objectField(payload, "metrics"); ok {
		for key, v := range raw {
			if f, ok := types.Number(v); ok {
				metrics[key] = f
			}
		}
	}

	if summary, ok := objectField(payload, "summary"); ok {
		for key, v := range summary {
			if f, ok := types.Number(v); ok {
				metrics[key] = f
			}
		}
	} else if results, ok := arrayField(payload, "results"); ok {
		rows := objectRows(results)
		passed, passTotal := 0, 0
		scoreVals := map[string][]float64{}
		for _, row := range rows {
			if p, ok := row["passed"].(bool); ok {
				passTotal++
				if p {
					passed++
				}
			}
			if scores, ok := objectField(row, "scores"); ok {
				for key, v := range scores {
					if f, ok := types.Number(v); ok {
						scoreVals[key] = append(scoreVals[key], f)
					}
				}
			}
		}
		if passTotal > 0 {
			if _, exists := metrics["pass_rate"]; !exists {
				metrics["pass_rate"] = float64(passed) / float64(passTotal)
			}
		}
		// Derived names only fill gaps; explicit metrics keep priority.
		setIfAbsent := func(name string, v float64) {
			if _, exists := metrics[name]; !exists {
				metrics[name] = v
			}
		}
		for key, vals := range scoreVals {
			setIfAbsent("avg_"+key, mean(vals))
			setIfAbsent("min_"+key, minOf(vals))
			setIfAbsent("max_"+key, maxOf(vals))
		}
	}

	if len(metrics) == 0 {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: openevals export has no numeric metrics", ErrShapeMismatch)
	}

	evalName := "openevals"
	for _, key := range []string{"eval_name", "eval_id", "dataset"} {
		if s, ok := stringField(payload, key); ok && s != "" {
			evalName = s
			break
		}
	}
	runID, ok := stringField(payload, "run_id")
	if !ok || runID == "" {
		runID = uuid.New().String()
	}

	return types.NormalizedEvalResult{
		EvalName: evalName,
		RunID:    runID,
		Metrics:  metrics,
	}, nil
}
