package adapters

import (
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
	"github.com/google/uuid"
)

// langsmithAdapter reads LangSmith experiment exports: result or example
// rows carrying per-run feedback scores and execution times, with an
// optional precomputed aggregate_feedback map.
type langsmithAdapter struct{}

func (langsmithAdapter) Name() string { return "langsmith" }

func (langsmithAdapter) Supports(payload map[string]any) bool {
	if _, ok := arrayField(payload, "examples"); ok {
		return true
	}
	if results, ok := arrayField(payload, "results"); ok {
		if first, ok := firstObject(results); ok {
			if _, ok := first["feedback"]; ok {
				return true
			}
			if _, ok := first["run_id"]; ok {
				return true
			}
		}
	}
	_, ok := payload["aggregate_feedback"]
	return ok
}

func (a langsmithAdapter) Parse(payload map[string]any) (types.NormalizedEvalResult, error) {
	raw, ok := arrayField(payload, "results")
	if !ok {
		raw, ok = arrayField(payload, "examples")
	}
	aggregate, hasAggregate := objectField(payload, "aggregate_feedback")
	if !ok && !hasAggregate {
		return types.NormalizedEvalResult{}, fmt.Errorf(
			"%w: langsmith export needs results, examples, or aggregate_feedback", ErrShapeMismatch)
	}

	var (
		rows     = objectRows(raw)
		runTimes []float64
		scoreSum = map[string]float64{}
		scoreN   = map[string]int{}
		firstRun string
	)
	for _, row := range rows {
		if firstRun == "" {
			if id, ok := stringField(row, "run_id"); ok {
				firstRun = id
			}
		}
		if f, ok := types.Number(row["execution_time"]); ok {
			runTimes = append(runTimes, f)
		}
		feedback, ok := arrayField(row, "feedback")
		if !ok {
			continue
		}
		for _, fb := range feedback {
			entry, ok := fb.(map[string]any)
			if !ok {
				continue
			}
			key, ok := stringField(entry, "key")
			if !ok || key == "" {
				continue
			}
			if f, ok := types.Number(entry["score"]); ok {
				scoreSum[key] += f
				scoreN[key]++
			}
		}
	}

	metrics := make(map[string]types.MetricValue, len(scoreSum)+len(aggregate)+2)
	for key, sum := range scoreSum {
		metrics[key] = sum / float64(scoreN[key])
	}
	if len(runTimes) > 0 {
		metrics["avg_execution_time"] = mean(runTimes)
		metrics["p95_execution_time"] = nearestRank(runTimes, 95)
	}
	// Precomputed aggregates win over values derived from rows.
	for key, v := range aggregate {
		if f, ok := types.Number(v); ok {
			metrics[key] = f
		}
	}
	if len(metrics) == 0 {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: langsmith export has no numeric feedback", ErrShapeMismatch)
	}

	evalName, ok := stringField(payload, "experiment_name")
	if !ok || evalName == "" {
		evalName = "langsmith"
	}
	runID, ok := stringField(payload, "experiment_id")
	if !ok || runID == "" {
		runID = firstRun
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	return types.NormalizedEvalResult{
		EvalName: evalName,
		RunID:    runID,
		Metrics:  metrics,
	}, nil
}
