package adapters

import (
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
	"github.com/google/uuid"
)

// promptfooAdapter reads promptfoo eval exports: a results array whose
// rows carry a success flag, optional namedScores, latencyMs, and cost.
type promptfooAdapter struct{}

func (promptfooAdapter) Name() string { return "promptfoo" }

func (promptfooAdapter) Supports(payload map[string]any) bool {
	results, ok := arrayField(payload, "results")
	if !ok {
		return false
	}
	first, ok := firstObject(results)
	if !ok {
		return false
	}
	_, ok = first["success"].(bool)
	return ok
}

func (a promptfooAdapter) Parse(payload map[string]any) (types.NormalizedEvalResult, error) {
	results, ok := arrayField(payload, "results")
	if !ok {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: promptfoo export needs a results array", ErrShapeMismatch)
	}
	rows := objectRows(results)
	if len(rows) == 0 {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: promptfoo results array is empty", ErrShapeMismatch)
	}

	var (
		passCount int
		latencies []float64
		costs     []float64
		scoreSum  = map[string]float64{}
		scoreN    = map[string]int{}
	)
	for _, row := range rows {
		if success, ok := row["success"].(bool); ok && success {
			passCount++
		}
		if f, ok := types.Number(row["latencyMs"]); ok {
			latencies = append(latencies, f)
		}
		if f, ok := types.Number(row["cost"]); ok {
			costs = append(costs, f)
		}
		if scores, ok := objectField(row, "namedScores"); ok {
			for key, v := range scores {
				if f, ok := types.Number(v); ok {
					scoreSum[key] += f
					scoreN[key]++
				}
			}
		}
	}

	total := len(rows)
	metrics := map[string]types.MetricValue{
		"pass_rate":   float64(passCount) / float64(total),
		"fail_rate":   float64(total-passCount) / float64(total),
		"pass_count":  float64(passCount),
		"fail_count":  float64(total - passCount),
		"total_count": float64(total),
	}
	for key, sum := range scoreSum {
		metrics[key] = sum / float64(scoreN[key])
	}
	if len(latencies) > 0 {
		metrics["latency_p50"] = nearestRank(latencies, 50)
		metrics["latency_p95"] = nearestRank(latencies, 95)
		metrics["latency_p99"] = nearestRank(latencies, 99)
		metrics["avg_latency_ms"] = mean(latencies)
	}
	if len(costs) > 0 {
		var totalCost float64
		for _, c := range costs {
			totalCost += c
		}
		metrics["total_cost"] = totalCost
	}

	evalName, ok := stringField(payload, "description")
	if !ok || evalName == "" {
		if id, ok := stringField(payload, "evalId"); ok && id != "" {
			evalName = id
		} else {
			evalName = "promptfoo"
		}
	}
	runID, ok := stringField(payload, "evalId")
	if !ok || runID == "" {
		runID = uuid.New().String()
	}

	res := types.NormalizedEvalResult{
		EvalName: evalName,
		RunID:    runID,
		Metrics:  metrics,
	}
	if ts, ok := stringField(payload, "createdAt"); ok {
		res.Timestamp = ts
	}
	return res, nil
}
