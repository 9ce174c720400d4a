package adapters

import (
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
	"github.com/google/uuid"
)

// genericAdapter accepts payloads that already carry evalName and a
// metrics object, passing the metrics through untouched.
type genericAdapter struct{}

func (genericAdapter) Name() string { return "generic" }

func (genericAdapter) Supports(payload map[string]any) bool {
	if _, ok := stringField(payload, "evalName"); !ok {
		return false
	}
	_, ok := objectField(payload, "metrics")
	return ok
}

func (a genericAdapter) Parse(payload map[string]any) (types.NormalizedEvalResult, error) {
	evalName, ok := stringField(payload, "evalName")
	if !ok || evalName == "" {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: generic payload needs a string evalName", ErrShapeMismatch)
	}
	raw, ok := objectField(payload, "metrics")
	if !ok {
		return types.NormalizedEvalResult{}, fmt.Errorf("%w: generic payload needs a metrics object", ErrShapeMismatch)
	}

	metrics := make(map[string]types.MetricValue, len(raw))
	for key, v := range raw {
		metrics[key] = v
	}

	runID, ok := stringField(payload, "runId")
	if !ok || runID == "" {
		runID = uuid.New().String()
	}

	res := types.NormalizedEvalResult{
		EvalName: evalName,
		RunID:    runID,
		Metrics:  metrics,
	}
	if ts, ok := stringField(payload, "timestamp"); ok {
		res.Timestamp = ts
	}
	if meta, ok := objectField(payload, "metadata"); ok {
		res.Metadata = meta
	}
	return res, nil
}
