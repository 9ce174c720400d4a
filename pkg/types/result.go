package types

// MetricValue is a number, boolean, or string as decoded from JSON.
// Numbers support ordering and delta arithmetic; booleans and strings
// support equality only.
type MetricValue = any

// NormalizedEvalResult is the common shape every eval export is reduced
// to before any rule runs against it. Producers build a fresh value per
// run; nothing mutates one after it is returned.
type NormalizedEvalResult struct {
	EvalName  string                 `json:"evalName"`
	RunID     string                 `json:"runId"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Metrics   map[string]MetricValue `json:"metrics"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

type BaselineType string

const (
	BaselineFixed    BaselineType = "fixed"
	BaselinePrevious BaselineType = "previous"
	BaselineMain     BaselineType = "main"
)

// BaselineData is the comparison point for relative rules: a snapshot of
// metrics from a previous run or the main branch.
type BaselineData struct {
	Type    BaselineType           `json:"type"`
	Metrics map[string]MetricValue `json:"metrics"`
	Source  string                 `json:"source,omitempty"`
}
