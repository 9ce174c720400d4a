package types

type DecisionStatus string

const (
	StatusPass             DecisionStatus = "PASS"
	StatusBlock            DecisionStatus = "BLOCK"
	StatusRequiresApproval DecisionStatus = "REQUIRES_APPROVAL"
)

// Violation records one failed rule check. Rule is a copy of the rule
// that failed; a synthetic rule with Metric "*" marks a missing required
// eval. Delta is set only when actual and baseline were both numeric.
type Violation struct {
	EvalName      string       `json:"evalName"`
	Rule          ContractRule `json:"rule"`
	ActualValue   MetricValue  `json:"actualValue,omitempty"`
	BaselineValue MetricValue  `json:"baselineValue,omitempty"`
	Delta         *float64     `json:"delta,omitempty"`
	Explanation   string       `json:"explanation"`
}

// Decision is the gate outcome. Legacy (required-eval) evaluation always
// sets Violations, possibly empty; policy evaluation leaves it nil and
// carries its reason in Summary.
type Decision struct {
	Status          DecisionStatus `json:"status"`
	Violations      []Violation    `json:"violations,omitempty"`
	EvaluatedAt     string         `json:"evaluatedAt"`
	ContractName    string         `json:"contractName"`
	ContractVersion int            `json:"contractVersion"`
	Summary         string         `json:"summary"`
}
