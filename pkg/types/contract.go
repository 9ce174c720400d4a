package types

type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

type ViolationAction string

const (
	ActionBlock           ViolationAction = "block"
	ActionRequireApproval ViolationAction = "require_approval"
	ActionWarn            ViolationAction = "warn"
)

// ContractRule checks one metric. Fixed-baseline rules compare against
// Threshold; previous/main rules compare against the baseline snapshot
// and optionally cap the regression delta with MaxDelta.
type ContractRule struct {
	Metric      string       `json:"metric"`
	Operator    Operator     `json:"operator"`
	Baseline    BaselineType `json:"baseline"`
	Threshold   *float64     `json:"threshold,omitempty"`
	MaxDelta    *float64     `json:"maxDelta,omitempty"`
	Description string       `json:"description,omitempty"`
}

type RequiredEval struct {
	Name        string         `json:"name"`
	Rules       []ContractRule `json:"rules"`
	Description string         `json:"description,omitempty"`
}

type ViolationHandler struct {
	Action  ViolationAction `json:"action"`
	Message string          `json:"message,omitempty"`
}

// EvalContract is the declarative gate definition. Exactly one of
// RequiredEvals (legacy form) or Policy (rule-chain form) drives the
// decision; Policy wins when both are present.
type EvalContract struct {
	Version       int               `json:"version"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Environment   string            `json:"environment,omitempty"`
	Sources       *SourcesConfig    `json:"sources,omitempty"`
	RequiredEvals []RequiredEval    `json:"requiredEvals,omitempty"`
	OnViolation   *ViolationHandler `json:"onViolation,omitempty"`
	Policy        *Policy           `json:"policy,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}
