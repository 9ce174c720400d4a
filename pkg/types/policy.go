package types

type PolicyAction string

const (
	PolicyPass            PolicyAction = "pass"
	PolicyBlock           PolicyAction = "block"
	PolicyRequireApproval PolicyAction = "require_approval"
)

// EvalCondition tests one metric across the normalized results, using
// the same operator/baseline semantics as ContractRule.
type EvalCondition struct {
	Metric    string       `json:"metric"`
	Operator  Operator     `json:"operator"`
	Baseline  BaselineType `json:"baseline"`
	Threshold *float64     `json:"threshold,omitempty"`
	MaxDelta  *float64     `json:"maxDelta,omitempty"`
}

// SignalCondition tests the collected signals. Type and Name filter the
// set; Field selects a value inside a matched signal (from its value
// object first, then its metadata). With no Operator/Value the condition
// is a pure presence check.
type SignalCondition struct {
	Type     SignalType `json:"type,omitempty"`
	Name     string     `json:"name,omitempty"`
	Field    string     `json:"field,omitempty"`
	Operator Operator   `json:"operator,omitempty"`
	Value    any        `json:"value,omitempty"`
}

// PolicyCondition is a two-variant union: exactly one of Eval or Signal
// is set. Contract validation rejects conditions with zero or both.
type PolicyCondition struct {
	Eval   *EvalCondition   `json:"eval,omitempty"`
	Signal *SignalCondition `json:"signal,omitempty"`
}

type PolicyOutcome struct {
	Action PolicyAction `json:"action"`
	Reason string       `json:"reason,omitempty"`
}

type PolicyRule struct {
	When PolicyCondition `json:"when"`
	Then PolicyOutcome   `json:"then"`
}

// EnvironmentPolicy narrows a policy for one environment. Default applies
// when no rule in the chain matches.
type EnvironmentPolicy struct {
	Default PolicyAction `json:"default,omitempty"`
	Rules   []PolicyRule `json:"rules,omitempty"`
}

// Policy is an ordered rule chain: global rules first, then the rules of
// the active environment. The first matching rule decides.
type Policy struct {
	Rules        []PolicyRule                 `json:"rules,omitempty"`
	Environments map[string]EnvironmentPolicy `json:"environments,omitempty"`
}
