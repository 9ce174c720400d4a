package types

type SignalType string

const (
	SignalEval              SignalType = "eval"
	SignalHumanReview       SignalType = "human_review"
	SignalRiskFlag          SignalType = "risk_flag"
	SignalExternalReference SignalType = "external_reference"
)

// Signal is a non-eval release input: a human review verdict, a risk
// flag raised by tooling, or a reference to an external system of record.
type Signal struct {
	ID       string            `json:"id"`
	Type     SignalType        `json:"type"`
	Name     string            `json:"name"`
	Value    any               `json:"value"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
