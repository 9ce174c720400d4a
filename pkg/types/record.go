package types

// DecisionRecordSchema versions the persisted record layout.
const DecisionRecordSchema = "evalgate.decision/v1"

// RecordInputs carries content hashes of everything the decision was
// computed from, so a record can be tied back to exact inputs.
type RecordInputs struct {
	EvalHash    string `json:"eval_hash,omitempty"`
	SignalsHash string `json:"signals_hash,omitempty"`
	PolicyHash  string `json:"policy_hash"`
}

// DecisionRecord is the audit artifact written after a gate run. RecordID
// is a digest over the record body, so any later edit is detectable.
type DecisionRecord struct {
	Schema      string         `json:"schema"`
	RecordID    string         `json:"record_id"`
	Commit      string         `json:"commit,omitempty"`
	Environment string         `json:"environment"`
	Decision    DecisionStatus `json:"decision"`
	Reason      string         `json:"reason,omitempty"`
	Inputs      *RecordInputs  `json:"inputs,omitempty"`
	Evidence    []string       `json:"evidence,omitempty"`
	Timestamp   string         `json:"timestamp"`
}
