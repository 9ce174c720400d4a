// Package record derives audit artifacts from gate decisions: content hashes
// of the inputs a decision was computed from, and a write-once DecisionRecord
// whose id is a canonical digest of its own body.
package record

import (
	"time"

	"github.com/evalgate/evalgate/pkg/types"
)

// BuildInput carries everything a decision record is derived from. Timestamp
// is optional and defaults to the current time.
type BuildInput struct {
	Decision    types.Decision
	Contract    types.EvalContract
	Environment string
	EvalResults []types.NormalizedEvalResult
	Signals     []types.Signal
	Commit      string
	Evidence    []string
	Timestamp   time.Time
}

// Build assembles a decision record: status and summary from the decision,
// content hashes of the inputs, and a digest record id over the body.
func Build(in BuildInput) (types.DecisionRecord, error) {
	policyHash, err := HashContract(in.Contract)
	if err != nil {
		return types.DecisionRecord{}, err
	}
	inputs := &types.RecordInputs{PolicyHash: policyHash}
	if len(in.EvalResults) > 0 {
		if inputs.EvalHash, err = HashEvalResults(in.EvalResults); err != nil {
			return types.DecisionRecord{}, err
		}
	}
	if len(in.Signals) > 0 {
		if inputs.SignalsHash, err = HashSignals(in.Signals); err != nil {
			return types.DecisionRecord{}, err
		}
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	environment := in.Environment
	if environment == "" {
		environment = in.Contract.Environment
	}
	if environment == "" {
		environment = "production"
	}

	rec := types.DecisionRecord{
		Schema:      types.DecisionRecordSchema,
		Commit:      in.Commit,
		Environment: environment,
		Decision:    in.Decision.Status,
		Reason:      in.Decision.Summary,
		Inputs:      inputs,
		Evidence:    in.Evidence,
		Timestamp:   ts.UTC().Format(time.RFC3339),
	}
	id, err := Digest(rec)
	if err != nil {
		return types.DecisionRecord{}, err
	}
	rec.RecordID = id
	return rec, nil
}

// Digest computes the canonical digest of a record body. Any record id
// already present is ignored, so the digest is stable across recomputation.
func Digest(rec types.DecisionRecord) (string, error) {
	canonical, err := Canonicalize(bodyView(rec))
	if err != nil {
		return "", err
	}
	return DigestWithPrefix(canonical), nil
}

// VerifyRecord recomputes a record's digest and reports whether it matches
// the stored record id.
func VerifyRecord(rec types.DecisionRecord) (bool, error) {
	if rec.RecordID == "" {
		return false, ErrMissingRecordID
	}
	want, err := Digest(rec)
	if err != nil {
		return false, err
	}
	return want == rec.RecordID, nil
}

// bodyView mirrors the record's JSON shape minus record_id. Optional fields
// are omitted when empty so the digest matches what a reader would compute
// from the serialized record.
func bodyView(rec types.DecisionRecord) map[string]any {
	body := map[string]any{
		"schema":      rec.Schema,
		"environment": rec.Environment,
		"decision":    string(rec.Decision),
		"timestamp":   rec.Timestamp,
	}
	if rec.Commit != "" {
		body["commit"] = rec.Commit
	}
	if rec.Reason != "" {
		body["reason"] = rec.Reason
	}
	if rec.Inputs != nil {
		inputs := map[string]any{"policy_hash": rec.Inputs.PolicyHash}
		if rec.Inputs.EvalHash != "" {
			inputs["eval_hash"] = rec.Inputs.EvalHash
		}
		if rec.Inputs.SignalsHash != "" {
			inputs["signals_hash"] = rec.Inputs.SignalsHash
		}
		body["inputs"] = inputs
	}
	if len(rec.Evidence) > 0 {
		body["evidence"] = rec.Evidence
	}
	return body
}
