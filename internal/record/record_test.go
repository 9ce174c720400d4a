package record

import (
	"strings"
	"testing"
	"time"

	"github.com/evalgate/evalgate/pkg/types"
)

func buildInput() BuildInput {
	return BuildInput{
		Decision: types.Decision{
			Status:       types.StatusPass,
			EvaluatedAt:  "2026-03-01T12:00:00Z",
			ContractName: "release-gate",
			Summary:      "All 1 required evals passed",
		},
		Contract: types.EvalContract{
			Version:     1,
			Name:        "release-gate",
			Environment: "production",
		},
		EvalResults: sampleResults(),
		Signals:     []types.Signal{{ID: "sig-1", Type: types.SignalHumanReview, Name: "approved", Value: true}},
		Commit:      "abc1234",
		Evidence:    []string{"results/safety-eval.json"},
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildPopulatesRecord(t *testing.T) {
	rec, err := Build(buildInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if rec.Schema != types.DecisionRecordSchema {
		t.Fatalf("expected schema %s, got %s", types.DecisionRecordSchema, rec.Schema)
	}
	if rec.Decision != types.StatusPass {
		t.Fatalf("expected decision PASS, got %s", rec.Decision)
	}
	if rec.Reason != "All 1 required evals passed" {
		t.Fatalf("unexpected reason %q", rec.Reason)
	}
	if rec.Environment != "production" {
		t.Fatalf("expected production environment, got %s", rec.Environment)
	}
	if rec.Timestamp != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %s", rec.Timestamp)
	}
	if rec.Inputs == nil {
		t.Fatal("expected inputs to be set")
	}
	if rec.Inputs.PolicyHash == "" || rec.Inputs.EvalHash == "" || rec.Inputs.SignalsHash == "" {
		t.Fatalf("expected all three input hashes, got %+v", rec.Inputs)
	}
	if !strings.HasPrefix(rec.RecordID, "sha256:") {
		t.Fatalf("expected sha256-prefixed record id, got %s", rec.RecordID)
	}
}

func TestBuildReproducible(t *testing.T) {
	first, err := Build(buildInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := Build(buildInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if first.RecordID != second.RecordID {
		t.Fatalf("expected identical record ids, got %s and %s", first.RecordID, second.RecordID)
	}
}

func TestBuildOmitsAbsentInputHashes(t *testing.T) {
	in := buildInput()
	in.EvalResults = nil
	in.Signals = nil

	rec, err := Build(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if rec.Inputs.EvalHash != "" {
		t.Fatalf("expected empty eval hash, got %s", rec.Inputs.EvalHash)
	}
	if rec.Inputs.SignalsHash != "" {
		t.Fatalf("expected empty signals hash, got %s", rec.Inputs.SignalsHash)
	}
	if rec.Inputs.PolicyHash == "" {
		t.Fatal("policy hash must always be present")
	}
}

func TestBuildEnvironmentFallback(t *testing.T) {
	in := buildInput()
	in.Environment = ""
	in.Contract.Environment = "staging"

	rec, err := Build(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rec.Environment != "staging" {
		t.Fatalf("expected contract environment, got %s", rec.Environment)
	}

	in.Contract.Environment = ""
	rec, err = Build(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rec.Environment != "production" {
		t.Fatalf("expected production fallback, got %s", rec.Environment)
	}
}

func TestVerifyRecord(t *testing.T) {
	rec, err := Build(buildInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ok, err := VerifyRecord(rec)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected freshly built record to verify")
	}

	tampered := rec
	tampered.Decision = types.StatusBlock
	ok, err = VerifyRecord(tampered)
	if err != nil {
		t.Fatalf("verify tampered: %v", err)
	}
	if ok {
		t.Fatal("expected tampered record to fail verification")
	}

	tampered = rec
	tampered.RecordID = ""
	if _, err := VerifyRecord(tampered); err != ErrMissingRecordID {
		t.Fatalf("expected ErrMissingRecordID, got %v", err)
	}
}
