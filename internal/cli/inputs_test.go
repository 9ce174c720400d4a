package cli

import (
	"testing"

	"github.com/evalgate/evalgate/pkg/types"
)

func TestLoadBaselinesMapForm(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "baseline.json",
		`{"safety-eval":{"type":"previous","metrics":{"accuracy":0.85}}}`)

	baselines, err := loadBaselines(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, ok := baselines["safety-eval"]
	if !ok || b.Type != types.BaselinePrevious {
		t.Fatalf("unexpected baselines %+v", baselines)
	}
	if v, _ := types.Number(b.Metrics["accuracy"]); v != 0.85 {
		t.Fatalf("unexpected accuracy %v", b.Metrics["accuracy"])
	}
}

func TestLoadBaselinesResultArrayForm(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "baseline.json",
		`[{"evalName":"safety-eval","runId":"run-0","metrics":{"accuracy":0.85}}]`)

	baselines, err := loadBaselines(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, ok := baselines["safety-eval"]
	if !ok || b.Type != types.BaselinePrevious || b.Source != path {
		t.Fatalf("unexpected baselines %+v", baselines)
	}
}

func TestLoadResultSetSingleObject(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "results.json",
		`{"evalName":"safety-eval","runId":"run-1","metrics":{"accuracy":0.92}}`)

	results, err := loadResultSet(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(results) != 1 || results[0].EvalName != "safety-eval" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestLoadResultsForcedAdapter(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "results.json",
		`{"evalName":"safety-eval","runId":"run-1","metrics":{"accuracy":0.92}}`)

	res, err := loadResults(path, "generic", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.EvalName != "safety-eval" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := loadResults(path, "nope", nil); err == nil {
		t.Fatal("expected error for unknown adapter")
	}
}

func TestLoadResultsForcedAdapterRejectsCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "results.csv", "score\n0.9\n")

	if _, err := loadResults(path, "generic", nil); err == nil {
		t.Fatal("expected error for csv with forced adapter")
	}
}
