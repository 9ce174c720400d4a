package adapters

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/evalgate/evalgate/pkg/types"
)

func payload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return m
}

func metric(t *testing.T, res types.NormalizedEvalResult, name string) float64 {
	t.Helper()
	f, ok := types.Number(res.Metrics[name])
	if !ok {
		t.Fatalf("metric %s missing or non-numeric: %v", name, res.Metrics)
	}
	return f
}

func TestDetectionOrder(t *testing.T) {
	r := DefaultRegistry()
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"promptfoo", `{"results":[{"success":true}]}`, "promptfoo"},
		{"langsmith examples", `{"examples":[{"feedback":[]}]}`, "langsmith"},
		{"langsmith run_id", `{"results":[{"run_id":"r1"}]}`, "langsmith"},
		{"langsmith aggregate", `{"aggregate_feedback":{"correctness":0.9}}`, "langsmith"},
		{"openevals results", `{"results":[{"scores":{"relevance":0.8}}]}`, "openevals"},
		{"openevals summary", `{"summary":{"accuracy":0.9}}`, "openevals"},
		{"openevals metrics+name", `{"metrics":{"accuracy":0.9},"eval_name":"qa"}`, "openevals"},
		{"generic", `{"evalName":"qa","metrics":{"accuracy":0.9}}`, "generic"},
	}
	for _, tc := range cases {
		a, ok := r.Detect(payload(t, tc.raw))
		if !ok {
			t.Fatalf("%s: no adapter detected", tc.name)
		}
		if a.Name() != tc.want {
			t.Fatalf("%s: detected %s, want %s", tc.name, a.Name(), tc.want)
		}
	}
}

func TestDetectionRejectsAmbiguousShapes(t *testing.T) {
	r := DefaultRegistry()

	// A bare metrics object is not enough for openevals.
	if _, ok := r.Detect(payload(t, `{"metrics":{"accuracy":0.9}}`)); ok {
		t.Fatalf("bare metrics object must not match any adapter")
	}
	// A string evalName forces the payload away from openevals even when
	// openevals markers are present.
	a, ok := r.Detect(payload(t, `{"evalName":"qa","metrics":{"accuracy":0.9},"summary":{"accuracy":0.9}}`))
	if !ok || a.Name() != "generic" {
		t.Fatalf("evalName marker should route to generic, got %v", a)
	}

	if _, err := r.Parse(payload(t, `{"tool":"mystery"}`)); !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("expected ErrNoAdapter, got %v", err)
	}
}

func TestPromptfooParse(t *testing.T) {
	raw := `{
		"evalId": "eval-123",
		"description": "chat regression",
		"results": [
			{"success": true,  "latencyMs": 100, "cost": 0.01, "namedScores": {"relevance": 0.8}},
			{"success": true,  "latencyMs": 200, "cost": 0.01, "namedScores": {"relevance": 0.6}},
			{"success": false, "latencyMs": 300, "cost": 0.02, "namedScores": {"relevance": 0.4}}
		]
	}`
	res, err := DefaultRegistry().Parse(payload(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.EvalName != "chat regression" {
		t.Fatalf("eval name: got %q", res.EvalName)
	}
	if res.RunID != "eval-123" {
		t.Fatalf("run id should come from evalId, got %q", res.RunID)
	}
	if got := metric(t, res, "pass_rate"); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Fatalf("pass_rate: got %v", got)
	}
	if got := metric(t, res, "fail_count"); got != 1 {
		t.Fatalf("fail_count: got %v", got)
	}
	if got := metric(t, res, "relevance"); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("namedScores average: got %v", got)
	}
	if got := metric(t, res, "latency_p50"); got != 200 {
		t.Fatalf("latency_p50: got %v", got)
	}
	if got := metric(t, res, "total_cost"); math.Abs(got-0.04) > 1e-9 {
		t.Fatalf("total_cost: got %v", got)
	}
}

func TestLangsmithParse(t *testing.T) {
	raw := `{
		"experiment_name": "rag-experiment",
		"results": [
			{"run_id": "r1", "execution_time": 1.0, "feedback": [{"key": "correctness", "score": 0.9}, {"key": "harmfulness", "score": 0.1}]},
			{"run_id": "r2", "execution_time": 3.0, "feedback": [{"key": "correctness", "score": 0.7}]}
		],
		"aggregate_feedback": {"helpfulness": 0.8}
	}`
	res, err := DefaultRegistry().Parse(payload(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.EvalName != "rag-experiment" {
		t.Fatalf("eval name: got %q", res.EvalName)
	}
	if got := metric(t, res, "correctness"); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("correctness average: got %v", got)
	}
	if got := metric(t, res, "avg_execution_time"); got != 2.0 {
		t.Fatalf("avg_execution_time: got %v", got)
	}
	if got := metric(t, res, "helpfulness"); got != 0.8 {
		t.Fatalf("aggregate_feedback passthrough: got %v", got)
	}
	if res.RunID != "r1" {
		t.Fatalf("run id should fall back to first row run_id, got %q", res.RunID)
	}
}

func TestOpenEvalsParsePrefersSummary(t *testing.T) {
	raw := `{
		"eval_name": "safety",
		"run_id": "run-9",
		"summary": {"accuracy": 0.92, "passed": 23, "total": 25},
		"results": [{"passed": true, "scores": {"accuracy": 0.1}}]
	}`
	res, err := DefaultRegistry().Parse(payload(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.EvalName != "safety" || res.RunID != "run-9" {
		t.Fatalf("identity: got %q/%q", res.EvalName, res.RunID)
	}
	if got := metric(t, res, "accuracy"); got != 0.92 {
		t.Fatalf("summary must win over row aggregation: got %v", got)
	}
	if _, ok := res.Metrics["avg_accuracy"]; ok {
		t.Fatalf("row aggregation must be skipped when summary is present")
	}
}

func TestOpenEvalsParseAggregatesRows(t *testing.T) {
	raw := `{
		"eval_name": "safety",
		"metrics": {"avg_relevance": 0.99},
		"results": [
			{"passed": true,  "scores": {"relevance": 0.6}},
			{"passed": false, "scores": {"relevance": 0.4}}
		]
	}`
	res, err := DefaultRegistry().Parse(payload(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := metric(t, res, "pass_rate"); got != 0.5 {
		t.Fatalf("pass_rate from rows: got %v", got)
	}
	// avg_relevance already exists in the metrics map and must not be
	// overwritten by the derived average.
	if got := metric(t, res, "avg_relevance"); got != 0.99 {
		t.Fatalf("existing metric overwritten: got %v", got)
	}
	if got := metric(t, res, "min_relevance"); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("min_relevance: got %v", got)
	}
	if got := metric(t, res, "max_relevance"); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("max_relevance: got %v", got)
	}
}

func TestGenericParsePassthrough(t *testing.T) {
	raw := `{
		"evalName": "quality",
		"runId": "r42",
		"timestamp": "2024-06-01T00:00:00Z",
		"metrics": {"accuracy": 0.9, "verdict": "good"},
		"metadata": {"model": "gpt-4o"}
	}`
	res, err := DefaultRegistry().Parse(payload(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.RunID != "r42" || res.Timestamp != "2024-06-01T00:00:00Z" {
		t.Fatalf("identity passthrough broken: %+v", res)
	}
	if res.Metrics["verdict"] != "good" {
		t.Fatalf("non-numeric metrics must pass through, got %v", res.Metrics)
	}
	if res.Metadata["model"] != "gpt-4o" {
		t.Fatalf("metadata passthrough broken: %v", res.Metadata)
	}
}

func TestGenericGeneratesRunID(t *testing.T) {
	res, err := DefaultRegistry().Parse(payload(t, `{"evalName":"q","metrics":{"a":1}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("expected generated run id")
	}
}

func TestParseWithForcesAdapter(t *testing.T) {
	r := DefaultRegistry()
	// This payload sniffs as promptfoo, but the caller can force generic
	// to fail fast instead.
	p := payload(t, `{"results":[{"success":true}]}`)
	if _, err := r.ParseWith("generic", p); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch from forced adapter, got %v", err)
	}
	if _, err := r.ParseWith("does-not-exist", p); !errors.Is(err, ErrUnknownAdapter) {
		t.Fatalf("expected unknown adapter error, got %v", err)
	}
}

func TestRegistryNamesOrder(t *testing.T) {
	names := DefaultRegistry().Names()
	want := []string{"promptfoo", "langsmith", "openevals", "generic"}
	if len(names) != len(want) {
		t.Fatalf("adapter count: got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("adapter order: got %v, want %v", names, want)
		}
	}
}
