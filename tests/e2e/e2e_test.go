//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evalgate/evalgate/internal/cli"
	"github.com/evalgate/evalgate/internal/record"
	"github.com/evalgate/evalgate/pkg/types"
)

const gateYAML = `
version: 1
name: release-gate
environment: production
required_evals:
  - name: safety-eval
    rules:
      - metric: accuracy
        operator: ">="
        baseline: fixed
        threshold: 0.85
on_violation:
  action: block
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestE2EGateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "evalgate.yaml", fmt.Sprintf("db:\n  driver: sqlite\n  dsn: %s\n", filepath.Join(dir, "ledger.db")))
	contractPath := writeFile(t, dir, "gate.yaml", gateYAML)
	resultsPath := writeFile(t, dir, "results.json",
		`{"evalName":"safety-eval","runId":"run-1","metrics":{"accuracy":0.92}}`)
	recordPath := filepath.Join(dir, "record.json")

	stdout, err := runCLI(t, "check",
		"--config", cfgPath,
		"-c", contractPath,
		"-r", resultsPath,
		"--commit", "abc1234",
		"--evidence", "https://ci.example.com/run/1",
		"--record", recordPath,
		"--store")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(stdout, "PASS") {
		t.Fatalf("expected PASS:\n%s", stdout)
	}

	// The written record must verify and carry full provenance.
	data, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var rec types.DecisionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.Commit != "abc1234" || rec.Inputs == nil || rec.Inputs.EvalHash == "" {
		t.Fatalf("incomplete record: %+v", rec)
	}
	ok, err := record.VerifyRecord(rec)
	if err != nil || !ok {
		t.Fatalf("record does not verify: ok=%v err=%v", ok, err)
	}

	stdout, err = runCLI(t, "record", "verify", recordPath)
	if err != nil {
		t.Fatalf("record verify: %v", err)
	}
	if !strings.Contains(stdout, "verified") {
		t.Fatalf("expected verification message:\n%s", stdout)
	}

	stdout, err = runCLI(t, "record", "grade", recordPath)
	if err != nil {
		t.Fatalf("record grade: %v", err)
	}
	if !strings.Contains(stdout, "grade: A") {
		t.Fatalf("expected grade A:\n%s", stdout)
	}

	stdout, err = runCLI(t, "record", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("record list: %v", err)
	}
	if !strings.Contains(stdout, rec.RecordID) || !strings.Contains(stdout, "abc1234") {
		t.Fatalf("expected stored record in listing:\n%s", stdout)
	}

	// Tampering with the record file must fail verification with exit 3.
	rec.Decision = types.StatusBlock
	tampered, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("encode tampered record: %v", err)
	}
	if err := os.WriteFile(recordPath, tampered, 0o600); err != nil {
		t.Fatalf("write tampered record: %v", err)
	}
	_, err = runCLI(t, "record", "verify", recordPath)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	if got := cli.ExitCode(err); got != 3 {
		t.Fatalf("expected exit code 3, got %d", got)
	}
}

func TestE2EBlockedRunIsRecorded(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "evalgate.yaml", fmt.Sprintf("db:\n  driver: sqlite\n  dsn: %s\n", filepath.Join(dir, "ledger.db")))
	contractPath := writeFile(t, dir, "gate.yaml", gateYAML)
	resultsPath := writeFile(t, dir, "results.json",
		`{"evalName":"safety-eval","runId":"run-2","metrics":{"accuracy":0.6}}`)

	stdout, err := runCLI(t, "check",
		"--config", cfgPath,
		"-c", contractPath,
		"-r", resultsPath,
		"--commit", "def5678",
		"--store")
	if err == nil {
		t.Fatal("expected decision exit error")
	}
	if got := cli.ExitCode(err); got != 1 {
		t.Fatalf("expected exit code 1, got %d", got)
	}
	if !strings.Contains(stdout, "BLOCK") {
		t.Fatalf("expected BLOCK report:\n%s", stdout)
	}

	// The blocked decision is persisted too.
	stdout, err = runCLI(t, "record", "list", "--config", cfgPath, "--decision", "BLOCK")
	if err != nil {
		t.Fatalf("record list: %v", err)
	}
	if !strings.Contains(stdout, "BLOCK") || !strings.Contains(stdout, "def5678") {
		t.Fatalf("expected blocked record in listing:\n%s", stdout)
	}
}
