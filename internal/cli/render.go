package cli

import (
	"fmt"
	"io"

	"github.com/evalgate/evalgate/internal/contract"
	"github.com/evalgate/evalgate/internal/diff"
	"github.com/evalgate/evalgate/internal/ledger"
	"github.com/evalgate/evalgate/pkg/types"
)

func renderDecision(w io.Writer, environment string, d types.Decision) {
	fmt.Fprintf(w, "contract:    %s (v%d)\n", d.ContractName, d.ContractVersion)
	fmt.Fprintf(w, "environment: %s\n", environment)
	fmt.Fprintf(w, "decision:    %s\n", d.Status)
	if d.Summary != "" {
		fmt.Fprintf(w, "summary:     %s\n", d.Summary)
	}
	if len(d.Violations) > 0 {
		fmt.Fprintln(w, "violations:")
		for _, v := range d.Violations {
			fmt.Fprintf(w, "  - %s\n", v.Explanation)
		}
	}
}

// resolveEnvironment mirrors the engine's fallback chain so the rendered
// environment matches the one the evaluation used.
func resolveEnvironment(env string, c types.EvalContract) string {
	if env != "" {
		return env
	}
	if c.Environment != "" {
		return c.Environment
	}
	return "production"
}

func renderValidation(w io.Writer, path, digest string, res contract.Result) {
	if res.Valid {
		fmt.Fprintf(w, "%s: valid\n", path)
	} else {
		fmt.Fprintf(w, "%s: invalid\n", path)
	}
	if digest != "" {
		fmt.Fprintf(w, "digest: %s\n", digest)
	}
	for _, issue := range res.Errors {
		fmt.Fprintf(w, "  error   %s: %s [%s]\n", issue.Path, issue.Message, issue.Code)
	}
	for _, issue := range res.Warnings {
		fmt.Fprintf(w, "  warning %s: %s [%s]\n", issue.Path, issue.Message, issue.Code)
	}
}

func renderContractDiff(w io.Writer, d diff.ContractDiff) {
	if d.Empty() {
		fmt.Fprintln(w, "contracts are identical")
		return
	}
	for _, fc := range d.FieldChanges {
		fmt.Fprintf(w, "field %s: %s -> %s\n", fc.Field, orNone(fc.Previous), orNone(fc.Current))
	}
	for _, name := range d.AddedEvals {
		fmt.Fprintf(w, "added eval %s\n", name)
	}
	for _, name := range d.RemovedEvals {
		fmt.Fprintf(w, "removed eval %s\n", name)
	}
	for _, ref := range d.AddedRules {
		fmt.Fprintf(w, "added rule %s/%s\n", ref.Eval, ref.Metric)
	}
	for _, ref := range d.RemovedRules {
		fmt.Fprintf(w, "removed rule %s/%s\n", ref.Eval, ref.Metric)
	}
	for _, rc := range d.RuleChanges {
		fmt.Fprintf(w, "rule %s/%s %s: %s -> %s\n", rc.Eval, rc.Metric, rc.Field, orNone(rc.Previous), orNone(rc.Current))
	}
}

func orNone(v any) string {
	if v == nil {
		return "(none)"
	}
	return types.Format(v)
}

func renderResultsDiff(w io.Writer, changes []diff.MetricChange) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "no metric changes")
		return
	}
	for _, ch := range changes {
		switch {
		case ch.Metric == "*":
			fmt.Fprintf(w, "%-9s %s: suite removed\n", ch.Kind, ch.EvalName)
		case ch.Kind == diff.ChangeNew:
			fmt.Fprintf(w, "%-9s %s/%s = %s\n", ch.Kind, ch.EvalName, ch.Metric, types.Format(ch.Current))
		case ch.Current == nil:
			fmt.Fprintf(w, "%-9s %s/%s: removed (was %s)\n", ch.Kind, ch.EvalName, ch.Metric, types.Format(ch.Previous))
		default:
			line := fmt.Sprintf("%-9s %s/%s: %s -> %s", ch.Kind, ch.EvalName, ch.Metric, types.Format(ch.Previous), types.Format(ch.Current))
			if ch.Delta != nil {
				line += fmt.Sprintf(" (%+g)", *ch.Delta)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func renderRecord(w io.Writer, rec types.DecisionRecord) {
	fmt.Fprintf(w, "record:      %s\n", rec.RecordID)
	fmt.Fprintf(w, "decision:    %s\n", rec.Decision)
	fmt.Fprintf(w, "environment: %s\n", rec.Environment)
	if rec.Commit != "" {
		fmt.Fprintf(w, "commit:      %s\n", rec.Commit)
	}
	if rec.Reason != "" {
		fmt.Fprintf(w, "reason:      %s\n", rec.Reason)
	}
	fmt.Fprintf(w, "timestamp:   %s\n", rec.Timestamp)
	if rec.Inputs != nil {
		fmt.Fprintf(w, "policy hash: %s\n", rec.Inputs.PolicyHash)
		if rec.Inputs.EvalHash != "" {
			fmt.Fprintf(w, "eval hash:   %s\n", rec.Inputs.EvalHash)
		}
		if rec.Inputs.SignalsHash != "" {
			fmt.Fprintf(w, "signal hash: %s\n", rec.Inputs.SignalsHash)
		}
	}
	for _, ev := range rec.Evidence {
		fmt.Fprintf(w, "evidence:    %s\n", ev)
	}
}

func renderRecordRows(w io.Writer, rows []ledger.Record) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}

	decisionW, envW, commitW := len("DECISION"), len("ENVIRONMENT"), len("COMMIT")
	for _, row := range rows {
		decisionW = max(decisionW, len(row.Decision))
		envW = max(envW, len(row.Environment))
		commitW = max(commitW, len(row.Commit))
	}

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-20s  %s\n",
		decisionW, "DECISION", envW, "ENVIRONMENT", commitW, "COMMIT", "CREATED", "RECORD_ID")
	for _, row := range rows {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-20s  %s\n",
			decisionW, row.Decision, envW, row.Environment, commitW, row.Commit, row.Timestamp, row.RecordID)
	}
}
