// Package grade scores how well a decision record would hold up in an
// audit. Verification says whether the record is intact; the grade says
// how much provenance it actually carries.
package grade

import (
	"sort"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

type Result struct {
	Grade   string   `json:"grade"`
	Reasons []string `json:"reasons"`
}

type Input struct {
	// Verified is the outcome of checking record_id against the body.
	Verified bool
	Record   types.DecisionRecord
}

func Evaluate(in Input) Result {
	missing := map[string]bool{}

	if !in.Verified {
		missing["verification"] = true
	}

	if in.Record.Inputs == nil || in.Record.Inputs.PolicyHash == "" {
		missing["policy_hash"] = true
	}
	if in.Record.Inputs == nil || in.Record.Inputs.EvalHash == "" {
		missing["eval_hash"] = true
	}
	if strings.TrimSpace(in.Record.Commit) == "" {
		missing["commit"] = true
	}
	if len(in.Record.Evidence) == 0 {
		missing["evidence"] = true
	}
	if strings.TrimSpace(in.Record.Reason) == "" {
		missing["reason"] = true
	}

	// Heuristic grading.
	grade := "A"
	switch {
	case missing["verification"] || missing["policy_hash"]:
		grade = "F"
	case missing["eval_hash"]:
		grade = "D"
	case missing["commit"] && missing["evidence"]:
		grade = "C"
	case missing["commit"] || missing["evidence"] || missing["reason"]:
		grade = "B"
	}

	reasons := []string{}
	for k, v := range missing {
		if v {
			reasons = append(reasons, "missing_"+k)
		}
	}
	sort.Strings(reasons)

	return Result{Grade: grade, Reasons: reasons}
}
