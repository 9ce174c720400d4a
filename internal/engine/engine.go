// Package engine computes gate decisions from a contract and the
// normalized inputs of one release: eval results, baselines, and
// signals. Evaluation is a pure function of its input; the only
// non-reproducible part of a Decision is its timestamp.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/evalgate/evalgate/pkg/types"
)

var ErrNoRules = errors.New("contract declares neither required evals nor a policy")

// Input carries everything one evaluation reads. Baselines are keyed by
// eval name. Now overrides the decision timestamp for reproducible
// runs; the zero value means wall-clock time.
type Input struct {
	Contract    types.EvalContract
	Results     []types.NormalizedEvalResult
	Baselines   map[string]types.BaselineData
	Signals     []types.Signal
	Environment string
	Now         time.Time
}

// Evaluate dispatches on contract form: a policy when present, else the
// required-eval rule sets.
func Evaluate(in Input) (types.Decision, error) {
	if in.Contract.Policy != nil {
		return evaluatePolicy(in), nil
	}
	if len(in.Contract.RequiredEvals) > 0 {
		return evaluateLegacy(in), nil
	}
	return types.Decision{}, ErrNoRules
}

// evaluateLegacy walks every rule of every required eval and collects
// all violations; nothing short-circuits, so one run reports the full
// set of failures.
func evaluateLegacy(in Input) types.Decision {
	c := in.Contract

	// Last write wins when two results share an eval name.
	byName := make(map[string]types.NormalizedEvalResult, len(in.Results))
	for _, r := range in.Results {
		byName[r.EvalName] = r
	}

	violations := make([]types.Violation, 0)
	for _, req := range c.RequiredEvals {
		res, ok := byName[req.Name]
		if !ok {
			violations = append(violations, types.Violation{
				EvalName:    req.Name,
				Rule:        types.ContractRule{Metric: "*"},
				Explanation: fmt.Sprintf("Required eval not found: %s", req.Name),
			})
			continue
		}
		for _, rule := range req.Rules {
			if v := checkRule(req.Name, rule, res, in.Baselines); v != nil {
				violations = append(violations, *v)
			}
		}
	}

	decision := types.Decision{
		Status:          types.StatusPass,
		Violations:      violations,
		EvaluatedAt:     evaluatedAt(in.Now),
		ContractName:    c.Name,
		ContractVersion: c.Version,
		Summary:         fmt.Sprintf("All %d required evals passed", len(c.RequiredEvals)),
	}
	if len(violations) == 0 {
		return decision
	}

	decision.Status = violationStatus(c.OnViolation)
	decision.Summary = fmt.Sprintf("%d violation(s) across %d required evals", len(violations), len(c.RequiredEvals))
	if c.OnViolation != nil && c.OnViolation.Message != "" {
		decision.Summary = c.OnViolation.Message
	}
	return decision
}

// violationStatus maps the contract's violation action to a status.
// warn intentionally maps to REQUIRES_APPROVAL, same as
// require_approval; a missing handler fails closed to BLOCK.
func violationStatus(h *types.ViolationHandler) types.DecisionStatus {
	if h == nil {
		return types.StatusBlock
	}
	switch h.Action {
	case types.ActionRequireApproval, types.ActionWarn:
		return types.StatusRequiresApproval
	default:
		return types.StatusBlock
	}
}

func evaluatedAt(now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC().Format(time.RFC3339)
}

// environment picks the active environment: explicit input first, then
// the contract's, then production.
func environment(in Input) string {
	if in.Environment != "" {
		return in.Environment
	}
	if in.Contract.Environment != "" {
		return in.Contract.Environment
	}
	return "production"
}
