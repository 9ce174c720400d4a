package engine

import (
	"fmt"
	"math"

	"github.com/evalgate/evalgate/pkg/types"
)

// evaluatePolicy walks the rule chain, global rules before the active
// environment's, and adopts the first matching rule's outcome.
// No match falls back to the environment default, then to pass. Policy
// decisions never carry violations; the summary holds the reason.
func evaluatePolicy(in Input) types.Decision {
	c := in.Contract
	p := c.Policy
	env := environment(in)

	chain := make([]types.PolicyRule, 0, len(p.Rules))
	chain = append(chain, p.Rules...)
	envPolicy, hasEnv := p.Environments[env]
	if hasEnv {
		chain = append(chain, envPolicy.Rules...)
	}

	var (
		action  types.PolicyAction
		reason  string
		matched bool
	)
	for _, rule := range chain {
		if !matchCondition(rule.When, in) {
			continue
		}
		action = rule.Then.Action
		reason = rule.Then.Reason
		if reason == "" {
			reason = fmt.Sprintf("policy rule matched (%s)", action)
		}
		matched = true
		break
	}
	if !matched {
		if hasEnv && envPolicy.Default != "" {
			action = envPolicy.Default
			reason = fmt.Sprintf("no rule matched; %s environment defaults to %s", env, action)
		} else {
			action = types.PolicyPass
			reason = "no rule matched; defaulting to pass"
		}
	}

	return types.Decision{
		Status:          policyStatus(action),
		EvaluatedAt:     evaluatedAt(in.Now),
		ContractName:    c.Name,
		ContractVersion: c.Version,
		Summary:         reason,
	}
}

func policyStatus(action types.PolicyAction) types.DecisionStatus {
	switch action {
	case types.PolicyBlock:
		return types.StatusBlock
	case types.PolicyRequireApproval:
		return types.StatusRequiresApproval
	default:
		return types.StatusPass
	}
}

func matchCondition(cond types.PolicyCondition, in Input) bool {
	switch {
	case cond.Eval != nil:
		return matchEvalCondition(*cond.Eval, in.Results, in.Baselines)
	case cond.Signal != nil:
		return matchSignalCondition(*cond.Signal, in.Signals)
	}
	return false
}

// matchEvalCondition consults only the first result that defines the
// metric; later results with the same metric are ignored. Missing
// baselines make relative conditions true, and the delta tolerance here
// is two-sided, unlike the metric-rule regression check.
func matchEvalCondition(cond types.EvalCondition, results []types.NormalizedEvalResult, baselines map[string]types.BaselineData) bool {
	var (
		actual   types.MetricValue
		evalName string
		found    bool
	)
	for _, r := range results {
		if v, ok := r.Metrics[cond.Metric]; ok {
			actual = v
			evalName = r.EvalName
			found = true
			break
		}
	}
	if !found {
		return false
	}

	if cond.Baseline == types.BaselineFixed {
		if cond.Threshold == nil {
			return false
		}
		return CompareValues(actual, cond.Operator, *cond.Threshold)
	}

	base, ok := baselines[evalName]
	if !ok {
		return true
	}
	baseVal, ok := base.Metrics[cond.Metric]
	if !ok {
		return true
	}

	if cond.MaxDelta != nil {
		if fa, aok := types.Number(actual); aok {
			if fb, bok := types.Number(baseVal); bok && math.Abs(fa-fb) <= *cond.MaxDelta {
				return true
			}
		}
	}
	return CompareValues(actual, cond.Operator, baseVal)
}

// matchSignalCondition filters signals by type/name, then either checks
// presence (no operator/value) or compares a resolved operand from each
// filtered signal until one matches.
func matchSignalCondition(cond types.SignalCondition, signals []types.Signal) bool {
	for _, s := range signals {
		if cond.Type != "" && s.Type != cond.Type {
			continue
		}
		if cond.Name != "" && s.Name != cond.Name {
			continue
		}
		if cond.Operator == "" || cond.Value == nil {
			// Presence check: a signal surviving the filter is enough.
			return true
		}
		operand, ok := signalOperand(s, cond.Field)
		if !ok {
			continue
		}
		a, b := coerceOperands(operand, cond.Value)
		if CompareValues(a, cond.Operator, b) {
			return true
		}
	}
	return false
}

// signalOperand resolves the value a condition compares: the signal
// value itself, or a field looked up first in the value object and then
// in the metadata map.
func signalOperand(s types.Signal, field string) (any, bool) {
	if field == "" {
		return s.Value, true
	}
	if obj, ok := s.Value.(map[string]any); ok {
		if v, ok := obj[field]; ok {
			return v, true
		}
	}
	if v, ok := s.Metadata[field]; ok {
		return v, true
	}
	return nil, false
}

// coerceOperands stringifies the non-string side when exactly one side
// is a string, so "2" in signal metadata compares equal to 2 in a
// condition. Relational operators on the resulting strings still
// evaluate false per CompareValues.
func coerceOperands(a, b any) (any, any) {
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr == bStr {
		return a, b
	}
	if aStr {
		return a, types.Format(b)
	}
	return types.Format(a), b
}
