package engine

import (
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
)

// CompareValues applies op to two metric values. Numeric operands
// support all six operators. Non-numeric operands support only equality;
// a relational operator on them is false, never an error.
func CompareValues(a types.MetricValue, op types.Operator, b types.MetricValue) bool {
	fa, aok := types.Number(a)
	fb, bok := types.Number(b)
	if aok && bok {
		switch op {
		case types.OpEqual:
			return fa == fb
		case types.OpNotEqual:
			return fa != fb
		case types.OpLess:
			return fa < fb
		case types.OpLessOrEqual:
			return fa <= fb
		case types.OpGreater:
			return fa > fb
		case types.OpGreaterOrEqual:
			return fa >= fb
		}
		return false
	}
	switch op {
	case types.OpEqual:
		return types.Equal(a, b)
	case types.OpNotEqual:
		return !types.Equal(a, b)
	}
	return false
}

// checkRule evaluates one rule against one result, returning nil when
// the rule passes. Relative rules with no baseline entry (or no baseline
// metric) pass: first runs and new metrics have nothing to regress from.
func checkRule(evalName string, rule types.ContractRule, res types.NormalizedEvalResult, baselines map[string]types.BaselineData) *types.Violation {
	actual, ok := res.Metrics[rule.Metric]
	if !ok {
		return &types.Violation{
			EvalName:    evalName,
			Rule:        rule,
			Explanation: fmt.Sprintf("Metric %s not found in eval results", rule.Metric),
		}
	}

	if rule.Baseline == types.BaselineFixed {
		if rule.Threshold == nil {
			return &types.Violation{
				EvalName:    evalName,
				Rule:        rule,
				ActualValue: actual,
				Explanation: fmt.Sprintf("No threshold specified for metric %s", rule.Metric),
			}
		}
		if CompareValues(actual, rule.Operator, *rule.Threshold) {
			return nil
		}
		return &types.Violation{
			EvalName:      evalName,
			Rule:          rule,
			ActualValue:   actual,
			BaselineValue: *rule.Threshold,
			Explanation: fmt.Sprintf("%s = %s, expected %s %s",
				rule.Metric, types.Format(actual), rule.Operator, types.Format(*rule.Threshold)),
		}
	}

	base, ok := baselines[evalName]
	if !ok {
		return nil
	}
	baseVal, ok := base.Metrics[rule.Metric]
	if !ok {
		return nil
	}

	var delta *float64
	if fa, aok := types.Number(actual); aok {
		if fb, bok := types.Number(baseVal); bok {
			d := fa - fb
			delta = &d
		}
	}

	// One-sided regression check: only a positive delta beyond maxDelta
	// violates, matching the "larger is worse" reading of maxDelta for
	// metric rules.
	if rule.MaxDelta != nil && delta != nil && *delta > *rule.MaxDelta {
		return &types.Violation{
			EvalName:      evalName,
			Rule:          rule,
			ActualValue:   actual,
			BaselineValue: baseVal,
			Delta:         delta,
			Explanation: fmt.Sprintf("%s regressed by %s (max allowed delta is %s)",
				rule.Metric, types.Format(*delta), types.Format(*rule.MaxDelta)),
		}
	}

	if CompareValues(actual, rule.Operator, baseVal) {
		return nil
	}
	return &types.Violation{
		EvalName:      evalName,
		Rule:          rule,
		ActualValue:   actual,
		BaselineValue: baseVal,
		Delta:         delta,
		Explanation: fmt.Sprintf("%s = %s, expected %s %s (baseline)",
			rule.Metric, types.Format(actual), rule.Operator, types.Format(baseVal)),
	}
}
