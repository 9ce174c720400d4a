package contract

import (
	"fmt"
	"sort"

	"github.com/evalgate/evalgate/pkg/types"
)

// Result is the outcome of semantic contract validation. Warnings do not make
// a contract invalid on their own; strict callers may promote them to errors.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Validate runs the semantic checks the JSON schema cannot express:
// cross-field requirements and lint-grade advisories.
func Validate(c types.EvalContract) Result {
	res := Result{Errors: []Issue{}, Warnings: []Issue{}}

	if len(c.RequiredEvals) == 0 && c.Policy == nil {
		res.Errors = append(res.Errors, Issue{
			Path:    "/",
			Message: "contract defines neither requiredEvals nor policy",
			Code:    "no_gate",
		})
	}
	if len(c.RequiredEvals) > 0 && c.Policy != nil {
		res.Warnings = append(res.Warnings, Issue{
			Path:    "/policy",
			Message: "both requiredEvals and policy are present; policy takes precedence and requiredEvals are ignored",
			Code:    "policy_precedence",
		})
	}
	if len(c.RequiredEvals) > 0 && c.OnViolation == nil {
		res.Warnings = append(res.Warnings, Issue{
			Path:    "/onViolation",
			Message: "no onViolation handler; violations fail closed to block",
			Code:    "missing_on_violation",
		})
	}
	if c.Environment == "production" && c.Description == "" {
		res.Warnings = append(res.Warnings, Issue{
			Path:    "/description",
			Message: "production contract has no description",
			Code:    "missing_description",
		})
	}

	seen := map[string]int{}
	for i, re := range c.RequiredEvals {
		if prev, dup := seen[re.Name]; dup {
			res.Errors = append(res.Errors, Issue{
				Path:    fmt.Sprintf("/requiredEvals/%d/name", i),
				Message: fmt.Sprintf("duplicate required eval %q (first declared at index %d)", re.Name, prev),
				Code:    "duplicate_eval",
			})
		} else {
			seen[re.Name] = i
		}
		for j, rule := range re.Rules {
			checkRuleFields(&res, fmt.Sprintf("/requiredEvals/%d/rules/%d", i, j), rule)
		}
	}

	if c.Policy != nil {
		checkPolicyRules(&res, "/policy/rules", c.Policy.Rules)
		envs := make([]string, 0, len(c.Policy.Environments))
		for env := range c.Policy.Environments {
			envs = append(envs, env)
		}
		sort.Strings(envs)
		for _, env := range envs {
			checkPolicyRules(&res, fmt.Sprintf("/policy/environments/%s/rules", env), c.Policy.Environments[env].Rules)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func checkRuleFields(res *Result, path string, rule types.ContractRule) {
	if rule.Baseline == types.BaselineFixed && rule.Threshold == nil {
		res.Errors = append(res.Errors, Issue{
			Path:    path + "/threshold",
			Message: fmt.Sprintf("rule for metric %q uses a fixed baseline but has no threshold", rule.Metric),
			Code:    "missing_threshold",
		})
	}
	if rule.Baseline != types.BaselineFixed && rule.MaxDelta == nil && isRelational(rule.Operator) {
		res.Warnings = append(res.Warnings, Issue{
			Path:    path + "/maxDelta",
			Message: fmt.Sprintf("rule for metric %q uses the %s baseline without a maxDelta; it falls back to a strict %s comparison against the baseline value", rule.Metric, rule.Baseline, rule.Operator),
			Code:    "missing_max_delta",
		})
	}
	if rule.MaxDelta != nil && *rule.MaxDelta == 0 {
		res.Warnings = append(res.Warnings, Issue{
			Path:    path + "/maxDelta",
			Message: fmt.Sprintf("rule for metric %q has maxDelta 0; no regression at all is tolerated", rule.Metric),
			Code:    "zero_max_delta",
		})
	}
}

func checkPolicyRules(res *Result, base string, rules []types.PolicyRule) {
	for i, r := range rules {
		hasEval := r.When.Eval != nil
		hasSignal := r.When.Signal != nil
		if hasEval == hasSignal {
			res.Errors = append(res.Errors, Issue{
				Path:    fmt.Sprintf("%s/%d/when", base, i),
				Message: "condition must set exactly one of eval or signal",
				Code:    "invalid_condition",
			})
		}
	}
}

func isRelational(op types.Operator) bool {
	switch op {
	case types.OpLess, types.OpLessOrEqual, types.OpGreater, types.OpGreaterOrEqual:
		return true
	}
	return false
}
