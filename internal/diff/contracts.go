// Package diff computes human-reviewable differences between two contracts
// or two sets of normalized eval results.
package diff

import (
	"sort"

	"github.com/evalgate/evalgate/pkg/types"
)

// FieldChange records one top-level contract field whose value changed.
type FieldChange struct {
	Field    string `json:"field"`
	Previous any    `json:"previous,omitempty"`
	Current  any    `json:"current,omitempty"`
}

// RuleRef names one rule by its eval and metric.
type RuleRef struct {
	Eval   string `json:"eval"`
	Metric string `json:"metric"`
}

// RuleChange records one changed field on a commonly-named rule.
type RuleChange struct {
	Eval     string `json:"eval"`
	Metric   string `json:"metric"`
	Field    string `json:"field"`
	Previous any    `json:"previous,omitempty"`
	Current  any    `json:"current,omitempty"`
}

// ContractDiff summarizes the differences between two contracts.
type ContractDiff struct {
	FieldChanges []FieldChange `json:"fieldChanges"`
	AddedEvals   []string      `json:"addedEvals"`
	RemovedEvals []string      `json:"removedEvals"`
	AddedRules   []RuleRef     `json:"addedRules"`
	RemovedRules []RuleRef     `json:"removedRules"`
	RuleChanges  []RuleChange  `json:"ruleChanges"`
}

// Empty reports whether the two contracts were identical in every compared
// dimension.
func (d ContractDiff) Empty() bool {
	return len(d.FieldChanges) == 0 &&
		len(d.AddedEvals) == 0 && len(d.RemovedEvals) == 0 &&
		len(d.AddedRules) == 0 && len(d.RemovedRules) == 0 &&
		len(d.RuleChanges) == 0
}

// Contracts compares two contracts: scalar fields, the required-eval name
// sets, and, for evals present in both, the rule metric sets plus
// operator/baseline/threshold/maxDelta of commonly-named rules.
func Contracts(previous, current types.EvalContract) ContractDiff {
	d := ContractDiff{
		FieldChanges: []FieldChange{},
		AddedEvals:   []string{},
		RemovedEvals: []string{},
		AddedRules:   []RuleRef{},
		RemovedRules: []RuleRef{},
		RuleChanges:  []RuleChange{},
	}

	compareField(&d, "name", previous.Name, current.Name)
	compareField(&d, "environment", previous.Environment, current.Environment)
	compareField(&d, "description", previous.Description, current.Description)
	compareField(&d, "onViolation.action", violationAction(previous), violationAction(current))

	prevEvals := indexEvals(previous.RequiredEvals)
	curEvals := indexEvals(current.RequiredEvals)

	for _, re := range current.RequiredEvals {
		if _, ok := prevEvals[re.Name]; !ok {
			d.AddedEvals = append(d.AddedEvals, re.Name)
		}
	}
	for _, re := range previous.RequiredEvals {
		if _, ok := curEvals[re.Name]; !ok {
			d.RemovedEvals = append(d.RemovedEvals, re.Name)
		}
	}

	for _, re := range current.RequiredEvals {
		prev, ok := prevEvals[re.Name]
		if !ok {
			continue
		}
		diffRules(&d, re.Name, prev.Rules, re.Rules)
	}

	return d
}

func compareField(d *ContractDiff, field, prev, cur string) {
	if prev == cur {
		return
	}
	change := FieldChange{Field: field}
	if prev != "" {
		change.Previous = prev
	}
	if cur != "" {
		change.Current = cur
	}
	d.FieldChanges = append(d.FieldChanges, change)
}

func violationAction(c types.EvalContract) string {
	if c.OnViolation == nil {
		return ""
	}
	return string(c.OnViolation.Action)
}

func indexEvals(evals []types.RequiredEval) map[string]types.RequiredEval {
	byName := make(map[string]types.RequiredEval, len(evals))
	for _, re := range evals {
		byName[re.Name] = re
	}
	return byName
}

// indexRules maps rules by metric. With duplicate metrics the last rule
// wins, matching how the engine indexes results by name.
func indexRules(rules []types.ContractRule) map[string]types.ContractRule {
	byMetric := make(map[string]types.ContractRule, len(rules))
	for _, r := range rules {
		byMetric[r.Metric] = r
	}
	return byMetric
}

func diffRules(d *ContractDiff, eval string, previous, current []types.ContractRule) {
	prevRules := indexRules(previous)
	curRules := indexRules(current)

	for _, metric := range sortedKeys(curRules) {
		if _, ok := prevRules[metric]; !ok {
			d.AddedRules = append(d.AddedRules, RuleRef{Eval: eval, Metric: metric})
		}
	}
	for _, metric := range sortedKeys(prevRules) {
		if _, ok := curRules[metric]; !ok {
			d.RemovedRules = append(d.RemovedRules, RuleRef{Eval: eval, Metric: metric})
		}
	}

	for _, metric := range sortedKeys(curRules) {
		prev, ok := prevRules[metric]
		if !ok {
			continue
		}
		cur := curRules[metric]
		if prev.Operator != cur.Operator {
			d.RuleChanges = append(d.RuleChanges, RuleChange{
				Eval: eval, Metric: metric, Field: "operator",
				Previous: string(prev.Operator), Current: string(cur.Operator),
			})
		}
		if prev.Baseline != cur.Baseline {
			d.RuleChanges = append(d.RuleChanges, RuleChange{
				Eval: eval, Metric: metric, Field: "baseline",
				Previous: string(prev.Baseline), Current: string(cur.Baseline),
			})
		}
		if !floatPtrEqual(prev.Threshold, cur.Threshold) {
			d.RuleChanges = append(d.RuleChanges, RuleChange{
				Eval: eval, Metric: metric, Field: "threshold",
				Previous: floatPtrValue(prev.Threshold), Current: floatPtrValue(cur.Threshold),
			})
		}
		if !floatPtrEqual(prev.MaxDelta, cur.MaxDelta) {
			d.RuleChanges = append(d.RuleChanges, RuleChange{
				Eval: eval, Metric: metric, Field: "maxDelta",
				Previous: floatPtrValue(prev.MaxDelta), Current: floatPtrValue(cur.MaxDelta),
			})
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
