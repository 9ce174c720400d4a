package diff

import (
	"sort"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

type ChangeKind string

const (
	ChangeNew       ChangeKind = "new"
	ChangeImproved  ChangeKind = "improved"
	ChangeRegressed ChangeKind = "regressed"
)

// MetricChange classifies one metric across two result sets. Current is nil
// for metrics that disappeared; Metric is "*" when a whole eval suite
// disappeared.
type MetricChange struct {
	EvalName string            `json:"evalName"`
	Metric   string            `json:"metric"`
	Kind     ChangeKind        `json:"kind"`
	Previous types.MetricValue `json:"previous,omitempty"`
	Current  types.MetricValue `json:"current,omitempty"`
	Delta    *float64          `json:"delta,omitempty"`
}

// lowerIsBetterHints classifies metric direction by substring containment.
// Bare "rate" is deliberately absent: success_rate style names default to
// higher-is-better, while error_rate and fail_rate are caught by their
// prefixes. retry_count style names are knowingly misclassified; the
// heuristic is a best-effort default, not a contract.
var lowerIsBetterHints = []string{
	"error", "latency", "time", "cost", "loss", "miss", "fail",
	"hallucination", "toxicity", "bias",
}

func lowerIsBetter(metric string) bool {
	m := strings.ToLower(metric)
	for _, hint := range lowerIsBetterHints {
		if strings.Contains(m, hint) {
			return true
		}
	}
	return false
}

// Results classifies every metric present in either result set as new,
// improved, or regressed; unchanged metrics are skipped. Removed metrics
// register as regressed with a nil current value, and removed suites as a
// single regressed "*" entry. Suites are matched by eval name with
// last-write-wins on duplicates, mirroring the legacy engine's indexing.
func Results(previous, current []types.NormalizedEvalResult) []MetricChange {
	prevByName := indexResults(previous)
	curByName := indexResults(current)

	changes := []MetricChange{}
	seen := map[string]bool{}

	for _, res := range current {
		name := res.EvalName
		if seen[name] {
			continue
		}
		seen[name] = true

		cur := curByName[name]
		prev, hasPrev := prevByName[name]

		for _, metric := range metricUnion(cur, prev, hasPrev) {
			cv, inCur := cur.Metrics[metric]
			var pv types.MetricValue
			inPrev := false
			if hasPrev {
				pv, inPrev = prev.Metrics[metric]
			}

			switch {
			case inCur && !inPrev:
				changes = append(changes, MetricChange{
					EvalName: name, Metric: metric, Kind: ChangeNew, Current: cv,
				})
			case !inCur && inPrev:
				changes = append(changes, MetricChange{
					EvalName: name, Metric: metric, Kind: ChangeRegressed, Previous: pv,
				})
			default:
				if change, changed := classifyChange(name, metric, pv, cv); changed {
					changes = append(changes, change)
				}
			}
		}
	}

	removed := map[string]bool{}
	for _, res := range previous {
		name := res.EvalName
		if _, stillPresent := curByName[name]; stillPresent || removed[name] {
			continue
		}
		removed[name] = true
		changes = append(changes, MetricChange{
			EvalName: name, Metric: "*", Kind: ChangeRegressed,
		})
	}

	return changes
}

func indexResults(results []types.NormalizedEvalResult) map[string]types.NormalizedEvalResult {
	byName := make(map[string]types.NormalizedEvalResult, len(results))
	for _, res := range results {
		byName[res.EvalName] = res
	}
	return byName
}

func metricUnion(cur, prev types.NormalizedEvalResult, hasPrev bool) []string {
	union := map[string]bool{}
	for m := range cur.Metrics {
		union[m] = true
	}
	if hasPrev {
		for m := range prev.Metrics {
			union[m] = true
		}
	}
	metrics := make([]string, 0, len(union))
	for m := range union {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	return metrics
}

// classifyChange compares one metric present in both result sets. Unchanged
// values report no change; non-numeric changes classify as regressed since
// there is no direction to reason about.
func classifyChange(name, metric string, prev, cur types.MetricValue) (MetricChange, bool) {
	if types.Equal(prev, cur) {
		return MetricChange{}, false
	}

	change := MetricChange{
		EvalName: name, Metric: metric,
		Previous: prev, Current: cur,
		Kind: ChangeRegressed,
	}

	pf, prevNum := types.Number(prev)
	cf, curNum := types.Number(cur)
	if !prevNum || !curNum {
		return change, true
	}

	delta := cf - pf
	change.Delta = &delta
	improved := delta > 0
	if lowerIsBetter(metric) {
		improved = delta < 0
	}
	if improved {
		change.Kind = ChangeImproved
	}
	return change, true
}
