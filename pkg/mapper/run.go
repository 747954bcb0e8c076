// Package mapper converts benchmark results into console patterns.
package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dkoosis/hellobench/internal/metrics"
	"github.com/dkoosis/hellobench/pkg/bench"
	"github.com/dkoosis/hellobench/pkg/pattern"
)

// Summary labels.
const (
	RunLabel    = "PERFORMANCE TEST SUMMARY"
	ScriptLabel = "SCRIPT BENCHMARK"
)

const (
	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindInfo    = "info"

	leaderboardSize = 10
)

// FromRun converts a benchmark run into patterns: a summary, the results
// ordered by execution time, the comparison against the baseline, any
// regressions, a throughput leaderboard and a scalability sparkline.
func FromRun(set *bench.ResultSet, scalability []bench.Result, regressions []metrics.Regression) []pattern.Pattern {
	results := set.Results()
	patterns := []pattern.Pattern{runSummary(results, regressions)}

	if len(results) > 0 {
		patterns = append(patterns, resultTable("Results", bench.SortByExecutionTime(results)))
	}
	if cmp := baselineComparison(set); cmp != nil {
		patterns = append(patterns, cmp)
	}
	if len(regressions) > 0 {
		patterns = append(patterns, regressionComparison(regressions))
	}
	if lb := throughputLeaderboard(results); lb != nil {
		patterns = append(patterns, lb)
	}
	if len(scalability) > 0 {
		patterns = append(patterns, scalabilitySparkline(scalability))
	}
	return patterns
}

func runSummary(results []bench.Result, regressions []metrics.Regression) *pattern.Summary {
	var ok, failed, timeouts int
	for _, r := range results {
		switch r.Outcome {
		case bench.OutcomeSuccess:
			ok++
		case bench.OutcomeTimeout:
			timeouts++
		default:
			failed++
		}
	}

	items := []pattern.SummaryItem{
		{Label: "Tests", Value: strconv.Itoa(len(results)), Kind: kindInfo},
		{Label: "Succeeded", Value: strconv.Itoa(ok), Kind: kindSuccess},
		{Label: "Failures", Value: strconv.Itoa(failed), Kind: countKind(failed, kindError)},
		{Label: "Timeouts", Value: strconv.Itoa(timeouts), Kind: countKind(timeouts, kindWarning)},
		{Label: "Regressions", Value: strconv.Itoa(len(regressions)), Kind: countKind(len(regressions), kindWarning)},
	}
	if len(results) > 0 {
		fastest := bench.SortByExecutionTime(results)[0]
		items = append(items, pattern.SummaryItem{
			Label: "Fastest",
			Value: fmt.Sprintf("%s (%.6fs)", fastest.Name, fastest.ExecutionTime),
			Kind:  kindInfo,
		})
	}
	return &pattern.Summary{Label: RunLabel, Kind: pattern.SummaryKindRun, Metrics: items}
}

// FromScript converts a single external program run into patterns.
func FromScript(res bench.Result) []pattern.Pattern {
	kind := kindSuccess
	if res.Outcome != bench.OutcomeSuccess {
		kind = kindError
	}
	return []pattern.Pattern{
		&pattern.Summary{
			Label: ScriptLabel,
			Kind:  pattern.SummaryKindScript,
			Metrics: []pattern.SummaryItem{
				{Label: "Outcome", Value: string(res.Outcome), Kind: kind},
				{Label: "Time", Value: formatSeconds(res.ExecutionTime), Kind: kindInfo},
			},
		},
		resultTable("Result", []bench.Result{res}),
	}
}

func countKind(n int, nonZero string) string {
	if n > 0 {
		return nonZero
	}
	return kindSuccess
}

func resultTable(label string, results []bench.Result) *pattern.ResultTable {
	items := make([]pattern.ResultTableItem, 0, len(results))
	for _, r := range results {
		items = append(items, resultItem(r, ""))
	}
	return &pattern.ResultTable{Label: label, Results: items}
}

func resultItem(r bench.Result, details string) pattern.ResultTableItem {
	item := pattern.ResultTableItem{
		Name:        r.Name,
		Status:      statusOf(r.Outcome),
		Time:        formatSeconds(r.ExecutionTime),
		SuccessRate: fmt.Sprintf("%.1f%%", r.SuccessRate*100),
		Details:     details,
	}
	if r.Memory.Measured {
		item.Memory = r.Memory.String()
	}
	if item.Details == "" && r.ErrorCount > 0 {
		item.Details = fmt.Sprintf("%d of %d iterations failed", r.ErrorCount, r.Iterations)
	}
	return item
}

func statusOf(o bench.Outcome) string {
	switch o {
	case bench.OutcomeSuccess:
		return pattern.StatusSuccess
	case bench.OutcomeFailed:
		return pattern.StatusFailed
	case bench.OutcomeTimeout:
		return pattern.StatusTimeout
	default:
		return pattern.StatusError
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.6fs", s)
}

// baselineComparison compares every non-baseline result with the baseline.
// Change is the percent change in execution time, so negative is faster.
func baselineComparison(set *bench.ResultSet) *pattern.Comparison {
	base, idx, ok := set.Baseline(bench.BaselineLabel)
	if !ok || set.Len() < 2 || base.ExecutionTime <= 0 {
		return nil
	}
	var changes []pattern.ComparisonItem
	for i, r := range set.Results() {
		if i == idx || r.ExecutionTime <= 0 {
			continue
		}
		changes = append(changes, pattern.ComparisonItem{
			Name:      r.Name,
			Before:    formatSeconds(base.ExecutionTime),
			After:     formatSeconds(r.ExecutionTime),
			ChangePct: (r.ExecutionTime - base.ExecutionTime) / base.ExecutionTime * 100,
			Speedup:   bench.Speedup(base, r),
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &pattern.Comparison{Label: "vs Original", Changes: changes}
}

func regressionComparison(regressions []metrics.Regression) *pattern.Comparison {
	changes := make([]pattern.ComparisonItem, 0, len(regressions))
	for _, r := range regressions {
		changes = append(changes, pattern.ComparisonItem{
			Name:      r.Group,
			Before:    formatSeconds(r.From),
			After:     formatSeconds(r.To),
			ChangePct: (r.Ratio() - 1) * 100,
		})
	}
	return &pattern.Comparison{Label: "Regressions", Changes: changes}
}

// throughputLeaderboard ranks successful results by operations per second.
func throughputLeaderboard(results []bench.Result) *pattern.Leaderboard {
	var ranked []bench.Result
	for _, r := range results {
		if r.Outcome == bench.OutcomeSuccess && r.OperationsPerSecond > 0 {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return nil
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OperationsPerSecond > ranked[j].OperationsPerSecond
	})

	lb := &pattern.Leaderboard{
		Label:      "Throughput",
		TotalCount: len(ranked),
		ShowRank:   true,
	}
	for i, r := range ranked[:min(len(ranked), leaderboardSize)] {
		lb.Items = append(lb.Items, pattern.LeaderboardItem{
			Name:   r.Name,
			Metric: fmt.Sprintf("%.2f ops/s", r.OperationsPerSecond),
			Value:  r.OperationsPerSecond,
			Rank:   i + 1,
		})
	}
	return lb
}

// scalabilitySparkline plots execution time per input size. Points carry
// the size suffix RunScalabilityTest puts in each name.
func scalabilitySparkline(results []bench.Result) *pattern.Sparkline {
	s := &pattern.Sparkline{Label: "Scalability", Unit: "ms"}
	for _, r := range results {
		s.Values = append(s.Values, r.ExecutionTime*1000)
		point := r.Name
		if i := strings.LastIndex(point, "size="); i >= 0 {
			point = strings.TrimSuffix(point[i+len("size="):], ")")
		}
		s.Points = append(s.Points, point)
	}
	return s
}
