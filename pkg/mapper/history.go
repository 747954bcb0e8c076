package mapper

import (
	"sort"
	"strconv"

	"github.com/dkoosis/hellobench/internal/history"
	"github.com/dkoosis/hellobench/pkg/pattern"
)

// HistoryLabel heads the summary of recorded history.
const HistoryLabel = "BENCHMARK HISTORY"

// FromHistory converts recorded entries, newest first, into a summary, a
// result table and one execution-time trend per benchmark with at least
// two successful entries.
func FromHistory(entries []history.Entry) []pattern.Pattern {
	runs := make(map[string]struct{})
	for _, e := range entries {
		runs[e.RunID] = struct{}{}
	}
	patterns := []pattern.Pattern{&pattern.Summary{
		Label: HistoryLabel,
		Kind:  pattern.SummaryKindHistory,
		Metrics: []pattern.SummaryItem{
			{Label: "Entries", Value: strconv.Itoa(len(entries)), Kind: kindInfo},
			{Label: "Runs", Value: strconv.Itoa(len(runs)), Kind: kindInfo},
		},
	}}
	if len(entries) == 0 {
		return patterns
	}

	table := &pattern.ResultTable{Label: "Recent results"}
	trends := make(map[string][]float64)
	for _, e := range entries {
		details := "run " + shortID(e.RunID) + " at " + e.RecordedAt.Format("2006-01-02 15:04:05")
		table.Results = append(table.Results, resultItem(e.Result, details))
		if e.Result.ExecutionTime > 0 {
			// Entries arrive newest first; trends read oldest first.
			trends[e.Result.Name] = append([]float64{e.Result.ExecutionTime * 1000}, trends[e.Result.Name]...)
		}
	}
	patterns = append(patterns, table)

	names := make([]string, 0, len(trends))
	for name, vals := range trends {
		if len(vals) >= 2 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		patterns = append(patterns, &pattern.Sparkline{Label: name, Values: trends[name], Unit: "ms"})
	}
	return patterns
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
