package pattern

// SummaryKind identifies what produced a summary, for renderer dispatch.
type SummaryKind string

const (
	SummaryKindRun     SummaryKind = "run"
	SummaryKindScript  SummaryKind = "script"
	SummaryKindHistory SummaryKind = "history"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g., "Tests run", "Timeouts"
	Value string // formatted value
	Kind  string // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
