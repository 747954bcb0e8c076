package pattern

// Leaderboard ranks benchmark results by a metric, best first.
type Leaderboard struct {
	Label      string
	Items      []LeaderboardItem
	TotalCount int // ranked results before truncation to len(Items)
	ShowRank   bool
}

// LeaderboardItem is a single ranked result.
type LeaderboardItem struct {
	Name   string
	Metric string  // formatted, e.g. "81234.50 ops/s"
	Value  float64 // the raw metric
	Rank   int
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }

// Comparison lists execution-time deltas against a reference, either the
// baseline implementation or the previous recorded run.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is one result measured against its reference.
// ChangePct is the percent change in execution time, so negative is faster.
// Speedup is reference/result, or 0 when not applicable.
type ComparisonItem struct {
	Name      string
	Before    string
	After     string
	ChangePct float64
	Speedup   float64
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }

// Sparkline is a word-sized trend of one benchmark, scaled between its own
// minimum and maximum. Points, when set, labels each value.
type Sparkline struct {
	Label  string
	Values []float64
	Points []string
	Unit   string // e.g., "ms"
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
