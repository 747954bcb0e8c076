package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkoosis/hellobench/pkg/pattern"
)

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, one fact per line, input order preserved.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.ResultTable:
			l.renderResultTable(&sb, v)
		case *pattern.Leaderboard:
			l.renderLeaderboard(&sb, v)
		case *pattern.Comparison:
			l.renderComparison(&sb, v)
		case *pattern.Sparkline:
			l.renderSparkline(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	parts := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		parts = append(parts, strings.ToLower(m.Label)+"="+m.Value)
	}
	sb.WriteString("SCOPE: " + s.Label)
	if len(parts) > 0 {
		sb.WriteString(", " + strings.Join(parts, ", "))
	}
	sb.WriteString("\n")
}

func (l *LLM) renderResultTable(sb *strings.Builder, t *pattern.ResultTable) {
	if len(t.Results) == 0 {
		return
	}
	sb.WriteString("\n## " + t.Label + "\n")
	for _, item := range t.Results {
		fmt.Fprintf(sb, "  %s %s time=%s success=%s", llmStatus(item.Status), item.Name, item.Time, item.SuccessRate)
		if item.Memory != "" {
			sb.WriteString(" mem=" + strings.ReplaceAll(item.Memory, " ", ""))
		}
		sb.WriteString("\n")
		if item.Details != "" {
			lines := strings.Split(item.Details, "\n")
			for _, line := range lines[:min(len(lines), 3)] {
				sb.WriteString("    " + line + "\n")
			}
			if len(lines) > 3 {
				fmt.Fprintf(sb, "    ... (%d more lines)\n", len(lines)-3)
			}
		}
	}
}

func (l *LLM) renderLeaderboard(sb *strings.Builder, b *pattern.Leaderboard) {
	if len(b.Items) == 0 {
		return
	}
	sb.WriteString("\n## " + b.Label + "\n")
	for _, item := range b.Items {
		fmt.Fprintf(sb, "  %d. %s %s\n", item.Rank, item.Name, item.Metric)
	}
}

func (l *LLM) renderComparison(sb *strings.Builder, c *pattern.Comparison) {
	if len(c.Changes) == 0 {
		return
	}
	sb.WriteString("\n## " + c.Label + "\n")
	for _, item := range c.Changes {
		fmt.Fprintf(sb, "  %s: %s -> %s (%+.1f%%", item.Name, item.Before, item.After, item.ChangePct)
		if item.Speedup > 0 {
			fmt.Fprintf(sb, ", %.2fx", item.Speedup)
		}
		sb.WriteString(")\n")
	}
}

func (l *LLM) renderSparkline(sb *strings.Builder, s *pattern.Sparkline) {
	if len(s.Values) == 0 {
		return
	}
	labelled := len(s.Points) == len(s.Values)
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = strconv.FormatFloat(v, 'g', 4, 64)
		if labelled {
			vals[i] = s.Points[i] + "=" + vals[i]
		}
	}
	fmt.Fprintf(sb, "\n%s: %s %s\n", s.Label, strings.Join(vals, " "), s.Unit)
}

func llmStatus(status string) string {
	switch status {
	case pattern.StatusSuccess:
		return "OK"
	case pattern.StatusTimeout:
		return "TIMEOUT"
	case pattern.StatusFailed:
		return "FAIL"
	default:
		return "ERR"
	}
}
