package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/hellobench/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.ResultTable:
		return t.renderResultTable(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	default:
		return ""
	}
}

func (t *Terminal) rule() string {
	return t.theme.Muted.Render(strings.Repeat("=", min(t.width, 50)))
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.rule() + "\n")
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
		sb.WriteString(t.rule() + "\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, 50)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Primary.Render(padRight(truncate(item.Name, maxName), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderResultTable(rt *pattern.ResultTable) string {
	if len(rt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if rt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(rt.Label))
		sb.WriteString("\n")
	}

	maxName, maxTime, maxRate := 0, 0, 0
	for _, r := range rt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
		maxTime = max(maxTime, runewidth.StringWidth(r.Time))
		maxRate = max(maxRate, runewidth.StringWidth(r.SuccessRate))
	}
	maxName = min(maxName, 60)

	for _, r := range rt.Results {
		sb.WriteString("  ")
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString(style.Render(icon + " "))
		sb.WriteString(padRight(truncate(r.Name, maxName), maxName))
		sb.WriteString(t.theme.Muted.Render(" | "))
		sb.WriteString(padLeft(r.Time, maxTime))
		sb.WriteString(t.theme.Muted.Render(" | "))
		sb.WriteString(style.Render(padLeft(r.SuccessRate, maxRate)))
		if r.Memory != "" {
			sb.WriteString(t.theme.Muted.Render(" | " + r.Memory))
		}
		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}
	sb.WriteString(t.theme.Success.Render(spark(s.Values)))

	first, latest := s.Values[0], s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %.3f → %.3f%s", first, latest, s.Unit)))
	if len(s.Points) == len(s.Values) {
		sb.WriteString(t.theme.Muted.Render(" (" + strings.Join(s.Points, ", ") + ")"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// spark maps values onto block characters, scaled between their minimum
// and maximum.
func spark(values []float64) string {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var out strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * 7)
		out.WriteRune(sparkBlocks[max(0, min(idx, 7))])
	}
	return out.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Bold.Render(c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Name + ": ")
		sb.WriteString(t.theme.Muted.Render(item.Before + " → " + item.After))
		sb.WriteString(" ")

		var arrow string
		var style lipgloss.Style
		switch {
		case item.ChangePct > 0:
			arrow, style = "↑", t.theme.Warning
		case item.ChangePct < 0:
			arrow, style = "↓", t.theme.Success
		default:
			arrow, style = "=", t.theme.Muted
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s %.1f%%", arrow, math.Abs(item.ChangePct))))
		if item.Speedup > 0 {
			sb.WriteString(t.theme.Bold.Render(fmt.Sprintf("  %.2fx", item.Speedup)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusSuccess:
		return t.theme.Icons.Pass, t.theme.Success
	case pattern.StatusFailed, pattern.StatusError:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.StatusTimeout:
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

// truncate shortens s to width display cells, marking the cut with "...".
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
