// Package render provides output renderers for hellobench's console patterns.
package render

import "github.com/dkoosis/hellobench/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// Formats accepted by ByFormat.
const (
	FormatTerminal = "terminal"
	FormatLLM      = "llm"
	FormatJSON     = "json"
)

// ByFormat returns the renderer for format, falling back to the terminal
// renderer with theme and width.
func ByFormat(format string, theme Theme, width int) Renderer {
	switch format {
	case FormatLLM:
		return NewLLM()
	case FormatJSON:
		return NewJSON()
	default:
		return NewTerminal(theme, width)
	}
}
