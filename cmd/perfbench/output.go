package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/dkoosis/hellobench/pkg/render"
)

// resolveFormat maps "auto" to terminal for a TTY and llm otherwise.
func resolveFormat(format string, w io.Writer) (string, error) {
	switch format {
	case "auto":
		if isTTYWriter(w) {
			return render.FormatTerminal, nil
		}
		return render.FormatLLM, nil
	case render.FormatTerminal, render.FormatLLM, render.FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected auto, terminal, llm, json)", format)
	}
}

func newRenderer(out *outputFlags, noColor bool, w io.Writer) (render.Renderer, error) {
	mode, err := resolveFormat(out.format, w)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(render.ThemeNames, out.theme) {
		return nil, fmt.Errorf("unknown theme %q (expected %s)", out.theme, strings.Join(render.ThemeNames, ", "))
	}
	return render.ByFormat(mode, render.ResolveTheme(out.theme, noColor), termWidth(w)), nil
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width of w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

// renderMarkdown formats the Markdown report for the terminal.
func renderMarkdown(md string, width int, noColor bool) (string, error) {
	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
