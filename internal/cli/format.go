package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorRed    = lipgloss.Color("#fb4934")

	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer renders command output, styled only when color is on.
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// table renders an aligned table with a separator under the header.
func (p printer) table(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	line := func(cells []string, render func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(render(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	line(headers, func(s string) string { return p.style(styleHeader, s) })
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	line(seps, func(s string) string { return p.style(styleDim, s) })
	for _, row := range rows {
		line(row, func(s string) string { return s })
	}
	return b.String()
}
