package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	iconCross   = "✖"
	iconWarning = "⚠"
	iconTick    = "✔"
	iconInfo    = "ℹ"
	iconPointer = "❯"
	iconCrab    = "🦀"

	singleIndent = "  "
	doubleIndent = "    "
)

// Theme holds the report styles for one writer.
type Theme struct {
	Critical lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style
	Dim      lipgloss.Style
	Bold     lipgloss.Style
	Crab     lipgloss.Style
}

// NewTheme builds styles bound to w. With color disabled every style
// renders plain text.
func NewTheme(w io.Writer, color bool) Theme {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	return Theme{
		Critical: r.NewStyle().Foreground(lipgloss.Color("9")),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Info:     r.NewStyle().Foreground(lipgloss.Color("14")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("10")),
		Dim:      r.NewStyle().Faint(true),
		Bold:     r.NewStyle().Bold(true),
		Crab:     r.NewStyle().Foreground(lipgloss.Color("#FF6B35")).Bold(true),
	}
}

func bullet(text string) string {
	return singleIndent + iconPointer + " " + text
}
