// Package output renders scan results as a terminal report or JSON.
package output

import (
	"io"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// DefaultWidth is the wrap width for finding text.
const DefaultWidth = 100

type Options struct {
	Verbose bool
	Quiet   bool
	Color   bool
	// Width wraps descriptions; 0 disables wrapping.
	Width int
}

// Mode names the report mode for the JSON output.
func (o Options) Mode() string {
	switch {
	case o.Quiet:
		return "quiet"
	case o.Verbose:
		return "verbose"
	default:
		return "default"
	}
}

// RenderText writes the human-readable report. Quiet prints only the
// actionable findings; verbose adds reasoning and the service table.
func RenderText(w io.Writer, res model.Result, opts Options) error {
	t := NewTheme(w, opts.Color)

	var parts []string
	if !opts.Quiet {
		parts = append(parts,
			t.renderSummary(CalculateStats(res)),
			t.renderTopActions(TopActions(res.Findings)),
		)
	}

	parts = append(parts, t.renderFindings(res.Findings, opts))

	if !opts.Quiet {
		if opts.Verbose {
			parts = append(parts, t.renderServices(res))
		}
		if notes := EnvironmentNotes(res); len(notes) > 0 {
			parts = append(parts, t.renderEnvironmentNotes(notes))
		}
		parts = append(parts, "", t.Dim.Render("No changes were made to your system."))
	}

	// styled output is sanitized field by field; plain output can be
	// sanitized wholesale
	out := w
	if !opts.Color {
		out = NewSafeTerminalWriter(w)
	}
	_, err := io.WriteString(out, "\n"+strings.Join(parts, "\n")+"\n\n")
	return err
}

// ExitCode is 1 when any finding is critical, else 0.
func ExitCode(findings []model.Finding) int {
	for _, f := range findings {
		if f.Severity == model.SeverityCritical {
			return 1
		}
	}
	return 0
}
