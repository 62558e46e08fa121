package output

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/safecrab/safecrab/pkg/model"
)

func (t Theme) renderFindings(findings []model.Finding, opts Options) string {
	if len(findings) == 0 {
		if opts.Quiet {
			return t.Success.Render(iconTick + " No actionable findings.")
		}
		return "\n" + t.Success.Render(iconTick+" No security issues detected.")
	}

	var critical, warnings, info []model.Finding
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityCritical:
			critical = append(critical, f)
		case model.SeverityWarning:
			warnings = append(warnings, f)
		default:
			info = append(info, f)
		}
	}

	var lines []string
	section := func(header string, style lipgloss.Style, group []model.Finding) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, style.Bold(true).Render(header))
		for _, f := range group {
			lines = append(lines, t.renderFinding(f, opts))
		}
	}

	if len(critical) > 0 {
		section("CRITICAL", t.Critical, critical)
	}
	if len(warnings) > 0 {
		section("WARNINGS", t.Warning, warnings)
	}

	if len(info) > 0 && !opts.Quiet {
		if opts.Verbose {
			section("INFO", t.Info, info)
		} else {
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines,
				t.Info.Bold(true).Render("INFO"),
				t.Dim.Render(singleIndent+strconv.Itoa(len(info))+" informational notes hidden."),
				t.Dim.Render(singleIndent+"Re-run with --verbose to see full details."),
			)
			for _, f := range info {
				lines = append(lines, bullet(SanitizeTerminal(f.Title)))
			}
		}
	}

	return strings.Join(lines, "\n")
}

func (t Theme) renderFinding(f model.Finding, opts Options) string {
	style := t.severityStyle(f.Severity)
	lines := []string{style.Render(findingIcon(f) + " " + SanitizeTerminal(f.Title))}

	lines = append(lines, block(f.Description, singleIndent, opts.Width))

	short, detail := splitRecommendation(f.Recommendation)
	if short != "" {
		lines = append(lines, "", t.Dim.Render(singleIndent+"Action:"), block(short, doubleIndent, opts.Width))
	}

	if opts.Verbose {
		if f.WhyFlagged != "" {
			lines = append(lines, "", t.Dim.Render(singleIndent+"Why flagged:"), block(f.WhyFlagged, doubleIndent, opts.Width))
		}
		if f.Confidence != "" {
			lines = append(lines, t.Dim.Render(singleIndent+"Confidence: "+SanitizeTerminal(f.Confidence)))
		}
		if f.ContextNotes != "" {
			lines = append(lines, t.Dim.Render(singleIndent+"Context: "+SanitizeTerminal(f.ContextNotes)))
		}
		if detail != "" {
			lines = append(lines, "", t.Dim.Render(singleIndent+"Details:"), block(detail, doubleIndent, opts.Width))
		}
	}

	return strings.Join(lines, "\n")
}

func (t Theme) severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityCritical:
		return t.Critical
	case model.SeverityWarning:
		return t.Warning
	default:
		return t.Info
	}
}

// findingIcon honours an explicit icon, else picks one by severity.
func findingIcon(f model.Finding) string {
	switch f.Icon {
	case model.IconWarning:
		return iconWarning
	case model.IconTick:
		return iconTick
	}
	switch f.Severity {
	case model.SeverityCritical:
		return iconCross
	case model.SeverityWarning:
		return iconWarning
	case model.SeverityInfo:
		return iconTick
	}
	return iconInfo
}

// block sanitizes text, wraps it to width (0 disables wrapping) and
// indents every line by prefix.
func block(text, prefix string, width int) string {
	text = SanitizeTerminal(text)
	if width > len(prefix) {
		text = wordwrap.String(text, width-len(prefix))
	}
	return indent.String(text, uint(len(prefix)))
}
