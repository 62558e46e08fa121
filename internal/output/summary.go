package output

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

const maxTopActions = 3

type Stats struct {
	TotalServices     int  `json:"totalServices"`
	PubliclyReachable int  `json:"publiclyReachable"`
	CriticalFindings  int  `json:"criticalFindings"`
	WarningFindings   int  `json:"warningFindings"`
	IsRoot            bool `json:"isRoot"`
}

// CalculateStats counts services and findings. A port is publicly
// reachable when any non-info finding references it.
func CalculateStats(res model.Result) Stats {
	stats := Stats{
		TotalServices: len(res.Services),
		IsRoot:        res.IsRoot,
	}

	ports := make(map[uint16]bool)
	for _, f := range res.Findings {
		switch f.Severity {
		case model.SeverityCritical:
			stats.CriticalFindings++
		case model.SeverityWarning:
			stats.WarningFindings++
		}
		if f.Service != nil && f.Severity != model.SeverityInfo {
			ports[f.Service.Port] = true
		}
	}
	stats.PubliclyReachable = len(ports)
	return stats
}

// TopActions returns the first sentence of up to three distinct
// recommendations from non-info findings, in finding order.
func TopActions(findings []model.Finding) []string {
	actions := []string{}
	seen := make(map[string]bool)

	for _, f := range findings {
		if f.Severity == model.SeverityInfo {
			continue
		}
		short, _ := splitRecommendation(f.Recommendation)
		if short == "" || seen[short] {
			continue
		}
		seen[short] = true
		actions = append(actions, short)
		if len(actions) == maxTopActions {
			break
		}
	}
	return actions
}

var firstSentence = regexp.MustCompile(`^.+?[.!?](?:\s|$)`)

// splitRecommendation returns the first sentence and the remainder, with
// whitespace collapsed.
func splitRecommendation(rec string) (short, detail string) {
	normalized := strings.Join(strings.Fields(rec), " ")
	if normalized == "" {
		return "", ""
	}

	m := firstSentence.FindString(normalized)
	if m == "" {
		return normalized, ""
	}
	short = strings.TrimSpace(m)
	detail = strings.TrimSpace(normalized[len(short):])
	return short, detail
}

// EnvironmentNotes returns the notes shown after the findings: a root
// warning when running unprivileged, followed by collector notes.
func EnvironmentNotes(res model.Result) []string {
	notes := []string{}
	if !res.IsRoot {
		notes = append(notes,
			iconWarning+" Running without root may hide some services and can show incomplete firewall or process info.",
			"For full visibility, re-run with sudo.",
			"If sudo cannot find safecrab, pass the full path: sudo \"$(command -v safecrab)\"",
		)
	}
	return append(notes, res.Notes...)
}

func (t Theme) renderSummary(stats Stats) string {
	var lines []string

	lines = append(lines, iconCrab+" "+t.Crab.Render("Safecrab Security Scan"), "")

	if !stats.IsRoot {
		lines = append(lines,
			t.Warning.Render(iconWarning+" Running without root may hide some services and can show incorrect firewall or process info."),
			t.Dim.Render("   For full visibility, run Safecrab with sudo."),
			"",
		)
	}

	lines = append(lines,
		t.Bold.Render("Summary:"),
		bullet(fmt.Sprintf("%d services detected", stats.TotalServices)),
		bullet(fmt.Sprintf("%d publicly reachable", stats.PubliclyReachable)),
		bullet(fmt.Sprintf("%d critical issues", stats.CriticalFindings)),
	)
	if stats.WarningFindings > 0 {
		lines = append(lines, bullet(fmt.Sprintf("%d warnings", stats.WarningFindings)))
	}

	return strings.Join(lines, "\n")
}

func (t Theme) renderTopActions(actions []string) string {
	lines := []string{"", t.Bold.Render("Top actions:")}
	if len(actions) == 0 {
		return strings.Join(append(lines, bullet("No immediate action required.")), "\n")
	}
	for _, a := range actions {
		lines = append(lines, bullet(SanitizeTerminal(a)))
	}
	return strings.Join(lines, "\n")
}

func (t Theme) renderEnvironmentNotes(notes []string) string {
	lines := []string{"", t.Warning.Bold(true).Render("Environment notes")}
	for _, n := range notes {
		lines = append(lines, t.Dim.Render(singleIndent+SanitizeTerminal(n)))
	}
	return strings.Join(lines, "\n")
}
