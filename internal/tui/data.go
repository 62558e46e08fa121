package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"
	"github.com/safecrab/safecrab/internal/output"
	"github.com/safecrab/safecrab/pkg/model"
)

type scanResultMsg struct {
	result model.Result
}

type scanErrMsg struct {
	err error
}

func (m MainModel) runScan() tea.Cmd {
	ctx, scanner := m.ctx, m.scanner
	return func() tea.Msg {
		res, err := scanner.Scan(ctx)
		if err != nil {
			return scanErrMsg{err: err}
		}
		return scanResultMsg{result: res}
	}
}

func (m *MainModel) applyResult(res model.Result) {
	slices.SortStableFunc(res.Findings, func(a, b model.Finding) int {
		return cmp.Compare(a.Severity.Rank(), b.Severity.Rank())
	})
	m.result = &res
	m.updateTables()
	m.findingsTable.SetCursor(0)
	m.servicesTable.SetCursor(0)
	m.updateDetails()
}

func matchesFilter(filter string, fields ...string) bool {
	if filter == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

func (m *MainModel) updateTables() {
	m.findings = nil
	m.services = nil
	if m.result == nil {
		m.findingsTable.SetRows(nil)
		m.servicesTable.SetRows(nil)
		return
	}
	filter := strings.ToLower(strings.TrimSpace(m.input.Value()))

	var frows []table.Row
	for _, f := range m.result.Findings {
		port, process := "-", "-"
		if f.Service != nil {
			port = strconv.Itoa(int(f.Service.Port))
			process = f.Service.Process
		}
		if !matchesFilter(filter, string(f.Severity), port, process, f.Title) {
			continue
		}
		m.findings = append(m.findings, f)
		frows = append(frows, table.Row{
			strings.ToUpper(string(f.Severity)),
			port,
			output.SanitizeTerminal(process),
			output.SanitizeTerminal(f.Title),
		})
	}
	m.findingsTable.SetRows(frows)

	var srows []table.Row
	for _, svc := range m.result.Services {
		port := strconv.Itoa(int(svc.Port))
		if !matchesFilter(filter, port, string(svc.Protocol), svc.Process, svc.BoundIP, strings.Join(svc.Interfaces, " ")) {
			continue
		}
		pid := "-"
		if svc.PID > 0 {
			pid = strconv.FormatUint(uint64(svc.PID), 10)
		}
		exposure := strings.Join(m.exposurePaths(svc), ", ")
		if exposure == "" {
			exposure = "-"
		}
		m.services = append(m.services, svc)
		srows = append(srows, table.Row{
			port,
			string(svc.Protocol),
			output.SanitizeTerminal(svc.Process),
			pid,
			output.SanitizeTerminal(svc.BoundIP),
			exposure,
		})
	}
	m.servicesTable.SetRows(srows)

	// keep cursor in range after filtering
	if c := m.findingsTable.Cursor(); c >= len(frows) && len(frows) > 0 {
		m.findingsTable.SetCursor(len(frows) - 1)
	}
	if c := m.servicesTable.Cursor(); c >= len(srows) && len(srows) > 0 {
		m.servicesTable.SetCursor(len(srows) - 1)
	}
}

func (m MainModel) exposurePaths(svc model.ListeningService) []string {
	if m.result == nil {
		return nil
	}
	for _, exp := range m.result.Exposures {
		if exp.Service.Port == svc.Port && exp.Service.Protocol == svc.Protocol &&
			exp.Service.BoundIP == svc.BoundIP && exp.Service.Process == svc.Process {
			paths := make([]string, 0, len(exp.Paths))
			for _, p := range exp.Paths {
				paths = append(paths, string(p))
			}
			return paths
		}
	}
	return nil
}

func (m *MainModel) updateDetails() {
	width := m.viewport.Width
	if width <= 0 {
		width = 40
	}

	var content string
	switch m.activeTab {
	case tabFindings:
		if i := m.findingsTable.Cursor(); i >= 0 && i < len(m.findings) {
			content = findingDetail(m.findings[i], width)
		}
	case tabServices:
		if i := m.servicesTable.Cursor(); i >= 0 && i < len(m.services) {
			content = m.serviceDetail(m.services[i], width)
		}
	}
	if content == "" {
		content = dimStyle.Render("Nothing selected")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func severityStyleFor(s model.Severity) string {
	label := strings.ToUpper(string(s))
	switch s {
	case model.SeverityCritical:
		return criticalStyle.Render(label)
	case model.SeverityWarning:
		return warningStyle.Render(label)
	default:
		return infoStyle.Render(label)
	}
}

func section(label, text string, width int) string {
	if text == "" {
		return ""
	}
	return labelStyle.Render(label) + "\n" + wrap.String(output.SanitizeTerminal(text), width) + "\n\n"
}

func findingDetail(f model.Finding, width int) string {
	var b strings.Builder
	b.WriteString(severityStyleFor(f.Severity) + "\n")
	b.WriteString(wrap.String(output.SanitizeTerminal(f.Title), width) + "\n\n")
	if f.Service != nil {
		svc := fmt.Sprintf("%s/%d %s (pid %d)", f.Service.Protocol, f.Service.Port, f.Service.Process, f.Service.PID)
		b.WriteString(section("Service", svc, width))
	}
	b.WriteString(section("Details", f.Description, width))
	b.WriteString(section("Why flagged", f.WhyFlagged, width))
	b.WriteString(section("Confidence", f.Confidence, width))
	b.WriteString(section("Context", f.ContextNotes, width))
	b.WriteString(section("Recommendation", f.Recommendation, width))
	return strings.TrimRight(b.String(), "\n")
}

func (m MainModel) serviceDetail(svc model.ListeningService, width int) string {
	var b strings.Builder
	b.WriteString(section("Process", fmt.Sprintf("%s (pid %d)", svc.Process, svc.PID), width))
	b.WriteString(section("Listening", fmt.Sprintf("%s %s:%d", svc.Protocol, svc.BoundIP, svc.Port), width))
	b.WriteString(section("Interfaces", strings.Join(svc.Interfaces, ", "), width))
	b.WriteString(section("Exposure", strings.Join(m.exposurePaths(svc), ", "), width))

	var related []string
	if m.result != nil {
		for _, f := range m.result.Findings {
			if f.Service != nil && f.Service.Port == svc.Port && f.Service.Protocol == svc.Protocol {
				related = append(related, strings.ToUpper(string(f.Severity))+": "+f.Title)
			}
		}
	}
	b.WriteString(section("Findings", strings.Join(related, "\n"), width))
	return strings.TrimRight(b.String(), "\n")
}
