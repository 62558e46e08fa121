package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/safecrab/safecrab/internal/output"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	status := "Mode: Navigation (Press / to filter)"
	switch {
	case m.statusMsg != "":
		status = errorStyle.Render(output.SanitizeTerminal(m.statusMsg))
	case m.scanning:
		status = "Scanning..."
	case m.input.Focused():
		status = "Mode: Filtering (Press Esc/Enter to stop)"
	case m.result != nil:
		stats := output.CalculateStats(*m.result)
		status = fmt.Sprintf("%s  %s  %d services, %d publicly reachable",
			criticalStyle.Render(fmt.Sprintf("%d critical", stats.CriticalFindings)),
			warningStyle.Render(fmt.Sprintf("%d warnings", stats.WarningFindings)),
			stats.TotalServices, stats.PubliclyReachable)
	}

	dimBorderColor := lipgloss.Color("#585858") // Dark Gray

	availableWidth := m.width - 6
	listPaneWidth := int(float64(availableWidth) * 0.7)
	if listPaneWidth < 10 {
		listPaneWidth = 10
	}

	list := m.findingsTable
	detailHeader := "Finding"
	total := len(m.findings)
	if m.activeTab == tabServices {
		list = m.servicesTable
		detailHeader = "Service"
		total = len(m.services)
	}

	if !m.viewport.AtTop() && !m.viewport.AtBottom() {
		detailHeader += " ↕"
	} else if !m.viewport.AtTop() {
		detailHeader += " ↑"
	} else if !m.viewport.AtBottom() {
		detailHeader += " ↓"
	}

	detailContainerStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(dimBorderColor).
		PaddingLeft(2).
		Height(list.Height())

	detailHeaderStyle := tableHeaderStyle.
		Width(m.viewport.Width).
		Foreground(lipgloss.Color("#bcbcbc")). // Light Gray
		BorderForeground(dimBorderColor)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listPaneWidth).Render(list.View()),
		detailContainerStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				detailHeaderStyle.Render(detailHeader),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.viewport.View()),
			),
		),
	)

	helpText := fmt.Sprintf("Total: %d | Tab/1/2: Switch | /: Filter | r: Rescan | PgUp/PgDn: Scroll detail | Esc/q: Quit", total)
	footerContent := helpText
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.version
		}
	}

	var findingsTab, servicesTab string
	if m.activeTab == tabFindings {
		findingsTab = activeTabStyle.Render("1. Findings")
		servicesTab = inactiveTabStyle.Render("2. Services")
	} else {
		findingsTab = inactiveTabStyle.Render("1. Findings")
		servicesTab = activeTabStyle.Render("2. Services")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("safecrab"),
		findingsTab,
		servicesTab,
	)

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			mainContent,
			lipgloss.NewStyle().Height(1).Render(""),
			footerStyle.Width(m.width-4).Render(footerContent),
		),
	)
}
