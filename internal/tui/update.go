package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case scanResultMsg:
		m.scanning = false
		m.statusMsg = ""
		m.applyResult(msg.result)
		return m, nil

	case scanErrMsg:
		m.scanning = false
		m.statusMsg = "Scan failed: " + msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = "" // clear any transient error on interaction
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		if m.input.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.input.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			m.updateTables()
			m.findingsTable.SetCursor(0)
			m.servicesTable.SetCursor(0)
			m.updateDetails()
			return m, inputCmd
		}

		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.input.Focus()
			return m, textinput.Blink
		case "1":
			m.setTab(tabFindings)
			return m, nil
		case "2":
			m.setTab(tabServices)
			return m, nil
		case "tab":
			if m.activeTab == tabFindings {
				m.setTab(tabServices)
			} else {
				m.setTab(tabFindings)
			}
			return m, nil
		case "r":
			if m.scanning {
				return m, nil
			}
			m.scanning = true
			return m, m.runScan()
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.activeTab == tabFindings {
			prev := m.findingsTable.Cursor()
			m.findingsTable, cmd = m.findingsTable.Update(msg)
			if m.findingsTable.Cursor() != prev {
				m.updateDetails()
			}
		} else {
			prev := m.servicesTable.Cursor()
			m.servicesTable, cmd = m.servicesTable.Update(msg)
			if m.servicesTable.Cursor() != prev {
				m.updateDetails()
			}
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		availableWidth := msg.Width - 6
		if availableWidth < 0 {
			availableWidth = 0
		}

		listHeight := msg.Height - 11
		if listHeight < 5 {
			listHeight = 5
		}

		listPaneWidth := int(float64(availableWidth) * 0.7)
		if listPaneWidth < 10 {
			listPaneWidth = 10
		}

		titleWidth := listPaneWidth - 4 - 32 - 8 // Severity(10)+Port(6)+Process(16) plus cell padding
		if titleWidth < 10 {
			titleWidth = 10
		}
		cols := m.findingsTable.Columns()
		cols[len(cols)-1].Width = titleWidth
		m.findingsTable.SetColumns(cols)

		exposureWidth := listPaneWidth - 4 - 54 - 12 // Port(6)+Proto(6)+Process(16)+PID(8)+Bound(18) plus cell padding
		if exposureWidth < 10 {
			exposureWidth = 10
		}
		cols = m.servicesTable.Columns()
		cols[len(cols)-1].Width = exposureWidth
		m.servicesTable.SetColumns(cols)

		m.findingsTable.SetHeight(listHeight)
		m.servicesTable.SetHeight(listHeight)

		m.viewport.Width = availableWidth - listPaneWidth - 4
		if m.viewport.Width < 10 {
			m.viewport.Width = 10
		}
		m.viewport.Height = listHeight - 2
		m.input.Width = availableWidth - 4
		m.updateDetails()
		return m, nil
	}

	return m, nil
}

func (m *MainModel) setTab(t tab) {
	if m.activeTab == t {
		return
	}
	m.activeTab = t
	if t == tabFindings {
		m.findingsTable.Focus()
		m.servicesTable.Blur()
	} else {
		m.servicesTable.Focus()
		m.findingsTable.Blur()
	}
	m.updateDetails()
}
