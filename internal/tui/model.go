// Package tui is the interactive scan browser.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/safecrab/safecrab/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#FF6B35")). // Crab orange
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffdf87")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd7ff"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#af87ff")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

// Scanner runs one scan. *pipeline.Scanner satisfies it.
type Scanner interface {
	Scan(ctx context.Context) (model.Result, error)
}

type tab int

const (
	tabFindings tab = iota
	tabServices
)

type MainModel struct {
	ctx     context.Context
	scanner Scanner

	findingsTable table.Model
	servicesTable table.Model
	input         textinput.Model
	viewport      viewport.Model

	result   *model.Result
	findings []model.Finding          // filtered
	services []model.ListeningService // filtered

	activeTab tab
	scanning  bool
	statusMsg string // transient status/error message shown in status line
	width     int
	height    int
	quitting  bool
	version   string
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)
	return t
}

func InitialModel(ctx context.Context, scanner Scanner, version string) MainModel {
	ft := newTable([]table.Column{
		{Title: "Severity", Width: 10},
		{Title: "Port", Width: 6},
		{Title: "Process", Width: 16},
		{Title: "Finding", Width: 40},
	})

	st := newTable([]table.Column{
		{Title: "Port", Width: 6},
		{Title: "Proto", Width: 6},
		{Title: "Process", Width: 16},
		{Title: "PID", Width: 8},
		{Title: "Bound", Width: 18},
		{Title: "Exposure", Width: 24},
	})
	st.Blur()

	ti := textinput.New()
	ti.Placeholder = "Filter by port, process, title..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return MainModel{
		ctx:           ctx,
		scanner:       scanner,
		findingsTable: ft,
		servicesTable: st,
		input:         ti,
		viewport:      vp,
		activeTab:     tabFindings,
		scanning:      true,
		version:       version,
	}
}

func Start(ctx context.Context, scanner Scanner, version string) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(ctx, scanner, version), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.runScan(),
	)
}
