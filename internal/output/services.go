package output

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/safecrab/safecrab/pkg/model"
)

// renderServices lists every listening service with its exposure paths.
func (t Theme) renderServices(res model.Result) string {
	header := t.Bold.Render("Listening services:")
	if len(res.Services) == 0 {
		return "\n" + header + "\n" + bullet("None detected.")
	}

	paths := make(map[string][]string, len(res.Exposures))
	for _, exp := range res.Exposures {
		var names []string
		for _, p := range exp.Paths {
			names = append(names, string(p))
		}
		paths[serviceKey(exp.Service)] = names
	}

	rows := make([][]string, 0, len(res.Services))
	for _, svc := range res.Services {
		pid := "-"
		if svc.PID > 0 {
			pid = strconv.FormatUint(uint64(svc.PID), 10)
		}
		exposure := strings.Join(paths[serviceKey(svc)], ", ")
		if exposure == "" {
			exposure = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(int(svc.Port)),
			string(svc.Protocol),
			SanitizeTerminal(svc.Process),
			pid,
			SanitizeTerminal(svc.BoundIP),
			SanitizeTerminal(strings.Join(svc.Interfaces, ",")),
			exposure,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.Dim).
		Headers("PORT", "PROTO", "PROCESS", "PID", "BOUND", "INTERFACES", "EXPOSURE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	return "\n" + header + "\n" + tbl.String()
}

func serviceKey(s model.ListeningService) string {
	return string(s.Protocol) + "|" + s.BoundIP + "|" + strconv.Itoa(int(s.Port)) + "|" + s.Process
}
