package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/safecrab/safecrab/pkg/model"
)

// SanitizationTerminalOnly records that JSON strings are escaped by the
// encoder rather than rewritten.
const SanitizationTerminalOnly = "terminal-only"

type JSONReport struct {
	Mode               string                   `json:"mode"`
	GeneratedAt        string                   `json:"generatedAt"`
	ExitCode           int                      `json:"exitCode"`
	Stats              Stats                    `json:"stats"`
	Services           []model.ListeningService `json:"services"`
	Findings           []model.Finding          `json:"findings"`
	TopActions         []string                 `json:"topActions"`
	EnvironmentNotes   []string                 `json:"environmentNotes"`
	OutputSanitization string                   `json:"outputSanitization"`
}

func BuildJSONReport(res model.Result, opts Options) JSONReport {
	services := res.Services
	if services == nil {
		services = []model.ListeningService{}
	}
	findings := res.Findings
	if findings == nil {
		findings = []model.Finding{}
	}

	return JSONReport{
		Mode:               opts.Mode(),
		GeneratedAt:        res.GeneratedAt.UTC().Format(time.RFC3339Nano),
		ExitCode:           ExitCode(res.Findings),
		Stats:              CalculateStats(res),
		Services:           services,
		Findings:           findings,
		TopActions:         TopActions(res.Findings),
		EnvironmentNotes:   EnvironmentNotes(res),
		OutputSanitization: SanitizationTerminalOnly,
	}
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ToJSON renders the report for res as indented JSON.
func ToJSON(res model.Result, opts Options) (string, error) {
	data, err := json.MarshalIndent(BuildJSONReport(res, opts), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
