package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/safecrab/safecrab/pkg/model"
)

func sampleResult() model.Result {
	ssh := model.ListeningService{Port: 22, Protocol: model.ProtocolTCP, Process: "sshd", PID: 410, BoundIP: "0.0.0.0", Interfaces: []string{"lo", "eth0"}}
	ollama := model.ListeningService{Port: 11434, Protocol: model.ProtocolTCP, Process: "ollama", PID: 900, BoundIP: "0.0.0.0", Interfaces: []string{"lo", "eth0"}}
	pg := model.ListeningService{Port: 5432, Protocol: model.ProtocolTCP, Process: "postgres", PID: 950, BoundIP: "127.0.0.1", Interfaces: []string{"lo"}}

	return model.Result{
		Services: []model.ListeningService{ssh, ollama, pg},
		Exposures: []model.ServiceExposure{
			{Service: ssh, Paths: []model.ExposurePath{model.PathPublicInternet}},
			{Service: ollama, Paths: []model.ExposurePath{model.PathPublicInternet}},
			{Service: pg, Paths: []model.ExposurePath{model.PathLocalhostOnly}},
		},
		Findings: []model.Finding{
			{
				Severity:       model.SeverityCritical,
				Title:          "High-risk service publicly exposed",
				Description:    "Port 11434 (ollama) is publicly accessible.",
				Recommendation: "Bind to 127.0.0.1 immediately. Use a reverse proxy with authentication.",
				Service:        &ollama,
				WhyFlagged:     "Bound to 0.0.0.0.",
				Confidence:     "high",
			},
			{
				Severity:       model.SeverityWarning,
				Title:          "Service exposed to public internet",
				Description:    "Port 22 (sshd) is accessible from the public internet.",
				Recommendation: "Use key-based authentication only. Disable root login.",
				Service:        &ssh,
				ContextNotes:   "Typically used for SSH remote access.",
			},
			{
				Severity:       model.SeverityWarning,
				Title:          "No firewall detected",
				Description:    "UFW firewall is not active.",
				Recommendation: "Consider enabling UFW to control inbound traffic: sudo ufw enable",
				Icon:           model.IconWarning,
			},
			{
				Severity:    model.SeverityInfo,
				Title:       "Tailscale not installed",
				Description: "No Tailscale installation was found.",
			},
		},
		Notes:       []string{"Some listening processes could not be identified."},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCalculateStats(t *testing.T) {
	stats := CalculateStats(sampleResult())
	want := Stats{TotalServices: 3, PubliclyReachable: 2, CriticalFindings: 1, WarningFindings: 2}
	if stats != want {
		t.Errorf("CalculateStats = %+v, want %+v", stats, want)
	}
}

func TestTopActions(t *testing.T) {
	got := TopActions(sampleResult().Findings)
	want := []string{
		"Bind to 127.0.0.1 immediately.",
		"Use key-based authentication only.",
		"Consider enabling UFW to control inbound traffic: sudo ufw enable",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("TopActions = %q, want %q", got, want)
	}
}

func TestTopActionsDedupAndLimit(t *testing.T) {
	rec := "Bind to localhost. Then restart."
	var findings []model.Finding
	for i := 0; i < 5; i++ {
		findings = append(findings, model.Finding{Severity: model.SeverityWarning, Recommendation: rec})
	}
	findings = append(findings,
		model.Finding{Severity: model.SeverityInfo, Recommendation: "Info only."},
		model.Finding{Severity: model.SeverityWarning, Recommendation: "Second."},
		model.Finding{Severity: model.SeverityWarning, Recommendation: "Third."},
		model.Finding{Severity: model.SeverityWarning, Recommendation: "Fourth."},
	)

	got := TopActions(findings)
	if strings.Join(got, "|") != "Bind to localhost.|Second.|Third." {
		t.Errorf("TopActions = %q", got)
	}
	if got := TopActions(nil); got == nil || len(got) != 0 {
		t.Errorf("TopActions(nil) = %#v, want empty slice", got)
	}
}

func TestSplitRecommendation(t *testing.T) {
	tests := []struct {
		in, short, detail string
	}{
		{"", "", ""},
		{"One sentence.", "One sentence.", ""},
		{"First.  Second   part!", "First.", "Second part!"},
		{"No terminator here", "No terminator here", ""},
		{"Use 127.0.0.1 only. Then restart.", "Use 127.0.0.1 only.", "Then restart."},
	}
	for _, tt := range tests {
		short, detail := splitRecommendation(tt.in)
		if short != tt.short || detail != tt.detail {
			t.Errorf("splitRecommendation(%q) = %q, %q; want %q, %q", tt.in, short, detail, tt.short, tt.detail)
		}
	}
}

func TestExitCode(t *testing.T) {
	res := sampleResult()
	if got := ExitCode(res.Findings); got != 1 {
		t.Errorf("ExitCode = %d, want 1", got)
	}
	if got := ExitCode(res.Findings[1:]); got != 0 {
		t.Errorf("ExitCode without critical = %d, want 0", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestRenderTextDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleResult(), Options{}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Safecrab Security Scan",
		"Running without root",
		"Summary:",
		"3 services detected",
		"2 publicly reachable",
		"1 critical issues",
		"2 warnings",
		"Top actions:",
		"Bind to 127.0.0.1 immediately.",
		"CRITICAL",
		"WARNINGS",
		"INFO",
		"1 informational notes hidden.",
		"Tailscale not installed",
		"Environment notes",
		"Some listening processes could not be identified.",
		"No changes were made to your system.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	for _, hidden := range []string{"Why flagged:", "Confidence:", "Context:", "Listening services:", "\x1b["} {
		if strings.Contains(out, hidden) {
			t.Errorf("default output should not contain %q", hidden)
		}
	}

	if strings.Index(out, "CRITICAL") > strings.Index(out, "WARNINGS") {
		t.Error("CRITICAL section should precede WARNINGS")
	}
}

func TestRenderTextVerbose(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleResult(), Options{Verbose: true}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Why flagged:",
		"Bound to 0.0.0.0.",
		"Confidence: high",
		"Context: Typically used for SSH remote access.",
		"Details:",
		"Use a reverse proxy with authentication.",
		"No Tailscale installation was found.",
		"Listening services:",
		"postgres",
		"localhost-only",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "informational notes hidden") {
		t.Error("verbose output should expand info findings")
	}
}

func TestRenderTextQuiet(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleResult(), Options{Quiet: true}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "CRITICAL") || !strings.Contains(out, "WARNINGS") {
		t.Errorf("quiet output should keep actionable findings:\n%s", out)
	}
	for _, hidden := range []string{"Summary:", "Top actions:", "INFO", "Environment notes", "No changes were made"} {
		if strings.Contains(out, hidden) {
			t.Errorf("quiet output should not contain %q", hidden)
		}
	}
}

func TestRenderTextNoFindings(t *testing.T) {
	res := model.Result{IsRoot: true}

	var buf bytes.Buffer
	if err := RenderText(&buf, res, Options{}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "No security issues detected.") ||
		!strings.Contains(out, "No immediate action required.") ||
		strings.Contains(out, "Environment notes") {
		t.Errorf("unexpected output:\n%s", out)
	}

	buf.Reset()
	if err := RenderText(&buf, res, Options{Quiet: true}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "No actionable findings.") {
		t.Errorf("unexpected quiet output:\n%s", out)
	}
}

func TestRenderTextSanitizesUntrustedText(t *testing.T) {
	res := sampleResult()
	res.Findings[1].Description = "Port 22 (\x1b]0;pwned\x07sshd) is exposed."

	var buf bytes.Buffer
	if err := RenderText(&buf, res, Options{}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()
	if strings.ContainsAny(out, "\x1b\x07") {
		t.Errorf("raw control characters leaked:\n%q", out)
	}
	if !strings.Contains(out, `\x1b]0;pwned\x07sshd`) {
		t.Errorf("escaped sequence missing:\n%s", out)
	}
}

func TestRenderTextWraps(t *testing.T) {
	res := model.Result{IsRoot: true, Findings: []model.Finding{{
		Severity:    model.SeverityWarning,
		Title:       "Wide",
		Description: strings.Repeat("word ", 40),
	}}}

	var buf bytes.Buffer
	if err := RenderText(&buf, res, Options{Width: 40}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "  word") && len(line) > 40 {
			t.Errorf("line not wrapped: %q", line)
		}
	}
}

func TestBuildJSONReport(t *testing.T) {
	res := sampleResult()
	report := BuildJSONReport(res, Options{Verbose: true})

	if report.Mode != "verbose" || report.ExitCode != 1 {
		t.Errorf("mode/exit = %q/%d", report.Mode, report.ExitCode)
	}
	if report.GeneratedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("GeneratedAt = %q", report.GeneratedAt)
	}
	if report.OutputSanitization != "terminal-only" {
		t.Errorf("OutputSanitization = %q", report.OutputSanitization)
	}
	if len(report.EnvironmentNotes) != 4 {
		t.Errorf("EnvironmentNotes = %v", report.EnvironmentNotes)
	}

	data, err := ToJSON(res, Options{Quiet: true})
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"mode", "generatedAt", "exitCode", "stats", "services", "findings", "topActions", "environmentNotes", "outputSanitization"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing key %q", key)
		}
	}
	if decoded["mode"] != "quiet" {
		t.Errorf("mode = %v", decoded["mode"])
	}
}

func TestBuildJSONReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, BuildJSONReport(model.Result{IsRoot: true}, Options{})); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"services": []`, `"findings": []`, `"topActions": []`, `"environmentNotes": []`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s:\n%s", want, out)
		}
	}
}
