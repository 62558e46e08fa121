package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/safecrab/safecrab/internal/config"
	"github.com/safecrab/safecrab/pkg/model"
)

type fakeScanner struct {
	result model.Result
	err    error
}

func (f fakeScanner) Scan(context.Context) (model.Result, error) {
	return f.result, f.err
}

type harness struct {
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	cfg     config.Config
	tuiRuns int
}

func newHarness(t *testing.T, s fakeScanner) (*harness, *env) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	h := &harness{}
	e := &env{
		stdout: &h.stdout,
		stderr: &h.stderr,
		newScanner: func(cfg config.Config, _ *slog.Logger) Scanner {
			h.cfg = cfg
			return s
		},
		interactive: func(context.Context, Scanner, string) error {
			h.tuiRuns++
			return nil
		},
	}
	return h, e
}

func warningResult() model.Result {
	svc := model.ListeningService{Port: 22, Protocol: model.ProtocolTCP, Process: "sshd", PID: 1, BoundIP: "0.0.0.0", Interfaces: []string{"eth0"}}
	return model.Result{
		Services: []model.ListeningService{svc},
		Findings: []model.Finding{{
			Severity:       model.SeverityWarning,
			Title:          "SSH is reachable from the public internet",
			Service:        &svc,
			Recommendation: "Restrict SSH to your VPN.",
		}},
		IsRoot:      true,
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func criticalResult() model.Result {
	res := warningResult()
	res.Findings = append(res.Findings, model.Finding{Severity: model.SeverityCritical, Title: "redis exposed"})
	return res
}

func TestExecuteExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		scanner fakeScanner
		args    []string
		want    int
	}{
		{"no critical", fakeScanner{result: warningResult()}, []string{"--no-color"}, 0},
		{"critical", fakeScanner{result: criticalResult()}, []string{"--no-color"}, 1},
		{"scan subcommand", fakeScanner{result: criticalResult()}, []string{"scan", "--no-color"}, 1},
		{"scan error", fakeScanner{err: context.DeadlineExceeded}, nil, 1},
		{"unknown flag", fakeScanner{}, []string{"--bogus"}, 1},
		{"positional arg", fakeScanner{}, []string{"extra"}, 1},
		{"verbose and quiet", fakeScanner{}, []string{"-v", "-q"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, e := newHarness(t, tt.scanner)
			if got := execute(context.Background(), e, tt.args); got != tt.want {
				t.Errorf("exit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTextReport(t *testing.T) {
	h, e := newHarness(t, fakeScanner{result: warningResult()})
	if code := execute(context.Background(), e, []string{"--no-color"}); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, h.stderr.String())
	}
	out := h.stdout.String()
	for _, want := range []string{"SSH is reachable from the public internet", "No changes were made to your system."} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestJSONReport(t *testing.T) {
	h, e := newHarness(t, fakeScanner{result: criticalResult()})
	if code := execute(context.Background(), e, []string{"--json", "-q"}); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}

	var report struct {
		Mode     string `json:"mode"`
		ExitCode int    `json:"exitCode"`
		Findings []struct {
			Title string `json:"title"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(h.stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, h.stdout.String())
	}
	if report.Mode != "quiet" || report.ExitCode != 1 || len(report.Findings) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestJSONError(t *testing.T) {
	h, e := newHarness(t, fakeScanner{err: errors.New("scan: context deadline exceeded")})
	if code := execute(context.Background(), e, []string{"--json"}); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	var got map[string]string
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["error"] != "scan: context deadline exceeded" {
		t.Errorf("error = %q", got["error"])
	}
}

func TestTextError(t *testing.T) {
	h, e := newHarness(t, fakeScanner{err: errors.New("boom\x1b[2J")})
	execute(context.Background(), e, nil)
	errOut := h.stderr.String()
	if !strings.HasPrefix(errOut, "Error: boom") {
		t.Errorf("stderr = %q", errOut)
	}
	if strings.Contains(errOut, "\x1b") {
		t.Errorf("unsanitized error: %q", errOut)
	}
}

func TestConfigAndTimeoutFlag(t *testing.T) {
	h, e := newHarness(t, fakeScanner{result: warningResult()})
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "timeout: 2s\nvpn_interface: wg0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	execute(context.Background(), e, []string{"--config", path, "--no-color"})
	if h.cfg.CommandTimeout() != 2*time.Second || h.cfg.VPNInterface != "wg0" {
		t.Errorf("file config not applied: %+v", h.cfg)
	}

	execute(context.Background(), e, []string{"--config", path, "--timeout", "750ms", "--no-color"})
	if h.cfg.CommandTimeout() != 750*time.Millisecond {
		t.Errorf("timeout flag did not override file: %v", h.cfg.CommandTimeout())
	}
	if h.cfg.VPNInterface != "wg0" {
		t.Errorf("vpn_interface lost: %q", h.cfg.VPNInterface)
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	h, e := newHarness(t, fakeScanner{})
	code := execute(context.Background(), e, []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "Error: read config") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestNegativeTimeout(t *testing.T) {
	_, e := newHarness(t, fakeScanner{})
	if code := execute(context.Background(), e, []string{"--timeout", "-1s"}); code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
}

func TestInteractive(t *testing.T) {
	h, e := newHarness(t, fakeScanner{result: criticalResult()})
	if code := execute(context.Background(), e, []string{"-i"}); code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}
	if h.tuiRuns != 1 {
		t.Errorf("tui runs = %d", h.tuiRuns)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("interactive mode wrote a report: %q", h.stdout.String())
	}
}

func TestVersion(t *testing.T) {
	SetVersionBuildCommitString("v1.2.3", "abc123", "2026-01-02")
	t.Cleanup(func() { SetVersionBuildCommitString("", "", "") })

	h, e := newHarness(t, fakeScanner{})
	if code := execute(context.Background(), e, []string{"--version"}); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	want := "safecrab v1.2.3 (commit abc123, built 2026-01-02)\n"
	if h.stdout.String() != want {
		t.Errorf("version = %q, want %q", h.stdout.String(), want)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	newLogger(&buf, false).Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn logger output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug logger output = %q", buf.String())
	}
}
