// Package pipeline runs a full host scan: collect, build context, resolve
// exposure, analyze.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/safecrab/safecrab/internal/collector"
	"github.com/safecrab/safecrab/internal/config"
	"github.com/safecrab/safecrab/internal/engine"
	"github.com/safecrab/safecrab/internal/parser"
	"github.com/safecrab/safecrab/internal/proc"
	"github.com/safecrab/safecrab/internal/shell"
	"github.com/safecrab/safecrab/internal/source"
	"github.com/safecrab/safecrab/pkg/model"
	"golang.org/x/sync/errgroup"
)

type Scanner struct {
	Runner shell.Runner
	// ProcFS is rooted at /proc, RootFS at /.
	ProcFS fs.FS
	RootFS fs.FS
	Logger *slog.Logger
	Config config.Config
	IsRoot bool
	Now    func() time.Time
}

// NewScanner returns a Scanner wired to the live host.
func NewScanner(cfg config.Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		Runner: shell.NewExec(cfg.CommandTimeout()),
		ProcFS: os.DirFS("/proc"),
		RootFS: os.DirFS("/"),
		Logger: logger,
		Config: cfg,
		IsRoot: shell.IsRoot(),
		Now:    time.Now,
	}
}

// Scan collects host signals concurrently and evaluates them. Collector
// failures degrade into environment notes; the returned error is non-nil
// only when ctx ends before the scan completes.
func (s *Scanner) Scan(ctx context.Context) (model.Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	inspector := &proc.Inspector{FS: s.ProcFS, Runner: s.Runner, SelfPID: os.Getpid()}
	c := &collector.Collector{
		Runner:       s.Runner,
		RootFS:       s.RootFS,
		Proc:         inspector,
		Logger:       logger,
		IsRoot:       s.IsRoot,
		VPNInterface: s.Config.VPNInterface,
	}

	var (
		interfaces []model.Interface
		services   []model.ListeningService
		firewall   model.FirewallStatus
		vpn        model.VPNStatus
		tunnel     model.TunnelStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addrs, ifaces, err := c.Interfaces(gctx)
		if err != nil {
			return err
		}
		interfaces = ifaces
		services, err = c.Services(gctx, addrs)
		return err
	})
	g.Go(func() error {
		var err error
		firewall, err = c.Firewall(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		vpn, err = c.VPN(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tunnel, err = c.Tunnel(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Result{}, fmt.Errorf("scan: %w", err)
	}

	netCtx := engine.BuildNetworkContext(interfaces, firewall, vpn, tunnel)
	exposures := engine.ResolveAllExposures(services, netCtx)

	analyzer := engine.NewAnalyzer(s.Config.HighRiskProcesses, s.Config.PortProfiles)
	findings := analyzer.Analyze(exposures, netCtx)
	annotate(findings, inspector)

	logger.Debug("scan complete",
		"services", len(services),
		"findings", len(findings),
		"firewall", firewall.DefaultInbound,
		"vpn_connected", vpn.Connected,
		"tunnel", tunnel.Detected,
	)

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	return model.Result{
		Services:    services,
		Context:     netCtx,
		Exposures:   exposures,
		Findings:    findings,
		Notes:       c.Notes(),
		IsRoot:      s.IsRoot,
		GeneratedAt: now().UTC(),
	}, nil
}

// annotate adds what manages each finding's process to its context notes.
func annotate(findings []model.Finding, inspector *proc.Inspector) {
	cache := make(map[uint32][]string)

	for i := range findings {
		f := &findings[i]
		if f.Service == nil || f.Service.PID == 0 {
			continue
		}

		pid := f.Service.PID
		notes, ok := cache[pid]
		if !ok {
			notes = processNotes(inspector, int(pid))
			cache[pid] = notes
		}
		if len(notes) == 0 {
			continue
		}
		parts := notes
		if f.ContextNotes != "" {
			parts = append([]string{f.ContextNotes}, notes...)
		}
		f.ContextNotes = strings.Join(parts, " ")
	}
}

func processNotes(inspector *proc.Inspector, pid int) []string {
	var notes []string

	if desc := source.Describe(source.Detect(inspector.FS, pid)); desc != "" {
		notes = append(notes, desc+".")
	}

	p, err := inspector.ReadProcess(pid)
	if err != nil {
		return notes
	}
	if target := source.DockerProxyTarget(p.Cmdline); target != "" {
		notes = append(notes, "Forwards to container at "+parser.NormalizeIP(target)+".")
	}
	return notes
}
