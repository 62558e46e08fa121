// Package app wires the safecrab command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safecrab/safecrab/internal/config"
	"github.com/safecrab/safecrab/internal/output"
	"github.com/safecrab/safecrab/internal/pipeline"
	"github.com/safecrab/safecrab/internal/tui"
	"github.com/safecrab/safecrab/pkg/model"
	"github.com/spf13/cobra"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the ldflags-injected build metadata.
func SetVersionBuildCommitString(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit == "" && buildDate == "" {
		return v
	}
	return fmt.Sprintf("%s (commit %s, built %s)", v, commit, buildDate)
}

// Scanner produces one scan result.
type Scanner interface {
	Scan(ctx context.Context) (model.Result, error)
}

type flags struct {
	json        bool
	verbose     bool
	quiet       bool
	noColor     bool
	interactive bool
	debug       bool
	configPath  string
	timeout     time.Duration
}

// env holds everything a command needs from the outside world.
type env struct {
	stdout io.Writer
	stderr io.Writer

	newScanner  func(cfg config.Config, logger *slog.Logger) Scanner
	interactive func(ctx context.Context, s Scanner, version string) error
}

func defaultEnv() *env {
	return &env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		newScanner: func(cfg config.Config, logger *slog.Logger) Scanner {
			return pipeline.NewScanner(cfg, logger)
		},
		interactive: func(ctx context.Context, s Scanner, version string) error {
			return tui.Start(ctx, s, version)
		},
	}
}

// exitError carries a non-zero exit status that has already been reported.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(e *env) *cobra.Command {
	f := &flags{}

	run := func(cmd *cobra.Command, _ []string) error {
		return runScan(cmd.Context(), e, f, cmd.Flags().Changed("timeout"))
	}

	root := &cobra.Command{
		Use:   "safecrab",
		Short: "Audit which services on this host are reachable, and from where",
		Long: `safecrab lists the services listening on this host, works out how each
one can be reached (public internet, VPN overlay, tunnel or localhost only)
and explains which of them need attention. It never changes the system.`,
		Version:       versionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.SetVersionTemplate("safecrab {{.Version}}\n")
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&f.json, "json", false, "output the report as JSON")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "explain why each finding was flagged")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "print only actionable findings")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colorized output")
	pf.BoolVarP(&f.interactive, "interactive", "i", false, "browse results in an interactive TUI")
	pf.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/safecrab/config.yaml)")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-command timeout, e.g. 5s")
	pf.BoolVar(&f.debug, "debug", false, "log diagnostics to stderr")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	root.MarkFlagsMutuallyExclusive("json", "interactive")

	root.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Scan this host (default)",
		Args:  cobra.NoArgs,
		RunE:  run,
	})

	return root
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runScan(ctx context.Context, e *env, f *flags, timeoutSet bool) error {
	logger := newLogger(e.stderr, f.debug)

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return reportError(e, f, err)
	}
	if timeoutSet {
		cfg.Timeout = config.Duration(f.timeout)
		if err := cfg.Validate(); err != nil {
			return reportError(e, f, err)
		}
	}
	logger.Debug("config loaded", "path", f.configPath, "timeout", cfg.CommandTimeout())

	scanner := e.newScanner(cfg, logger)

	if f.interactive {
		if err := e.interactive(ctx, scanner, versionString()); err != nil {
			return reportError(e, f, err)
		}
		return nil
	}

	res, err := scanner.Scan(ctx)
	if err != nil {
		return reportError(e, f, err)
	}

	opts := output.Options{
		Verbose: f.verbose,
		Quiet:   f.quiet,
		Color:   !f.noColor && os.Getenv("NO_COLOR") == "",
		Width:   output.DefaultWidth,
	}

	if f.json {
		err = output.WriteJSON(e.stdout, output.BuildJSONReport(res, opts))
	} else {
		err = output.RenderText(e.stdout, res, opts)
	}
	if err != nil {
		return reportError(e, f, fmt.Errorf("write report: %w", err))
	}

	if code := output.ExitCode(res.Findings); code != 0 {
		return exitError{code: code}
	}
	return nil
}

func reportError(e *env, f *flags, err error) error {
	if f.json {
		_ = output.WriteJSON(e.stdout, map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(e.stderr, "Error: %s\n", output.SanitizeTerminal(err.Error()))
	}
	return exitError{code: 1}
}

// execute runs the command tree and returns the process exit status.
func execute(ctx context.Context, e *env, args []string) int {
	root := newRootCmd(e)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// flag and argument errors from cobra itself
	fmt.Fprintf(e.stderr, "Error: %s\n", err)
	fmt.Fprintln(e.stderr, "Run 'safecrab --help' for usage.")
	return 1
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, defaultEnv(), os.Args[1:])
	stop()
	os.Exit(code)
}
