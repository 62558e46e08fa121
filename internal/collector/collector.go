// Package collector gathers the raw host signals a scan runs on. Collectors
// never fail the scan: an unavailable tool degrades to a conservative value
// plus an environment note. Only context cancellation is returned as an
// error.
package collector

import (
	"context"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/safecrab/safecrab/internal/proc"
	"github.com/safecrab/safecrab/internal/shell"
)

type Collector struct {
	Runner shell.Runner
	// RootFS is rooted at "/" and used for config footprints under /etc.
	RootFS fs.FS
	Proc   *proc.Inspector
	Logger *slog.Logger

	IsRoot bool
	// VPNInterface overrides the reported VPN interface name.
	VPNInterface string

	mu    sync.Mutex
	notes []string
}

// Notes returns the environment notes recorded so far, in insertion order.
func (c *Collector) Notes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.notes)
}

func (c *Collector) note(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.notes, msg) {
		return
	}
	c.notes = append(c.notes, msg)
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// run executes one command and logs failures at debug. The returned error is
// non-nil only when ctx is done.
func (c *Collector) run(ctx context.Context, name string, args ...string) (shell.Result, error) {
	res := c.Runner.Run(ctx, name, args...)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if !res.Success {
		c.logger().Debug("command failed",
			"cmd", name,
			"args", args,
			"exit", res.ExitCode,
			"err", res.Err,
			"stderr", res.Stderr,
		)
	}
	return res, nil
}
