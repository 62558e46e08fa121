// Package shell is the only place safecrab starts external programs.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

const DefaultTimeout = 5 * time.Second

// Result of one command. A non-zero exit is reported through Success, not
// as an error.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
	Err      error // start failure or timeout
}

// Runner abstracts command execution so collectors can be tested without
// touching the host.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
	Exists(name string) bool
}

// Exec runs commands with os/exec, each bounded by Timeout.
type Exec struct {
	Timeout time.Duration
}

func NewExec(timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exec{Timeout: timeout}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Success = true
	case ctx.Err() != nil:
		res.ExitCode = -1
		res.Err = ctx.Err()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Err = err
	}
	return res
}

// Exists reports whether name resolves on PATH.
func (e *Exec) Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// IsRoot reports whether the process runs with an effective uid of 0.
func IsRoot() bool {
	return unix.Geteuid() == 0
}
