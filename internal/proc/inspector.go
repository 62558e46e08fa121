// Package proc reads process and socket tables from /proc.
package proc

import (
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/safecrab/safecrab/internal/shell"
)

// Inspector reads from a /proc tree. FS is rooted at /proc.
type Inspector struct {
	FS      fs.FS
	Runner  shell.Runner
	SelfPID int
}

func New(runner shell.Runner) *Inspector {
	return &Inspector{
		FS:      os.DirFS("/proc"),
		Runner:  runner,
		SelfPID: os.Getpid(),
	}
}

// Comm returns the short command name of pid, or "" if it is gone.
func (i *Inspector) Comm(pid int) string {
	data, err := fs.ReadFile(i.FS, strconv.Itoa(pid)+"/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
