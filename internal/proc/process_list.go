package proc

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// ListProcesses returns every running process with pid, parent, owner and
// command line.
func (i *Inspector) ListProcesses(ctx context.Context) ([]model.Process, error) {
	if i.Runner != nil {
		res := i.Runner.Run(ctx, "ps", "-axo", "pid,ppid,user,comm,args")
		if res.Success {
			return parsePS(res.Stdout), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	// Fallback to fast snapshot if ps fails
	return i.listProcessSnapshot()
}

// FindByName returns processes whose command, or any argument's base name,
// equals name (case-insensitive). The inspector's own pid and grep-like
// processes are skipped.
func (i *Inspector) FindByName(ctx context.Context, name string) ([]model.Process, error) {
	procs, err := i.ListProcesses(ctx)
	if err != nil {
		return nil, err
	}

	lowerName := strings.ToLower(name)
	var matches []model.Process
	for _, p := range procs {
		if p.PID == i.SelfPID {
			continue
		}
		comm := strings.ToLower(p.Command)
		if strings.Contains(comm, "grep") {
			continue
		}
		if comm == lowerName || argsContain(p.Cmdline, lowerName) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func argsContain(cmdline, lowerName string) bool {
	parts := strings.Fields(strings.ToLower(cmdline))
	if len(parts) > 0 && strings.Contains(path.Base(parts[0]), "grep") {
		return false
	}
	for _, part := range parts {
		if path.Base(part) == lowerName {
			return true
		}
	}
	return false
}

func parsePS(out string) []model.Process {
	lines := strings.Split(strings.TrimSpace(out), "\n")

	// Skip header
	if len(lines) > 0 {
		lines = lines[1:]
	}

	processes := make([]model.Process, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		// pid, ppid, user, comm
		if len(fields) < 4 {
			continue
		}

		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		comm := fields[3]
		cmdline := comm
		if len(fields) > 4 {
			cmdline = strings.Join(fields[4:], " ")
		}

		processes = append(processes, model.Process{
			PID:     pid,
			PPID:    ppid,
			User:    fields[2],
			Command: comm,
			Cmdline: cmdline,
		})
	}
	return processes
}

// listProcessSnapshot reads /proc/<pid>/stat and cmdline directly.
func (i *Inspector) listProcessSnapshot() ([]model.Process, error) {
	entries, err := fs.ReadDir(i.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	processes := make([]model.Process, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		stat, err := fs.ReadFile(i.FS, entry.Name()+"/stat")
		if err != nil {
			continue
		}

		p, err := parseStatSnapshot(pid, stat)
		if err != nil {
			continue
		}

		// cmdline is null-separated
		if raw, err := fs.ReadFile(i.FS, entry.Name()+"/cmdline"); err == nil {
			p.Cmdline = strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
		}
		if p.Cmdline == "" {
			p.Cmdline = p.Command
		}

		processes = append(processes, p)
	}

	return processes, nil
}

func parseStatSnapshot(pid int, stat []byte) (model.Process, error) {
	raw := string(stat)
	open := strings.Index(raw, "(")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close <= open || close+2 > len(raw) {
		return model.Process{}, fmt.Errorf("invalid stat format")
	}

	comm := raw[open+1 : close]
	fields := strings.Fields(raw[close+2:])
	if len(fields) < 2 {
		return model.Process{}, fmt.Errorf("invalid stat format")
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return model.Process{}, fmt.Errorf("invalid ppid")
	}

	return model.Process{
		PID:     pid,
		PPID:    ppid,
		Command: comm,
	}, nil
}
