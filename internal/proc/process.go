package proc

import (
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// maxAncestry bounds the parent walk in case of a ppid cycle.
const maxAncestry = 64

// ReadProcess reads a single process from <pid>/stat and <pid>/cmdline.
func (i *Inspector) ReadProcess(pid int) (model.Process, error) {
	dir := strconv.Itoa(pid)

	// stat is most likely to fail if the process disappears
	stat, err := fs.ReadFile(i.FS, dir+"/stat")
	if err != nil {
		return model.Process{}, fmt.Errorf("process %d: %w", pid, err)
	}

	p, err := parseStatSnapshot(pid, stat)
	if err != nil {
		return model.Process{}, fmt.Errorf("process %d: %w", pid, err)
	}

	if raw, err := fs.ReadFile(i.FS, dir+"/cmdline"); err == nil {
		p.Cmdline = strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
	}
	if p.Cmdline == "" {
		p.Cmdline = p.Command
	}
	return p, nil
}

// Ancestry returns the chain from the oldest readable ancestor down to pid.
func (i *Inspector) Ancestry(pid int) ([]model.Process, error) {
	var chain []model.Process
	seen := make(map[int]bool)

	current := pid
	for current > 0 && len(chain) < maxAncestry {
		if seen[current] {
			break
		}
		seen[current] = true

		p, err := i.ReadProcess(current)
		if err != nil {
			if len(chain) == 0 {
				return nil, err
			}
			break
		}
		chain = append(chain, p)
		if p.PPID == current {
			break
		}
		current = p.PPID
	}

	// oldest first
	slices.Reverse(chain)
	return chain, nil
}

// ReadCgroup returns the raw contents of <pid>/cgroup.
func (i *Inspector) ReadCgroup(pid int) string {
	data, err := fs.ReadFile(i.FS, strconv.Itoa(pid)+"/cgroup")
	if err != nil {
		return ""
	}
	return string(data)
}
