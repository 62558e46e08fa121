package source

import (
	"path"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

func detectSystemd(cgroup string) *model.Source {
	for _, line := range strings.Split(cgroup, "\n") {
		// hierarchy-ID:controllers:path
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		unit := path.Base(parts[2])
		if !strings.HasSuffix(unit, ".service") {
			continue
		}
		// user sessions run under user@<uid>.service
		if strings.Contains(parts[2], "/user.slice/") {
			continue
		}
		return &model.Source{
			Type: model.SourceSystemd,
			Name: unit,
		}
	}
	return nil
}

// detectInit checks if the process is a direct descendant of the init process (PID 1)
// with no shell in between, as SysVinit or OpenRC services are.
func detectInit(ancestry []model.Process) *model.Source {
	if len(ancestry) < 2 {
		return nil
	}

	root := ancestry[0]
	if root.PID != 1 {
		return nil
	}

	for i := 1; i < len(ancestry)-1; i++ {
		if isShell(ancestry[i].Command) {
			return nil
		}
	}

	return &model.Source{
		Type: model.SourceInit,
		Name: "init",
		Details: map[string]string{
			"pid":  "1",
			"comm": root.Command,
		},
	}
}

func detectShell(ancestry []model.Process) *model.Source {
	for _, p := range ancestry {
		if isShell(p.Command) {
			return &model.Source{
				Type:    model.SourceUnknown,
				Details: map[string]string{"shell": p.Command},
			}
		}
	}
	return nil
}

func isShell(name string) bool {
	switch strings.ToLower(path.Base(name)) {
	case "sh", "bash", "zsh", "dash", "ash", "csh", "tcsh", "ksh", "fish":
		return true
	}
	return false
}
