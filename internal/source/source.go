// Package source attributes a listening process to whatever manages it.
package source

import (
	"io/fs"

	"github.com/safecrab/safecrab/internal/proc"
	"github.com/safecrab/safecrab/pkg/model"
)

// Detect inspects the /proc tree fsys for pid and reports its manager:
// a container runtime, a systemd unit, init, or unknown.
func Detect(fsys fs.FS, pid int) model.Source {
	if pid <= 0 {
		return model.Source{Type: model.SourceUnknown}
	}

	inspector := &proc.Inspector{FS: fsys}
	ancestry, err := inspector.Ancestry(pid)
	if err != nil {
		return model.Source{Type: model.SourceUnknown}
	}

	cgroup := inspector.ReadCgroup(pid)
	if src := detectContainer(cgroup); src != nil {
		return *src
	}
	if src := detectSystemd(cgroup); src != nil {
		return *src
	}
	if src := detectInit(ancestry); src != nil {
		return *src
	}
	if src := detectShell(ancestry); src != nil {
		return *src
	}
	return model.Source{Type: model.SourceUnknown}
}

// Describe renders src as a short note, or "" when nothing is known.
func Describe(src model.Source) string {
	switch src.Type {
	case model.SourceContainer:
		return "Managed by container runtime " + src.Name
	case model.SourceSystemd:
		return "Managed by systemd unit " + src.Name
	case model.SourceInit:
		return "Started by init"
	}
	if shell := src.Details["shell"]; shell != "" {
		return "Started from an interactive shell (" + shell + ")"
	}
	return ""
}
