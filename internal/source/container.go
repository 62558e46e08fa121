package source

import (
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// detectContainer matches container scopes, not the runtime daemons
// themselves (docker.service, containerd.service).
func detectContainer(cgroup string) *model.Source {
	var runtime, id string
	switch {
	case strings.Contains(cgroup, "kubepods"):
		runtime = "kubernetes"
		id = findLongHexID(cgroup)
	case strings.Contains(cgroup, "docker-") && strings.Contains(cgroup, ".scope"),
		strings.Contains(cgroup, "/docker/"):
		runtime = "docker"
		id = extractContainerID(cgroup, "docker-", "docker/")
	case strings.Contains(cgroup, "libpod"):
		runtime = "podman"
		id = extractContainerID(cgroup, "libpod-", "libpod/")
	case strings.Contains(cgroup, "containerd-") && strings.Contains(cgroup, ".scope"),
		strings.Contains(cgroup, "/containerd/"):
		runtime = "containerd"
		id = findLongHexID(cgroup)
	default:
		return nil
	}

	src := &model.Source{Type: model.SourceContainer, Name: runtime}
	if id != "" {
		src.Details = map[string]string{"container": shortID(id)}
	}
	return src
}

func extractContainerID(cgroup, dashPrefix, slashPrefix string) string {
	// Pattern 1: .../prefix-<id>.scope
	if idx := strings.Index(cgroup, dashPrefix); idx != -1 {
		rest := cgroup[idx+len(dashPrefix):]
		if dot := strings.Index(rest, ".scope"); dot != -1 {
			return rest[:dot]
		}
	}
	// Pattern 2: .../prefix/<id>
	if idx := strings.Index(cgroup, slashPrefix); idx != -1 {
		rest := cgroup[idx+len(slashPrefix):]
		if len(rest) >= 64 && isHex(rest[:64]) {
			return rest[:64]
		}
	}
	return ""
}

// findLongHexID returns the first 64-character hex run in s.
func findLongHexID(s string) string {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && isHexByte(s[i]) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 && i-start >= 64 {
			return s[start : start+64]
		}
		start = -1
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isHexByte(s[i]) {
			return false
		}
	}
	return true
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

// DockerProxyTarget returns the -container-ip a docker-proxy process
// forwards to, or "".
func DockerProxyTarget(cmdline string) string {
	parts := strings.Fields(cmdline)
	for i, part := range parts {
		if part == "-container-ip" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
