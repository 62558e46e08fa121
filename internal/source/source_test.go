package source

import (
	"testing"
	"testing/fstest"

	"github.com/safecrab/safecrab/pkg/model"
)

const dockerID = "4f1c2a9e8b7d6c5f4e3d2c1b0a9f8e7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a19"

func procTree() fstest.MapFS {
	return fstest.MapFS{
		"1/stat":      {Data: []byte("1 (systemd) S 0 1 1 0 -1 0")},
		"1/cgroup":    {Data: []byte("0::/init.scope\n")},
		"300/stat":    {Data: []byte("300 (nginx) S 1 300 300 0 -1 0")},
		"300/cgroup":  {Data: []byte("0::/system.slice/nginx.service\n")},
		"400/stat":    {Data: []byte("400 (python3) S 1 400 400 0 -1 0")},
		"400/cgroup":  {Data: []byte("0::/system.slice/docker-" + dockerID + ".scope\n")},
		"500/stat":    {Data: []byte("500 (sshd) S 1 500 500 0 -1 0")},
		"501/stat":    {Data: []byte("501 (bash) S 500 501 501 0 -1 0")},
		"502/stat":    {Data: []byte("502 (node) S 501 502 502 0 -1 0")},
		"502/cgroup":  {Data: []byte("0::/user.slice/user-1000.slice/user@1000.service/app.slice/vte-spawn.scope\n")},
		"600/stat":    {Data: []byte("600 (dropbear) S 1 600 600 0 -1 0")},
		"600/cgroup":  {Data: []byte("")},
		"700/stat":    {Data: []byte("700 (ollama) S 1 700 700 0 -1 0")},
		"700/cgroup":  {Data: []byte("0::/kubepods.slice/kubepods-besteffort.slice/cri-containerd-" + dockerID + ".scope\n")},
	}
}

func TestDetect(t *testing.T) {
	fsys := procTree()

	tests := []struct {
		name     string
		pid      int
		wantType model.SourceType
		wantName string
		wantNote string
	}{
		{"systemd unit", 300, model.SourceSystemd, "nginx.service", "Managed by systemd unit nginx.service"},
		{"docker", 400, model.SourceContainer, "docker", "Managed by container runtime docker"},
		{"kubernetes before containerd", 700, model.SourceContainer, "kubernetes", "Managed by container runtime kubernetes"},
		{"shell session", 502, model.SourceUnknown, "", "Started from an interactive shell (bash)"},
		{"init child", 600, model.SourceInit, "init", "Started by init"},
		{"missing pid", 9999, model.SourceUnknown, "", ""},
		{"zero pid", 0, model.SourceUnknown, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Detect(fsys, tt.pid)
			if src.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", src.Type, tt.wantType)
			}
			if src.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", src.Name, tt.wantName)
			}
			if got := Describe(src); got != tt.wantNote {
				t.Errorf("Describe = %q, want %q", got, tt.wantNote)
			}
		})
	}
}

func TestDetectContainerID(t *testing.T) {
	src := Detect(procTree(), 400)
	if got := src.Details["container"]; got != dockerID[:12] {
		t.Errorf("container id = %q, want %q", got, dockerID[:12])
	}
}

func TestExtractContainerID(t *testing.T) {
	tests := []struct {
		cgroup string
		want   string
	}{
		{"0::/system.slice/docker-abc123.scope", "abc123"},
		{"12:pids:/docker/" + dockerID, dockerID},
		{"12:pids:/docker/short", ""},
		{"0::/init.scope", ""},
	}
	for _, tt := range tests {
		if got := extractContainerID(tt.cgroup, "docker-", "docker/"); got != tt.want {
			t.Errorf("extractContainerID(%q) = %q, want %q", tt.cgroup, got, tt.want)
		}
	}
}

func TestFindLongHexID(t *testing.T) {
	if got := findLongHexID("/kubepods/pod1234/" + dockerID); got != dockerID {
		t.Errorf("findLongHexID = %q", got)
	}
	if got := findLongHexID("/kubepods/pod1234/abcdef"); got != "" {
		t.Errorf("findLongHexID short = %q, want empty", got)
	}
}

func TestDockerProxyTarget(t *testing.T) {
	cmdline := "/usr/bin/docker-proxy -proto tcp -host-ip 0.0.0.0 -host-port 8080 -container-ip 172.17.0.2 -container-port 80"
	if got := DockerProxyTarget(cmdline); got != "172.17.0.2" {
		t.Errorf("DockerProxyTarget = %q", got)
	}
	if got := DockerProxyTarget("/usr/bin/docker-proxy -container-ip"); got != "" {
		t.Errorf("DockerProxyTarget truncated = %q, want empty", got)
	}
}

func TestDetectRuntimeDaemonIsNotAContainer(t *testing.T) {
	fsys := fstest.MapFS{
		"1/stat":     {Data: []byte("1 (systemd) S 0 1 1 0 -1 0")},
		"800/stat":   {Data: []byte("800 (dockerd) S 1 800 800 0 -1 0")},
		"800/cgroup": {Data: []byte("0::/system.slice/docker.service\n")},
	}
	src := Detect(fsys, 800)
	if src.Type != model.SourceSystemd || src.Name != "docker.service" {
		t.Errorf("Detect = %+v, want systemd docker.service", src)
	}
}
