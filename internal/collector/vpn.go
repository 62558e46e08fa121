package collector

import (
	"context"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// VPN reports Tailscale state: installed when the CLI is on PATH, connected
// when `tailscale status` succeeds with output.
func (c *Collector) VPN(ctx context.Context) (model.VPNStatus, error) {
	if !c.Runner.Exists("tailscale") {
		return model.VPNStatus{}, nil
	}

	status := model.VPNStatus{Installed: true}

	res, err := c.run(ctx, "tailscale", "status")
	if err != nil {
		return model.VPNStatus{}, err
	}
	status.Connected = res.Success && strings.TrimSpace(res.Stdout) != ""

	iface := c.VPNInterface
	if iface == "" {
		iface = model.DefaultVPNInterface
	}
	res, err = c.run(ctx, "ip", "addr", "show", iface)
	if err != nil {
		return model.VPNStatus{}, err
	}
	if res.Success {
		status.Interface = iface
	}
	return status, nil
}
