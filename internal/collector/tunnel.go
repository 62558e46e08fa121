package collector

import (
	"context"
	"io/fs"

	"github.com/safecrab/safecrab/pkg/model"
)

const (
	cloudflaredDir = "etc/cloudflared"

	EvidenceProcess    = "process"
	EvidenceConfigDir  = "config-dir"
	EvidenceConfigFile = "config-file"
)

var cloudflaredConfigFiles = []string{"config.yml", "config.yaml"}

// Tunnel looks for a Cloudflare Tunnel. A running cloudflared is a strong
// signal; a config directory with a config file is a weak one.
func (c *Collector) Tunnel(ctx context.Context) (model.TunnelStatus, error) {
	evidence := []string{}

	hasProcess := false
	if c.Proc != nil {
		procs, err := c.Proc.FindByName(ctx, "cloudflared")
		if err != nil {
			if ctx.Err() != nil {
				return model.TunnelStatus{}, ctx.Err()
			}
			c.logger().Debug("process lookup failed", "err", err)
		}
		hasProcess = len(procs) > 0
	}
	if hasProcess {
		evidence = append(evidence, EvidenceProcess)
	}

	hasDir, hasFile := false, false
	if c.RootFS != nil {
		if info, err := fs.Stat(c.RootFS, cloudflaredDir); err == nil && info.IsDir() {
			hasDir = true
			evidence = append(evidence, EvidenceConfigDir)
		}
		for _, name := range cloudflaredConfigFiles {
			if _, err := fs.Stat(c.RootFS, cloudflaredDir+"/"+name); err == nil {
				hasFile = true
				evidence = append(evidence, EvidenceConfigFile)
				break
			}
		}
	}

	status := model.TunnelStatus{
		Detected:   hasProcess || (hasDir && hasFile),
		Confidence: model.ConfidenceLow,
		Evidence:   evidence,
	}
	if hasProcess {
		status.Confidence = model.ConfidenceHigh
	}
	return status, nil
}
