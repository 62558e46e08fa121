package collector

import (
	"context"

	"github.com/safecrab/safecrab/internal/parser"
	"github.com/safecrab/safecrab/pkg/model"
)

const noteFirewallUnknown = "Firewall status could not be read (`ufw status verbose` failed). " +
	"Run with sudo to include firewall policy in the analysis."

// Firewall reports ufw state. No ufw means no host firewall: inbound
// traffic is assumed allowed.
func (c *Collector) Firewall(ctx context.Context) (model.FirewallStatus, error) {
	if !c.Runner.Exists("ufw") {
		return model.FirewallStatus{
			Enabled:        false,
			DefaultInbound: model.PolicyAllow,
			StatusKnown:    true,
		}, nil
	}

	res, err := c.run(ctx, "ufw", "status", "verbose")
	if err != nil {
		return model.FirewallStatus{}, err
	}
	if !res.Success {
		// usually permission denied without sudo
		c.note(noteFirewallUnknown)
		return model.FirewallStatus{
			Enabled:        false,
			DefaultInbound: model.PolicyUnknown,
			StatusKnown:    false,
		}, nil
	}

	return parser.ParseUFWStatus(res.Stdout), nil
}
