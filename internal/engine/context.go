// Package engine decides how each listening service can be reached and
// which of those exposures deserve the operator's attention. Everything
// here is pure: no I/O, no shared state.
package engine

import (
	"slices"

	"github.com/safecrab/safecrab/pkg/model"
)

// BuildNetworkContext assembles the collector outputs into one snapshot.
// Slices are copied so later changes by the caller cannot leak in.
func BuildNetworkContext(
	interfaces []model.Interface,
	firewall model.FirewallStatus,
	vpn model.VPNStatus,
	tunnel model.TunnelStatus,
) model.NetworkContext {
	ifaces := make([]model.Interface, len(interfaces))
	for i, iface := range interfaces {
		iface.IPs = slices.Clone(iface.IPs)
		ifaces[i] = iface
	}
	tunnel.Evidence = slices.Clone(tunnel.Evidence)
	if tunnel.Confidence == "" {
		tunnel.Confidence = model.ConfidenceLow
	}
	if firewall.DefaultInbound == "" {
		firewall.DefaultInbound = model.PolicyUnknown
	}

	return model.NetworkContext{
		Firewall:   firewall,
		VPN:        vpn,
		Tunnel:     tunnel,
		Interfaces: ifaces,
	}
}
