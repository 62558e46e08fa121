package engine

import (
	"testing"

	"github.com/safecrab/safecrab/pkg/model"
)

func TestBuildNetworkContextCopiesInputs(t *testing.T) {
	ifaces := []model.Interface{{Name: "eth0", IPs: []string{"203.0.113.5"}, IsPublic: true}}
	evidence := []string{"process"}

	ctx := BuildNetworkContext(
		ifaces,
		model.FirewallStatus{StatusKnown: true, DefaultInbound: model.PolicyAllow},
		model.VPNStatus{Installed: true},
		model.TunnelStatus{Detected: true, Confidence: model.ConfidenceHigh, Evidence: evidence},
	)

	ifaces[0].Name = "mutated"
	ifaces[0].IPs[0] = "0.0.0.0"
	evidence[0] = "mutated"

	if ctx.Interfaces[0].Name != "eth0" || ctx.Interfaces[0].IPs[0] != "203.0.113.5" {
		t.Errorf("interfaces aliased caller slice: %+v", ctx.Interfaces)
	}
	if ctx.Tunnel.Evidence[0] != "process" {
		t.Errorf("evidence aliased caller slice: %v", ctx.Tunnel.Evidence)
	}
	if !ctx.VPN.Installed || !ctx.Tunnel.Detected {
		t.Errorf("signals lost: %+v", ctx)
	}
}

func TestBuildNetworkContextDefaults(t *testing.T) {
	ctx := BuildNetworkContext(nil, model.FirewallStatus{}, model.VPNStatus{}, model.TunnelStatus{})
	if ctx.Firewall.DefaultInbound != model.PolicyUnknown {
		t.Errorf("DefaultInbound = %q, want unknown", ctx.Firewall.DefaultInbound)
	}
	if ctx.Tunnel.Confidence != model.ConfidenceLow {
		t.Errorf("Confidence = %q, want low", ctx.Tunnel.Confidence)
	}
	if ctx.VPN.InterfaceOrDefault() != model.DefaultVPNInterface {
		t.Errorf("InterfaceOrDefault() = %q", ctx.VPN.InterfaceOrDefault())
	}
	if ctx.Interfaces == nil || len(ctx.Interfaces) != 0 {
		t.Errorf("Interfaces = %#v, want empty", ctx.Interfaces)
	}
}
