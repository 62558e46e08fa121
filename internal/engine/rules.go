package engine

import (
	"fmt"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

const (
	TitleTunnelBypass      = "Tunnel bypass detected"
	TitleHighRiskExposed   = "High-risk service publicly exposed"
	TitlePublicExposure    = "Service exposed to public internet"
	TitleVPNUnused         = "Tailscale available but not used"
	TitleFirewallUnknown   = "Firewall status could not be determined"
	TitleNoFirewall        = "No firewall detected"
	TitleFirewallEnabled   = "Firewall is enabled"
	TitleVPNConnected      = "Tailscale is connected"
	TitleVPNNotConnected   = "Tailscale is not connected"
	TitleVPNNotInstalled   = "Tailscale not installed"
	TitleTunnelDetected    = "Cloudflare Tunnel detected"
	tailscaleDownloadURL   = "https://tailscale.com/download"
	publicExposureFallback = "Verify this service should be publicly accessible. If not, bind to localhost or use firewall rules."
)

type serviceRule struct {
	name  string
	check func(model.ServiceExposure, model.NetworkContext) *model.Finding
}

type contextRule struct {
	name  string
	check func(model.NetworkContext) []model.Finding
}

// serviceRules run per exposure, in this order.
func (a *Analyzer) serviceRules() []serviceRule {
	return []serviceRule{
		{"tunnel-bypass", checkTunnelBypass},
		{"high-risk-service", a.checkHighRiskService},
		{"public-exposure", a.checkPublicExposure},
		{"vpn-unused", checkVPNUnused},
	}
}

var contextRules = []contextRule{
	{"firewall", firewallFindings},
	{"vpn", vpnFindings},
	{"tunnel", tunnelFindings},
}

func checkTunnelBypass(exp model.ServiceExposure, ctx model.NetworkContext) *model.Finding {
	if !exp.Has(model.PathTunnel) || !exp.Has(model.PathPublicInternet) {
		return nil
	}
	svc := exp.Service
	return &model.Finding{
		Severity: model.SeverityCritical,
		Title:    TitleTunnelBypass,
		Description: fmt.Sprintf("Port %d (%s) is accessible via both Cloudflare Tunnel and directly from the public internet. "+
			"The tunnel does not protect this service.", svc.Port, svc.Process),
		Recommendation: "Bind the service to localhost (127.0.0.1) or restrict access via firewall to ensure traffic only flows through the tunnel.",
		Service:        &svc,
		WhyFlagged:     publicReason(svc, ctx),
		Confidence:     string(ctx.Tunnel.Confidence),
	}
}

func (a *Analyzer) checkHighRiskService(exp model.ServiceExposure, ctx model.NetworkContext) *model.Finding {
	if !exp.Has(model.PathPublicInternet) || !a.isHighRisk(exp.Service.Process) {
		return nil
	}
	svc := exp.Service
	return &model.Finding{
		Severity: model.SeverityCritical,
		Title:    TitleHighRiskExposed,
		Description: fmt.Sprintf("Port %d (%s) is reachable from the public internet. This process may be running AI models, "+
			"APIs, or development servers that should not be publicly accessible.", svc.Port, svc.Process),
		Recommendation: "Bind to localhost, use a VPN (like Tailscale), or configure firewall rules to restrict access.",
		Service:        &svc,
		WhyFlagged:     publicReason(svc, ctx) + fmt.Sprintf(" Process name %q matches a high-risk runtime.", svc.Process),
		Confidence:     publicConfidence(ctx),
	}
}

// checkPublicExposure stays silent for high-risk processes, which the
// critical rule already reports.
func (a *Analyzer) checkPublicExposure(exp model.ServiceExposure, ctx model.NetworkContext) *model.Finding {
	if !exp.Has(model.PathPublicInternet) || a.isHighRisk(exp.Service.Process) {
		return nil
	}
	svc := exp.Service

	var notes string
	if intent := PortIntent(a.Profiles, svc); intent != "" {
		notes = "Typically used for " + intent + "."
	}

	return &model.Finding{
		Severity:       model.SeverityWarning,
		Title:          TitlePublicExposure,
		Description:    fmt.Sprintf("Port %d (%s) is accessible from the public internet.", svc.Port, svc.Process),
		Recommendation: EnhancedRecommendation(a.Profiles, svc, publicExposureFallback),
		Service:        &svc,
		WhyFlagged:     publicReason(svc, ctx),
		Confidence:     publicConfidence(ctx),
		ContextNotes:   notes,
	}
}

func checkVPNUnused(exp model.ServiceExposure, ctx model.NetworkContext) *model.Finding {
	if !ctx.VPN.Connected || !exp.Has(model.PathPublicInternet) || exp.Has(model.PathVPNOverlay) {
		return nil
	}
	svc := exp.Service
	return &model.Finding{
		Severity: model.SeverityWarning,
		Title:    TitleVPNUnused,
		Description: fmt.Sprintf("Port %d (%s) is publicly accessible, but Tailscale is connected. "+
			"Consider using Tailscale for secure access instead.", svc.Port, svc.Process),
		Recommendation: "Bind the service to the Tailscale interface or use Tailscale's subnet routing.",
		Service:        &svc,
		WhyFlagged:     fmt.Sprintf("Service is not bound to %s.", ctx.VPN.InterfaceOrDefault()),
	}
}

func firewallFindings(ctx model.NetworkContext) []model.Finding {
	fw := ctx.Firewall
	switch {
	case !fw.StatusKnown:
		return []model.Finding{{
			Severity:       model.SeverityWarning,
			Title:          TitleFirewallUnknown,
			Description:    "Unable to read UFW status. This usually happens when running without root.",
			Recommendation: "Run with sudo to see accurate UFW firewall status.",
			Icon:           model.IconWarning,
		}}
	case fw.Enabled:
		return []model.Finding{{
			Severity:    model.SeverityInfo,
			Title:       TitleFirewallEnabled,
			Description: fmt.Sprintf("UFW firewall is active with default inbound policy: %s.", fw.DefaultInbound),
		}}
	default:
		return []model.Finding{{
			Severity:       model.SeverityWarning,
			Title:          TitleNoFirewall,
			Description:    "UFW firewall is not active. All ports may be accessible from the internet.",
			Recommendation: "Consider enabling UFW to control inbound traffic: sudo ufw enable",
			Icon:           model.IconWarning,
		}}
	}
}

func vpnFindings(ctx model.NetworkContext) []model.Finding {
	vpn := ctx.VPN
	switch {
	case vpn.Connected:
		return []model.Finding{{
			Severity:    model.SeverityInfo,
			Title:       TitleVPNConnected,
			Description: "Tailscale VPN is active and available for secure access.",
		}}
	case vpn.Installed:
		return []model.Finding{{
			Severity:       model.SeverityWarning,
			Title:          TitleVPNNotConnected,
			Description:    "Tailscale is installed but not connected, so services cannot be reached privately over the tailnet.",
			Recommendation: "Reconnect with: sudo tailscale up",
			Icon:           model.IconWarning,
		}}
	default:
		return []model.Finding{{
			Severity:       model.SeverityInfo,
			Title:          TitleVPNNotInstalled,
			Description:    "No Tailscale installation was found. A private overlay network lets you reach services without exposing them publicly.",
			Recommendation: "See " + tailscaleDownloadURL + " to set up private access.",
		}}
	}
}

func tunnelFindings(ctx model.NetworkContext) []model.Finding {
	if !ctx.Tunnel.Detected {
		return nil
	}
	desc := "A Cloudflare Tunnel is present. Ensure services are only accessible through the tunnel."
	if len(ctx.Tunnel.Evidence) > 0 {
		desc += fmt.Sprintf(" Evidence: %s.", strings.Join(ctx.Tunnel.Evidence, ", "))
	}
	return []model.Finding{{
		Severity:    model.SeverityInfo,
		Title:       TitleTunnelDetected,
		Description: desc,
		Confidence:  string(ctx.Tunnel.Confidence),
	}}
}

func (a *Analyzer) isHighRisk(process string) bool {
	return matchesAny(process, a.HighRiskProcesses)
}

func publicReason(svc model.ListeningService, ctx model.NetworkContext) string {
	var public []string
	for _, name := range svc.Interfaces {
		if iface, ok := ctx.Interface(name); ok && iface.IsPublic {
			public = append(public, name)
		}
	}
	if len(public) == 0 {
		return fmt.Sprintf("Bound to %s.", svc.BoundIP)
	}
	return fmt.Sprintf("Bound to %s, which listens on public interface(s): %s.", svc.BoundIP, strings.Join(public, ", "))
}

// A deny-by-default firewall may still block the port; the path is kept
// but the confidence drops.
func publicConfidence(ctx model.NetworkContext) string {
	if ctx.Firewall.StatusKnown && ctx.Firewall.Enabled && ctx.Firewall.DefaultInbound == model.PolicyDeny {
		return "medium"
	}
	return "high"
}
