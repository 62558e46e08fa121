package engine

import (
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// PortProfile is tailored guidance for a well-known port.
type PortProfile struct {
	Port           uint16   `yaml:"port" json:"port"`
	Intent         string   `yaml:"intent" json:"intent"`
	Recommendation string   `yaml:"recommendation" json:"recommendation"`
	MatchProcess   []string `yaml:"match_process" json:"matchProcess,omitempty"`
}

var defaultProfiles = []PortProfile{
	{
		Port:   22,
		Intent: "SSH remote access",
		Recommendation: "Use key-based authentication only (disable password auth). Disable root login. " +
			"Consider allowlisting source IPs or using Tailscale for private access instead of public exposure.",
	},
	{
		Port:   5353,
		Intent: "local network discovery (mDNS/Bonjour)",
		Recommendation: "This port is typically for LAN-local discovery and should not be exposed to the internet. " +
			"Bind to localhost or LAN interface only. Block WAN access at router/firewall.",
	},
	{
		Port:   41641,
		Intent: "Tailscale WireGuard transport",
		Recommendation: "This is expected when Tailscale is actively used. Public exposure is normal for Tailscale's " +
			"encrypted VPN traffic. No action needed if Tailscale is intentional.",
		MatchProcess: []string{"tailscaled"},
	},
}

// DefaultProfiles returns a copy of the built-in port profiles.
func DefaultProfiles() []PortProfile {
	out := make([]PortProfile, len(defaultProfiles))
	copy(out, defaultProfiles)
	return out
}

// LookupProfile returns the first profile matching the service port and,
// when the profile names processes, the process.
func LookupProfile(profiles []PortProfile, service model.ListeningService) (PortProfile, bool) {
	for _, p := range profiles {
		if p.Port != service.Port {
			continue
		}
		if len(p.MatchProcess) > 0 && !matchesAny(service.Process, p.MatchProcess) {
			continue
		}
		return p, true
	}
	return PortProfile{}, false
}

// EnhancedRecommendation prefers profile advice over the generic text.
func EnhancedRecommendation(profiles []PortProfile, service model.ListeningService, fallback string) string {
	if p, ok := LookupProfile(profiles, service); ok && p.Recommendation != "" {
		return p.Recommendation
	}
	return fallback
}

// PortIntent returns what the port is usually for, or "".
func PortIntent(profiles []PortProfile, service model.ListeningService) string {
	if p, ok := LookupProfile(profiles, service); ok {
		return p.Intent
	}
	return ""
}

func matchesAny(process string, needles []string) bool {
	lower := strings.ToLower(process)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
