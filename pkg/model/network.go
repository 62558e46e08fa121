package model

// DefaultVPNInterface is assumed when the VPN reports no interface name.
const DefaultVPNInterface = "tailscale0"

type Interface struct {
	Name     string   `json:"name"`
	IPs      []string `json:"ips"`
	IsPublic bool     `json:"isPublic"`
}

type FirewallPolicy string

const (
	PolicyAllow   FirewallPolicy = "allow"
	PolicyDeny    FirewallPolicy = "deny"
	PolicyUnknown FirewallPolicy = "unknown"
)

type FirewallStatus struct {
	Enabled        bool           `json:"enabled"`
	DefaultInbound FirewallPolicy `json:"defaultInbound"`
	StatusKnown    bool           `json:"statusKnown"`
}

type VPNStatus struct {
	Installed bool   `json:"installed"`
	Connected bool   `json:"connected"`
	Interface string `json:"interface,omitempty"` // empty when not reported
}

// InterfaceOrDefault returns the reported interface, or DefaultVPNInterface.
func (v VPNStatus) InterfaceOrDefault() string {
	if v.Interface == "" {
		return DefaultVPNInterface
	}
	return v.Interface
}

type TunnelConfidence string

const (
	ConfidenceHigh TunnelConfidence = "high"
	ConfidenceLow  TunnelConfidence = "low"
)

type TunnelStatus struct {
	Detected   bool             `json:"detected"`
	Confidence TunnelConfidence `json:"confidence"`
	Evidence   []string         `json:"evidence,omitempty"`
}

// NetworkContext is the host-wide snapshot the exposure rules run against.
// It is built once per scan and never modified afterwards.
type NetworkContext struct {
	Firewall   FirewallStatus `json:"firewall"`
	VPN        VPNStatus      `json:"vpn"`
	Tunnel     TunnelStatus   `json:"tunnel"`
	Interfaces []Interface    `json:"interfaces"`
}

func (c NetworkContext) Interface(name string) (Interface, bool) {
	for _, iface := range c.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return Interface{}, false
}
