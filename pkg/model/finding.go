package model

import (
	"fmt"
	"slices"
)

type ExposurePath string

const (
	PathPublicInternet ExposurePath = "public-internet"
	PathVPNOverlay     ExposurePath = "vpn-overlay"
	PathTunnel         ExposurePath = "tunnel"
	PathLocalhostOnly  ExposurePath = "localhost-only"
)

type ServiceExposure struct {
	Service ListeningService `json:"service"`
	Paths   []ExposurePath   `json:"paths"`
}

func (e ServiceExposure) Has(p ExposurePath) bool {
	return slices.Contains(e.Paths, p)
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities from most to least urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

type Icon string

const (
	IconNone    Icon = ""
	IconTick    Icon = "tick"
	IconWarning Icon = "warning"
)

type Finding struct {
	Severity       Severity          `json:"severity"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Recommendation string            `json:"recommendation,omitempty"`
	Service        *ListeningService `json:"service,omitempty"`
	Icon           Icon              `json:"icon,omitempty"`
	WhyFlagged     string            `json:"whyFlagged,omitempty"`
	Confidence     string            `json:"confidence,omitempty"`
	ContextNotes   string            `json:"contextNotes,omitempty"`
}

// Port returns the related service port, or 0 for host-wide findings.
func (f Finding) Port() uint16 {
	if f.Service == nil {
		return 0
	}
	return f.Service.Port
}

// Key identifies duplicate findings, e.g. the same rule firing for the
// IPv4 and IPv6 sockets of one port.
func (f Finding) Key() string {
	return fmt.Sprintf("%s:%s:%d", f.Severity, f.Title, f.Port())
}
