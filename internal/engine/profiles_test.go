package engine

import (
	"testing"
)

func TestLookupProfile(t *testing.T) {
	profiles := DefaultProfiles()

	tests := []struct {
		name       string
		port       uint16
		process    string
		wantIntent string
	}{
		{"ssh", 22, "sshd", "SSH remote access"},
		{"mdns", 5353, "avahi-daemon", "local network discovery (mDNS/Bonjour)"},
		{"tailscale transport", 41641, "tailscaled", "Tailscale WireGuard transport"},
		{"port reused by other process", 41641, "nc", ""},
		{"no profile", 8080, "nginx", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PortIntent(profiles, svc(tt.port, tt.process, "0.0.0.0"))
			if got != tt.wantIntent {
				t.Errorf("PortIntent() = %q, want %q", got, tt.wantIntent)
			}
		})
	}
}

func TestEnhancedRecommendationFallback(t *testing.T) {
	got := EnhancedRecommendation(DefaultProfiles(), svc(8080, "nginx", "0.0.0.0"), "fallback")
	if got != "fallback" {
		t.Errorf("EnhancedRecommendation() = %q", got)
	}
}

func TestDefaultProfilesIsACopy(t *testing.T) {
	p := DefaultProfiles()
	p[0].Intent = "changed"
	if DefaultProfiles()[0].Intent == "changed" {
		t.Error("DefaultProfiles returned shared backing array")
	}
}
