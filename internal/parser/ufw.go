package parser

import (
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// ParseUFWStatus reads `ufw status verbose` output.
//
// An active firewall whose default policy cannot be read is assumed to
// deny; an inactive one lets everything through.
func ParseUFWStatus(output string) model.FirewallStatus {
	out := strings.ToLower(output)
	compact := strings.Join(strings.Fields(out), "")

	active := strings.Contains(compact, "status:active")

	var policy model.FirewallPolicy
	switch {
	case strings.Contains(compact, "default:deny(incoming)"),
		strings.Contains(compact, "default:reject(incoming)"):
		policy = model.PolicyDeny
	case strings.Contains(compact, "default:allow(incoming)"):
		policy = model.PolicyAllow
	case active:
		policy = model.PolicyDeny
	default:
		policy = model.PolicyAllow
	}

	return model.FirewallStatus{
		Enabled:        active,
		DefaultInbound: policy,
		StatusKnown:    true,
	}
}
