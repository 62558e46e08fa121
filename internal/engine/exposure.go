package engine

import (
	"slices"

	"github.com/safecrab/safecrab/internal/parser"
	"github.com/safecrab/safecrab/pkg/model"
)

// ResolveExposure returns every path by which service can be reached.
//
//   - loopback binding              -> localhost-only, nothing else
//   - VPN interface in the bind set -> vpn-overlay
//   - tunnel present on the host    -> tunnel
//   - any public interface          -> public-internet
//
// Paths accumulate, so tunnel and public-internet together mean the tunnel
// is bypassed. When nothing matches the service is treated as localhost-only.
func ResolveExposure(service model.ListeningService, ctx model.NetworkContext) []model.ExposurePath {
	if isLocalhostOnly(service) {
		return []model.ExposurePath{model.PathLocalhostOnly}
	}

	var paths []model.ExposurePath
	if isVPNExposed(service, ctx) {
		paths = append(paths, model.PathVPNOverlay)
	}
	if ctx.Tunnel.Detected {
		paths = append(paths, model.PathTunnel)
	}
	if isPublicExposed(service, ctx) {
		paths = append(paths, model.PathPublicInternet)
	}

	if len(paths) == 0 {
		return []model.ExposurePath{model.PathLocalhostOnly}
	}
	return paths
}

// ResolveAllExposures resolves each service in order.
func ResolveAllExposures(services []model.ListeningService, ctx model.NetworkContext) []model.ServiceExposure {
	exposures := make([]model.ServiceExposure, 0, len(services))
	for _, svc := range services {
		exposures = append(exposures, model.ServiceExposure{
			Service: svc,
			Paths:   ResolveExposure(svc, ctx),
		})
	}
	return exposures
}

func isLocalhostOnly(service model.ListeningService) bool {
	if parser.IsLoopbackLiteral(service.BoundIP) {
		return true
	}
	return len(service.Interfaces) == 1 && service.Interfaces[0] == "lo"
}

func isVPNExposed(service model.ListeningService, ctx model.NetworkContext) bool {
	if !ctx.VPN.Connected {
		return false
	}
	return slices.Contains(service.Interfaces, ctx.VPN.InterfaceOrDefault())
}

// isPublicExposed ignores the firewall default policy on purpose: without
// reading individual allow rules a deny default proves nothing about this
// port, so a public binding counts as reachable.
func isPublicExposed(service model.ListeningService, ctx model.NetworkContext) bool {
	for _, name := range service.Interfaces {
		if iface, ok := ctx.Interface(name); ok && iface.IsPublic {
			return true
		}
	}
	return false
}
