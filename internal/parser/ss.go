package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// users:(("sshd",pid=1234,fd=3))
var processAnnotation = regexp.MustCompile(`users:\(\("([^"]+)",pid=(\d+)`)

// localAddrColumn is where `ss -tulnp` prints Local Address:Port.
const localAddrColumn = 4

// ParseSS parses `ss -tulnp` output into listening services, resolving each
// bound address against addrs.
//
// Example:
//
//	Netid  State   Recv-Q  Send-Q  Local Address:Port  Peer Address:Port  Process
//	tcp    LISTEN  0       128     0.0.0.0:22          0.0.0.0:*          users:(("sshd",pid=1234,fd=3))
//	udp    UNCONN  0       0       127.0.0.1:53        0.0.0.0:*          users:(("systemd-resolve",pid=567,fd=12))
func ParseSS(output string, addrs *AddressMap) []model.ListeningService {
	var services []model.ListeningService

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "Netid") || strings.HasPrefix(line, "State") {
			continue
		}
		if svc, ok := parseSSLine(line, addrs); ok {
			services = append(services, svc)
		}
	}

	return services
}

func parseSSLine(line string, addrs *AddressMap) (model.ListeningService, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return model.ListeningService{}, false
	}

	proto := model.Protocol(strings.ToLower(fields[0]))
	if proto != model.ProtocolTCP && proto != model.ProtocolUDP {
		return model.ListeningService{}, false
	}

	local := fields[localAddrColumn]
	if !strings.Contains(local, ":") {
		local = ""
		for _, f := range fields[3:] {
			if strings.Contains(f, ":") {
				local = f
				break
			}
		}
	}
	if local == "" {
		return model.ListeningService{}, false
	}

	ip, zone, port, ok := parseAddress(local)
	if !ok || port > 65535 {
		return model.ListeningService{}, false
	}

	name := model.UnknownProcess
	var pid uint32
	if m := processAnnotation.FindStringSubmatch(line); m != nil {
		name = m[1]
		if n, err := strconv.ParseUint(m[2], 10, 32); err == nil {
			pid = uint32(n)
		}
	}

	svc := model.ListeningService{
		Port:       uint16(port),
		Protocol:   proto,
		Process:    name,
		PID:        pid,
		BoundIP:    ip,
		Interfaces: resolveInterfaces(ip, zone, addrs),
	}
	if err := svc.Validate(); err != nil {
		return model.ListeningService{}, false
	}
	return svc, true
}

// MapIPToInterfaces resolves a bound address to the interfaces it listens on.
//
//   - 127.0.0.1, ::1, localhost -> [lo]
//   - 0.0.0.0, ::, *            -> every known interface
//   - anything else             -> the interfaces holding that address
//
// An unknown address yields an empty slice, not [lo].
func MapIPToInterfaces(ip string, addrs *AddressMap) []string {
	switch {
	case IsLoopbackLiteral(ip):
		return []string{"lo"}
	case IsWildcard(ip):
		return nonNil(addrs.Interfaces())
	default:
		return nonNil(addrs.Lookup(ip))
	}
}

func IsLoopbackLiteral(ip string) bool {
	switch ip {
	case "127.0.0.1", "::1", "localhost":
		return true
	}
	return false
}

func IsWildcard(ip string) bool {
	switch ip {
	case "0.0.0.0", "::", "*":
		return true
	}
	return false
}

// A %zone suffix means the socket is bound to that device
// (e.g. systemd-resolved on 127.0.0.53%lo:53).
func resolveInterfaces(ip, zone string, addrs *AddressMap) []string {
	if zone != "" && !IsLoopbackLiteral(ip) {
		if IsWildcard(ip) {
			return []string{zone}
		}
		if found := addrs.Lookup(ip); len(found) > 0 {
			return found
		}
		return []string{zone}
	}
	return MapIPToInterfaces(ip, addrs)
}

// parseAddress splits the three literal forms ss prints:
// [::]:80, 0.0.0.0:22 (optionally with %zone before the port) and *:53.
func parseAddress(raw string) (ip, zone string, port uint64, ok bool) {
	var host, portStr string

	switch {
	case strings.HasPrefix(raw, "["):
		end := strings.IndexByte(raw, ']')
		if end < 0 {
			return "", "", 0, false
		}
		host = raw[1:end]
		rest := raw[end+1:]
		if strings.HasPrefix(rest, "%") {
			colon := strings.LastIndexByte(rest, ':')
			if colon < 0 {
				return "", "", 0, false
			}
			zone = rest[1:colon]
			rest = rest[colon:]
		}
		if !strings.HasPrefix(rest, ":") {
			return "", "", 0, false
		}
		portStr = rest[1:]
	case strings.HasPrefix(raw, "*:"):
		host = "*"
		portStr = raw[2:]
	default:
		colon := strings.LastIndexByte(raw, ':')
		if colon <= 0 {
			return "", "", 0, false
		}
		host = raw[:colon]
		portStr = raw[colon+1:]
		if strings.Contains(host, ":") {
			return "", "", 0, false
		}
	}

	if i := strings.IndexByte(host, '%'); i >= 0 {
		if zone == "" {
			zone = host[i+1:]
		}
		host = host[:i]
	}

	if portStr == "" || strings.TrimLeft(portStr, "0123456789") != "" {
		return "", "", 0, false
	}
	port, err := strconv.ParseUint(portStr, 10, 32)
	if err != nil {
		return "", "", 0, false
	}

	ip = NormalizeIP(host)
	if ip == "" {
		return "", "", 0, false
	}
	return ip, zone, port, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
