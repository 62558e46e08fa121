// Package parser turns the text output of ip, ss and ufw into typed facts.
// Parsers are best effort: rows they cannot understand are skipped.
package parser

import (
	"net/netip"
	"regexp"
	"slices"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

// interface header: "2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 ..."
var ifaceHeader = regexp.MustCompile(`^\d+:\s+([^:]+):`)

// Name prefixes of virtual, container, VPN and tunnel interfaces. None of
// them face the public internet directly.
var privatePrefixes = []string{
	"docker",
	"tailscale",
	"cloudflare",
	"veth",
	"br-",
	"virbr",
	"cni",
	"flannel",
	"cali",
	"lxc",
	"podman",
	"wg",
	"zt",
	"tun",
}

// AddressMap maps normalized IP addresses to the interfaces holding them.
type AddressMap struct {
	byIP   map[string][]string
	ips    []string
	ifaces []string
}

func NewAddressMap() *AddressMap {
	return &AddressMap{byIP: make(map[string][]string)}
}

// Add records that iface holds ip. Duplicates are ignored.
func (m *AddressMap) Add(ip, iface string) {
	ip = NormalizeIP(ip)
	if ip == "" || iface == "" {
		return
	}
	owners, ok := m.byIP[ip]
	if !ok {
		m.ips = append(m.ips, ip)
	}
	if !slices.Contains(owners, iface) {
		m.byIP[ip] = append(owners, iface)
	}
	if !slices.Contains(m.ifaces, iface) {
		m.ifaces = append(m.ifaces, iface)
	}
}

// Lookup returns the interfaces holding ip, or nil.
func (m *AddressMap) Lookup(ip string) []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.byIP[NormalizeIP(ip)])
}

// Interfaces returns every interface name in the order it was first seen.
func (m *AddressMap) Interfaces() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.ifaces)
}

func (m *AddressMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byIP)
}

// InterfaceList groups the map by interface name and classifies each
// interface as public or private.
func (m *AddressMap) InterfaceList() []model.Interface {
	if m == nil {
		return nil
	}
	grouped := make(map[string][]string, len(m.ifaces))
	for _, ip := range m.ips {
		for _, iface := range m.byIP[ip] {
			grouped[iface] = append(grouped[iface], ip)
		}
	}

	out := make([]model.Interface, 0, len(m.ifaces))
	for _, name := range m.ifaces {
		ips := grouped[name]
		out = append(out, model.Interface{
			Name:     name,
			IPs:      ips,
			IsPublic: IsPublicInterface(name, ips),
		})
	}
	return out
}

// ParseIPAddr parses `ip addr` output.
//
// Example:
//
//	1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536 qdisc noqueue state UNKNOWN
//	    inet 127.0.0.1/8 scope host lo
//	2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc fq_codel state UP
//	    inet 192.168.1.100/24 brd 192.168.1.255 scope global eth0
func ParseIPAddr(output string) *AddressMap {
	m := NewAddressMap()
	current := ""

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if match := ifaceHeader.FindStringSubmatch(trimmed); match != nil {
			current = interfaceName(match[1])
			continue
		}

		if current == "" {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "inet":
			if addr, ok := parseInetField(fields[1]); ok && addr.Is4() {
				m.Add(addr.String(), current)
			}
		case "inet6":
			if addr, ok := parseInetField(fields[1]); ok && addr.Is6() {
				m.Add(addr.String(), current)
			}
		}
	}

	return m
}

// ParseInterfaces is shorthand for ParseIPAddr(output).InterfaceList().
func ParseInterfaces(output string) []model.Interface {
	return ParseIPAddr(output).InterfaceList()
}

// IsPublicInterface reports whether an interface faces the outside world.
func IsPublicInterface(name string, ips []string) bool {
	if name == "lo" || strings.HasPrefix(name, "lo:") {
		return false
	}

	for _, prefix := range privatePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	for _, ip := range ips {
		if !isLoopback(ip) {
			return true
		}
	}
	return false
}

// NormalizeIP lowercases, trims and strips the IPv6 zone from an address.
// Literals that are not IP addresses (e.g. "*", "localhost") are returned
// lowercased.
func NormalizeIP(ip string) string {
	ip = strings.ToLower(strings.TrimSpace(ip))
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}
	if addr, err := netip.ParseAddr(ip); err == nil {
		return addr.String()
	}
	return ip
}

func isLoopback(ip string) bool {
	addr, err := netip.ParseAddr(NormalizeIP(ip))
	if err != nil {
		return false
	}
	return addr.IsLoopback()
}

// "fe80::abcd%eth0/64" -> fe80::abcd
func parseInetField(field string) (netip.Addr, bool) {
	if i := strings.IndexByte(field, '/'); i >= 0 {
		field = field[:i]
	}
	if i := strings.IndexByte(field, '%'); i >= 0 {
		field = field[:i]
	}
	addr, err := netip.ParseAddr(strings.ToLower(field))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.WithZone(""), true
}

// "veth1a2b@if5" -> veth1a2b
func interfaceName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	return name
}
