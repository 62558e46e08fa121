package collector

import (
	"context"

	"github.com/safecrab/safecrab/internal/parser"
	"github.com/safecrab/safecrab/pkg/model"
)

const (
	noteNoIP = "Could not read network interfaces (`ip addr` unavailable); " +
		"interface mapping is incomplete and public exposure may be under-reported."
	noteNoSS = "Could not list listening sockets (`ss -tulnp` unavailable); " +
		"no services were analyzed."
	noteHiddenOwners = "Some listening processes could not be identified. " +
		"Run with sudo for full process attribution."
)

// Interfaces runs `ip addr` and returns the address map used to attribute
// sockets along with the classified interface list.
func (c *Collector) Interfaces(ctx context.Context) (*parser.AddressMap, []model.Interface, error) {
	if !c.Runner.Exists("ip") {
		c.logger().Warn("ip not found on PATH")
		c.note(noteNoIP)
		return parser.NewAddressMap(), []model.Interface{}, nil
	}

	res, err := c.run(ctx, "ip", "addr")
	if err != nil {
		return nil, nil, err
	}
	if !res.Success {
		c.logger().Warn("ip addr failed", "exit", res.ExitCode)
		c.note(noteNoIP)
		return parser.NewAddressMap(), []model.Interface{}, nil
	}

	addrs := parser.ParseIPAddr(res.Stdout)
	c.logger().Debug("interfaces collected", "interfaces", addrs.Interfaces(), "addresses", addrs.Len())
	return addrs, addrs.InterfaceList(), nil
}

// Services runs `ss -tulnp` and parses it against addrs. Owners that ss
// could not name are filled in from /proc where possible.
func (c *Collector) Services(ctx context.Context, addrs *parser.AddressMap) ([]model.ListeningService, error) {
	if !c.Runner.Exists("ss") {
		c.logger().Warn("ss not found on PATH")
		c.note(noteNoSS)
		return []model.ListeningService{}, nil
	}

	res, err := c.run(ctx, "ss", "-tulnp")
	if err != nil {
		return nil, err
	}
	if !res.Success {
		c.logger().Warn("ss -tulnp failed", "exit", res.ExitCode)
		c.note(noteNoSS)
		return []model.ListeningService{}, nil
	}

	services := parser.ParseSS(res.Stdout, addrs)
	c.enrichOwners(services)

	for _, svc := range services {
		if svc.Process == model.UnknownProcess && !c.IsRoot {
			c.note(noteHiddenOwners)
			break
		}
	}

	c.logger().Debug("services collected", "count", len(services))
	return services, nil
}

// enrichOwners resolves unknown owners by joining the service to the kernel
// socket table and reading the owning pid's comm.
func (c *Collector) enrichOwners(services []model.ListeningService) {
	if c.Proc == nil {
		return
	}

	var sockets []model.Socket
	loaded := false

	for i := range services {
		svc := &services[i]
		if svc.Process != model.UnknownProcess {
			continue
		}
		if !loaded {
			sockets = c.Proc.ListListeningSockets()
			loaded = true
		}

		s, ok := matchSocket(*svc, sockets)
		if !ok || s.PID <= 0 {
			continue
		}
		name := c.Proc.Comm(s.PID)
		if name == "" {
			continue
		}
		svc.Process = name
		svc.PID = uint32(s.PID)
		c.logger().Debug("owner resolved from /proc", "port", svc.Port, "process", name, "pid", s.PID)
	}
}

func matchSocket(svc model.ListeningService, sockets []model.Socket) (model.Socket, bool) {
	bound := parser.NormalizeIP(svc.BoundIP)

	var candidates []model.Socket
	for _, s := range sockets {
		if s.Port != int(svc.Port) || s.Protocol != svc.Protocol {
			continue
		}
		addr := parser.NormalizeIP(s.Address)
		if addr == bound || (parser.IsWildcard(bound) && parser.IsWildcard(addr)) {
			return s, true
		}
		candidates = append(candidates, s)
	}

	// ss and /proc disagree on the literal; accept a unique port match
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return model.Socket{}, false
}
