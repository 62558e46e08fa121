package model

import (
	"errors"
	"fmt"
)

type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// UnknownProcess is the owner name used when a socket row carries no
// process annotation.
const UnknownProcess = "unknown"

// ListeningService is one listening socket as reported by ss.
type ListeningService struct {
	Port       uint16   `json:"port"`
	Protocol   Protocol `json:"protocol"`
	Process    string   `json:"process"`
	PID        uint32   `json:"pid"`
	BoundIP    string   `json:"boundIp"`
	Interfaces []string `json:"interfaces"` // e.g. ["eth0", "lo", "tailscale0"]
}

var (
	ErrInvalidPort     = errors.New("port out of range")
	ErrInvalidProtocol = errors.New("unsupported protocol")
	ErrMissingAddress  = errors.New("missing bound address")
)

func (s ListeningService) Validate() error {
	if s.Port == 0 {
		return fmt.Errorf("port %d: %w", s.Port, ErrInvalidPort)
	}
	if s.Protocol != ProtocolTCP && s.Protocol != ProtocolUDP {
		return fmt.Errorf("%q: %w", s.Protocol, ErrInvalidProtocol)
	}
	if s.BoundIP == "" {
		return ErrMissingAddress
	}
	return nil
}

// Socket is a kernel socket table entry joined with its owning pid.
type Socket struct {
	Inode    string
	PID      int
	Port     int
	Address  string // 0.0.0.0, 127.0.0.1, ::
	State    string
	Protocol Protocol
}
