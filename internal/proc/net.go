package proc

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/hex"
	"io/fs"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/safecrab/safecrab/pkg/model"
)

var stateMap = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

type socketTable struct {
	path     string
	protocol model.Protocol
	ipv6     bool
	// state that marks a bound, listening socket
	listen string
}

var socketTables = []socketTable{
	{"net/tcp", model.ProtocolTCP, false, "0A"},
	{"net/tcp6", model.ProtocolTCP, true, "0A"},
	// unconnected udp sockets sit in CLOSE
	{"net/udp", model.ProtocolUDP, false, "07"},
	{"net/udp6", model.ProtocolUDP, true, "07"},
}

func (i *Inspector) readSockets() map[string]model.Socket {
	sockets := make(map[string]model.Socket)

	for _, table := range socketTables {
		data, err := fs.ReadFile(i.FS, table.path)
		if err != nil {
			continue
		}
		for inode, s := range parseSocketTable(data, table) {
			sockets[inode] = s
		}
	}
	return sockets
}

func parseSocketTable(data []byte, table socketTable) map[string]model.Socket {
	sockets := make(map[string]model.Socket)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Scan() // skip header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		local := fields[1]
		stateHex := fields[3]
		inode := fields[9]

		if stateHex != table.listen || inode == "0" {
			continue
		}
		state, ok := stateMap[stateHex]
		if !ok {
			state = "UNKNOWN"
		}

		addr, port := parseAddr(local, table.ipv6)
		if port == 0 {
			continue
		}
		sockets[inode] = model.Socket{
			Inode:    inode,
			Port:     port,
			Address:  addr,
			State:    state,
			Protocol: table.protocol,
		}
	}
	return sockets
}

func parseAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	portHex := parts[1]
	port, _ := strconv.ParseInt(portHex, 16, 32)

	ipHex := parts[0]
	b, err := hex.DecodeString(ipHex)
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		// /proc/net/tcp6 stores IPv6 as 4 little-endian 32-bit groups
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	ip := strconv.Itoa(int(b[3])) + "." +
		strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[0]))

	return ip, int(port)
}

// ListListeningSockets joins the kernel's listening sockets with the pids
// holding them open. Sockets whose owner cannot be read (other users'
// processes without root) are returned with PID 0.
func (i *Inspector) ListListeningSockets() []model.Socket {
	sockets := i.readSockets()
	if len(sockets) == 0 {
		return nil
	}

	owned := make(map[string]bool, len(sockets))
	var out []model.Socket

	entries, _ := fs.ReadDir(i.FS, ".")

	for _, p := range entries {
		if !p.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(p.Name())
		if err != nil {
			continue
		}

		fdPath := p.Name() + "/fd"
		fds, err := fs.ReadDir(i.FS, fdPath)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := fs.ReadLink(i.FS, fdPath+"/"+fd.Name())
			if err != nil {
				continue
			}
			inode, ok := socketInode(link)
			if !ok || owned[inode] {
				continue
			}
			if s, ok := sockets[inode]; ok {
				s.PID = pid
				owned[inode] = true
				out = append(out, s)
			}
		}
	}

	for inode, s := range sockets {
		if !owned[inode] {
			out = append(out, s)
		}
	}

	slices.SortFunc(out, func(a, b model.Socket) int {
		return cmp.Or(
			cmp.Compare(a.Port, b.Port),
			cmp.Compare(a.Protocol, b.Protocol),
			cmp.Compare(a.Address, b.Address),
		)
	})
	return out
}

func socketInode(link string) (string, bool) {
	if !strings.HasPrefix(link, "socket:[") || !strings.HasSuffix(link, "]") {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]"), true
}
