package model

type Process struct {
	PID     int    `json:"pid"`
	PPID    int    `json:"ppid"`
	Command string `json:"command"`
	User    string `json:"user,omitempty"`
	Cmdline string `json:"cmdline,omitempty"`
}
