package model

type SourceType string

const (
	SourceContainer SourceType = "container"
	SourceSystemd   SourceType = "systemd"
	SourceInit      SourceType = "init"
	SourceUnknown   SourceType = "unknown"
)

// Source describes what manages a listening process.
type Source struct {
	Type    SourceType        `json:"type"`
	Name    string            `json:"name,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
