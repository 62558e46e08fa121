package model

import "time"

// Result is the outcome of one scan.
type Result struct {
	Services    []ListeningService `json:"services"`
	Context     NetworkContext     `json:"context"`
	Exposures   []ServiceExposure  `json:"exposures"`
	Findings    []Finding          `json:"findings"`
	Notes       []string           `json:"notes,omitempty"`
	IsRoot      bool               `json:"isRoot"`
	GeneratedAt time.Time          `json:"generatedAt"`
}
