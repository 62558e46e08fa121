package engine

import (
	"slices"

	"github.com/safecrab/safecrab/pkg/model"
)

// DefaultHighRiskProcesses are process-name fragments of AI/ML runtimes and
// generic dev servers, which tend to expose unauthenticated APIs.
var DefaultHighRiskProcesses = []string{"ollama", "llama", "python", "node", "uvicorn", "fastapi"}

// Analyzer runs the exposure rules. The zero value uses no extra process
// names and no port profiles; use NewAnalyzer for the defaults.
type Analyzer struct {
	HighRiskProcesses []string
	Profiles          []PortProfile
}

// NewAnalyzer returns an Analyzer with the built-in denylist and profiles,
// extended by the given extras.
func NewAnalyzer(extraHighRisk []string, extraProfiles []PortProfile) *Analyzer {
	return &Analyzer{
		HighRiskProcesses: append(slices.Clone(DefaultHighRiskProcesses), extraHighRisk...),
		Profiles:          append(extraProfiles[:len(extraProfiles):len(extraProfiles)], DefaultProfiles()...),
	}
}

// AnalyzeExposures runs the default rule set.
func AnalyzeExposures(exposures []model.ServiceExposure, ctx model.NetworkContext) []model.Finding {
	return NewAnalyzer(nil, nil).Analyze(exposures, ctx)
}

// Analyze evaluates every service rule against every exposure, then the
// host-wide rules once. Findings are deduplicated by Finding.Key (first
// wins) and stably sorted by severity, so rule order breaks ties.
func (a *Analyzer) Analyze(exposures []model.ServiceExposure, ctx model.NetworkContext) []model.Finding {
	var findings []model.Finding

	rules := a.serviceRules()
	for _, exp := range exposures {
		for _, r := range rules {
			if f := r.check(exp, ctx); f != nil {
				findings = append(findings, *f)
			}
		}
	}

	for _, r := range contextRules {
		findings = append(findings, r.check(ctx)...)
	}

	return sortBySeverity(deduplicate(findings))
}

func deduplicate(findings []model.Finding) []model.Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		key := f.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func sortBySeverity(findings []model.Finding) []model.Finding {
	slices.SortStableFunc(findings, func(a, b model.Finding) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
	return findings
}
