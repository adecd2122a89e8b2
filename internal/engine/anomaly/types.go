// Package anomaly turns a dependency graph and its metrics into scored
// structural findings.
package anomaly

import "strings"

// Type identifiers are stable: history trends key off them by name.
type Type string

const (
	TypeCircular      Type = "circular-dependency"
	TypeLayer         Type = "layer-violation"
	TypeGodPackage    Type = "god-package"
	TypeUnstableCore  Type = "unstable-core"
	TypeBidirectional Type = "bidirectional-dependency"
	TypeCodeSmell     Type = "code-smell"
	TypeOrphan        Type = "orphan-package"
	TypeDeepChain     Type = "deep-chain"
)

// Smell refines TypeCodeSmell findings.
type Smell string

const (
	SmellNone         Smell = ""
	SmellLargePackage Smell = "large-package"
	SmellTooManyDeps  Smell = "too-many-dependencies"
	SmellMissingDocs  Smell = "missing-docs"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities; critical is 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

type Anomaly struct {
	ID              string   `json:"id"`
	Type            Type     `json:"type"`
	Smell           Smell    `json:"smell,omitempty"`
	Severity        Severity `json:"severity"`
	Score           int      `json:"score"`
	Packages        []string `json:"packages"`
	Impact          string   `json:"impact"`
	Recommendation  string   `json:"recommendation"`
	EstimatedEffort string   `json:"estimatedEffort"`
}

// Kind is the type plus smell, e.g. "code-smell/missing-docs".
func (a Anomaly) Kind() string {
	if a.Smell == SmellNone {
		return string(a.Type)
	}
	return string(a.Type) + "/" + string(a.Smell)
}

type rule struct {
	severity       Severity
	score          int
	recommendation string
	effort         string
}

type ruleKey struct {
	typ   Type
	smell Smell
}

var catalog = map[ruleKey]rule{
	{TypeCircular, SmellNone}: {
		severity:       SeverityCritical,
		score:          100,
		recommendation: "Break the cycle by extracting the shared contract into a lower-level package or inverting one dependency.",
		effort:         "1-3 days",
	},
	{TypeLayer, SmellNone}: {
		severity:       SeverityHigh,
		score:          90,
		recommendation: "Move the shared code down into the lower layer or depend on an interface owned by the lower layer.",
		effort:         "0.5-2 days",
	},
	{TypeGodPackage, SmellNone}: {
		severity:       SeverityHigh,
		score:          80,
		recommendation: "Split the package along its consumers' use cases so dependents only pull in what they need.",
		effort:         "3-5 days",
	},
	{TypeUnstableCore, SmellNone}: {
		severity:       SeverityHigh,
		score:          75,
		recommendation: "Reduce outgoing dependencies of this foundational package or move it to a higher layer.",
		effort:         "1-2 days",
	},
	{TypeBidirectional, SmellNone}: {
		severity:       SeverityMedium,
		score:          70,
		recommendation: "Pick one direction for the relationship and move the reverse usage behind a callback or shared package.",
		effort:         "0.5-1 day",
	},
	{TypeCodeSmell, SmellLargePackage}: {
		severity:       SeverityMedium,
		score:          60,
		recommendation: "Split the package into smaller, focused packages.",
		effort:         "2-4 days",
	},
	{TypeOrphan, SmellNone}: {
		severity:       SeverityLow,
		score:          60,
		recommendation: "Remove the package if unused, or rename it to an entrypoint convention if it is an application.",
		effort:         "1-2 hours",
	},
	{TypeCodeSmell, SmellTooManyDeps}: {
		severity:       SeverityMedium,
		score:          50,
		recommendation: "Consolidate dependencies or split responsibilities so the package depends on fewer siblings.",
		effort:         "1-2 days",
	},
	{TypeDeepChain, SmellNone}: {
		severity:       SeverityMedium,
		score:          50,
		recommendation: "Flatten the dependency chain by removing pass-through packages.",
		effort:         "1-3 days",
	},
	{TypeCodeSmell, SmellMissingDocs}: {
		severity:       SeverityLow,
		score:          40,
		recommendation: "Add a README describing the package's purpose and public API.",
		effort:         "30 minutes",
	},
}

func newAnomaly(typ Type, smell Smell, impact string, pkgs ...string) Anomaly {
	r := catalog[ruleKey{typ, smell}]
	id := string(typ)
	if smell != SmellNone {
		id += "/" + string(smell)
	}
	return Anomaly{
		ID:              id + ":" + strings.Join(pkgs, ","),
		Type:            typ,
		Smell:           smell,
		Severity:        r.severity,
		Score:           r.score,
		Packages:        pkgs,
		Impact:          impact,
		Recommendation:  r.recommendation,
		EstimatedEffort: r.effort,
	}
}
