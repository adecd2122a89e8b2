// Package layers infers an architectural tier for a package from its name.
//
// Inference is best-effort: an ordered table of (pattern, layer) rules is
// consulted and the first match wins. A wrong classification only affects
// the precision of layer-violation findings, never the graph itself.
package layers

import (
	"fmt"
	"strings"

	"monodeps/internal/shared/util"

	"github.com/gobwas/glob"
)

type Layer string

const (
	Infrastructure Layer = "infrastructure"
	Core           Layer = "core"
	Plugin         Layer = "plugin"
	Feature        Layer = "feature"
	UI             Layer = "ui"
	Unknown        Layer = "unknown"
)

var levels = map[Layer]int{
	Infrastructure: 0,
	Core:           1,
	Plugin:         2,
	Feature:        3,
	UI:             4,
	Unknown:        5,
}

// All returns every layer in level order.
func All() []Layer {
	return []Layer{Infrastructure, Core, Plugin, Feature, UI, Unknown}
}

// Level orders layers from infrastructure (0) to unknown (5). The empty
// layer is treated as unknown.
func (l Layer) Level() int {
	if lvl, ok := levels[l]; ok {
		return lvl
	}
	return levels[Unknown]
}

func (l Layer) String() string {
	if l == "" {
		return string(Unknown)
	}
	return string(l)
}

// Parse resolves a layer name, case-insensitively.
func Parse(raw string) (Layer, error) {
	l := Layer(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := levels[l]; !ok {
		return "", fmt.Errorf("unknown layer %q", raw)
	}
	return l, nil
}

type Rule struct {
	Pattern string
	Layer   Layer
}

// DefaultRules is the naming convention table. Order matters.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "infra", Layer: Infrastructure},
		{Pattern: "shared", Layer: Infrastructure},
		{Pattern: "utils", Layer: Infrastructure},
		{Pattern: "types", Layer: Infrastructure},
		{Pattern: "config", Layer: Infrastructure},
		{Pattern: "*-config", Layer: Infrastructure},
		{Pattern: "logger", Layer: Infrastructure},
		{Pattern: "core", Layer: Core},
		{Pattern: "cli", Layer: Core},
		{Pattern: "*-cli", Layer: Core},
		{Pattern: "workflow", Layer: Core},
		{Pattern: "runner", Layer: Core},
		{Pattern: "qa-", Layer: Core},
		{Pattern: "intelligence", Layer: Plugin},
		{Pattern: "analytics", Layer: Plugin},
		{Pattern: "ai-", Layer: Plugin},
		{Pattern: "plugin", Layer: Plugin},
		{Pattern: "*-plugin", Layer: Plugin},
		{Pattern: "feature", Layer: Feature},
		{Pattern: "features", Layer: Feature},
		{Pattern: "ui", Layer: UI},
		{Pattern: "*-ui", Layer: UI},
		{Pattern: "api", Layer: UI},
		{Pattern: "*-api", Layer: UI},
		{Pattern: "web", Layer: UI},
		{Pattern: "components", Layer: UI},
	}
}

type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	raw        string
	layer      Layer
	isWildcard bool
	glob       glob.Glob
}

// NewClassifier compiles rules. Patterns containing glob metacharacters are
// matched against the whole unscoped name. A plain pattern matches the
// leading dash-separated segment: "cli" matches "cli" and "cli-tools" but
// not "client-sdk". A plain pattern ending in "-" is a literal prefix.
func NewClassifier(rules []Rule) (*Classifier, error) {
	c := &Classifier{rules: make([]compiledRule, 0, len(rules))}
	for i, rule := range rules {
		if _, ok := levels[rule.Layer]; !ok {
			return nil, fmt.Errorf("rule %d: unknown layer %q", i, rule.Layer)
		}
		pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		cr := compiledRule{
			raw:        pattern,
			layer:      rule.Layer,
			isWildcard: strings.ContainsAny(pattern, "*?[]{}"),
		}
		if cr.isWildcard {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, rule.Pattern, err)
			}
			cr.glob = g
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) Classify(name string) Layer {
	if c == nil {
		return Unknown
	}
	base := strings.ToLower(UnscopedName(name))
	for _, r := range c.rules {
		if r.isWildcard {
			if r.glob.Match(base) {
				return r.layer
			}
			continue
		}
		if r.matchesLeading(base) {
			return r.layer
		}
	}
	return Unknown
}

func (r compiledRule) matchesLeading(base string) bool {
	if strings.HasSuffix(r.raw, "-") {
		return strings.HasPrefix(base, r.raw)
	}
	return base == r.raw || strings.HasPrefix(base, r.raw+"-")
}

// UnscopedName strips an npm scope ("@scope/") from a package name.
func UnscopedName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			return util.NormalizePatternPath(name[idx+1:])
		}
	}
	return name
}
