package anomaly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"monodeps/internal/engine/graph"
	"monodeps/internal/engine/layers"
)

type Thresholds struct {
	GodPackageAfferent      int
	UnstableCoreInstability float64
	LargePackageLOC         int
	ManyDependencies        int
	DeepChainDepth          int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GodPackageAfferent:      15,
		UnstableCoreInstability: 0.7,
		LargePackageLOC:         10000,
		ManyDependencies:        10,
		DeepChainDepth:          7,
	}
}

type Options struct {
	Thresholds Thresholds
	// ExpectedOrphans are globs matched against the unscoped, lowercased
	// package name. Matching packages may have no dependents.
	ExpectedOrphans []string
	// IgnoreUnknown skips layer checks for edges touching an unclassified
	// package.
	IgnoreUnknown bool
}

func DefaultExpectedOrphans() []string {
	return []string{"*-cli", "*-plugin", "*-bin", "*-app", "cli", "app"}
}

func DefaultOptions() Options {
	return Options{
		Thresholds:      DefaultThresholds(),
		ExpectedOrphans: DefaultExpectedOrphans(),
	}
}

type Detector struct {
	opts    Options
	orphans []glob.Glob
}

func NewDetector(opts Options) (*Detector, error) {
	d := &Detector{opts: opts}
	for _, pattern := range opts.ExpectedOrphans {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("compile expected orphan pattern %q: %w", pattern, err)
		}
		d.orphans = append(d.orphans, g)
	}
	return d, nil
}

// Detect applies every rule and returns the findings ordered by descending
// score. Equal scores keep detection order: rule order first, then package
// name. A package missing from metrics is skipped by the metric rules.
func (d *Detector) Detect(g *graph.Graph, metrics map[string]graph.Metrics, cycles [][]string) []Anomaly {
	out := make([]Anomaly, 0)
	if g == nil {
		return out
	}
	names := g.Names()
	th := d.opts.Thresholds

	for _, cycle := range cycles {
		if len(cycle) == 0 {
			continue
		}
		// Packages and ID list each member once; Impact keeps the closed path.
		members := graph.CycleMembers(cycle)
		out = append(out, newAnomaly(TypeCircular, SmellNone,
			fmt.Sprintf("%d packages cannot be built or versioned independently: %s", len(members), strings.Join(cycle, " -> ")),
			members...))
	}

	for _, e := range g.Edges() {
		from := d.layerOf(g, e.From)
		to := d.layerOf(g, e.To)
		if d.opts.IgnoreUnknown && (from == layers.Unknown || to == layers.Unknown) {
			continue
		}
		if from.Level() < to.Level() {
			out = append(out, newAnomaly(TypeLayer, SmellNone,
				fmt.Sprintf("%s (%s) depends on %s (%s), a higher layer", e.From, from, e.To, to),
				e.From, e.To))
		}
	}

	for _, name := range names {
		m, ok := metrics[name]
		if ok && m.AfferentCoupling > th.GodPackageAfferent {
			out = append(out, newAnomaly(TypeGodPackage, SmellNone,
				fmt.Sprintf("%d packages depend on %s; any change ripples widely", m.AfferentCoupling, name),
				name))
		}
	}

	for _, name := range names {
		m, ok := metrics[name]
		if !ok {
			continue
		}
		layer := d.layerOf(g, name)
		if (layer == layers.Infrastructure || layer == layers.Core) && m.Instability > th.UnstableCoreInstability {
			out = append(out, newAnomaly(TypeUnstableCore, SmellNone,
				fmt.Sprintf("%s package %s has instability %.2f", layer, name, m.Instability),
				name))
		}
	}

	for _, e := range g.Edges() {
		if e.From >= e.To || !g.HasEdge(e.To, e.From) {
			continue
		}
		if graph.SharesCycle(cycles, e.From, e.To) {
			continue
		}
		out = append(out, newAnomaly(TypeBidirectional, SmellNone,
			fmt.Sprintf("%s and %s depend on each other", e.From, e.To),
			e.From, e.To))
	}

	for _, name := range names {
		pkg, _ := g.Package(name)
		if pkg.Size.LinesOfCode > th.LargePackageLOC {
			out = append(out, newAnomaly(TypeCodeSmell, SmellLargePackage,
				fmt.Sprintf("%s has %d lines of code in %d files", name, pkg.Size.LinesOfCode, pkg.Size.FileCount),
				name))
		}
	}

	for _, name := range names {
		m, ok := metrics[name]
		if ok && m.AfferentCoupling == 0 && !d.expectedOrphan(name) {
			out = append(out, newAnomaly(TypeOrphan, SmellNone,
				fmt.Sprintf("no package in the workspace depends on %s", name),
				name))
		}
	}

	for _, name := range names {
		m, ok := metrics[name]
		if ok && m.EfferentCoupling > th.ManyDependencies {
			out = append(out, newAnomaly(TypeCodeSmell, SmellTooManyDeps,
				fmt.Sprintf("%s depends on %d workspace packages", name, m.EfferentCoupling),
				name))
		}
	}

	for _, name := range names {
		m, ok := metrics[name]
		if ok && m.Depth > th.DeepChainDepth {
			out = append(out, newAnomaly(TypeDeepChain, SmellNone,
				fmt.Sprintf("%s sits on a dependency chain %d packages deep", name, m.Depth),
				name))
		}
	}

	for _, name := range names {
		pkg, _ := g.Package(name)
		if !pkg.HasReadme {
			out = append(out, newAnomaly(TypeCodeSmell, SmellMissingDocs,
				fmt.Sprintf("%s has no README next to its manifest", name),
				name))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (d *Detector) layerOf(g *graph.Graph, name string) layers.Layer {
	pkg, ok := g.Package(name)
	if !ok || pkg.Layer == "" {
		return layers.Unknown
	}
	return pkg.Layer
}

func (d *Detector) expectedOrphan(name string) bool {
	short := strings.ToLower(layers.UnscopedName(name))
	for _, g := range d.orphans {
		if g.Match(short) {
			return true
		}
	}
	return false
}

// Count groups anomalies by Kind.
func Count(anomalies []Anomaly) map[string]int {
	out := make(map[string]int)
	for _, a := range anomalies {
		out[a.Kind()]++
	}
	return out
}
