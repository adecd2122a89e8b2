package anomaly

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"monodeps/internal/engine/discovery"
	"monodeps/internal/engine/graph"
	"monodeps/internal/engine/layers"
)

type fixture struct {
	deps map[string][]string
	loc  map[string]int
	docs bool
}

func (f fixture) detect(t *testing.T, opts Options) []Anomaly {
	t.Helper()
	names := make([]string, 0, len(f.deps))
	for name := range f.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	classifier := layers.Default()
	pkgs := make([]discovery.Package, 0, len(names))
	for _, name := range names {
		pkg := discovery.Package{
			Name:      name,
			Layer:     classifier.Classify(name),
			HasReadme: f.docs,
			Size:      discovery.Size{FileCount: 1, LinesOfCode: f.loc[name]},
		}
		for _, dep := range f.deps[name] {
			pkg.Dependencies = append(pkg.Dependencies, discovery.Dependency{Name: dep})
		}
		pkgs = append(pkgs, pkg)
	}

	g := graph.Build(pkgs, graph.BuildOptions{})
	d, err := NewDetector(opts)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d.Detect(g, g.ComputeMetrics(), g.DetectCycles())
}

func ofType(anomalies []Anomaly, typ Type, smell Smell) []Anomaly {
	var out []Anomaly
	for _, a := range anomalies {
		if a.Type == typ && a.Smell == smell {
			out = append(out, a)
		}
	}
	return out
}

func TestDetect_SimpleCycle(t *testing.T) {
	got := fixture{deps: map[string][]string{"A": {"B"}, "B": {"A"}}, docs: true}.detect(t, DefaultOptions())

	cycles := ofType(got, TypeCircular, SmellNone)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 circular anomaly, got %d (%v)", len(cycles), got)
	}
	c := cycles[0]
	if c.Score != 100 || c.Severity != SeverityCritical {
		t.Fatalf("unexpected score/severity %d/%s", c.Score, c.Severity)
	}
	if !reflect.DeepEqual(c.Packages, []string{"A", "B"}) {
		t.Fatalf("unexpected packages %v", c.Packages)
	}
	if c.ID != "circular-dependency:A,B" {
		t.Fatalf("unexpected id %q", c.ID)
	}
	if !strings.Contains(c.Impact, "A -> B -> A") {
		t.Fatalf("expected the closed path in impact, got %q", c.Impact)
	}
	if got[0].Type != TypeCircular {
		t.Fatalf("highest score must come first, got %s", got[0].Type)
	}
	// The mutual edge is already explained by the cycle.
	if b := ofType(got, TypeBidirectional, SmellNone); len(b) != 0 {
		t.Fatalf("bidirectional must not repeat a reported cycle: %v", b)
	}
}

func TestDetect_Bidirectional(t *testing.T) {
	pkgs := []discovery.Package{
		{Name: "A", HasReadme: true, Dependencies: []discovery.Dependency{{Name: "B"}}},
		{Name: "B", HasReadme: true, Dependencies: []discovery.Dependency{{Name: "A"}}},
	}
	g := graph.Build(pkgs, graph.BuildOptions{})
	d, err := NewDetector(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	// Without cycle information the mutual edge is reported on its own.
	got := ofType(d.Detect(g, g.ComputeMetrics(), nil), TypeBidirectional, SmellNone)
	if len(got) != 1 || got[0].Score != 70 || !reflect.DeepEqual(got[0].Packages, []string{"A", "B"}) {
		t.Fatalf("unexpected bidirectional anomalies %v", got)
	}
}

func TestDetect_EmptyMetricsRunsGraphRulesOnly(t *testing.T) {
	classifier := layers.Default()
	pkgs := []discovery.Package{
		{Name: "infra-x", Layer: classifier.Classify("infra-x"), Dependencies: []discovery.Dependency{{Name: "feature-y"}}},
		{Name: "feature-y", Layer: classifier.Classify("feature-y"), Size: discovery.Size{FileCount: 3, LinesOfCode: 20000}},
	}
	g := graph.Build(pkgs, graph.BuildOptions{})
	d, err := NewDetector(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	got := d.Detect(g, map[string]graph.Metrics{}, nil)
	kinds := Count(got)
	want := map[string]int{
		"layer-violation":          1,
		"code-smell/large-package": 1,
		"code-smell/missing-docs":  2,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("expected only graph rules to fire, got %v", kinds)
	}
}

func TestDetect_GodPackage(t *testing.T) {
	deps := map[string][]string{"X": nil}
	for i := 0; i < 16; i++ {
		deps[fmt.Sprintf("consumer-%02d", i)] = []string{"X"}
	}
	got := fixture{deps: deps, docs: true}.detect(t, DefaultOptions())

	gods := ofType(got, TypeGodPackage, SmellNone)
	if len(gods) != 1 {
		t.Fatalf("expected 1 god-package anomaly, got %v", gods)
	}
	if gods[0].Score != 80 || !reflect.DeepEqual(gods[0].Packages, []string{"X"}) {
		t.Fatalf("unexpected god-package anomaly %+v", gods[0])
	}
}

func TestDetect_GodPackageAtThreshold(t *testing.T) {
	deps := map[string][]string{"X": nil}
	for i := 0; i < 15; i++ {
		deps[fmt.Sprintf("consumer-%02d", i)] = []string{"X"}
	}
	got := fixture{deps: deps, docs: true}.detect(t, DefaultOptions())
	if gods := ofType(got, TypeGodPackage, SmellNone); len(gods) != 0 {
		t.Fatalf("15 dependents is not above the threshold: %v", gods)
	}
}

func TestDetect_Orphans(t *testing.T) {
	got := fixture{deps: map[string][]string{
		"@devkit/foo-cli":      nil,
		"@devkit/bar-internal": nil,
	}, docs: true}.detect(t, DefaultOptions())

	orphans := ofType(got, TypeOrphan, SmellNone)
	if len(orphans) != 1 {
		t.Fatalf("expected exactly one orphan, got %v", orphans)
	}
	if orphans[0].Score != 60 || orphans[0].Packages[0] != "@devkit/bar-internal" {
		t.Fatalf("unexpected orphan %+v", orphans[0])
	}
}

func TestDetect_LayerViolation(t *testing.T) {
	got := fixture{deps: map[string][]string{
		"infra-x":   {"feature-y"},
		"feature-y": nil,
	}, docs: true}.detect(t, DefaultOptions())

	violations := ofType(got, TypeLayer, SmellNone)
	if len(violations) != 1 {
		t.Fatalf("expected 1 layer violation, got %v", violations)
	}
	v := violations[0]
	if v.Score != 90 || !reflect.DeepEqual(v.Packages, []string{"infra-x", "feature-y"}) {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestDetect_LayerDownwardEdgeIsFine(t *testing.T) {
	got := fixture{deps: map[string][]string{
		"feature-y": {"infra-x"},
		"infra-x":   nil,
	}, docs: true}.detect(t, DefaultOptions())
	if v := ofType(got, TypeLayer, SmellNone); len(v) != 0 {
		t.Fatalf("higher layers may depend on lower ones: %v", v)
	}
}

func TestDetect_IgnoreUnknown(t *testing.T) {
	f := fixture{deps: map[string][]string{
		"core-x":       {"bar-internal"},
		"bar-internal": nil,
	}, docs: true}

	if v := ofType(f.detect(t, DefaultOptions()), TypeLayer, SmellNone); len(v) != 1 {
		t.Fatalf("depending on an unknown-layer package is a violation by default: %v", v)
	}

	opts := DefaultOptions()
	opts.IgnoreUnknown = true
	if v := ofType(f.detect(t, opts), TypeLayer, SmellNone); len(v) != 0 {
		t.Fatalf("expected unknown layers to be ignored: %v", v)
	}
}

func TestDetect_UnstableCore(t *testing.T) {
	deps := map[string][]string{"core-engine": {"infra-a", "infra-b", "infra-c"}}
	deps["infra-a"] = nil
	deps["infra-b"] = nil
	deps["infra-c"] = nil
	got := fixture{deps: deps, docs: true}.detect(t, DefaultOptions())

	unstable := ofType(got, TypeUnstableCore, SmellNone)
	if len(unstable) != 1 || unstable[0].Packages[0] != "core-engine" {
		t.Fatalf("expected core-engine to be unstable, got %v", unstable)
	}
	if unstable[0].Score != 75 || unstable[0].Severity != SeverityHigh {
		t.Fatalf("unexpected unstable-core anomaly %+v", unstable[0])
	}
}

func TestDetect_CodeSmells(t *testing.T) {
	deps := map[string][]string{"hub": nil}
	for i := 0; i < 11; i++ {
		name := fmt.Sprintf("leaf-%02d", i)
		deps[name] = nil
		deps["hub"] = append(deps["hub"], name)
	}
	got := fixture{deps: deps, loc: map[string]int{"leaf-00": 10001, "leaf-01": 10000}}.detect(t, DefaultOptions())

	large := ofType(got, TypeCodeSmell, SmellLargePackage)
	if len(large) != 1 || large[0].Packages[0] != "leaf-00" || large[0].Score != 60 {
		t.Fatalf("unexpected large-package anomalies %v", large)
	}
	many := ofType(got, TypeCodeSmell, SmellTooManyDeps)
	if len(many) != 1 || many[0].Packages[0] != "hub" || many[0].Score != 50 {
		t.Fatalf("unexpected too-many-dependencies anomalies %v", many)
	}
	docs := ofType(got, TypeCodeSmell, SmellMissingDocs)
	if len(docs) != 12 || docs[0].Score != 40 {
		t.Fatalf("expected a missing-docs anomaly per package, got %d", len(docs))
	}
	if got[len(got)-1].Score != 40 {
		t.Fatalf("lowest scores must come last, got %d", got[len(got)-1].Score)
	}
}

func TestDetect_DeepChain(t *testing.T) {
	deps := make(map[string][]string)
	for i := 0; i < 9; i++ {
		deps[fmt.Sprintf("p%d", i)] = []string{fmt.Sprintf("p%d", i+1)}
	}
	deps["p9"] = nil
	got := fixture{deps: deps, docs: true}.detect(t, DefaultOptions())

	deep := ofType(got, TypeDeepChain, SmellNone)
	// depth(p0)=9, depth(p1)=8; depth(p2)=7 does not exceed the threshold.
	if len(deep) != 2 || deep[0].Packages[0] != "p0" || deep[1].Packages[0] != "p1" {
		t.Fatalf("unexpected deep-chain anomalies %v", deep)
	}
}

func TestDetect_SortedAndDeterministic(t *testing.T) {
	f := fixture{deps: map[string][]string{
		"A":         {"B"},
		"B":         {"A", "infra-x"},
		"infra-x":   {"feature-y"},
		"feature-y": nil,
		"lonely":    nil,
	}}

	first := f.detect(t, DefaultOptions())
	for i := 1; i < len(first); i++ {
		if first[i-1].Score < first[i].Score {
			t.Fatalf("not sorted by score at %d: %d < %d", i, first[i-1].Score, first[i].Score)
		}
	}
	for i := 0; i < 3; i++ {
		if again := f.detect(t, DefaultOptions()); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestDetect_TiesKeepRuleOrder(t *testing.T) {
	// large-package and orphan-package both score 60; large is detected first.
	got := fixture{deps: map[string][]string{"solo": nil}, loc: map[string]int{"solo": 20000}, docs: true}.detect(t, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("expected 2 anomalies, got %v", got)
	}
	if got[0].Smell != SmellLargePackage || got[1].Type != TypeOrphan {
		t.Fatalf("unexpected order %s, %s", got[0].Kind(), got[1].Kind())
	}
}

func TestNewDetector_InvalidPattern(t *testing.T) {
	if _, err := NewDetector(Options{ExpectedOrphans: []string{"[cli"}}); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func TestAnomaly_IDAndKind(t *testing.T) {
	a := newAnomaly(TypeCodeSmell, SmellMissingDocs, "", "pkg")
	if a.ID != "code-smell/missing-docs:pkg" {
		t.Fatalf("unexpected id %q", a.ID)
	}
	if a.Kind() != "code-smell/missing-docs" {
		t.Fatalf("unexpected kind %q", a.Kind())
	}
	if a.Recommendation == "" || a.EstimatedEffort == "" {
		t.Fatal("catalog text missing")
	}
	if got := Count([]Anomaly{a, a}); got["code-smell/missing-docs"] != 2 {
		t.Fatalf("unexpected counts %v", got)
	}
}
