package graph

import (
	"reflect"
	"testing"
)

func TestTopologicalSort_Diamond(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": nil,
	})

	ord := g.TopologicalSort()
	want := [][]string{{"D"}, {"B", "C"}, {"A"}}
	if !reflect.DeepEqual(ord.Layers, want) {
		t.Fatalf("expected layers %v, got %v", want, ord.Layers)
	}
	if !ord.Complete() {
		t.Fatalf("expected complete ordering, circular=%v", ord.Circular)
	}
	if !reflect.DeepEqual(ord.Order, []string{"D", "B", "C", "A"}) {
		t.Fatalf("unexpected order %v", ord.Order)
	}
}

func TestTopologicalSort_DependenciesFirst(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"app":    {"ui", "core", "infra"},
		"ui":     {"core"},
		"core":   {"infra"},
		"infra":  nil,
		"island": nil,
	})

	ord := g.TopologicalSort()
	for _, e := range g.Edges() {
		from, _ := ord.LayerIndex(e.From)
		to, _ := ord.LayerIndex(e.To)
		if from <= to {
			t.Errorf("%s (layer %d) must come after %s (layer %d)", e.From, from, e.To, to)
		}
	}
	if idx, ok := ord.LayerIndex("island"); !ok || idx != 0 {
		t.Errorf("isolated package should be in layer 0, got %d (%v)", idx, ok)
	}
	if _, ok := ord.LayerIndex("missing"); ok {
		t.Error("unexpected layer for unknown package")
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": {"A"},
		"D": nil,
	})

	ord := g.TopologicalSort()
	if ord.Complete() {
		t.Fatal("expected incomplete ordering")
	}
	if !reflect.DeepEqual(ord.Order, []string{"D"}) {
		t.Fatalf("expected only D to be ordered, got %v", ord.Order)
	}
	// C is blocked behind the cycle, so it is reported too.
	if !reflect.DeepEqual(ord.Circular, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected circular set %v", ord.Circular)
	}

	explained := g.DetectCyclesWithin(ord.Circular)
	if !reflect.DeepEqual(explained, [][]string{{"A", "B", "A"}}) {
		t.Fatalf("unexpected residual cycles %v", explained)
	}
}

func TestTopologicalSort_Empty(t *testing.T) {
	ord := buildGraph(t, map[string][]string{}).TopologicalSort()
	if len(ord.Layers) != 0 || len(ord.Order) != 0 || !ord.Complete() {
		t.Fatalf("expected empty ordering, got %+v", ord)
	}
}
