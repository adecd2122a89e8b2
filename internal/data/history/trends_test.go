package history

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	prev := Snapshot{
		PackageCount:   10,
		EdgeCount:      20,
		CycleCount:     2,
		AnomalyCount:   4,
		AvgInstability: 0.5,
		AnomalyCounts:  map[string]int{"circular-dependency": 2, "orphan-package": 1, "god-package": 1},
		AnomalyIDs:     []string{"c:1", "c:2", "o:x", "g:y"},
	}
	curr := Snapshot{
		PackageCount:   11,
		EdgeCount:      19,
		CycleCount:     1,
		AnomalyCount:   4,
		AvgInstability: 0.45,
		AnomalyCounts:  map[string]int{"circular-dependency": 1, "orphan-package": 1, "deep-chain": 2},
		AnomalyIDs:     []string{"c:1", "o:x", "d:a", "d:b"},
	}

	d := Diff(prev, curr)
	if d.DeltaPackages != 1 || d.DeltaEdges != -1 || d.DeltaCycles != -1 || d.DeltaAnomalies != 0 {
		t.Fatalf("unexpected scalar deltas: %+v", d)
	}
	if d.DeltaInstability != -0.05 {
		t.Fatalf("expected -0.05, got %v", d.DeltaInstability)
	}
	wantKinds := map[string]int{"circular-dependency": -1, "god-package": -1, "deep-chain": 2}
	if !reflect.DeepEqual(d.DeltaByKind, wantKinds) {
		t.Fatalf("expected %v, got %v", wantKinds, d.DeltaByKind)
	}
	if !reflect.DeepEqual(d.NewAnomalies, []string{"d:a", "d:b"}) {
		t.Fatalf("unexpected new anomalies %v", d.NewAnomalies)
	}
	if !reflect.DeepEqual(d.ResolvedAnomalies, []string{"c:2", "g:y"}) {
		t.Fatalf("unexpected resolved anomalies %v", d.ResolvedAnomalies)
	}
}

func TestLatestDelta(t *testing.T) {
	if _, err := LatestDelta([]Snapshot{{}}); err == nil {
		t.Fatal("expected error with a single snapshot")
	}
	d, err := LatestDelta([]Snapshot{{PackageCount: 1}, {PackageCount: 2}, {PackageCount: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if d.DeltaPackages != 3 {
		t.Fatalf("expected the last pair to be compared, got %d", d.DeltaPackages)
	}
}
