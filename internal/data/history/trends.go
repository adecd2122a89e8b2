package history

import (
	"fmt"
	"math"
	"sort"
)

func Diff(prev, curr Snapshot) TrendDelta {
	d := TrendDelta{
		From:             prev,
		To:               curr,
		DeltaPackages:    curr.PackageCount - prev.PackageCount,
		DeltaEdges:       curr.EdgeCount - prev.EdgeCount,
		DeltaCycles:      curr.CycleCount - prev.CycleCount,
		DeltaAnomalies:   curr.AnomalyCount - prev.AnomalyCount,
		DeltaMaxDepth:    curr.MaxDepth - prev.MaxDepth,
		DeltaInstability: round2(curr.AvgInstability - prev.AvgInstability),
		DeltaByKind:      make(map[string]int),
	}

	for kind, n := range curr.AnomalyCounts {
		if delta := n - prev.AnomalyCounts[kind]; delta != 0 {
			d.DeltaByKind[kind] = delta
		}
	}
	for kind, n := range prev.AnomalyCounts {
		if _, ok := curr.AnomalyCounts[kind]; !ok && n != 0 {
			d.DeltaByKind[kind] = -n
		}
	}

	d.NewAnomalies = difference(curr.AnomalyIDs, prev.AnomalyIDs)
	d.ResolvedAnomalies = difference(prev.AnomalyIDs, curr.AnomalyIDs)
	return d
}

// LatestDelta diffs the last two snapshots of an oldest-first list.
func LatestDelta(snapshots []Snapshot) (TrendDelta, error) {
	if len(snapshots) < 2 {
		return TrendDelta{}, fmt.Errorf("need at least 2 snapshots, have %d", len(snapshots))
	}
	return Diff(snapshots[len(snapshots)-2], snapshots[len(snapshots)-1]), nil
}

// difference returns the sorted members of a missing from b.
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, id := range b {
		seen[id] = true
	}
	out := make([]string, 0)
	for _, id := range a {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
