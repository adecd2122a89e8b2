package analysis

import (
	"monodeps/internal/engine/anomaly"
	"monodeps/internal/engine/layers"
)

type Filter struct {
	// Layer keeps anomalies touching at least one package of that layer.
	// Empty keeps all.
	Layer    layers.Layer
	MinScore int
}

func (f Filter) Active() bool {
	return f.Layer != "" || f.MinScore > 0
}

// Apply returns the anomalies passing the filter, preserving order.
func (r *Report) Apply(f Filter) []anomaly.Anomaly {
	out := make([]anomaly.Anomaly, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		if a.Score < f.MinScore {
			continue
		}
		if f.Layer != "" && !r.touchesLayer(a, f.Layer) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *Report) touchesLayer(a anomaly.Anomaly, layer layers.Layer) bool {
	for _, name := range a.Packages {
		pkg, ok := r.Graph.Package(name)
		if !ok {
			continue
		}
		l := pkg.Layer
		if l == "" {
			l = layers.Unknown
		}
		if l == layer {
			return true
		}
	}
	return false
}

// HasBlocking reports whether any anomaly is critical or high severity.
func HasBlocking(anomalies []anomaly.Anomaly) bool {
	for _, a := range anomalies {
		if a.Severity.Blocking() {
			return true
		}
	}
	return false
}
