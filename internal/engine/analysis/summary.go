package analysis

import "monodeps/internal/engine/anomaly"

type Summary struct {
	Packages       int
	Edges          int
	Cycles         int
	Anomalies      int
	MaxDepth       int
	AvgInstability float64
	ByKind         map[string]int
	BySeverity     map[anomaly.Severity]int
}

func (r *Report) Summary() Summary {
	s := Summary{
		Packages:   r.Graph.Len(),
		Edges:      r.Graph.EdgeCount(),
		Cycles:     len(r.Cycles),
		Anomalies:  len(r.Anomalies),
		ByKind:     anomaly.Count(r.Anomalies),
		BySeverity: make(map[anomaly.Severity]int),
	}
	for _, a := range r.Anomalies {
		s.BySeverity[a.Severity]++
	}

	total := 0.0
	for _, m := range r.Metrics {
		if m.Depth > s.MaxDepth {
			s.MaxDepth = m.Depth
		}
		total += m.Instability
	}
	if len(r.Metrics) > 0 {
		s.AvgInstability = total / float64(len(r.Metrics))
	}
	return s
}
