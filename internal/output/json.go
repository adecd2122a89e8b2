package output

import (
	"encoding/json"
	"io"
	"time"

	"monodeps/internal/engine/anomaly"
	"monodeps/internal/engine/discovery"
	"monodeps/internal/engine/graph"
)

type JSONRenderer struct {
	Indent string
}

type jsonSize struct {
	FileCount   int `json:"fileCount"`
	LinesOfCode int `json:"linesOfCode"`
}

type jsonMetrics struct {
	AfferentCoupling int     `json:"afferentCoupling"`
	EfferentCoupling int     `json:"efferentCoupling"`
	Instability      float64 `json:"instability"`
	Centrality       float64 `json:"centrality"`
	Depth            int     `json:"depth"`
}

type jsonPackage struct {
	Name         string      `json:"name"`
	Version      string      `json:"version,omitempty"`
	Description  string      `json:"description,omitempty"`
	Repository   string      `json:"repository"`
	SourcePath   string      `json:"sourcePath"`
	Layer        string      `json:"layer"`
	Size         jsonSize    `json:"size"`
	HasReadme    bool        `json:"hasReadme"`
	Dependencies []string    `json:"dependencies"`
	Dependents   []string    `json:"dependents"`
	Metrics      jsonMetrics `json:"metrics"`
}

type jsonOrdering struct {
	Layers      [][]string `json:"layers"`
	Order       []string   `json:"order"`
	Circular    []string   `json:"circular"`
	OrderCycles [][]string `json:"orderCycles"`
}

type jsonSkipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Code   string `json:"code"`
}

type jsonDocument struct {
	Root        string            `json:"root"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Summary     jsonSummary       `json:"summary"`
	Packages    []jsonPackage     `json:"packages"`
	Cycles      [][]string        `json:"cycles"`
	Ordering    jsonOrdering      `json:"ordering"`
	Anomalies   []anomaly.Anomaly `json:"anomalies"`
	Skipped     []jsonSkipped     `json:"skipped"`
}

type jsonSummary struct {
	Packages       int            `json:"packages"`
	Edges          int            `json:"edges"`
	Cycles         int            `json:"cycles"`
	Anomalies      int            `json:"anomalies"`
	MaxDepth       int            `json:"maxDepth"`
	AvgInstability float64        `json:"avgInstability"`
	ByKind         map[string]int `json:"byKind"`
}

func (j JSONRenderer) Render(w io.Writer, v View) error {
	r := v.Report
	s := r.Summary()
	doc := jsonDocument{
		Root:        r.Root,
		GeneratedAt: r.GeneratedAt,
		Summary: jsonSummary{
			Packages:       s.Packages,
			Edges:          s.Edges,
			Cycles:         s.Cycles,
			Anomalies:      len(v.Anomalies),
			MaxDepth:       s.MaxDepth,
			AvgInstability: s.AvgInstability,
			ByKind:         anomaly.Count(v.Anomalies),
		},
		Packages:  make([]jsonPackage, 0, r.Graph.Len()),
		Cycles:    r.Cycles,
		Ordering:  orderingDoc(v),
		Anomalies: v.Anomalies,
		Skipped:   skippedDoc(r.Skipped),
	}
	for _, name := range r.Graph.Names() {
		pkg, _ := r.Graph.Package(name)
		doc.Packages = append(doc.Packages, packageDoc(pkg, r.Graph.Dependencies(name), r.Graph.Dependents(name), r.Metrics[name]))
	}
	return j.encode(w, doc)
}

func (j JSONRenderer) RenderOrder(w io.Writer, v View) error {
	return j.encode(w, orderingDoc(v))
}

func (j JSONRenderer) encode(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	return enc.Encode(value)
}

func orderingDoc(v View) jsonOrdering {
	o := v.Report.Ordering
	return jsonOrdering{
		Layers:      o.Layers,
		Order:       o.Order,
		Circular:    o.Circular,
		OrderCycles: v.Report.OrderCycles,
	}
}

func packageDoc(pkg discovery.Package, deps, dependents []string, m graph.Metrics) jsonPackage {
	return jsonPackage{
		Name:         pkg.Name,
		Version:      pkg.Version,
		Description:  pkg.Description,
		Repository:   pkg.Repository,
		SourcePath:   pkg.SourcePath,
		Layer:        pkg.Layer.String(),
		Size:         jsonSize{FileCount: pkg.Size.FileCount, LinesOfCode: pkg.Size.LinesOfCode},
		HasReadme:    pkg.HasReadme,
		Dependencies: deps,
		Dependents:   dependents,
		Metrics: jsonMetrics{
			AfferentCoupling: m.AfferentCoupling,
			EfferentCoupling: m.EfferentCoupling,
			Instability:      m.Instability,
			Centrality:       m.Centrality,
			Depth:            m.Depth,
		},
	}
}

func skippedDoc(skipped []discovery.Skipped) []jsonSkipped {
	out := make([]jsonSkipped, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, jsonSkipped{Path: s.Path, Reason: s.Reason, Code: string(s.Code)})
	}
	return out
}
