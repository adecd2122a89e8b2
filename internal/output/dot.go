package output

import (
	"fmt"
	"io"
	"strings"
)

type DOTRenderer struct{}

func (DOTRenderer) Render(w io.Writer, v View) error {
	_, err := io.WriteString(w, dot(v, false))
	return err
}

// RenderOrder ranks each build layer on the same level.
func (DOTRenderer) RenderOrder(w io.Writer, v View) error {
	_, err := io.WriteString(w, dot(v, true))
	return err
}

func dot(v View, ranked bool) string {
	r := v.Report
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := cycleEdgeSet(r.Cycles)
	inCycle := cycleMemberSet(r.Cycles)

	for _, name := range r.Graph.Names() {
		pkg, _ := r.Graph.Package(name)
		m := r.Metrics[name]
		label := fmt.Sprintf("%s\\n%s | in %d out %d", name, pkg.Layer, m.AfferentCoupling, m.EfferentCoupling)
		if inCycle[name] {
			buf.WriteString(fmt.Sprintf("  %q [label=\"%s\", style=\"rounded,filled\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", name, label))
		} else {
			buf.WriteString(fmt.Sprintf("  %q [label=\"%s\", color=\"darkslategrey\"];\n", name, label))
		}
	}
	buf.WriteString("\n")

	for _, e := range r.Graph.Edges() {
		if cycleEdges[edgeKey(e.From, e.To)] {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", e.From, e.To))
		} else {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"forestgreen\"];\n", e.From, e.To))
		}
	}

	if ranked {
		buf.WriteString("\n")
		for i, layer := range r.Ordering.Layers {
			ids := make([]string, 0, len(layer))
			for _, name := range layer {
				ids = append(ids, fmt.Sprintf("%q", name))
			}
			buf.WriteString(fmt.Sprintf("  { rank=same; // layer %d\n    %s;\n  }\n", i+1, strings.Join(ids, "; ")))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
