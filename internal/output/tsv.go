package output

import (
	"fmt"
	"io"
	"strings"
)

type TSVRenderer struct{}

// Render writes one row per dependency edge.
func (TSVRenderer) Render(w io.Writer, v View) error {
	r := v.Report
	cycleEdges := cycleEdgeSet(r.Cycles)

	var buf strings.Builder
	buf.WriteString("From\tTo\tFromLayer\tToLayer\tCycle\n")
	for _, e := range r.Graph.Edges() {
		from, _ := r.Graph.Package(e.From)
		to, _ := r.Graph.Package(e.To)
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%t\n", e.From, e.To, from.Layer, to.Layer, cycleEdges[edgeKey(e.From, e.To)]))
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// RenderOrder writes one row per package with its 1-based build layer.
// Unorderable packages get layer 0.
func (TSVRenderer) RenderOrder(w io.Writer, v View) error {
	r := v.Report
	var buf strings.Builder
	buf.WriteString("Layer\tPackage\n")
	for i, layer := range r.Ordering.Layers {
		for _, name := range layer {
			buf.WriteString(fmt.Sprintf("%d\t%s\n", i+1, name))
		}
	}
	for _, name := range r.Ordering.Circular {
		buf.WriteString(fmt.Sprintf("0\t%s\n", name))
	}
	_, err := io.WriteString(w, buf.String())
	return err
}
