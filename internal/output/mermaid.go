package output

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"monodeps/internal/engine/layers"
)

type MermaidRenderer struct{}

// Render groups packages by architectural layer.
func (MermaidRenderer) Render(w io.Writer, v View) error {
	r := v.Report
	names := r.Graph.Names()
	ids := makeMermaidIDs(names)

	var b strings.Builder
	b.WriteString("flowchart LR\n")

	byLayer := make(map[layers.Layer][]string)
	for _, name := range names {
		pkg, _ := r.Graph.Package(name)
		l := pkg.Layer
		if l == "" {
			l = layers.Unknown
		}
		byLayer[l] = append(byLayer[l], name)
	}
	for _, l := range layers.All() {
		members := byLayer[l]
		if len(members) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  subgraph layer_%s[\"%s\"]\n", sanitizeMermaidID(string(l)), l))
		for _, name := range members {
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[name], escapeMermaidLabel(name)))
		}
		b.WriteString("  end\n")
	}

	writeMermaidEdges(&b, v, ids)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderOrder draws one subgraph per build layer.
func (MermaidRenderer) RenderOrder(w io.Writer, v View) error {
	r := v.Report
	ids := makeMermaidIDs(r.Graph.Names())

	var b strings.Builder
	b.WriteString("flowchart BT\n")
	for i, layer := range r.Ordering.Layers {
		b.WriteString(fmt.Sprintf("  subgraph build_%d[\"Layer %d\"]\n", i+1, i+1))
		for _, name := range layer {
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[name], escapeMermaidLabel(name)))
		}
		b.WriteString("  end\n")
	}
	if len(r.Ordering.Circular) > 0 {
		b.WriteString("  subgraph circular[\"Circular\"]\n")
		for _, name := range r.Ordering.Circular {
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[name], escapeMermaidLabel(name)))
		}
		b.WriteString("  end\n")
	}

	writeMermaidEdges(&b, v, ids)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMermaidEdges(b *strings.Builder, v View, ids map[string]string) {
	r := v.Report
	cycleEdges := cycleEdgeSet(r.Cycles)
	b.WriteString("\n")
	var cycleLinks []int
	for i, e := range r.Graph.Edges() {
		b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[e.From], ids[e.To]))
		if cycleEdges[edgeKey(e.From, e.To)] {
			cycleLinks = append(cycleLinks, i)
		}
	}

	inCycle := cycleMemberSet(r.Cycles)
	if len(inCycle) > 0 {
		b.WriteString("\n  classDef cycleNode fill:#ffe5e5,stroke:#d64545,stroke-width:2px;\n")
		cycleIDs := make([]string, 0, len(inCycle))
		for _, name := range sortedKeys(inCycle) {
			cycleIDs = append(cycleIDs, ids[name])
		}
		b.WriteString("  class " + strings.Join(cycleIDs, ",") + " cycleNode;\n")
	}
	if len(cycleLinks) > 0 {
		parts := make([]string, 0, len(cycleLinks))
		for _, i := range cycleLinks {
			parts = append(parts, fmt.Sprintf("%d", i))
		}
		b.WriteString("  linkStyle " + strings.Join(parts, ",") + " stroke:#d64545,stroke-width:2px;\n")
	}
}

func sanitizeMermaidID(name string) string {
	if name == "" {
		return "m"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) || out[0] == '_' {
		return "m" + out
	}
	return out
}

func makeMermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
