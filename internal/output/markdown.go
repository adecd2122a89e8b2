package output

import (
	"fmt"
	"io"
	"strings"
)

type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(w io.Writer, v View) error {
	r := v.Report
	s := r.Summary()
	var b strings.Builder

	b.WriteString("# Dependency Report\n\n")
	b.WriteString(fmt.Sprintf("Root: `%s`  \nGenerated: %s\n\n", r.Root, r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Packages | Edges | Cycles | Anomalies | Max depth | Avg instability |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	b.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %.2f |\n\n", s.Packages, s.Edges, s.Cycles, len(v.Anomalies), s.MaxDepth, s.AvgInstability))

	b.WriteString("## Anomalies\n\n")
	if len(v.Anomalies) == 0 {
		b.WriteString("No anomalies found.\n\n")
	} else {
		b.WriteString("| Score | Severity | Type | Packages | Impact | Recommendation | Effort |\n")
		b.WriteString("|---:|---|---|---|---|---|---|\n")
		for _, a := range v.Anomalies {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
				a.Score, a.Severity, a.Kind(), mdCell(strings.Join(a.Packages, " → ")), mdCell(a.Impact), mdCell(a.Recommendation), a.EstimatedEffort))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Packages\n\n")
	b.WriteString("| Package | Layer | Ca | Ce | Instability | Depth | Files | LOC |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, name := range r.Graph.Names() {
		pkg, _ := r.Graph.Package(name)
		m := r.Metrics[name]
		b.WriteString(fmt.Sprintf("| `%s` | %s | %d | %d | %.2f | %d | %d | %d |\n",
			name, pkg.Layer, m.AfferentCoupling, m.EfferentCoupling, m.Instability, m.Depth, pkg.Size.FileCount, pkg.Size.LinesOfCode))
	}
	b.WriteString("\n")

	writeMarkdownOrder(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func (MarkdownRenderer) RenderOrder(w io.Writer, v View) error {
	var b strings.Builder
	writeMarkdownOrder(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownOrder(b *strings.Builder, v View) {
	o := v.Report.Ordering
	b.WriteString("## Build Order\n\n")
	for i, layer := range o.Layers {
		names := make([]string, 0, len(layer))
		for _, name := range layer {
			names = append(names, "`"+name+"`")
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(names, ", ")))
	}
	if o.Complete() {
		return
	}
	b.WriteString(fmt.Sprintf("\n**Circular:** %d packages cannot be ordered.\n\n", len(o.Circular)))
	for _, cycle := range v.Report.OrderCycles {
		b.WriteString("- " + strings.Join(cycle, " → ") + "\n")
	}
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
