// Package output renders analysis reports. Renderers only read the report;
// none of them changes what the analysis found.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/anomaly"
)

// View is what a renderer draws: the full report plus the anomalies left
// after CLI filters.
type View struct {
	Report    *analysis.Report
	Anomalies []anomaly.Anomaly
}

func NewView(r *analysis.Report, filter analysis.Filter) View {
	return View{Report: r, Anomalies: r.Apply(filter)}
}

type Renderer interface {
	// Render writes the full analysis.
	Render(w io.Writer, v View) error
	// RenderOrder writes only the build ordering.
	RenderOrder(w io.Writer, v View) error
}

var Formats = []string{"text", "json", "markdown", "dot", "mermaid", "tsv"}

func New(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return NewTextRenderer(), nil
	case "json":
		return JSONRenderer{Indent: "  "}, nil
	case "markdown", "md":
		return MarkdownRenderer{}, nil
	case "dot":
		return DOTRenderer{}, nil
	case "mermaid":
		return MermaidRenderer{}, nil
	case "tsv":
		return TSVRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// cycleEdgeSet keys "from\x00to" for every edge on a closed cycle.
func cycleEdgeSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			out[edgeKey(cycle[i], cycle[i+1])] = true
		}
	}
	return out
}

func cycleMemberSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for _, name := range cycle {
			out[name] = true
		}
	}
	return out
}

func edgeKey(from, to string) string {
	return from + "\x00" + to
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
