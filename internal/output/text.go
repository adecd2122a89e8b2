package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"monodeps/internal/engine/anomaly"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	severityStyles = map[anomaly.Severity]lipgloss.Style{
		anomaly.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		anomaly.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FB923C")).Bold(true),
		anomaly.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		anomaly.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
	}
)

type TextRenderer struct {
	// ShowRecommendations prints the recommendation and effort under
	// each anomaly.
	ShowRecommendations bool
}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{ShowRecommendations: true}
}

func (t *TextRenderer) Render(w io.Writer, v View) error {
	r := v.Report
	s := r.Summary()
	var b strings.Builder

	b.WriteString(headingStyle.Render("monodeps") + " " + mutedStyle.Render(r.Root) + "\n")
	b.WriteString(fmt.Sprintf("%d packages, %d edges, %d cycles, max depth %d, avg instability %.2f\n",
		s.Packages, s.Edges, s.Cycles, s.MaxDepth, s.AvgInstability))
	if len(r.Skipped) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d manifests skipped", len(r.Skipped))) + "\n")
	}
	b.WriteString("\n")

	if len(v.Anomalies) == 0 {
		b.WriteString(okStyle.Render("No anomalies found.") + "\n\n")
	} else {
		b.WriteString(headingStyle.Render(fmt.Sprintf("Anomalies (%d)", len(v.Anomalies))) + "\n")
		for _, a := range v.Anomalies {
			sev := severityStyles[a.Severity].Render(fmt.Sprintf("%-8s", a.Severity))
			b.WriteString(fmt.Sprintf("  %s %3d  %-34s %s\n", sev, a.Score, a.Kind(), strings.Join(a.Packages, " -> ")))
			b.WriteString("               " + mutedStyle.Render(a.Impact) + "\n")
			if t.ShowRecommendations {
				b.WriteString(fmt.Sprintf("               fix: %s (%s)\n", a.Recommendation, a.EstimatedEffort))
			}
		}
		b.WriteString("\n")
	}

	writeTextOrder(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *TextRenderer) RenderOrder(w io.Writer, v View) error {
	var b strings.Builder
	writeTextOrder(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextOrder(b *strings.Builder, v View) {
	o := v.Report.Ordering
	b.WriteString(headingStyle.Render(fmt.Sprintf("Build order (%d layers)", len(o.Layers))) + "\n")
	for i, layer := range o.Layers {
		b.WriteString(fmt.Sprintf("  %2d: %s\n", i+1, strings.Join(layer, ", ")))
	}
	if o.Complete() {
		return
	}
	b.WriteString(severityStyles[anomaly.SeverityCritical].Render(fmt.Sprintf("Circular: %s", strings.Join(o.Circular, ", "))) + "\n")
	for _, cycle := range v.Report.OrderCycles {
		b.WriteString("  " + strings.Join(cycle, " -> ") + "\n")
	}
}
