package app

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"monodeps/internal/core/ports"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/output"
	"monodeps/internal/shared/util"
)

// OutputRequest selects what to render and where. An empty Path writes to
// the fallback writer.
type OutputRequest struct {
	Format    string
	Path      string
	Filter    analysis.Filter
	OrderOnly bool
}

// OutputRequestFromConfig seeds a request from the [output] section.
func (a *App) OutputRequestFromConfig() OutputRequest {
	return OutputRequest{Format: a.Config.Output.Format, Path: a.Paths.OutputPath}
}

// WriteReport renders report and returns the view that was drawn, so
// callers can apply the exit policy to the filtered anomalies.
func (a *App) WriteReport(report *analysis.Report, req OutputRequest, fallback io.Writer) (output.View, error) {
	renderer, err := output.New(req.Format)
	if err != nil {
		return output.View{}, err
	}
	view := output.NewView(report, req.Filter)
	if req.Filter.Active() {
		slog.Debug("anomaly filter applied",
			"layer", req.Filter.Layer, "min_score", req.Filter.MinScore,
			"kept", len(view.Anomalies), "total", len(report.Anomalies))
	}

	var buf bytes.Buffer
	if err := render(renderer, &buf, view, req.OrderOnly); err != nil {
		return view, fmt.Errorf("render %s: %w", req.Format, err)
	}

	if req.Path == "" {
		_, err := fallback.Write(buf.Bytes())
		return view, err
	}
	if err := util.WriteFileWithDirs(req.Path, buf.Bytes(), 0o644); err != nil {
		return view, fmt.Errorf("write %s: %w", req.Path, err)
	}
	slog.Info("report written", "path", req.Path, "format", req.Format)
	return view, nil
}

func render(r ports.Renderer, w io.Writer, v output.View, orderOnly bool) error {
	if orderOnly {
		return r.RenderOrder(w, v)
	}
	return r.Render(w, v)
}

// ExitCode is 1 when any anomaly left in the view is critical or high.
func ExitCode(v output.View) int {
	if analysis.HasBlocking(v.Anomalies) {
		return 1
	}
	return 0
}

// OrderExitCode is 1 when the build ordering could not place every package.
func OrderExitCode(report *analysis.Report) int {
	if report.Ordering.Complete() {
		return 0
	}
	return 1
}
