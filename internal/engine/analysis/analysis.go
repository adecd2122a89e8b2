// Package analysis runs the graph pipeline over a discovered package set:
// build, metrics, cycles, ordering and anomaly detection. A run shares no
// state with any other run.
package analysis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"monodeps/internal/engine/anomaly"
	"monodeps/internal/engine/discovery"
	"monodeps/internal/engine/graph"
	"monodeps/internal/shared/observability"
)

type Options struct {
	Build graph.BuildOptions
	// Detector defaults to anomaly.DefaultOptions when nil.
	Detector *anomaly.Detector
}

type Report struct {
	Root        string
	GeneratedAt time.Time
	Duration    time.Duration
	Packages    []discovery.Package
	Skipped     []discovery.Skipped
	Graph       *graph.Graph
	Metrics     map[string]graph.Metrics
	Cycles      [][]string
	Ordering    graph.Ordering
	// OrderCycles explains Ordering.Circular: cycle detection restricted to
	// the packages the orderer could not place.
	OrderCycles [][]string
	Anomalies   []anomaly.Anomaly
}

// Run analyzes a discovery result. The graph is fully built before any
// metric or anomaly phase reads it.
func Run(ctx context.Context, res discovery.Result, opts Options) (*Report, error) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "analysis.run",
		trace.WithAttributes(attribute.String("root", res.Root), attribute.Int("packages", len(res.Packages))))
	defer span.End()

	detector := opts.Detector
	if detector == nil {
		d, err := anomaly.NewDetector(anomaly.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("default detector: %w", err)
		}
		detector = d
	}

	r := &Report{
		Root:        res.Root,
		GeneratedAt: start.UTC(),
		Packages:    res.Packages,
		Skipped:     res.Skipped,
	}

	steps := []struct {
		name string
		fn   func()
	}{
		{"build", func() { r.Graph = graph.Build(res.Packages, opts.Build) }},
		{"metrics", func() { r.Metrics = r.Graph.ComputeMetrics() }},
		{"cycles", func() { r.Cycles = r.Graph.DetectCycles() }},
		{"order", func() {
			r.Ordering = r.Graph.TopologicalSort()
			r.OrderCycles = make([][]string, 0)
			if !r.Ordering.Complete() {
				r.OrderCycles = r.Graph.DetectCyclesWithin(r.Ordering.Circular)
			}
		}},
		{"anomalies", func() { r.Anomalies = detector.Detect(r.Graph, r.Metrics, r.Cycles) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runPhase(ctx, step.name, step.fn)
	}

	recordAnomalies(r.Anomalies)
	r.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("edges", r.Graph.EdgeCount()),
		attribute.Int("anomalies", len(r.Anomalies)),
	)
	return r, nil
}

func runPhase(ctx context.Context, name string, fn func()) {
	_, span := observability.Tracer().Start(ctx, "analysis."+name)
	defer span.End()
	start := time.Now()
	fn()
	observability.AnalysisDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

func recordAnomalies(anomalies []anomaly.Anomaly) {
	observability.Anomalies.Reset()
	for _, a := range anomalies {
		observability.Anomalies.WithLabelValues(a.Kind(), string(a.Severity)).Inc()
	}
}
