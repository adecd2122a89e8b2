// Package app drives one monorepo analysis end to end: discovery, the graph
// pipeline, history recording and output. Watch mode repeats the same run
// after file changes.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monodeps/internal/core/config"
	"monodeps/internal/core/ports"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/anomaly"
	"monodeps/internal/engine/discovery"
	"monodeps/internal/engine/graph"
)

// Update is handed to the update handler after every completed run.
type Update struct {
	Report  *analysis.Report
	Summary analysis.Summary
	Changed []string
	Err     error
	At      time.Time
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	discovery discovery.Options
	build     graph.BuildOptions
	detector  *anomaly.Detector
	history   ports.HistoryStore

	mu       sync.RWMutex
	last     *analysis.Report
	onUpdate func(Update)
}

// New validates cfg into ready-to-use discovery and detector options.
// The history store is opened lazily on first use.
func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	discOpts, err := discoveryOptions(cfg)
	if err != nil {
		return nil, err
	}
	detector, err := anomaly.NewDetector(detectorOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("build anomaly detector: %w", err)
	}
	if paths.Root == "" {
		paths = config.ResolvePaths(cfg, ".", "")
	}

	return &App{
		Config:    cfg,
		Paths:     paths,
		discovery: discOpts,
		build:     graph.BuildOptions{WorkspaceOnly: cfg.Discovery.RequireWorkspaceMarker},
		detector:  detector,
	}, nil
}

// Analyze discovers packages under the configured root and runs the full
// pipeline. A missing or non-directory root fails before analysis starts.
func (a *App) Analyze(ctx context.Context) (*analysis.Report, error) {
	res, err := discovery.Discover(ctx, a.Paths.Root, a.discovery)
	if err != nil {
		return nil, err
	}

	report, err := analysis.Run(ctx, *res, analysis.Options{Build: a.build, Detector: a.detector})
	if err != nil {
		return nil, err
	}

	s := report.Summary()
	slog.Info("analysis complete",
		"root", report.Root,
		"packages", s.Packages,
		"edges", s.Edges,
		"cycles", s.Cycles,
		"anomalies", s.Anomalies,
		"skipped", len(report.Skipped),
		"duration", report.Duration)

	a.mu.Lock()
	a.last = report
	a.mu.Unlock()
	return report, nil
}

// Current returns the most recent report, or nil before the first run.
func (a *App) Current() *analysis.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func (a *App) SetUpdateHandler(fn func(Update)) {
	a.mu.Lock()
	a.onUpdate = fn
	a.mu.Unlock()
}

func (a *App) emit(u Update) {
	a.mu.RLock()
	fn := a.onUpdate
	a.mu.RUnlock()
	if fn != nil {
		fn(u)
	}
}

// Close releases the history store if one was opened.
func (a *App) Close() error {
	a.mu.Lock()
	store := a.history
	a.history = nil
	a.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Close()
}
