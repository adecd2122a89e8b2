package app

import (
	"log/slog"
	"time"

	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/core/ports"
	"monodeps/internal/data/history"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/anomaly"
)

// SetHistoryStore replaces the lazily opened SQLite store.
func (a *App) SetHistoryStore(store ports.HistoryStore) {
	a.mu.Lock()
	a.history = store
	a.mu.Unlock()
}

func (a *App) historyStore() (ports.HistoryStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.history != nil {
		return a.history, nil
	}
	store, err := history.Open(a.Paths.HistoryDB)
	if err != nil {
		return nil, domainErrors.AddContext(
			domainErrors.Wrap(err, domainErrors.CodeInternal, "open history store"),
			domainErrors.CtxPath, a.Paths.HistoryDB)
	}
	a.history = store
	return store, nil
}

// Record stores a snapshot of report and returns its run id.
func (a *App) Record(report *analysis.Report) (string, error) {
	store, err := a.historyStore()
	if err != nil {
		return "", err
	}
	runID, err := store.SaveSnapshot(a.Config.History.ProjectKey, SnapshotOf(report))
	if err != nil {
		return "", err
	}
	slog.Info("snapshot recorded", "run_id", runID, "project", a.Config.History.ProjectKey)
	return runID, nil
}

// History loads up to limit snapshots, oldest first. A zero since loads
// the latest limit snapshots regardless of age.
func (a *App) History(since time.Time, limit int) ([]history.Snapshot, error) {
	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return store.Latest(a.Config.History.ProjectKey, limit)
	}
	snapshots, err := store.LoadSnapshots(a.Config.History.ProjectKey, since)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[len(snapshots)-limit:]
	}
	return snapshots, nil
}

// Trend diffs the two most recent snapshots.
func (a *App) Trend() (history.TrendDelta, error) {
	snapshots, err := a.History(time.Time{}, 2)
	if err != nil {
		return history.TrendDelta{}, err
	}
	delta, err := history.LatestDelta(snapshots)
	if err != nil {
		return history.TrendDelta{}, domainErrors.Wrap(err, domainErrors.CodeNotFound, "trend comparison")
	}
	return delta, nil
}

// SnapshotOf summarizes the full, unfiltered anomaly list of report.
func SnapshotOf(report *analysis.Report) history.Snapshot {
	s := report.Summary()
	ids := make([]string, 0, len(report.Anomalies))
	for _, an := range report.Anomalies {
		ids = append(ids, an.ID)
	}
	return history.Snapshot{
		Timestamp:      report.GeneratedAt.UTC(),
		PackageCount:   s.Packages,
		EdgeCount:      s.Edges,
		CycleCount:     s.Cycles,
		AnomalyCount:   s.Anomalies,
		MaxDepth:       s.MaxDepth,
		AvgInstability: s.AvgInstability,
		AnomalyCounts:  anomaly.Count(report.Anomalies),
		AnomalyIDs:     ids,
	}
}
