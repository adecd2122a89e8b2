package app

import (
	"context"
	"log/slog"
	"time"

	"monodeps/internal/core/watcher"
)

// Watch re-runs the full analysis after each debounced batch of changes
// until ctx is done. Every run, failed or not, is passed to the update
// handler.
func (a *App) Watch(ctx context.Context) error {
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:    a.Config.Watch.Debounce,
		ExcludeDirs: a.Config.Discovery.ExcludeDirs,
		Extensions:  a.Config.Discovery.SourceExtensions,
		FileNames:   a.watchedNames(),
	}, func(paths []string) {
		a.handleChanges(ctx, paths)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{a.Paths.Root}); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", a.Paths.Root, "debounce", a.Config.Watch.Debounce)

	<-ctx.Done()
	return nil
}

func (a *App) handleChanges(ctx context.Context, paths []string) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("changes detected", "files", len(paths))

	report, err := a.Analyze(ctx)
	u := Update{Report: report, Changed: paths, Err: err, At: time.Now()}
	if err != nil {
		slog.Error("re-analysis failed", "error", err)
	} else {
		u.Summary = report.Summary()
	}
	a.emit(u)
}

func (a *App) watchedNames() []string {
	names := append([]string{"package.json", "monodeps.toml"}, a.Config.Discovery.ReadmeNames...)
	if a.Config.Discovery.WorkspaceFile != "" {
		names = append(names, a.Config.Discovery.WorkspaceFile)
	}
	return names
}
