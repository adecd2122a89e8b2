// Package ports declares the collaborators the app drives but does not own.
package ports

import (
	"io"
	"time"

	"monodeps/internal/data/history"
	"monodeps/internal/output"
)

// Renderer writes a report view in one output format.
type Renderer interface {
	Render(w io.Writer, v output.View) error
	RenderOrder(w io.Writer, v output.View) error
}

// HistoryStore abstracts snapshot persistence for trend workflows.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) (string, error)
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
	Latest(projectKey string, n int) ([]history.Snapshot, error)
	Close() error
}

var (
	_ HistoryStore = (*history.Store)(nil)
	_ Renderer     = (*output.TextRenderer)(nil)
)
