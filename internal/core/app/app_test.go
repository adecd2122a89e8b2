package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monodeps/internal/core/config"
	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/anomaly"
)

func writeManifest(t *testing.T, root, dir, body string) {
	t.Helper()
	path := filepath.Join(root, "tools", "packages", dir, "package.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// fixture: infra-x -> feature-y (layer violation), core-a <-> core-b,
// tool-cli -> core-a.
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeManifest(t, root, "infra-x", `{"name":"@devkit/infra-x","dependencies":{"@devkit/feature-y":"workspace:*"}}`)
	writeManifest(t, root, "feature-y", `{"name":"@devkit/feature-y"}`)
	writeManifest(t, root, "core-a", `{"name":"@devkit/core-a","dependencies":{"@devkit/core-b":"workspace:*"}}`)
	writeManifest(t, root, "core-b", `{"name":"@devkit/core-b","dependencies":{"@devkit/core-a":"workspace:*"}}`)
	writeManifest(t, root, "tool-cli", `{"name":"@devkit/tool-cli","dependencies":{"@devkit/core-a":"workspace:*","react":"^18.0.0"}}`)
	return root
}

func newApp(t *testing.T, root string) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	a, err := New(cfg, config.ResolvePaths(cfg, root, ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func kinds(anomalies []anomaly.Anomaly) map[string]int {
	return anomaly.Count(anomalies)
}

func TestAnalyze_Fixture(t *testing.T) {
	a := newApp(t, fixture(t))

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)
	require.Same(t, report, a.Current())

	assert.Equal(t, 5, report.Graph.Len())
	assert.Equal(t, 4, report.Graph.EdgeCount(), "external react dependency is dropped")
	require.Len(t, report.Cycles, 1)
	assert.False(t, report.Ordering.Complete())
	assert.Equal(t, 1, OrderExitCode(report))

	got := kinds(report.Anomalies)
	assert.Equal(t, 1, got[string(anomaly.TypeCircular)])
	assert.Equal(t, 1, got[string(anomaly.TypeLayer)])
	assert.Equal(t, anomaly.TypeCircular, report.Anomalies[0].Type, "highest score first")
}

func TestAnalyze_MissingRoot(t *testing.T) {
	a := newApp(t, filepath.Join(t.TempDir(), "nope"))

	_, err := a.Analyze(context.Background())
	require.Error(t, err)
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))
	assert.Nil(t, a.Current())
}

func TestNew_RejectsUnknownLayerRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layers.Rules = []config.LayerRule{{Pattern: "infra", Layer: "basement"}}

	_, err := New(cfg, config.ResolvedPaths{Root: t.TempDir()})
	require.Error(t, err)
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeValidationError))
}

func TestNew_CustomLayerRules(t *testing.T) {
	root := fixture(t)
	cfg := config.DefaultConfig()
	// everything is core: no layer violations remain
	cfg.Layers.Rules = []config.LayerRule{{Pattern: "*", Layer: "core"}}
	a, err := New(cfg, config.ResolvePaths(cfg, root, ""))
	require.NoError(t, err)

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Zero(t, kinds(report.Anomalies)[string(anomaly.TypeLayer)])
}

func TestWriteReport_StdoutAndExitPolicy(t *testing.T) {
	a := newApp(t, fixture(t))
	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	view, err := a.WriteReport(report, OutputRequest{Format: "tsv"}, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "From\tTo"))
	assert.Equal(t, 1, ExitCode(view))

	buf.Reset()
	view, err = a.WriteReport(report, OutputRequest{Format: "text", Filter: analysis.Filter{MinScore: 101}}, &buf)
	require.NoError(t, err)
	assert.Empty(t, view.Anomalies)
	assert.Equal(t, 0, ExitCode(view))
}

func TestWriteReport_File(t *testing.T) {
	a := newApp(t, fixture(t))
	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "report.json")
	var unused bytes.Buffer
	_, err = a.WriteReport(report, OutputRequest{Format: "json", Path: path}, &unused)
	require.NoError(t, err)
	assert.Zero(t, unused.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "anomalies")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	a := newApp(t, fixture(t))
	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	_, err = a.WriteReport(report, OutputRequest{Format: "yaml"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestTraceAndImpact(t *testing.T) {
	a := newApp(t, fixture(t))
	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	chain, err := a.Trace(report, "tool-cli", "@devkit/core-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"@devkit/tool-cli", "@devkit/core-a", "@devkit/core-b"}, chain)

	_, err = a.Trace(report, "feature-y", "infra-x")
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))

	_, err = a.Trace(report, "ghost", "infra-x")
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))

	impact, err := a.Impact(report, "core-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"@devkit/core-a"}, impact.DirectDependents)
	assert.Contains(t, impact.TransitiveDependents, "@devkit/tool-cli")
}

func TestRecordAndTrend(t *testing.T) {
	root := fixture(t)
	a := newApp(t, root)
	ctx := context.Background()

	first, err := a.Analyze(ctx)
	require.NoError(t, err)
	runID, err := a.Record(first)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	_, err = a.Trend()
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound), "one snapshot is not a trend")

	// break the cycle
	writeManifest(t, root, "core-b", `{"name":"@devkit/core-b"}`)
	second, err := a.Analyze(ctx)
	require.NoError(t, err)
	_, err = a.Record(second)
	require.NoError(t, err)

	delta, err := a.Trend()
	require.NoError(t, err)
	assert.Equal(t, -1, delta.DeltaCycles)
	assert.Equal(t, -1, delta.DeltaByKind[string(anomaly.TypeCircular)])
	assert.Contains(t, delta.ResolvedAnomalies, first.Anomalies[0].ID)

	snapshots, err := a.History(first.GeneratedAt.Add(-1), 10)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestHealthService(t *testing.T) {
	a := newApp(t, fixture(t))
	health := NewHealthService(a)

	assert.Equal(t, "degraded", health.Check(context.Background()).Status)

	_, err := a.Analyze(context.Background())
	require.NoError(t, err)
	status := health.Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Contains(t, status.Components["analysis"], "5 packages")
}
