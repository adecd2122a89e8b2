package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreapp "monodeps/internal/core/app"
	"monodeps/internal/core/config"
	domainErrors "monodeps/internal/core/errors"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func manifest(t *testing.T, root, dir, body string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "libs", "packages", dir, "package.json"), body)
	writeFile(t, filepath.Join(root, "libs", "packages", dir, "README.md"), "# "+dir+"\n")
}

func cyclicRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	manifest(t, root, "core-a", `{"name":"@devkit/core-a","dependencies":{"@devkit/core-b":"workspace:*"}}`)
	manifest(t, root, "core-b", `{"name":"@devkit/core-b","dependencies":{"@devkit/core-a":"workspace:*"}}`)
	manifest(t, root, "admin-app", `{"name":"@devkit/admin-app","dependencies":{"@devkit/core-a":"workspace:*"}}`)
	return root
}

// acyclicRoot has no blocking anomalies: admin-app -> core-a -> infra-utils.
func acyclicRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	manifest(t, root, "infra-utils", `{"name":"@devkit/infra-utils"}`)
	manifest(t, root, "core-a", `{"name":"@devkit/core-a","dependencies":{"@devkit/infra-utils":"workspace:*"}}`)
	manifest(t, root, "admin-app", `{"name":"@devkit/admin-app","dependencies":{"@devkit/core-a":"workspace:*"}}`)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "monodeps dev\n", out)
}

func TestAnalyze_BlockingExitCode(t *testing.T) {
	root := cyclicRoot(t)

	out, err := execute(t, "analyze", "--root", root, "--format", "json")
	assert.Equal(t, 1, exitCode(err))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "anomalies")
}

func TestAnalyze_FiltersClearExitCode(t *testing.T) {
	root := cyclicRoot(t)

	_, err := execute(t, "analyze", "--root", root, "--min-score", "101")
	assert.NoError(t, err)

	_, err = execute(t, "analyze", "--root", root, "--layer", "plugin")
	assert.NoError(t, err, "no anomaly touches a plugin package")

	_, err = execute(t, "analyze", "--root", root, "--layer", "basement")
	assert.Equal(t, -1, exitCode(err))
}

func TestAnalyze_OutputFile(t *testing.T) {
	root := acyclicRoot(t)
	path := filepath.Join(t.TempDir(), "graph.dot")

	out, err := execute(t, "analyze", "--root", root, "--format", "dot", "--output", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph"))
}

func TestAnalyze_ConfigFileInRoot(t *testing.T) {
	root := acyclicRoot(t)
	writeFile(t, filepath.Join(root, config.DefaultFileName), "[output]\nformat = \"tsv\"\n")

	out, err := execute(t, "analyze", "--root", root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "From\tTo"), out)
}

func TestAnalyze_ExplicitConfigMustExist(t *testing.T) {
	root := acyclicRoot(t)

	_, err := execute(t, "analyze", "--root", root, "--config", filepath.Join(root, "missing.toml"))
	require.Error(t, err)
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))
}

func TestAnalyze_MissingRoot(t *testing.T) {
	_, err := execute(t, "analyze", "--root", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))
}

func TestOrder(t *testing.T) {
	out, err := execute(t, "order", "--root", acyclicRoot(t), "--format", "tsv")
	require.NoError(t, err)
	assert.Contains(t, out, "1\t@devkit/infra-utils")
	assert.Contains(t, out, "3\t@devkit/admin-app")

	_, err = execute(t, "order", "--root", cyclicRoot(t))
	assert.Equal(t, 1, exitCode(err))
}

func TestTraceAndImpact(t *testing.T) {
	root := acyclicRoot(t)

	out, err := execute(t, "trace", "--root", root, "admin-app", "infra-utils")
	require.NoError(t, err)
	assert.Equal(t, "@devkit/admin-app -> @devkit/core-a -> @devkit/infra-utils\n", out)

	_, err = execute(t, "trace", "--root", root, "infra-utils", "admin-app")
	assert.True(t, domainErrors.IsCode(err, domainErrors.CodeNotFound))

	out, err = execute(t, "impact", "--root", root, "infra-utils")
	require.NoError(t, err)
	assert.Contains(t, out, "Direct dependents (1)\n- @devkit/core-a")
	assert.Contains(t, out, "Transitive dependents (1)\n- @devkit/admin-app")

	out, err = execute(t, "impact", "--root", root, "--format", "json", "core-a")
	require.NoError(t, err)
	assert.Contains(t, out, `"Target": "@devkit/core-a"`)
}

func TestHistory(t *testing.T) {
	root := cyclicRoot(t)

	out, err := execute(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots recorded")

	_, err = execute(t, "analyze", "--root", root, "--record", "--format", "json")
	assert.Equal(t, 1, exitCode(err))
	manifest(t, root, "core-b", `{"name":"@devkit/core-b"}`)
	_, err = execute(t, "analyze", "--root", root, "--record", "--format", "json")
	require.NoError(t, err)

	out, err = execute(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Trend ")
	assert.Contains(t, out, "cycles -1")
	assert.Contains(t, out, "  - circular-dependency:")
}

func TestParseSince(t *testing.T) {
	cases := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "", want: time.Time{}},
		{raw: "2026-03-01", want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2026-03-01T10:00:00+02:00", want: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		{raw: "yesterday", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseSince(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.True(t, tc.want.Equal(got), "%s: got %v", tc.raw, got)
	}
}

func TestMetricsServerHealth(t *testing.T) {
	cfg := config.DefaultConfig()
	app, err := coreapp.New(cfg, config.ResolvePaths(cfg, acyclicRoot(t), ""))
	require.NoError(t, err)
	srv := newMetricsServer("127.0.0.1:0", coreapp.NewHealthService(app))

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err = app.Analyze(context.Background())
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "monodeps_graph_nodes_total")
}
