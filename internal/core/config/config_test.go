package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	domainErrors "monodeps/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[discovery]
namespace = "@acme/"
manifest_patterns = ["*/packages/*/package.json", "apps/*/package.json"]
source_extensions = ["TS", ".tsx"]
require_workspace_marker = true
workers = 4

[layers]
ignore_unknown = true

[[layers.rules]]
pattern = "Platform-*"
layer = "Infrastructure"

[thresholds]
god_package_afferent = 20
unstable_core_instability = 0.8

[anomalies]
expected_orphans = ["*-worker"]

[history]
enabled = true
project_key = "acme"

[watch]
debounce = "1s"

[output]
format = "Markdown"
path = "reports/deps.md"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Discovery.Namespace != "@acme/" {
		t.Errorf("Expected namespace @acme/, got %q", cfg.Discovery.Namespace)
	}
	if len(cfg.Discovery.ManifestPatterns) != 2 {
		t.Errorf("Unexpected manifest patterns: %v", cfg.Discovery.ManifestPatterns)
	}
	if got := strings.Join(cfg.Discovery.SourceExtensions, ","); got != ".ts,.tsx" {
		t.Errorf("Expected normalized extensions, got %s", got)
	}
	if !cfg.Discovery.RequireWorkspaceMarker || cfg.Discovery.Workers != 4 {
		t.Errorf("Unexpected discovery flags: %+v", cfg.Discovery)
	}
	if !cfg.Layers.IgnoreUnknown || len(cfg.Layers.Rules) != 1 {
		t.Fatalf("Unexpected layers: %+v", cfg.Layers)
	}
	if r := cfg.Layers.Rules[0]; r.Pattern != "platform-*" || r.Layer != "infrastructure" {
		t.Errorf("Expected lowercased rule, got %+v", r)
	}
	if cfg.Thresholds.GodPackageAfferent != 20 || cfg.Thresholds.UnstableCoreInstability != 0.8 {
		t.Errorf("Unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.LargePackageLOC != 10000 {
		t.Errorf("Expected default large_package_loc, got %d", cfg.Thresholds.LargePackageLOC)
	}
	if len(cfg.Anomalies.ExpectedOrphans) != 1 || cfg.Anomalies.ExpectedOrphans[0] != "*-worker" {
		t.Errorf("Unexpected expected orphans: %v", cfg.Anomalies.ExpectedOrphans)
	}
	if !cfg.History.Enabled || cfg.History.Path != ".monodeps/history.db" || cfg.History.ProjectKey != "acme" {
		t.Errorf("Unexpected history: %+v", cfg.History)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != "markdown" || cfg.Output.Path != "reports/deps.md" {
		t.Errorf("Unexpected output: %+v", cfg.Output)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Discovery.Namespace != def.Discovery.Namespace {
		t.Errorf("Expected default namespace, got %q", cfg.Discovery.Namespace)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected text output, got %q", cfg.Output.Format)
	}
	if cfg.History.Enabled {
		t.Error("History should be disabled by default")
	}
}

func TestLoad_ExplicitEmptyNamespace(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[discovery]\nnamespace = \"\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Discovery.Namespace != "" {
		t.Errorf("Expected empty namespace to be kept, got %q", cfg.Discovery.Namespace)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !domainErrors.IsCode(err, domainErrors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}

	_, err = Load(writeConfig(t, "[discovery\nnamespace = 1"))
	if !domainErrors.IsCode(err, domainErrors.CodeValidationError) {
		t.Errorf("Expected VALIDATION_ERROR for malformed TOML, got %v", err)
	}

	_, err = Load(writeConfig(t, "[output]\nformat = \"xml\"\n"))
	if !domainErrors.IsCode(err, domainErrors.CodeValidationError) {
		t.Fatalf("Expected VALIDATION_ERROR for bad format, got %v", err)
	}
	if !strings.Contains(err.Error(), "output.format") {
		t.Errorf("Expected error to name the key, got %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg, found, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil || found {
		t.Fatalf("Expected defaults without error, got found=%v err=%v", found, err)
	}
	if cfg.Discovery.Workers != 8 {
		t.Errorf("Expected default workers, got %d", cfg.Discovery.Workers)
	}

	cfg, found, err = LoadOptional(writeConfig(t, "[discovery]\nworkers = 2\n"))
	if err != nil || !found {
		t.Fatalf("Expected file to be loaded, got found=%v err=%v", found, err)
	}
	if cfg.Discovery.Workers != 2 {
		t.Errorf("Expected workers 2, got %d", cfg.Discovery.Workers)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("Missing .env should be ignored: %v", err)
	}

	key := "MONODEPS_TEST_DOTENV_VALUE"
	t.Setenv(key, "")
	os.Unsetenv(key)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("Expected value from .env, got %q", got)
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "monodeps.example.toml"))
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Thresholds, DefaultConfig().Thresholds) {
		t.Errorf("example thresholds drifted from defaults: %+v", cfg.Thresholds)
	}
	if cfg.History.ProjectKey != "default" || cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("unexpected history/watch values: %+v %+v", cfg.History, cfg.Watch)
	}
}
