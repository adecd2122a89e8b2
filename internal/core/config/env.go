package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: MONODEPS_[SECTION]_[KEY] (e.g., MONODEPS_OUTPUT_FORMAT).
// Call Validate afterwards; overrides are not checked here.
func ApplyEnvOverrides(cfg *Config) {
	// Discovery
	setEnvString(&cfg.Discovery.Namespace, "MONODEPS_DISCOVERY_NAMESPACE")
	setEnvList(&cfg.Discovery.ManifestPatterns, "MONODEPS_DISCOVERY_MANIFEST_PATTERNS")
	setEnvString(&cfg.Discovery.SourceDir, "MONODEPS_DISCOVERY_SOURCE_DIR")
	setEnvString(&cfg.Discovery.WorkspaceMarker, "MONODEPS_DISCOVERY_WORKSPACE_MARKER")
	setEnvBool(&cfg.Discovery.RequireWorkspaceMarker, "MONODEPS_DISCOVERY_REQUIRE_WORKSPACE_MARKER")
	setEnvInt(&cfg.Discovery.Workers, "MONODEPS_DISCOVERY_WORKERS")

	// Layers
	setEnvBool(&cfg.Layers.IgnoreUnknown, "MONODEPS_LAYERS_IGNORE_UNKNOWN")

	// Thresholds
	setEnvInt(&cfg.Thresholds.GodPackageAfferent, "MONODEPS_THRESHOLDS_GOD_PACKAGE_AFFERENT")
	setEnvFloat64(&cfg.Thresholds.UnstableCoreInstability, "MONODEPS_THRESHOLDS_UNSTABLE_CORE_INSTABILITY")
	setEnvInt(&cfg.Thresholds.LargePackageLOC, "MONODEPS_THRESHOLDS_LARGE_PACKAGE_LOC")
	setEnvInt(&cfg.Thresholds.ManyDependencies, "MONODEPS_THRESHOLDS_MANY_DEPENDENCIES")
	setEnvInt(&cfg.Thresholds.DeepChainDepth, "MONODEPS_THRESHOLDS_DEEP_CHAIN_DEPTH")

	// History
	setEnvBool(&cfg.History.Enabled, "MONODEPS_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "MONODEPS_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, "MONODEPS_HISTORY_PROJECT_KEY")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "MONODEPS_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "MONODEPS_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "MONODEPS_OBSERVABILITY_OTLP_ENDPOINT")

	// Output
	setEnvString(&cfg.Output.Format, "MONODEPS_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "MONODEPS_OUTPUT_PATH")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.TrimSpace(val)
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = trimAll(strings.Split(val, ","))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(val)))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
