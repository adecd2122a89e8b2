package config

import (
	"fmt"
	"slices"

	"github.com/gobwas/glob"

	"monodeps/internal/engine/layers"
)

// Validate reports every problem found, not only the first.
func Validate(cfg *Config) []error {
	var errs []error
	errs = append(errs, validateDiscovery(cfg)...)
	errs = append(errs, validateLayers(cfg)...)
	errs = append(errs, validateThresholds(cfg)...)
	errs = append(errs, validatePatterns("anomalies.expected_orphans", cfg.Anomalies.ExpectedOrphans)...)
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce))
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		errs = append(errs, fmt.Errorf("history.path must not be empty when history is enabled"))
	}
	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %v", cfg.Output.Format, OutputFormats))
	}
	return errs
}

func validateDiscovery(cfg *Config) []error {
	var errs []error
	if cfg.Discovery.Workers < 1 {
		errs = append(errs, fmt.Errorf("discovery.workers must be >= 1, got %d", cfg.Discovery.Workers))
	}
	if len(cfg.Discovery.ManifestPatterns) == 0 {
		errs = append(errs, fmt.Errorf("discovery.manifest_patterns must not be empty"))
	}
	errs = append(errs, validatePatterns("discovery.manifest_patterns", cfg.Discovery.ManifestPatterns)...)
	errs = append(errs, validatePatterns("discovery.exclude_dirs", cfg.Discovery.ExcludeDirs)...)
	return errs
}

func validateLayers(cfg *Config) []error {
	var errs []error
	for i, r := range cfg.Layers.Rules {
		ref := fmt.Sprintf("layers.rules[%d]", i)
		if r.Pattern == "" {
			errs = append(errs, fmt.Errorf("%s.pattern must not be empty", ref))
		} else if _, err := glob.Compile(r.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s.pattern %q: %w", ref, r.Pattern, err))
		}
		if _, err := layers.Parse(r.Layer); err != nil {
			errs = append(errs, fmt.Errorf("%s.layer: %w", ref, err))
		}
	}
	return errs
}

func validateThresholds(cfg *Config) []error {
	var errs []error
	th := cfg.Thresholds
	positive := []struct {
		key   string
		value int
	}{
		{"thresholds.god_package_afferent", th.GodPackageAfferent},
		{"thresholds.large_package_loc", th.LargePackageLOC},
		{"thresholds.many_dependencies", th.ManyDependencies},
		{"thresholds.deep_chain_depth", th.DeepChainDepth},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %d", p.key, p.value))
		}
	}
	if th.UnstableCoreInstability <= 0 || th.UnstableCoreInstability > 1 {
		errs = append(errs, fmt.Errorf("thresholds.unstable_core_instability must be in (0,1], got %v", th.UnstableCoreInstability))
	}
	return errs
}

func validatePatterns(key string, patterns []string) []error {
	var errs []error
	for i, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d] %q: %w", key, i, p, err))
		}
	}
	return errs
}
