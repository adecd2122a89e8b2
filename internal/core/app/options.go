package app

import (
	"fmt"

	"monodeps/internal/core/config"
	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/engine/anomaly"
	"monodeps/internal/engine/discovery"
	"monodeps/internal/engine/layers"
)

func discoveryOptions(cfg *config.Config) (discovery.Options, error) {
	d := cfg.Discovery
	opts := discovery.Options{
		Namespace:        d.Namespace,
		ManifestPatterns: d.ManifestPatterns,
		WorkspaceFile:    d.WorkspaceFile,
		SourceDir:        d.SourceDir,
		SourceExtensions: d.SourceExtensions,
		ExcludeDirs:      d.ExcludeDirs,
		ReadmeNames:      d.ReadmeNames,
		WorkspaceMarker:  d.WorkspaceMarker,
		Workers:          d.Workers,
	}

	classifier, err := classifierFor(cfg.Layers.Rules)
	if err != nil {
		return discovery.Options{}, err
	}
	opts.Classifier = classifier
	return opts, nil
}

// classifierFor falls back to the default convention table when no rules
// are configured.
func classifierFor(rules []config.LayerRule) (*layers.Classifier, error) {
	if len(rules) == 0 {
		return layers.Default(), nil
	}
	compiled := make([]layers.Rule, 0, len(rules))
	for i, rule := range rules {
		layer, err := layers.Parse(rule.Layer)
		if err != nil {
			return nil, domainErrors.Wrap(err, domainErrors.CodeValidationError, fmt.Sprintf("layer rule %d", i))
		}
		compiled = append(compiled, layers.Rule{Pattern: rule.Pattern, Layer: layer})
	}
	c, err := layers.NewClassifier(compiled)
	if err != nil {
		return nil, domainErrors.Wrap(err, domainErrors.CodeValidationError, "compile layer rules")
	}
	return c, nil
}

func detectorOptions(cfg *config.Config) anomaly.Options {
	t := cfg.Thresholds
	return anomaly.Options{
		Thresholds: anomaly.Thresholds{
			GodPackageAfferent:      t.GodPackageAfferent,
			UnstableCoreInstability: t.UnstableCoreInstability,
			LargePackageLOC:         t.LargePackageLOC,
			ManyDependencies:        t.ManyDependencies,
			DeepChainDepth:          t.DeepChainDepth,
		},
		ExpectedOrphans: cfg.Anomalies.ExpectedOrphans,
		IgnoreUnknown:   cfg.Layers.IgnoreUnknown,
	}
}
