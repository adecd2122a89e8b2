package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	domainErrors "monodeps/internal/core/errors"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainErrors.AddContext(
				domainErrors.Wrap(err, domainErrors.CodeNotFound, "config file not found"),
				domainErrors.CtxPath, path)
		}
		return nil, err
	}

	// Keys absent from the file keep their default values.
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, domainErrors.AddContext(
			domainErrors.Wrap(err, domainErrors.CodeValidationError, "decode config"),
			domainErrors.CtxPath, path)
	}

	normalize(cfg)

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, domainErrors.AddContext(
			domainErrors.Wrap(errors.Join(errs...), domainErrors.CodeValidationError, "invalid config"),
			domainErrors.CtxPath, path)
	}
	return cfg, nil
}

// LoadOptional loads path when it exists and falls back to DefaultConfig
// otherwise. found reports which happened.
func LoadOptional(path string) (cfg *Config, found bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		return DefaultConfig(), false, nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func normalize(cfg *Config) {
	d := &cfg.Discovery
	d.Namespace = strings.TrimSpace(d.Namespace)
	d.WorkspaceFile = strings.TrimSpace(d.WorkspaceFile)
	d.SourceDir = strings.TrimSpace(d.SourceDir)
	d.ManifestPatterns = trimAll(d.ManifestPatterns)
	d.ExcludeDirs = trimAll(d.ExcludeDirs)
	d.ReadmeNames = trimAll(d.ReadmeNames)

	exts := make([]string, 0, len(d.SourceExtensions))
	for _, ext := range trimAll(d.SourceExtensions) {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	d.SourceExtensions = exts

	for i := range cfg.Layers.Rules {
		r := &cfg.Layers.Rules[i]
		r.Pattern = strings.ToLower(strings.TrimSpace(r.Pattern))
		r.Layer = strings.ToLower(strings.TrimSpace(r.Layer))
	}
	cfg.Anomalies.ExpectedOrphans = trimAll(cfg.Anomalies.ExpectedOrphans)

	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.History.ProjectKey = strings.TrimSpace(cfg.History.ProjectKey)
	cfg.Observability.MetricsAddress = strings.TrimSpace(cfg.Observability.MetricsAddress)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
