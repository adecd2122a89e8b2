package config

import (
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	Root       string
	ConfigFile string
	HistoryDB  string
	OutputPath string
	LogFile    string
}

// ResolvePaths makes every configured path absolute. Relative history and
// output paths are taken from root.
func ResolvePaths(cfg *Config, root, configFile string) ResolvedPaths {
	root = filepath.Clean(root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	resolved := ResolvedPaths{
		Root:      root,
		HistoryDB: ResolveRelative(root, cfg.History.Path),
		LogFile:   DefaultLogPath(),
	}
	if strings.TrimSpace(configFile) != "" {
		resolved.ConfigFile = ResolveRelative(root, configFile)
	}
	if cfg.Output.Path != "" {
		resolved.OutputPath = ResolveRelative(root, cfg.Output.Path)
	}
	return resolved
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DefaultLogPath is $XDG_STATE_HOME/monodeps/monodeps.log, falling back to
// ~/.local/state and then the temp dir.
func DefaultLogPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "state")
		} else {
			base = os.TempDir()
		}
	}
	return filepath.Join(base, "monodeps", "monodeps.log")
}

// FindConfigFile returns root/monodeps.toml when explicit is empty.
func FindConfigFile(root, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return filepath.Join(root, DefaultFileName)
}
