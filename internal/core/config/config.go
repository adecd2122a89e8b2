package config

import "time"

const DefaultFileName = "monodeps.toml"

type Config struct {
	Discovery     Discovery     `toml:"discovery"`
	Layers        Layers        `toml:"layers"`
	Thresholds    Thresholds    `toml:"thresholds"`
	Anomalies     Anomalies     `toml:"anomalies"`
	History       History       `toml:"history"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
	Output        Output        `toml:"output"`
}

type Discovery struct {
	Namespace              string   `toml:"namespace"`
	ManifestPatterns       []string `toml:"manifest_patterns"`
	WorkspaceFile          string   `toml:"workspace_file"`
	SourceDir              string   `toml:"source_dir"`
	SourceExtensions       []string `toml:"source_extensions"`
	ExcludeDirs            []string `toml:"exclude_dirs"`
	ReadmeNames            []string `toml:"readme_names"`
	WorkspaceMarker        string   `toml:"workspace_marker"`
	RequireWorkspaceMarker bool     `toml:"require_workspace_marker"`
	Workers                int      `toml:"workers"`
}

type Layers struct {
	IgnoreUnknown bool        `toml:"ignore_unknown"`
	Rules         []LayerRule `toml:"rules"`
}

type LayerRule struct {
	Pattern string `toml:"pattern"`
	Layer   string `toml:"layer"`
}

type Thresholds struct {
	GodPackageAfferent      int     `toml:"god_package_afferent"`
	UnstableCoreInstability float64 `toml:"unstable_core_instability"`
	LargePackageLOC         int     `toml:"large_package_loc"`
	ManyDependencies        int     `toml:"many_dependencies"`
	DeepChainDepth          int     `toml:"deep_chain_depth"`
}

type Anomalies struct {
	ExpectedOrphans []string `toml:"expected_orphans"`
}

type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

var OutputFormats = []string{"text", "json", "markdown", "dot", "mermaid", "tsv"}

// DefaultConfig is used as-is when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Discovery: Discovery{
			Namespace:        "@devkit/",
			ManifestPatterns: []string{"*/packages/*/package.json"},
			WorkspaceFile:    "pnpm-workspace.yaml",
			SourceDir:        "src",
			SourceExtensions: []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"},
			ExcludeDirs:      []string{"node_modules", ".git", "dist", "build", "coverage", ".turbo"},
			ReadmeNames:      []string{"README.md", "README", "README.mdx", "README.txt"},
			WorkspaceMarker:  "workspace:",
			Workers:          8,
		},
		Thresholds: Thresholds{
			GodPackageAfferent:      15,
			UnstableCoreInstability: 0.7,
			LargePackageLOC:         10000,
			ManyDependencies:        10,
			DeepChainDepth:          7,
		},
		Anomalies: Anomalies{
			ExpectedOrphans: []string{"*-cli", "*-plugin", "*-bin", "*-app", "cli", "app"},
		},
		History: History{
			Path: ".monodeps/history.db",
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
		Output: Output{
			Format: "text",
		},
	}
}
