// Package discovery finds ecosystem packages under a monorepo root and
// reads their manifests and source statistics.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/engine/layers"
	"monodeps/internal/shared/observability"
	"monodeps/internal/shared/util"
)

const manifestName = "package.json"

type Options struct {
	// Namespace is the required package-name prefix. Empty accepts all.
	Namespace        string
	ManifestPatterns []string
	WorkspaceFile    string
	SourceDir        string
	SourceExtensions []string
	ExcludeDirs      []string
	ReadmeNames      []string
	WorkspaceMarker  string
	Workers          int
	Classifier       *layers.Classifier
}

func DefaultOptions() Options {
	return Options{
		Namespace:        "@devkit/",
		ManifestPatterns: []string{"*/packages/*/package.json"},
		WorkspaceFile:    "pnpm-workspace.yaml",
		SourceDir:        "src",
		SourceExtensions: []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"},
		ExcludeDirs:      []string{"node_modules", ".git", "dist", "build", "coverage", ".turbo"},
		ReadmeNames:      []string{"README.md", "README", "README.mdx", "README.txt"},
		WorkspaceMarker:  "workspace:",
		Workers:          8,
		Classifier:       layers.Default(),
	}
}

type Package struct {
	Name         string
	Version      string
	Description  string
	SourcePath   string
	ManifestPath string
	Repository   string
	Layer        layers.Layer
	Size         Size
	HasReadme    bool
	Dependencies []Dependency
}

// DependencyNames lists declared dependency names. With workspaceOnly set,
// only dependencies whose spec carries the workspace marker are returned.
func (p Package) DependencyNames(workspaceOnly bool) []string {
	names := make([]string, 0, len(p.Dependencies))
	for _, dep := range p.Dependencies {
		if workspaceOnly && !dep.Workspace {
			continue
		}
		names = append(names, dep.Name)
	}
	return names
}

// Skipped is a manifest left out of the scan. Code classifies the cause:
// NOT_FOUND or PERMISSION_DENIED for read failures, VALIDATION_ERROR for
// malformed manifests and CONFLICT for duplicate package names.
type Skipped struct {
	Path   string
	Reason string
	Code   domainErrors.ErrorCode
}

// Err returns the skip as a DomainError carrying the manifest path.
func (s Skipped) Err() error {
	return domainErrors.AddContext(domainErrors.New(s.Code, s.Reason), domainErrors.CtxManifest, s.Path)
}

type Result struct {
	Root     string
	Packages []Package
	Skipped  []Skipped
}

// Discover scans root for ecosystem manifests. Only a missing or
// non-directory root is fatal; unreadable or malformed manifests are
// recorded in Result.Skipped and the scan continues.
func Discover(ctx context.Context, root string, opts Options) (*Result, error) {
	absRoot, err := ValidateRoot(root)
	if err != nil {
		return nil, err
	}
	if opts.Classifier == nil {
		opts.Classifier = layers.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	excludeDirs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("exclude dirs: %w", err)
	}

	wsInclude, wsExclude, err := loadWorkspacePatterns(absRoot, opts.WorkspaceFile)
	if err != nil {
		// The two-level convention still applies without the workspace file.
		slog.Warn("ignoring workspace file", "path", filepath.Join(absRoot, opts.WorkspaceFile), "error", err)
	}
	include, err := compileGlobs(append(append([]string(nil), opts.ManifestPatterns...), wsInclude...), '/')
	if err != nil {
		return nil, fmt.Errorf("manifest patterns: %w", err)
	}
	exclude, err := compileGlobs(wsExclude, '/')
	if err != nil {
		return nil, fmt.Errorf("workspace exclusions: %w", err)
	}

	manifests, err := findManifests(ctx, absRoot, include, exclude, excludeDirs)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: absRoot}
	seen := make(map[string]string)
	for _, path := range manifests {
		pkg, skip, ok := readPackage(absRoot, path, opts)
		if skip == nil && ok {
			if first, dup := seen[pkg.Name]; dup {
				skip = &Skipped{
					Path:   path,
					Reason: fmt.Sprintf("duplicate package name %q (first seen at %s)", pkg.Name, first),
					Code:   domainErrors.CodeConflict,
				}
			}
		}
		if skip != nil {
			slog.Warn("skipping manifest", "error", skip.Err())
			observability.SkippedManifestsTotal.Inc()
			res.Skipped = append(res.Skipped, *skip)
			continue
		}
		if !ok {
			continue
		}
		seen[pkg.Name] = path
		res.Packages = append(res.Packages, pkg)
	}

	if err := fillSourceStats(ctx, res.Packages, opts, excludeDirs); err != nil {
		return nil, err
	}

	sort.Slice(res.Packages, func(i, j int) bool { return res.Packages[i].Name < res.Packages[j].Name })
	observability.DiscoveredPackages.Set(float64(len(res.Packages)))
	return res, nil
}

// ValidateRoot resolves root to an absolute directory path.
func ValidateRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", domainErrors.AddContext(domainErrors.Wrap(err, domainErrors.CodeValidationError, "resolve root path"), domainErrors.CtxPath, root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", domainErrors.AddContext(domainErrors.FromFS(err, "stat root path"), domainErrors.CtxPath, abs)
	}
	if !info.IsDir() {
		return "", domainErrors.AddContext(domainErrors.New(domainErrors.CodeValidationError, "root path is not a directory"), domainErrors.CtxPath, abs)
	}
	return abs, nil
}

func findManifests(ctx context.Context, root string, include, exclude, excludeDirs []glob.Glob) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && matchesAny(excludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != manifestName {
			return nil
		}
		rel, err := util.RelSlash(root, path)
		if err != nil {
			return nil
		}
		if matchesAny(include, rel) && !matchesAny(exclude, rel) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, domainErrors.AddContext(domainErrors.Wrap(err, domainErrors.CodeInternal, "walk root"), domainErrors.CtxPath, root)
	}
	sort.Strings(found)
	return found, nil
}

// readPackage returns ok=false without a skip for packages outside the
// namespace.
func readPackage(root, path string, opts Options) (Package, *Skipped, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Package{}, &Skipped{Path: path, Reason: err.Error(), Code: domainErrors.CodeOf(domainErrors.FromFS(err, "read manifest"))}, false
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Package{}, &Skipped{Path: path, Reason: err.Error(), Code: domainErrors.CodeValidationError}, false
	}
	if opts.Namespace != "" && !strings.HasPrefix(m.Name, opts.Namespace) {
		slog.Debug("package outside namespace", "name", m.Name, "path", path)
		return Package{}, nil, false
	}

	dir := filepath.Dir(path)
	return Package{
		Name:         m.Name,
		Version:      m.Version,
		Description:  m.Description,
		SourcePath:   dir,
		ManifestPath: path,
		Repository:   repositoryFor(root, dir),
		Layer:        opts.Classifier.Classify(m.Name),
		HasReadme:    hasReadme(dir, lowerSet(opts.ReadmeNames)),
		Dependencies: m.DeclaredDependencies(opts.WorkspaceMarker),
	}, nil, true
}

// repositoryFor names the grouping directory: the first path segment when
// the package sits at least two directories below root, else the root name.
func repositoryFor(root, dir string) string {
	rel, err := util.RelSlash(root, dir)
	if err == nil {
		segments := strings.Split(rel, "/")
		if len(segments) >= 2 {
			return segments[0]
		}
	}
	return filepath.Base(root)
}

// fillSourceStats walks every package source tree in parallel. All writes
// land before it returns, so callers see fully populated packages.
func fillSourceStats(ctx context.Context, pkgs []Package, opts Options, excludeDirs []glob.Glob) error {
	extensions := lowerSet(opts.SourceExtensions)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range pkgs {
		i := i
		g.Go(func() error {
			size, err := sourceStats(gctx, filepath.Join(pkgs[i].SourcePath, opts.SourceDir), extensions, excludeDirs)
			if err != nil {
				return fmt.Errorf("source stats for %s: %w", pkgs[i].Name, err)
			}
			pkgs[i].Size = size
			return nil
		})
	}
	return g.Wait()
}

func compileGlobs(patterns []string, separators ...rune) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, separators...)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
