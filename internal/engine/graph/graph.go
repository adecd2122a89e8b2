// Package graph holds the package dependency graph and the analyses derived
// from it: coupling metrics, cycle detection, topological layering and
// impact queries.
//
// An edge A -> B means package A declares a dependency on package B. Only
// packages from the discovery set are nodes; dependencies on anything else
// are dropped while building.
package graph

import (
	"sort"

	"monodeps/internal/engine/discovery"
	"monodeps/internal/shared/observability"
)

type BuildOptions struct {
	// WorkspaceOnly keeps only dependencies whose version spec carries the
	// workspace marker.
	WorkspaceOnly bool
}

// Graph is immutable once Build returns.
type Graph struct {
	nodes map[string]*node
	names []string
	edges int
}

type node struct {
	pkg          discovery.Package
	dependencies map[string]bool
	dependents   map[string]bool

	// sorted views, filled at the end of Build
	deps  []string
	rdeps []string
}

type Edge struct {
	From string
	To   string
}

// Build creates one node per package, then adds an edge for every declared
// dependency that names another node. Both adjacency directions are written
// together.
func Build(pkgs []discovery.Package, opts BuildOptions) *Graph {
	g := &Graph{nodes: make(map[string]*node, len(pkgs))}

	for _, pkg := range pkgs {
		if _, exists := g.nodes[pkg.Name]; exists {
			continue
		}
		g.nodes[pkg.Name] = &node{
			pkg:          pkg,
			dependencies: make(map[string]bool),
			dependents:   make(map[string]bool),
		}
		g.names = append(g.names, pkg.Name)
	}
	sort.Strings(g.names)

	for _, from := range g.names {
		n := g.nodes[from]
		for _, to := range n.pkg.DependencyNames(opts.WorkspaceOnly) {
			target, ok := g.nodes[to]
			if !ok || n.dependencies[to] {
				continue
			}
			n.dependencies[to] = true
			target.dependents[from] = true
			g.edges++
		}
	}

	for _, n := range g.nodes {
		n.deps = sortedSet(n.dependencies)
		n.rdeps = sortedSet(n.dependents)
	}

	observability.GraphNodes.Set(float64(len(g.names)))
	observability.GraphEdges.Set(float64(g.edges))
	return g
}

// Names returns every package name, sorted.
func (g *Graph) Names() []string {
	return append([]string(nil), g.names...)
}

func (g *Graph) Len() int {
	return len(g.names)
}

func (g *Graph) EdgeCount() int {
	return g.edges
}

func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

func (g *Graph) Package(name string) (discovery.Package, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return discovery.Package{}, false
	}
	return n.pkg, true
}

// Dependencies returns the packages name depends on, sorted.
func (g *Graph) Dependencies(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out
}

// Dependents returns the packages that depend on name, sorted.
func (g *Graph) Dependents(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	out := make([]string, len(n.rdeps))
	copy(out, n.rdeps)
	return out
}

func (g *Graph) HasEdge(from, to string) bool {
	n, ok := g.nodes[from]
	return ok && n.dependencies[to]
}

// Edges lists every edge ordered by source then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, from := range g.names {
		for _, to := range g.nodes[from].deps {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
