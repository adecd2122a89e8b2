package graph

import (
	"errors"
	"fmt"
)

var ErrPackageNotFound = errors.New("package not found")

type ImpactReport struct {
	Target                 string
	Layer                  string
	DirectDependents       []string
	TransitiveDependents   []string
	DirectDependencies     []string
	TransitiveDependencies []string
}

type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPackageNotFound, e.Name)
}

func (e *PackageNotFoundError) Unwrap() error {
	return ErrPackageNotFound
}

// AnalyzeImpact lists who is affected by a change to name (dependents) and
// what name is built on (dependencies). Transitive lists exclude the
// direct ones.
func (g *Graph) AnalyzeImpact(name string) (ImpactReport, error) {
	n, ok := g.nodes[name]
	if !ok {
		return ImpactReport{}, &PackageNotFoundError{Name: name}
	}

	report := ImpactReport{
		Target:             name,
		Layer:              n.pkg.Layer.String(),
		DirectDependents:   append([]string(nil), n.rdeps...),
		DirectDependencies: append([]string(nil), n.deps...),
	}
	report.TransitiveDependents = g.reach(name, func(x *node) []string { return x.rdeps })
	report.TransitiveDependencies = g.reach(name, func(x *node) []string { return x.deps })
	return report, nil
}

// reach walks breadth-first from start and returns nodes at distance two or
// more, sorted.
func (g *Graph) reach(start string, next func(*node) []string) []string {
	direct := make(map[string]bool)
	for _, n := range next(g.nodes[start]) {
		direct[n] = true
	}

	seen := map[string]bool{start: true}
	queue := []string{start}
	out := make(map[string]bool)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, n := range next(g.nodes[curr]) {
			if seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
			if !direct[n] {
				out[n] = true
			}
		}
	}
	return sortedSet(out)
}
