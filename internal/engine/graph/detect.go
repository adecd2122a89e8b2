package graph

import (
	"sort"
	"strings"
)

// DetectCycles finds cycles by depth-first search with a recursion stack.
// Each cycle is returned closed, e.g. [A B A]. Cycles over the same vertex
// set are reported once (the first found), so distinct elementary cycles
// sharing a vertex set are merged.
func (g *Graph) DetectCycles() [][]string {
	return g.detectCycles(g.names, nil)
}

// DetectCyclesWithin runs cycle detection on the subgraph induced by
// members. Unknown names are ignored.
func (g *Graph) DetectCyclesWithin(members []string) [][]string {
	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		if g.Has(m) {
			allowed[m] = true
		}
	}
	return g.detectCycles(sortedSet(allowed), allowed)
}

func (g *Graph) detectCycles(roots []string, allowed map[string]bool) [][]string {
	cycles := make([][]string, 0)
	seen := make(map[string]bool)
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(curr string, path []string)
	visit = func(curr string, path []string) {
		visited[curr] = true
		onStack[curr] = true
		path = append(path, curr)

		for _, next := range g.nodes[curr].deps {
			if allowed != nil && !allowed[next] {
				continue
			}
			if onStack[next] {
				start := -1
				for i, name := range path {
					if name == next {
						start = i
						break
					}
				}
				if start == -1 {
					continue
				}
				cycle := make([]string, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, next)

				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			} else if !visited[next] {
				visit(next, path)
			}
		}

		onStack[curr] = false
	}

	for _, root := range roots {
		if !visited[root] {
			visit(root, nil)
		}
	}
	return cycles
}

// CycleMembers returns the distinct members of a closed cycle, sorted.
func CycleMembers(cycle []string) []string {
	if len(cycle) > 1 && cycle[0] == cycle[len(cycle)-1] {
		cycle = cycle[:len(cycle)-1]
	}
	set := make(map[string]bool, len(cycle))
	for _, name := range cycle {
		set[name] = true
	}
	return sortedSet(set)
}

func cycleKey(cycle []string) string {
	return strings.Join(CycleMembers(cycle), "\x00")
}

// FindDependencyChain returns the shortest from -> ... -> to dependency path.
func (g *Graph) FindDependencyChain(from, to string) ([]string, bool) {
	if !g.Has(from) || !g.Has(to) {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range g.nodes[curr].deps {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to {
				path := []string{to}
				for n := to; n != from; {
					n = prev[n]
					path = append(path, n)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

// SharesCycle reports whether a and b are both members of one cycle.
func SharesCycle(cycles [][]string, a, b string) bool {
	for _, c := range cycles {
		members := CycleMembers(c)
		ia := sort.SearchStrings(members, a)
		ib := sort.SearchStrings(members, b)
		if ia < len(members) && members[ia] == a && ib < len(members) && members[ib] == b {
			return true
		}
	}
	return false
}
