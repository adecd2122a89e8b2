package graph

type Metrics struct {
	AfferentCoupling int
	EfferentCoupling int
	// Instability is efferent / (afferent + efferent); 0 for isolated nodes.
	Instability float64
	// Centrality is afferent coupling over the total node count.
	Centrality float64
	Depth      int
}

// ComputeMetrics derives coupling metrics for every node.
func (g *Graph) ComputeMetrics() map[string]Metrics {
	total := len(g.names)
	depths := g.depths()

	metrics := make(map[string]Metrics, total)
	for _, name := range g.names {
		n := g.nodes[name]
		afferent := len(n.dependents)
		efferent := len(n.dependencies)

		m := Metrics{
			AfferentCoupling: afferent,
			EfferentCoupling: efferent,
			Depth:            depths[name],
		}
		if coupling := afferent + efferent; coupling > 0 {
			m.Instability = float64(efferent) / float64(coupling)
		}
		if total > 0 {
			m.Centrality = float64(afferent) / float64(total)
		}
		metrics[name] = m
	}
	return metrics
}

// Depth is the number of edges on the longest outgoing dependency chain
// from name that visits no node twice. An edge back to a node already on
// the chain is not counted, so A <-> B gives depth(A) = 1 and a self-loop
// A -> A gives 0. The result is always finite.
func (g *Graph) Depth(name string) int {
	if !g.Has(name) {
		return 0
	}
	d, _ := g.depthFrom(name, make(map[string]bool), make(map[string]int))
	return d
}

func (g *Graph) depths() map[string]int {
	memo := make(map[string]int, len(g.names))
	out := make(map[string]int, len(g.names))
	for _, name := range g.names {
		d, _ := g.depthFrom(name, make(map[string]bool), memo)
		out[name] = d
	}
	return out
}

// depthFrom reports whether the walk was cut by a node on the current path.
// Only uncut results are memoized: they cannot depend on the path taken to
// reach the node.
func (g *Graph) depthFrom(name string, onPath map[string]bool, memo map[string]int) (int, bool) {
	if d, ok := memo[name]; ok {
		return d, false
	}

	onPath[name] = true
	defer delete(onPath, name)

	best := 0
	cut := false
	for _, next := range g.nodes[name].deps {
		if onPath[next] {
			cut = true
			continue
		}
		d, nextCut := g.depthFrom(next, onPath, memo)
		if nextCut {
			cut = true
		}
		if d+1 > best {
			best = d + 1
		}
	}
	if !cut {
		memo[name] = best
	}
	return best, cut
}
