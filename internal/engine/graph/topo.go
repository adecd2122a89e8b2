package graph

import "sort"

// Ordering is the result of layering the graph for builds. Layers[0] holds
// packages with no dependencies; every package appears in a later layer
// than all of its dependencies.
type Ordering struct {
	Layers [][]string
	Order  []string
	// Circular holds the packages that could not be ordered. It is empty
	// when the graph is acyclic.
	Circular []string
}

func (o Ordering) Complete() bool {
	return len(o.Circular) == 0
}

// LayerIndex returns the 0-based layer holding name.
func (o Ordering) LayerIndex(name string) (int, bool) {
	for i, layer := range o.Layers {
		for _, n := range layer {
			if n == name {
				return i, true
			}
		}
	}
	return 0, false
}

// TopologicalSort layers the graph with Kahn's algorithm, draining the whole
// ready queue per layer. A cycle is not an error: unsortable packages are
// returned in Circular, and DetectCyclesWithin explains them.
func (g *Graph) TopologicalSort() Ordering {
	remaining := make(map[string]int, len(g.names))
	var ready []string
	for _, name := range g.names {
		remaining[name] = len(g.nodes[name].dependencies)
		if remaining[name] == 0 {
			ready = append(ready, name)
		}
	}

	ord := Ordering{
		Layers:   make([][]string, 0),
		Order:    make([]string, 0, len(g.names)),
		Circular: make([]string, 0),
	}
	for len(ready) > 0 {
		layer := ready
		sort.Strings(layer)
		ord.Layers = append(ord.Layers, layer)
		ord.Order = append(ord.Order, layer...)

		var next []string
		for _, name := range layer {
			for _, dependent := range g.nodes[name].rdeps {
				remaining[dependent]--
				if remaining[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if len(ord.Order) < len(g.names) {
		for _, name := range g.names {
			if remaining[name] > 0 {
				ord.Circular = append(ord.Circular, name)
			}
		}
	}
	return ord
}
