package graph

import "fmt"

const emptyPayload = "{}"

// Ring builds a cycle of n nodes.
func Ring(n int) *ForceGraph[string, string] {
	g := New[string, string]()
	idx := addLabelled(g, n)
	for i := range idx {
		if n > 1 && (n > 2 || i == 0) {
			link(g, idx[i], idx[(i+1)%n])
		}
	}
	return g
}

// Grid builds a w×h lattice.
func Grid(w, h int) *ForceGraph[string, string] {
	g := New[string, string]()
	idx := addLabelled(g, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x+1 < w {
				link(g, idx[i], idx[i+1])
			}
			if y+1 < h {
				link(g, idx[i], idx[i+w])
			}
		}
	}
	return g
}

// Complete builds K_n.
func Complete(n int) *ForceGraph[string, string] {
	g := New[string, string]()
	idx := addLabelled(g, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			link(g, idx[i], idx[j])
		}
	}
	return g
}

// Star builds one hub joined to n leaves.
func Star(n int) *ForceGraph[string, string] {
	g := New[string, string]()
	idx := addLabelled(g, n+1)
	for _, leaf := range idx[1:] {
		link(g, idx[0], leaf)
	}
	return g
}

// Generate builds a named shape; used by the CLI.
func Generate(kind string, size int) (*ForceGraph[string, string], error) {
	if size < 1 {
		return nil, fmt.Errorf("size must be positive, got %d", size)
	}
	switch kind {
	case "ring":
		return Ring(size), nil
	case "grid":
		return Grid(size, size), nil
	case "complete":
		return Complete(size), nil
	case "star":
		return Star(size), nil
	}
	return nil, fmt.Errorf("unknown graph kind: %s", kind)
}

// link joins two nodes the generator just created; an error means the
// generator itself is broken.
func link(g *ForceGraph[string, string], a, b NodeIndex) {
	if _, err := g.AddEdge(a, b, emptyPayload); err != nil {
		panic(fmt.Sprintf("graph: generator edge %d-%d: %v", a, b, err))
	}
}

func addLabelled(g *ForceGraph[string, string], n int) []NodeIndex {
	idx := make([]NodeIndex, n)
	for i := range idx {
		idx[i] = g.AddNode(fmt.Sprintf("%d", i+1), emptyPayload)
	}
	return idx
}
