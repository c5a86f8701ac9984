package graph

import (
	"iter"
	"slices"

	"github.com/san-kum/fdgsim/internal/dynamo"
)

// NodeIndex is a stable handle to a node. It keeps referring to the same node
// until that node is removed and is never reused.
type NodeIndex int

// EdgeIndex is a stable handle to an edge.
type EdgeIndex int

// Edge is an undirected connection. Source and Target only record insertion order.
type Edge[E any] struct {
	Source NodeIndex
	Target NodeIndex
	Data   E
}

// SelfLoop reports whether both endpoints are the same node.
func (e Edge[E]) SelfLoop() bool { return e.Source == e.Target }

type nodeSlot[N any] struct {
	node  Node[N]
	edges []EdgeIndex
	live  bool
}

type edgeSlot[E any] struct {
	edge Edge[E]
	live bool
}

// ForceGraph is an undirected multigraph whose vertices carry physical state.
// Storage is append-only: removal tombstones a slot, so iteration follows
// insertion order and live handles never move. Multi-edges and self-loops are
// stored as given.
//
// A ForceGraph is not safe for concurrent mutation.
type ForceGraph[N, E any] struct {
	nodes     []*nodeSlot[N]
	edges     []*edgeSlot[E]
	nodeCount int
	edgeCount int
}

func New[N, E any]() *ForceGraph[N, E] {
	return &ForceGraph[N, E]{}
}

// AddNode appends a node with default physical state.
func (g *ForceGraph[N, E]) AddNode(name string, data N) NodeIndex {
	return g.AddForceNode(NewNode(name, data))
}

// AddForceNode appends a fully specified node.
func (g *ForceGraph[N, E]) AddForceNode(n Node[N]) NodeIndex {
	if n.mass <= 0 {
		n.mass = 1
	}
	g.nodes = append(g.nodes, &nodeSlot[N]{node: n, live: true})
	g.nodeCount++
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge connects a and b. Self-loops are accepted; the force model ignores them.
func (g *ForceGraph[N, E]) AddEdge(a, b NodeIndex, data E) (EdgeIndex, error) {
	if !g.Contains(a) {
		return -1, &dynamo.ReferenceError{Kind: "node", Index: int(a)}
	}
	if !g.Contains(b) {
		return -1, &dynamo.ReferenceError{Kind: "node", Index: int(b)}
	}

	idx := EdgeIndex(len(g.edges))
	g.edges = append(g.edges, &edgeSlot[E]{edge: Edge[E]{Source: a, Target: b, Data: data}, live: true})
	g.edgeCount++

	g.nodes[a].edges = append(g.nodes[a].edges, idx)
	if a != b {
		g.nodes[b].edges = append(g.nodes[b].edges, idx)
	}
	return idx, nil
}

// RemoveNode removes the node and every incident edge.
func (g *ForceGraph[N, E]) RemoveNode(i NodeIndex) error {
	if !g.Contains(i) {
		return &dynamo.ReferenceError{Kind: "node", Index: int(i)}
	}
	slot := g.nodes[i]
	for _, e := range slices.Clone(slot.edges) {
		g.unlink(e)
	}
	slot.live = false
	slot.edges = nil
	var zero Node[N]
	slot.node = zero
	g.nodeCount--
	return nil
}

func (g *ForceGraph[N, E]) RemoveEdge(e EdgeIndex) error {
	if !g.ContainsEdge(e) {
		return &dynamo.ReferenceError{Kind: "edge", Index: int(e)}
	}
	g.unlink(e)
	return nil
}

func (g *ForceGraph[N, E]) unlink(e EdgeIndex) {
	slot := g.edges[e]
	for _, end := range []NodeIndex{slot.edge.Source, slot.edge.Target} {
		n := g.nodes[end]
		n.edges = slices.DeleteFunc(n.edges, func(x EdgeIndex) bool { return x == e })
	}
	slot.live = false
	var zero Edge[E]
	slot.edge = zero
	g.edgeCount--
}

func (g *ForceGraph[N, E]) Contains(i NodeIndex) bool {
	return i >= 0 && int(i) < len(g.nodes) && g.nodes[i].live
}

func (g *ForceGraph[N, E]) ContainsEdge(e EdgeIndex) bool {
	return e >= 0 && int(e) < len(g.edges) && g.edges[e].live
}

// Node returns a pointer that stays valid until the node is removed.
func (g *ForceGraph[N, E]) Node(i NodeIndex) (*Node[N], bool) {
	if !g.Contains(i) {
		return nil, false
	}
	return &g.nodes[i].node, true
}

func (g *ForceGraph[N, E]) Edge(e EdgeIndex) (Edge[E], bool) {
	if !g.ContainsEdge(e) {
		return Edge[E]{}, false
	}
	return g.edges[e].edge, true
}

func (g *ForceGraph[N, E]) NodeCount() int { return g.nodeCount }
func (g *ForceGraph[N, E]) EdgeCount() int { return g.edgeCount }

// NodeBound is one past the highest handle ever issued.
func (g *ForceGraph[N, E]) NodeBound() int { return len(g.nodes) }

// Nodes yields live nodes in insertion order. The sequence can be ranged over
// any number of times.
func (g *ForceGraph[N, E]) Nodes() iter.Seq2[NodeIndex, *Node[N]] {
	return func(yield func(NodeIndex, *Node[N]) bool) {
		for i, slot := range g.nodes {
			if !slot.live {
				continue
			}
			if !yield(NodeIndex(i), &slot.node) {
				return
			}
		}
	}
}

// Edges yields live edges in insertion order.
func (g *ForceGraph[N, E]) Edges() iter.Seq2[EdgeIndex, Edge[E]] {
	return func(yield func(EdgeIndex, Edge[E]) bool) {
		for i, slot := range g.edges {
			if !slot.live {
				continue
			}
			if !yield(EdgeIndex(i), slot.edge) {
				return
			}
		}
	}
}

// Neighbors yields the opposite endpoint of every incident edge, so a node
// joined by two parallel edges appears twice.
func (g *ForceGraph[N, E]) Neighbors(i NodeIndex) iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		if !g.Contains(i) {
			return
		}
		for _, e := range g.nodes[i].edges {
			edge := g.edges[e].edge
			other := edge.Target
			if other == i {
				other = edge.Source
			}
			if !yield(other) {
				return
			}
		}
	}
}

// Degree counts incident edges; a self-loop counts once.
func (g *ForceGraph[N, E]) Degree(i NodeIndex) int {
	if !g.Contains(i) {
		return 0
	}
	return len(g.nodes[i].edges)
}

// Clone copies the structure and physical state. Payloads are copied by value.
func (g *ForceGraph[N, E]) Clone() *ForceGraph[N, E] {
	c := &ForceGraph[N, E]{
		nodes:     make([]*nodeSlot[N], len(g.nodes)),
		edges:     make([]*edgeSlot[E], len(g.edges)),
		nodeCount: g.nodeCount,
		edgeCount: g.edgeCount,
	}
	for i, s := range g.nodes {
		c.nodes[i] = &nodeSlot[N]{node: s.node, edges: slices.Clone(s.edges), live: s.live}
	}
	for i, s := range g.edges {
		c.edges[i] = &edgeSlot[E]{edge: s.edge, live: s.live}
	}
	return c
}
