package graph

import (
	"math"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is the physical record of one vertex. Data is never inspected by the
// simulation.
type Node[N any] struct {
	Name     string
	Data     N
	Location r3.Vec
	Velocity r3.Vec
	Pinned   bool
	mass     float64
}

// NewNode returns an unpinned node at the origin with mass 1.
func NewNode[N any](name string, data N) Node[N] {
	return Node[N]{Name: name, Data: data, mass: 1}
}

// Mass is always positive.
func (n *Node[N]) Mass() float64 {
	if n.mass <= 0 {
		return 1
	}
	return n.mass
}

func (n *Node[N]) SetMass(m float64) error {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return &dynamo.ConfigError{Field: "mass", Value: m, Reason: "must be positive and finite"}
	}
	n.mass = m
	return nil
}
