package force

import "gonum.org/v1/gonum/spatial/r3"

// Pair is an edge between two dense body slots.
type Pair struct {
	A, B int
}

// Frame is the state forces are computed from. Slots are dense: body i of the
// frame is the i-th live node of the graph in insertion order.
type Frame struct {
	Positions  []r3.Vec
	Velocities []r3.Vec
	Pinned     []bool
	Edges      []Pair
}

// NewFrame allocates a frame for n bodies.
func NewFrame(n int) *Frame {
	return &Frame{
		Positions:  make([]r3.Vec, n),
		Velocities: make([]r3.Vec, n),
		Pinned:     make([]bool, n),
	}
}

func (f *Frame) Len() int { return len(f.Positions) }

// Reset resizes the frame for n bodies, reusing its buffers.
func (f *Frame) Reset(n int) {
	f.Positions = resize(f.Positions, n)
	f.Velocities = resize(f.Velocities, n)
	if cap(f.Pinned) >= n {
		f.Pinned = f.Pinned[:n]
		clear(f.Pinned)
	} else {
		f.Pinned = make([]bool, n)
	}
	f.Edges = f.Edges[:0]
}

func resize(v []r3.Vec, n int) []r3.Vec {
	if cap(v) >= n {
		v = v[:n]
		clear(v)
		return v
	}
	return make([]r3.Vec, n)
}
