package force

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind is one member of the closed set of forces.
type Kind uint8

const (
	Repulsion Kind = iota
	Attraction
	Centering
	Damping
)

// Canonical is the order the model sums forces in.
var Canonical = []Kind{Repulsion, Attraction, Centering, Damping}

func (k Kind) String() string {
	switch k {
	case Repulsion:
		return "repulsion"
	case Attraction:
		return "attraction"
	case Centering:
		return "centering"
	case Damping:
		return "damping"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// coincident is the separation below which two bodies have no usable direction.
const coincident = 1e-12

// parallelThreshold is the body count from which repulsion is split across workers.
const parallelThreshold = 256

// Model evaluates the canonical force composition for one parameter set.
// It holds no per-step state, so one Model may evaluate frames from several
// goroutines.
type Model struct {
	params Params
	noise  opensimplex.Noise
	dirs   *dynamo.DirectionTable
}

func NewModel(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		params: p,
		noise:  opensimplex.New(p.JitterSeed),
		dirs:   dynamo.DefaultDirections,
	}, nil
}

func (m *Model) Params() Params { return m.params }

// Evaluate returns the summed force on every body of f.
func (m *Model) Evaluate(f *Frame) []r3.Vec {
	out := make([]r3.Vec, f.Len())
	m.EvaluateInto(f, out)
	return out
}

// EvaluateInto writes the summed force on every body into out, which must
// have f.Len() entries.
func (m *Model) EvaluateInto(f *Frame, out []r3.Vec) {
	clear(out)
	for _, k := range Canonical {
		m.Apply(k, f, out)
	}
}

// Apply adds the contribution of a single kind to out.
func (m *Model) Apply(k Kind, f *Frame, out []r3.Vec) {
	switch k {
	case Repulsion:
		if m.params.Repulsion != 0 {
			m.repulsion(f, out)
		}
	case Attraction:
		if m.params.Attraction != 0 {
			m.attraction(f, out)
		}
	case Centering:
		if m.params.Centering != 0 {
			m.centering(f, out)
		}
	case Damping:
		if m.params.Damping != 0 {
			m.damping(f, out)
		}
	}
}

func (m *Model) repulsion(f *Frame, out []r3.Vec) {
	n := f.Len()
	if n < parallelThreshold {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				fij := m.repel(f.Positions, i, j)
				out[i] = r3.Add(out[i], fij)
				out[j] = r3.Sub(out[j], fij)
			}
		}
		return
	}

	// Each worker owns a range of bodies and sums over all partners in index
	// order, so the result does not depend on the number of workers.
	dynamo.ParallelFor(n, parallelThreshold/4, func(start, end int) {
		for i := start; i < end; i++ {
			var sum r3.Vec
			for j := 0; j < n; j++ {
				switch {
				case j < i:
					sum = r3.Sub(sum, m.repel(f.Positions, j, i))
				case j > i:
					sum = r3.Add(sum, m.repel(f.Positions, i, j))
				}
			}
			out[i] = r3.Add(out[i], sum)
		}
	})
}

// repel returns the force on i from j, for i < j. The force on j is its negation.
func (m *Model) repel(pos []r3.Vec, i, j int) r3.Vec {
	d := m.params.Dimensions
	diff := dynamo.Project(r3.Sub(pos[i], pos[j]), d)
	dist := r3.Norm(diff)

	var dir r3.Vec
	if dist <= coincident {
		dir = m.fallback(i, j)
	} else {
		dir = r3.Scale(1/dist, diff)
	}
	if dist < m.params.MinDistance {
		dist = m.params.MinDistance
	}
	return r3.Scale(m.params.Repulsion/(dist*dist), dir)
}

func (m *Model) attraction(f *Frame, out []r3.Vec) {
	d := m.params.Dimensions
	for _, e := range f.Edges {
		a, b := e.A, e.B
		if a == b {
			continue
		}
		diff := dynamo.Project(r3.Sub(f.Positions[b], f.Positions[a]), d)
		dist := r3.Norm(diff)

		var fa r3.Vec
		switch {
		case m.params.IdealLength > 0 && dist <= coincident:
			// A collapsed spring pushes its ends apart along the fallback axis.
			lo, hi, sign := a, b, 1.0
			if a > b {
				lo, hi, sign = b, a, -1.0
			}
			fa = r3.Scale(sign*m.params.Attraction*m.params.IdealLength, m.fallback(lo, hi))
		case dist <= coincident:
			continue
		case m.params.IdealLength > 0:
			fa = r3.Scale(m.params.Attraction*(dist-m.params.IdealLength)/dist, diff)
		default:
			fa = r3.Scale(m.params.Attraction*dist, diff)
		}

		out[a] = r3.Add(out[a], fa)
		out[b] = r3.Sub(out[b], fa)
	}
}

func (m *Model) centering(f *Frame, out []r3.Vec) {
	var center r3.Vec
	if m.params.CenterOnCentroid {
		center = dynamo.Centroid(f.Positions)
	}
	d := m.params.Dimensions
	for i, p := range f.Positions {
		pull := dynamo.Project(r3.Sub(center, p), d)
		out[i] = r3.Add(out[i], r3.Scale(m.params.Centering, pull))
	}
}

func (m *Model) damping(f *Frame, out []r3.Vec) {
	d := m.params.Dimensions
	for i, v := range f.Velocities {
		out[i] = r3.Sub(out[i], r3.Scale(m.params.Damping, dynamo.Project(v, d)))
	}
}

// fallback is the unit direction from j to i for a coincident pair, i < j.
func (m *Model) fallback(i, j int) r3.Vec {
	u := m.noise.Eval2(float64(i)*0.618+0.5, float64(j)*0.382+0.25)
	return m.dirs.At(m.params.Dimensions, u)
}
