package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DirectionTable provides precomputed unit vectors for fast, reproducible lookup.
// Circle entries are evenly spaced in the XY plane; sphere entries follow a
// Fibonacci lattice so they cover the sphere without clustering at the poles.
type DirectionTable struct {
	circle []r3.Vec
	sphere []r3.Vec
}

// Global default direction table (1024 entries per shape)
var DefaultDirections = NewDirectionTable(1024)

// NewDirectionTable creates a table with n circle and n sphere directions.
func NewDirectionTable(n int) *DirectionTable {
	if n < 1 {
		n = 1
	}
	t := &DirectionTable{
		circle: make([]r3.Vec, n),
		sphere: make([]r3.Vec, n),
	}

	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.circle[i] = r3.Vec{X: math.Cos(angle), Y: math.Sin(angle)}

		z := 1 - (float64(i)+0.5)*2/float64(n)
		r := math.Sqrt(1 - z*z)
		phi := float64(i) * golden
		t.sphere[i] = r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	}

	return t
}

// Len is the number of entries per shape.
func (t *DirectionTable) Len() int { return len(t.circle) }

// At returns the unit vector for a sample u in [-1, 1]; values outside wrap.
func (t *DirectionTable) At(d Dimensions, u float64) r3.Vec {
	table := t.circle
	if d == ThreeD {
		table = t.sphere
	}
	if math.IsNaN(u) {
		u = 0
	}
	frac := (u + 1) / 2
	frac -= math.Floor(frac)
	i := int(frac * float64(len(table)))
	if i >= len(table) {
		i = len(table) - 1
	}
	return table[i]
}
