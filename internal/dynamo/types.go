package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dimensions is the vector width of a simulation.
type Dimensions int

const (
	TwoD   Dimensions = 2
	ThreeD Dimensions = 3
)

func (d Dimensions) Valid() bool { return d == TwoD || d == ThreeD }

func (d Dimensions) String() string {
	switch d {
	case TwoD:
		return "2d"
	case ThreeD:
		return "3d"
	default:
		return fmt.Sprintf("Dimensions(%d)", int(d))
	}
}

// ParseDimensions accepts "2", "2d", "3" and "3d".
func ParseDimensions(s string) (Dimensions, error) {
	switch s {
	case "2", "2d", "2D":
		return TwoD, nil
	case "3", "3d", "3D":
		return ThreeD, nil
	}
	return 0, fmt.Errorf("%w: unknown dimensions %q", ErrInvalidConfiguration, s)
}

// Project drops the components that do not exist in d.
func Project(v r3.Vec, d Dimensions) r3.Vec {
	if d == TwoD {
		v.Z = 0
	}
	return v
}

// IsFinite reports whether no component is NaN or Inf.
func IsFinite(v r3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Clamp limits the length of v to max, keeping its direction.
func Clamp(v r3.Vec, max float64) r3.Vec {
	n := r3.Norm(v)
	if n <= max || n == 0 {
		return v
	}
	return r3.Scale(max/n, v)
}

// Centroid is the arithmetic mean of points; the zero vector for no points.
func Centroid(points []r3.Vec) r3.Vec {
	if len(points) == 0 {
		return r3.Vec{}
	}
	var c r3.Vec
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(points)), c)
}
