package force

import (
	"math"

	"github.com/san-kum/fdgsim/internal/dynamo"
)

const (
	DefaultRepulsion   = 10.0
	DefaultAttraction  = 1.0
	DefaultIdealLength = 5.0
	DefaultCentering   = 0.01
	DefaultMinDistance = 0.1
)

// Params holds the force coefficients. A zero coefficient disables its force.
type Params struct {
	Repulsion  float64
	Attraction float64
	// IdealLength is the spring rest length. Zero selects the
	// Fruchterman-Reingold style pull of Attraction * d².
	IdealLength      float64
	Centering        float64
	CenterOnCentroid bool
	// Damping is a drag coefficient (force = -Damping * velocity).
	Damping float64
	// MinDistance softens repulsion between near-coincident bodies.
	MinDistance float64
	Dimensions  dynamo.Dimensions
	JitterSeed  int64
}

func DefaultParams() Params {
	return Params{
		Repulsion:   DefaultRepulsion,
		Attraction:  DefaultAttraction,
		IdealLength: DefaultIdealLength,
		Centering:   DefaultCentering,
		MinDistance: DefaultMinDistance,
		Dimensions:  dynamo.TwoD,
	}
}

func (p Params) Validate() error {
	if !p.Dimensions.Valid() {
		return &dynamo.ConfigError{Field: "dimensions", Value: float64(p.Dimensions), Reason: "must be 2 or 3"}
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"repulsion", p.Repulsion},
		{"attraction", p.Attraction},
		{"ideal_length", p.IdealLength},
		{"centering", p.Centering},
		{"drag", p.Damping},
	}
	for _, c := range nonNegative {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &dynamo.ConfigError{Field: c.name, Value: c.value, Reason: "must be finite and non-negative"}
		}
	}
	if !(p.MinDistance > 0) || math.IsInf(p.MinDistance, 0) {
		return &dynamo.ConfigError{Field: "min_distance", Value: p.MinDistance, Reason: "must be positive and finite"}
	}
	return nil
}

// Get and Set expose the tunable coefficients by name for interactive front ends.
func (p Params) Get() map[string]float64 {
	return map[string]float64{
		"repulsion":    p.Repulsion,
		"attraction":   p.Attraction,
		"ideal_length": p.IdealLength,
		"centering":    p.Centering,
		"drag":         p.Damping,
	}
}

func (p *Params) Set(name string, value float64) error {
	next := *p
	switch name {
	case "repulsion":
		next.Repulsion = value
	case "attraction":
		next.Attraction = value
	case "ideal_length":
		next.IdealLength = value
	case "centering":
		next.Centering = value
	case "drag":
		next.Damping = value
	default:
		return &dynamo.ConfigError{Field: name, Value: value, Reason: "unknown parameter"}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
