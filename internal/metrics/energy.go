package metrics

import (
	"math"

	"github.com/san-kum/fdgsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// Energy tracks the kinetic energy of the layout: the latest value plus the
// peak seen since the last reset.
type Energy struct {
	name    string
	current float64
	peak    float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Stats) {
	e.current = s.KineticEnergy
	e.peak = math.Max(e.peak, s.KineticEnergy)
	e.samples++
}

// Value is the most recent kinetic energy.
func (e *Energy) Value() float64 { return e.current }

func (e *Energy) Peak() float64 { return e.peak }

// Decay is the current energy as a fraction of the peak; 1 before any motion.
func (e *Energy) Decay() float64 {
	if e.peak == 0 {
		return 1
	}
	return e.current / e.peak
}

func (e *Energy) Reset() {
	e.current = 0
	e.peak = 0
	e.samples = 0
}

// ForceBalance records the largest net force seen. With centering disabled it
// stays at rounding level, since every pairwise force has an equal partner.
type ForceBalance struct {
	name    string
	maxNorm float64
}

func NewForceBalance() *ForceBalance {
	return &ForceBalance{name: "force_balance"}
}

func (f *ForceBalance) Name() string { return f.name }

func (f *ForceBalance) Observe(s sim.Stats) {
	f.maxNorm = math.Max(f.maxNorm, r3.Norm(s.NetForce))
}

func (f *ForceBalance) Value() float64 { return f.maxNorm }

func (f *ForceBalance) Reset() { f.maxNorm = 0 }
