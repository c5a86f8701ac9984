package sim

import (
	"math"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/force"
	"github.com/san-kum/fdgsim/internal/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultDt            = 0.05
	DefaultDamping       = 0.9
	DefaultNodeStartSize = 20.0
	DefaultSeed          = 1
)

// Parameters configures a Simulation. Force.Dimensions and Force.JitterSeed
// are overwritten from Dimensions and Seed.
type Parameters struct {
	Dimensions dynamo.Dimensions
	Dt         float64
	// Damping multiplies velocity every step; 1 means no loss.
	Damping float64
	Force   force.Params
	// NodeStartSize is the edge length of the cube ResetNodePlacement scatters nodes in.
	NodeStartSize float64
	Seed          int64
}

func DefaultParameters() Parameters {
	return Parameters{
		Dimensions:    dynamo.TwoD,
		Dt:            DefaultDt,
		Damping:       DefaultDamping,
		Force:         force.DefaultParams(),
		NodeStartSize: DefaultNodeStartSize,
		Seed:          DefaultSeed,
	}
}

func (p Parameters) Validate() error {
	if !p.Dimensions.Valid() {
		return &dynamo.ConfigError{Field: "dimensions", Value: float64(p.Dimensions), Reason: "must be 2 or 3"}
	}
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		return &dynamo.ConfigError{Field: "dt", Value: p.Dt, Reason: "must be positive and finite"}
	}
	if !(p.Damping > 0 && p.Damping <= 1) {
		return &dynamo.ConfigError{Field: "damping", Value: p.Damping, Reason: "must be in (0, 1]"}
	}
	if p.NodeStartSize < 0 || math.IsNaN(p.NodeStartSize) || math.IsInf(p.NodeStartSize, 0) {
		return &dynamo.ConfigError{Field: "node_start_size", Value: p.NodeStartSize, Reason: "must be finite and non-negative"}
	}
	return p.forceParams().Validate()
}

func (p Parameters) forceParams() force.Params {
	fp := p.Force
	fp.Dimensions = p.Dimensions
	fp.JitterSeed = p.Seed
	return fp
}

// Stats summarises one Advance call.
type Stats struct {
	Step              int
	MaxDisplacement   float64
	TotalDisplacement float64
	KineticEnergy     float64
	// NetForce is the sum of all accumulated forces, pinned bodies included.
	NetForce r3.Vec
	// Frozen counts bodies whose update would not have been finite; they kept
	// their location and lost their velocity.
	Frozen int
}

// NodeView is a read-only copy of a node for render loops.
type NodeView[N any] struct {
	Index    graph.NodeIndex
	Name     string
	Data     N
	Location r3.Vec
	Velocity r3.Vec
	Pinned   bool
}

type Metric interface {
	Name() string
	Observe(s Stats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Stats)
}

// RunConfig bounds Run. The layout counts as settled once MaxDisplacement
// stays below Epsilon for SettleSteps consecutive steps; a zero Epsilon or
// SettleSteps disables the check.
type RunConfig struct {
	MaxSteps    int
	Epsilon     float64
	SettleSteps int
	KeepHistory bool
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxSteps:    2000,
		Epsilon:     1e-3,
		SettleSteps: 10,
		KeepHistory: true,
	}
}

type Result struct {
	History    []Stats
	Final      Stats
	Metrics    map[string]float64
	StepsTaken int
	Settled    bool
}
