package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/force"
	"github.com/san-kum/fdgsim/internal/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simulation advances a force-directed layout one tick at a time.
type Simulation[N, E any] struct {
	graph     *graph.ForceGraph[N, E]
	params    Parameters
	model     *force.Model
	rng       *rand.Rand
	metrics   []Metric
	observers []Observer

	frame  *force.Frame
	forces []r3.Vec
	slots  []*graph.Node[N]
	dense  []int

	steps  int
	energy float64
}

// New wraps g. Node locations and velocities are projected onto p.Dimensions.
// A nil g starts an empty graph.
func New[N, E any](g *graph.ForceGraph[N, E], p Parameters) (*Simulation[N, E], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	model, err := force.NewModel(p.forceParams())
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = graph.New[N, E]()
	}

	s := &Simulation[N, E]{
		graph:     g,
		params:    p,
		model:     model,
		rng:       rand.New(rand.NewSource(p.Seed)),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		frame:     force.NewFrame(0),
	}
	s.project()
	return s, nil
}

func (s *Simulation[N, E]) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation[N, E]) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Graph gives direct access to the graph. It may be mutated between calls to
// Advance, never during one.
func (s *Simulation[N, E]) Graph() *graph.ForceGraph[N, E] { return s.graph }

// SetGraph replaces the simulated graph.
func (s *Simulation[N, E]) SetGraph(g *graph.ForceGraph[N, E]) {
	if g == nil {
		g = graph.New[N, E]()
	}
	s.graph = g
	s.project()
}

func (s *Simulation[N, E]) Parameters() Parameters { return s.params }

// SetParameters replaces the parameters between steps. Switching from 3D to 2D
// is rejected while any node is off the XY plane.
func (s *Simulation[N, E]) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Dimensions == dynamo.TwoD && s.params.Dimensions == dynamo.ThreeD {
		for i, n := range s.graph.Nodes() {
			if n.Location.Z != 0 {
				return &dynamo.ConfigError{Field: "dimensions", Value: float64(p.Dimensions),
					Reason: fmt.Sprintf("node %d has a non-zero z coordinate", i)}
			}
		}
	}
	model, err := force.NewModel(p.forceParams())
	if err != nil {
		return err
	}
	if p.Seed != s.params.Seed {
		s.rng = rand.New(rand.NewSource(p.Seed))
	}
	s.params = p
	s.model = model
	s.project()
	return nil
}

// Steps is the number of completed Advance calls.
func (s *Simulation[N, E]) Steps() int { return s.steps }

// KineticEnergy is the total kinetic energy after the last step.
func (s *Simulation[N, E]) KineticEnergy() float64 { return s.energy }

// Advance computes every force from the current positions, then integrates
// all unpinned nodes:
//
//	v' = (v + F/m·dt)·damping
//	x' = x + v'·dt
func (s *Simulation[N, E]) Advance() Stats {
	s.capture()

	if cap(s.forces) < len(s.slots) {
		s.forces = make([]r3.Vec, len(s.slots))
	}
	s.forces = s.forces[:len(s.slots)]
	s.model.EvaluateInto(s.frame, s.forces)

	var st Stats
	dt, damping, d := s.params.Dt, s.params.Damping, s.params.Dimensions
	for i, n := range s.slots {
		f := s.forces[i]
		st.NetForce = r3.Add(st.NetForce, f)
		if n.Pinned {
			n.Location = s.frame.Positions[i]
			n.Velocity = r3.Vec{}
			continue
		}

		m := n.Mass()
		v := r3.Scale(damping, r3.Add(s.frame.Velocities[i], r3.Scale(dt/m, f)))
		v = dynamo.Project(v, d)
		disp := r3.Scale(dt, v)
		loc := r3.Add(s.frame.Positions[i], disp)
		if !dynamo.IsFinite(v) || !dynamo.IsFinite(loc) {
			n.Velocity = r3.Vec{}
			st.Frozen++
			continue
		}

		n.Velocity = v
		n.Location = loc

		dist := r3.Norm(disp)
		st.TotalDisplacement += dist
		st.MaxDisplacement = math.Max(st.MaxDisplacement, dist)
		st.KineticEnergy += 0.5 * m * r3.Norm2(v)
	}

	s.steps++
	st.Step = s.steps
	s.energy = st.KineticEnergy

	for _, m := range s.metrics {
		m.Observe(st)
	}
	for _, obs := range s.observers {
		obs.OnStep(st)
	}
	return st
}

// capture copies the graph into the dense frame. Nothing reads the graph
// again until every force is known.
func (s *Simulation[N, E]) capture() {
	d := s.params.Dimensions
	n := s.graph.NodeCount()

	s.frame.Reset(n)
	s.slots = s.slots[:0]
	if cap(s.dense) < s.graph.NodeBound() {
		s.dense = make([]int, s.graph.NodeBound())
	}
	s.dense = s.dense[:s.graph.NodeBound()]

	for idx, node := range s.graph.Nodes() {
		slot := len(s.slots)
		s.dense[idx] = slot
		s.slots = append(s.slots, node)
		s.frame.Positions[slot] = dynamo.Project(node.Location, d)
		s.frame.Velocities[slot] = dynamo.Project(node.Velocity, d)
		s.frame.Pinned[slot] = node.Pinned
	}
	for _, e := range s.graph.Edges() {
		s.frame.Edges = append(s.frame.Edges, force.Pair{A: s.dense[e.Source], B: s.dense[e.Target]})
	}
}

func (s *Simulation[N, E]) project() {
	d := s.params.Dimensions
	for _, n := range s.graph.Nodes() {
		n.Location = dynamo.Project(n.Location, d)
		n.Velocity = dynamo.Project(n.Velocity, d)
	}
}

// ResetNodePlacement scatters every unpinned node uniformly inside a cube of
// side NodeStartSize centred on the origin and clears velocities. The random
// sequence is seeded from Parameters.Seed.
func (s *Simulation[N, E]) ResetNodePlacement() {
	s.scatter(func(*graph.Node[N]) bool { return true })
}

// ScatterUnplaced is ResetNodePlacement restricted to unpinned nodes still at
// the origin, such as imported nodes without a location. Other nodes keep
// their location and velocity.
func (s *Simulation[N, E]) ScatterUnplaced() {
	s.scatter(func(n *graph.Node[N]) bool { return n.Location == (r3.Vec{}) })
}

func (s *Simulation[N, E]) scatter(keep func(*graph.Node[N]) bool) {
	size := s.params.NodeStartSize
	for _, n := range s.graph.Nodes() {
		if n.Pinned || !keep(n) {
			continue
		}
		n.Location = dynamo.Project(r3.Vec{
			X: (s.rng.Float64() - 0.5) * size,
			Y: (s.rng.Float64() - 0.5) * size,
			Z: (s.rng.Float64() - 0.5) * size,
		}, s.params.Dimensions)
		n.Velocity = r3.Vec{}
	}
	s.energy = 0
}

// Find returns the node closest to p within radius.
func (s *Simulation[N, E]) Find(p r3.Vec, radius float64) (graph.NodeIndex, bool) {
	best, bestDist := graph.NodeIndex(-1), math.Inf(1)
	for i, n := range s.graph.Nodes() {
		dist := r3.Norm(r3.Sub(n.Location, p))
		if dist <= radius && dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best, best >= 0
}

// Snapshot copies every node for rendering.
func (s *Simulation[N, E]) Snapshot() []NodeView[N] {
	views := make([]NodeView[N], 0, s.graph.NodeCount())
	for i, n := range s.graph.Nodes() {
		views = append(views, NodeView[N]{
			Index:    i,
			Name:     n.Name,
			Data:     n.Data,
			Location: n.Location,
			Velocity: n.Velocity,
			Pinned:   n.Pinned,
		})
	}
	return views
}

// Run advances until the layout settles, MaxSteps is reached or ctx is done.
func (s *Simulation[N, E]) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	if cfg.KeepHistory {
		result.History = make([]Stats, 0, cfg.MaxSteps)
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	calm := 0
	for i := 0; i < cfg.MaxSteps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		st := s.Advance()
		result.StepsTaken++
		result.Final = st
		if cfg.KeepHistory {
			result.History = append(result.History, st)
		}

		if cfg.Epsilon > 0 && cfg.SettleSteps > 0 {
			if st.MaxDisplacement < cfg.Epsilon {
				calm++
			} else {
				calm = 0
			}
			if calm >= cfg.SettleSteps {
				result.Settled = true
				break
			}
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateRunConfig(cfg RunConfig) error {
	if cfg.MaxSteps <= 0 {
		return &dynamo.ConfigError{Field: "max_steps", Value: float64(cfg.MaxSteps), Reason: "must be positive"}
	}
	if cfg.Epsilon < 0 || math.IsNaN(cfg.Epsilon) {
		return &dynamo.ConfigError{Field: "epsilon", Value: cfg.Epsilon, Reason: "must be non-negative"}
	}
	if cfg.SettleSteps < 0 {
		return &dynamo.ConfigError{Field: "settle_steps", Value: float64(cfg.SettleSteps), Reason: "must be non-negative"}
	}
	return nil
}
