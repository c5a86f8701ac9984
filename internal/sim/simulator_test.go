package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero dt", func(p *Parameters) { p.Dt = 0 }},
		{"negative dt", func(p *Parameters) { p.Dt = -0.1 }},
		{"NaN dt", func(p *Parameters) { p.Dt = math.NaN() }},
		{"zero damping", func(p *Parameters) { p.Damping = 0 }},
		{"damping above one", func(p *Parameters) { p.Damping = 1.5 }},
		{"bad dimensions", func(p *Parameters) { p.Dimensions = 1 }},
		{"negative start size", func(p *Parameters) { p.NodeStartSize = -1 }},
		{"negative repulsion", func(p *Parameters) { p.Force.Repulsion = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			if _, err := New[string, string](nil, p); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}

	p := DefaultParameters()
	p.Damping = 1
	if err := p.Validate(); err != nil {
		t.Errorf("damping of exactly 1 should be valid: %v", err)
	}
}

func TestNewProjectsOntoDimensions(t *testing.T) {
	g := graph.New[string, string]()
	i := g.AddNode("a", "")
	n, _ := g.Node(i)
	n.Location = r3.Vec{X: 1, Y: 2, Z: 3}

	if _, err := New(g, DefaultParameters()); err != nil {
		t.Fatal(err)
	}
	if n.Location.Z != 0 {
		t.Errorf("expected z dropped in 2d, got %v", n.Location)
	}
}

func TestSetParametersDimensionChange(t *testing.T) {
	p := DefaultParameters()
	p.Dimensions = dynamo.ThreeD
	s, err := New(graph.Ring(3), p)
	if err != nil {
		t.Fatal(err)
	}
	s.ResetNodePlacement()

	flat := p
	flat.Dimensions = dynamo.TwoD
	if err := s.SetParameters(flat); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if s.Parameters().Dimensions != dynamo.ThreeD {
		t.Error("rejected parameters must not be applied")
	}

	for _, n := range s.Graph().Nodes() {
		n.Location.Z = 0
	}
	if err := s.SetParameters(flat); err != nil {
		t.Fatalf("flat graph should switch to 2d: %v", err)
	}

	bad := flat
	bad.Dt = -1
	if err := s.SetParameters(bad); err == nil {
		t.Error("expected error for negative dt")
	}
}

func TestSetParametersTakesEffect(t *testing.T) {
	g := graph.New[string, string]()
	g.AddNode("a", "")
	n, _ := g.Node(g.AddNode("b", ""))
	n.Location = r3.Vec{X: 1}

	p := DefaultParameters()
	p.Force.Attraction = 0
	p.Force.Centering = 0
	s, _ := New(g, p)

	p.Force.Repulsion = 0
	if err := s.SetParameters(p); err != nil {
		t.Fatal(err)
	}
	if st := s.Advance(); st.MaxDisplacement != 0 {
		t.Errorf("no force should act, got displacement %v", st.MaxDisplacement)
	}
}

func TestAdvanceIntegration(t *testing.T) {
	g := graph.New[string, string]()
	a := g.AddNode("a", "")
	b := g.AddNode("b", "")
	nb, _ := g.Node(b)
	nb.Location = r3.Vec{X: 2}
	if err := nb.SetMass(2); err != nil {
		t.Fatal(err)
	}

	p := DefaultParameters()
	p.Force.Attraction = 0
	p.Force.Centering = 0
	p.Force.Repulsion = 4
	p.Dt = 0.5
	p.Damping = 0.5
	s, _ := New(g, p)

	st := s.Advance()

	// |F| = 4 / 2² = 1 on each body
	na, _ := g.Node(a)
	if want := -0.5 * (0.5 * 1); math.Abs(na.Velocity.X-want) > 1e-12 {
		t.Errorf("a velocity %v, want %v", na.Velocity.X, want)
	}
	if want := 0.5 * (0.5 * 1 / 2); math.Abs(nb.Velocity.X-want) > 1e-12 {
		t.Errorf("b velocity %v, want %v", nb.Velocity.X, want)
	}
	if want := 2 + 0.5*nb.Velocity.X; nb.Location.X != want {
		t.Errorf("b location %v, want %v", nb.Location.X, want)
	}
	if st.Step != 1 || s.Steps() != 1 {
		t.Errorf("step counter = %d/%d", st.Step, s.Steps())
	}
	wantKE := 0.5*1*na.Velocity.X*na.Velocity.X + 0.5*2*nb.Velocity.X*nb.Velocity.X
	if math.Abs(st.KineticEnergy-wantKE) > 1e-12 || s.KineticEnergy() != st.KineticEnergy {
		t.Errorf("kinetic energy %v, want %v", st.KineticEnergy, wantKE)
	}
	if st.MaxDisplacement != 0.125 || st.TotalDisplacement != 0.1875 {
		t.Errorf("displacement max=%v total=%v", st.MaxDisplacement, st.TotalDisplacement)
	}
}

func TestAdvanceEmptyGraph(t *testing.T) {
	s, err := New[int, int](nil, DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	st := s.Advance()
	if st.MaxDisplacement != 0 || st.KineticEnergy != 0 {
		t.Errorf("empty graph stats = %+v", st)
	}
}

func TestResetNodePlacementIsSeeded(t *testing.T) {
	place := func(seed int64) []r3.Vec {
		p := DefaultParameters()
		p.Seed = seed
		s, _ := New(graph.Ring(5), p)
		s.ResetNodePlacement()
		var out []r3.Vec
		for _, v := range s.Snapshot() {
			out = append(out, v.Location)
		}
		return out
	}

	a, b, c := place(3), place(3), place(4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different placement at %d", i)
		}
		half := DefaultNodeStartSize / 2
		if math.Abs(a[i].X) > half || math.Abs(a[i].Y) > half || a[i].Z != 0 {
			t.Errorf("placement %v outside start box", a[i])
		}
	}
	if a[0] == c[0] {
		t.Error("different seeds should scatter differently")
	}
}

func TestScatterUnplacedKeepsLocations(t *testing.T) {
	g := graph.Ring(3)
	placed, _ := g.Node(0)
	placed.Location = r3.Vec{X: 4, Y: -1}
	placed.Velocity = r3.Vec{X: 0.5}
	pinned, _ := g.Node(2)
	pinned.Pinned = true

	s, err := New(g, DefaultParameters())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.ScatterUnplaced()

	views := s.Snapshot()
	if views[0].Location != (r3.Vec{X: 4, Y: -1}) || views[0].Velocity != (r3.Vec{X: 0.5}) {
		t.Errorf("placed node moved: %+v", views[0])
	}
	if views[1].Location == (r3.Vec{}) {
		t.Error("node at the origin was not scattered")
	}
	if views[2].Location != (r3.Vec{}) {
		t.Errorf("pinned node moved to %v", views[2].Location)
	}
}

func TestFindAndSnapshot(t *testing.T) {
	g := graph.New[string, string]()
	for i, x := range []float64{0, 5, 10} {
		n, _ := g.Node(g.AddNode(string(rune('a'+i)), "payload"))
		n.Location = r3.Vec{X: x}
	}
	s, _ := New(g, DefaultParameters())

	idx, ok := s.Find(r3.Vec{X: 6}, 2)
	if !ok || idx != 1 {
		t.Errorf("Find = %v, %v; want 1, true", idx, ok)
	}
	if _, ok := s.Find(r3.Vec{X: 50}, 2); ok {
		t.Error("Find should miss outside radius")
	}

	views := s.Snapshot()
	if len(views) != 3 || views[2].Name != "c" || views[2].Data != "payload" || views[2].Location.X != 10 {
		t.Errorf("unexpected snapshot %+v", views)
	}
}

type countMetric struct {
	count int
	last  Stats
}

func (c *countMetric) Name() string    { return "count" }
func (c *countMetric) Observe(s Stats) { c.count++; c.last = s }
func (c *countMetric) Value() float64  { return float64(c.count) }
func (c *countMetric) Reset()          { c.count = 0 }
func (c *countMetric) OnStep(s Stats)  { c.last = s }

func TestRunMetricsAndBudget(t *testing.T) {
	s, _ := New(graph.Grid(3, 3), DefaultParameters())
	s.ResetNodePlacement()
	m := &countMetric{}
	s.AddMetric(m)
	obs := &countMetric{}
	s.AddObserver(obs)

	res, err := s.Run(context.Background(), RunConfig{MaxSteps: 25})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.StepsTaken != 25 || res.Settled {
		t.Errorf("steps=%d settled=%v", res.StepsTaken, res.Settled)
	}
	if res.Metrics["count"] != 25 {
		t.Errorf("metric observed %v steps", res.Metrics["count"])
	}
	if obs.last.Step != 25 {
		t.Errorf("observer last step %d", obs.last.Step)
	}
	if res.History != nil {
		t.Error("history kept without KeepHistory")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	s, _ := New(graph.Ring(3), DefaultParameters())

	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"zero steps", RunConfig{MaxSteps: 0}},
		{"negative epsilon", RunConfig{MaxSteps: 10, Epsilon: -1}},
		{"negative settle steps", RunConfig{MaxSteps: 10, SettleSteps: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	s, _ := New(graph.Ring(3), DefaultParameters())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, RunConfig{MaxSteps: 100})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.StepsTaken != 0 {
		t.Errorf("canceled run took %d steps", res.StepsTaken)
	}
}

func TestEnsemblePicksCalmestRun(t *testing.T) {
	base, _ := New(graph.Ring(6), DefaultParameters())
	ens := NewEnsemble(base, 4, 10)

	res, err := ens.Run(context.Background(), RunConfig{MaxSteps: 50})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(res.Results) != 4 || res.Best == nil {
		t.Fatalf("unexpected ensemble result %+v", res)
	}
	for i, r := range res.Results {
		if r.Final.KineticEnergy < res.Results[res.BestIndex].Final.KineticEnergy {
			t.Errorf("run %d calmer than chosen best", i)
		}
	}
	if res.Best.Parameters().Seed != 10+int64(res.BestIndex) {
		t.Errorf("best seed %d for index %d", res.Best.Parameters().Seed, res.BestIndex)
	}
	if base.Steps() != 0 {
		t.Error("ensemble must not advance the base simulation")
	}
}
