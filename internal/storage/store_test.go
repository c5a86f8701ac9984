package storage

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/graph"
	"github.com/san-kum/fdgsim/internal/jsongraph"
	"github.com/san-kum/fdgsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func sampleRun(t *testing.T) Run {
	t.Helper()

	g := graph.Ring(3)
	doc, err := jsongraph.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	return Run{
		Name:   "ring",
		Source: "generated",
		Params: sim.DefaultParameters(),
		Result: &sim.Result{
			History: []sim.Stats{
				{Step: 1, MaxDisplacement: 0.5, TotalDisplacement: 1.25, KineticEnergy: 3, NetForce: r3.Vec{X: 1e-12}},
				{Step: 2, MaxDisplacement: 0.25, TotalDisplacement: 0.5, KineticEnergy: 1.5, Frozen: 1},
			},
			Metrics:    map[string]float64{"kinetic_energy": 1.5},
			StepsTaken: 2,
			Settled:    true,
		},
		Positions: []Position{
			{Index: 0, Name: "1", Location: r3.Vec{X: 1, Y: 2}},
			{Index: 1, Name: "2", Location: r3.Vec{X: -1.125, Y: 0.1}, Pinned: true},
			{Index: 2, Name: "3, with comma", Location: r3.Vec{Y: -3}},
		},
		Edges: g.EdgeCount(),
		Graph: doc,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run := sampleRun(t)
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", runID, err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "ring" || meta.Nodes != 3 || meta.Edges != 3 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Seed != sim.DefaultSeed || !meta.Settled || meta.Steps != 2 {
		t.Errorf("unexpected run summary %+v", meta)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}

	positions, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	for i := range positions {
		if positions[i] != run.Positions[i] {
			t.Errorf("position %d: got %+v, want %+v", i, positions[i], run.Positions[i])
		}
	}

	history, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	for i := range history {
		if history[i] != run.Result.History[i] {
			t.Errorf("history %d: got %+v, want %+v", i, history[i], run.Result.History[i])
		}
	}

	g, err := st.LoadGraph(runID)
	if err != nil {
		t.Fatalf("load graph failed: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("expected 3/3 graph, got %d/%d", g.NodeCount(), g.EdgeCount())
	}
}

func TestStoreListAndResolve(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	first, err := st.Save(sampleRun(t))
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(sampleRun(t))
	if err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	id, err := st.Resolve(first[:8])
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != first && first[:8] != second[:8] {
		t.Errorf("resolved %s, want %s", id, first)
	}

	if _, err := st.Resolve("zzzz"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestMetadataRebuildsParameters(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := sim.DefaultParameters()
	p.Dimensions = dynamo.ThreeD
	p.Seed = 42
	p.NodeStartSize = 7
	p.Force.Dimensions = dynamo.ThreeD
	p.Force.Damping = 0.25
	p.Force.MinDistance = 0.5
	p.Force.CenterOnCentroid = true

	run := sampleRun(t)
	run.Params = p
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := meta.Parameters(); got != p {
		t.Errorf("rebuilt parameters\n got %+v\nwant %+v", got, p)
	}
}

func TestSaveRejectsNilResult(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Save(Run{Name: "empty"}); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestPositionsOf(t *testing.T) {
	views := []sim.NodeView[string]{
		{Index: 4, Name: "a", Location: r3.Vec{X: 1}, Pinned: true},
	}
	got := PositionsOf(views)
	want := Position{Index: 4, Name: "a", Location: r3.Vec{X: 1}, Pinned: true}
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
