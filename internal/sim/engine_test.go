package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/graph"
	"github.com/san-kum/fdgsim/internal/sim"
)

func locations(s *sim.Simulation[string, string]) []r3.Vec {
	var out []r3.Vec
	for _, n := range s.Graph().Nodes() {
		out = append(out, n.Location)
	}
	return out
}

func newSim(g *graph.ForceGraph[string, string], p sim.Parameters) *sim.Simulation[string, string] {
	s, err := sim.New(g, p)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulation", func() {
	var params sim.Parameters

	BeforeEach(func() {
		params = sim.DefaultParameters()
	})

	Describe("pure repulsion", func() {
		It("produces forces that sum to zero", func() {
			params.Force.Centering = 0
			g := graph.New[string, string]()
			for i := 0; i < 12; i++ {
				g.AddNode("n", "{}")
			}
			s := newSim(g, params)
			s.ResetNodePlacement()

			st := s.Advance()
			Expect(r3.Norm(st.NetForce)).To(BeNumerically("<", 1e-9))
			Expect(st.MaxDisplacement).To(BeNumerically(">", 0))
		})
	})

	Describe("pinned nodes", func() {
		It("never move but still push their neighbours", func() {
			g := graph.Ring(4)
			s := newSim(g, params)
			s.ResetNodePlacement()

			anchor, _ := g.Node(0)
			anchor.Pinned = true
			anchor.Location = r3.Vec{X: 3, Y: -2}
			start := anchor.Location

			neighbour, _ := g.Node(1)
			before := neighbour.Location

			for i := 0; i < 200; i++ {
				s.Advance()
			}
			Expect(anchor.Location).To(Equal(start))
			Expect(anchor.Velocity).To(Equal(r3.Vec{}))
			Expect(neighbour.Location).NotTo(Equal(before))
		})
	})

	Describe("determinism", func() {
		It("gives bit-identical layouts for identical inputs", func() {
			build := func() *sim.Simulation[string, string] {
				g := graph.Grid(4, 4)
				extra := g.AddNode("stacked", "{}")
				_, err := g.AddEdge(extra, 0, "{}")
				Expect(err).NotTo(HaveOccurred())
				s := newSim(g, params)
				s.ResetNodePlacement()
				n, _ := g.Node(extra)
				first, _ := g.Node(0)
				n.Location = first.Location
				return s
			}

			a, b := build(), build()
			for i := 0; i < 150; i++ {
				a.Advance()
				b.Advance()
			}
			Expect(locations(a)).To(Equal(locations(b)))
		})
	})

	DescribeTable("coincident nodes stay finite",
		func(dims dynamo.Dimensions, connected bool) {
			params.Dimensions = dims
			g := graph.New[string, string]()
			a := g.AddNode("a", "{}")
			b := g.AddNode("b", "{}")
			if connected {
				_, err := g.AddEdge(a, b, "{}")
				Expect(err).NotTo(HaveOccurred())
			}
			s := newSim(g, params)

			st := s.Advance()
			Expect(st.Frozen).To(BeZero())
			for _, loc := range locations(s) {
				Expect(dynamo.IsFinite(loc)).To(BeTrue())
			}
			Expect(dynamo.IsFinite(st.NetForce)).To(BeTrue())

			na, _ := g.Node(a)
			nb, _ := g.Node(b)
			Expect(na.Location).NotTo(Equal(nb.Location))
		},
		Entry("2d unconnected", dynamo.TwoD, false),
		Entry("2d connected", dynamo.TwoD, true),
		Entry("3d unconnected", dynamo.ThreeD, false),
		Entry("3d connected", dynamo.ThreeD, true),
	)

	Describe("settling", func() {
		It("calms a triangle from a random start", func() {
			params.Force.Centering = 0
			params.Seed = 7
			s := newSim(graph.Ring(3), params)
			s.ResetNodePlacement()

			cfg := sim.DefaultRunConfig()
			cfg.MaxSteps = 5000
			res, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Settled).To(BeTrue())
			Expect(res.Final.MaxDisplacement).To(BeNumerically("<", cfg.Epsilon))

			peak := 0.0
			for _, st := range res.History {
				peak = math.Max(peak, st.MaxDisplacement)
			}
			Expect(res.Final.MaxDisplacement).To(BeNumerically("<", peak))

			// every side ends near the spring rest length
			locs := locations(s)
			for i := range locs {
				side := r3.Norm(r3.Sub(locs[i], locs[(i+1)%3]))
				Expect(side).To(BeNumerically("~", params.Force.IdealLength, 1.5))
			}
		})
	})

	Describe("graph mutation between steps", func() {
		It("follows removals and additions", func() {
			g := graph.Complete(5)
			s := newSim(g, params)
			s.ResetNodePlacement()
			s.Advance()

			Expect(g.RemoveNode(2)).To(Succeed())
			fresh := g.AddNode("fresh", "{}")
			_, err := g.AddEdge(fresh, 4, "{}")
			Expect(err).NotTo(HaveOccurred())

			st := s.Advance()
			Expect(st.Step).To(Equal(2))
			Expect(s.Snapshot()).To(HaveLen(5))
			n, ok := g.Node(fresh)
			Expect(ok).To(BeTrue())
			Expect(math.IsNaN(n.Location.X)).To(BeFalse())
		})
	})
})
