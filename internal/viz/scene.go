package viz

import (
	"math"

	"github.com/san-kum/fdgsim/internal/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is a dense copy of a layout: Edges index into Points.
type Scene struct {
	Points []r3.Vec
	Pinned []bool
	Edges  [][2]int
}

func SceneOf[N, E any](g *graph.ForceGraph[N, E]) Scene {
	slot := make(map[graph.NodeIndex]int, g.NodeCount())
	s := Scene{
		Points: make([]r3.Vec, 0, g.NodeCount()),
		Pinned: make([]bool, 0, g.NodeCount()),
		Edges:  make([][2]int, 0, g.EdgeCount()),
	}
	for idx, n := range g.Nodes() {
		slot[idx] = len(s.Points)
		s.Points = append(s.Points, n.Location)
		s.Pinned = append(s.Pinned, n.Pinned)
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, [2]int{slot[e.Source], slot[e.Target]})
	}
	return s
}

// Bounds returns the centre of the bounding box and the largest distance of
// any point from it.
func (s Scene) Bounds() (center r3.Vec, radius float64) {
	if len(s.Points) == 0 {
		return r3.Vec{}, 1
	}
	lo, hi := s.Points[0], s.Points[0]
	for _, p := range s.Points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	center = r3.Scale(0.5, r3.Add(lo, hi))
	for _, p := range s.Points {
		radius = math.Max(radius, r3.Norm(r3.Sub(p, center)))
	}
	if radius < 1e-9 {
		radius = 1
	}
	return center, radius
}

// Render draws s onto c. Edges are drawn first so node markers stay solid;
// pinned nodes get a larger marker.
func Render(c *Canvas, cam *Camera, s Scene, radius float64) {
	if c == nil || cam == nil {
		return
	}
	w, h := c.DotWidth(), c.DotHeight()

	type dot struct {
		x, y    int
		visible bool
		behind  bool
	}
	dots := make([]dot, len(s.Points))
	for i, p := range s.Points {
		x, y, depth, ok := cam.Project(p, radius, w, h)
		dots[i] = dot{x, y, ok, cam.behind(depth, radius)}
	}

	for _, e := range s.Edges {
		a, b := dots[e[0]], dots[e[1]]
		if a.behind || b.behind || (!a.visible && !b.visible) {
			continue
		}
		c.DrawLine(a.x, a.y, b.x, b.y)
	}
	for i, d := range dots {
		if !d.visible {
			continue
		}
		if s.Pinned[i] {
			c.DrawDisk(d.x, d.y, 2)
		} else {
			c.DrawDisk(d.x, d.y, 1)
		}
	}
}
