package export

import (
	"strings"
	"testing"

	"github.com/san-kum/fdgsim/internal/graph"
	"github.com/san-kum/fdgsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLayoutToSVG(t *testing.T) {
	g := graph.Star(4)
	i := 0.0
	for _, n := range g.Nodes() {
		n.Location = r3.Vec{X: i, Y: -i}
		i++
	}
	hub, _ := g.Node(0)
	hub.Pinned = true
	hub.Name = "<hub>"

	opts := DefaultSVGOptions()
	svg := LayoutToSVG(g, opts)

	if !strings.HasPrefix(svg, "<?xml") || !strings.Contains(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if got := strings.Count(svg, "<circle"); got != g.NodeCount() {
		t.Errorf("expected %d circles, got %d", g.NodeCount(), got)
	}
	if got := strings.Count(svg, "<line"); got != g.EdgeCount() {
		t.Errorf("expected %d lines, got %d", g.EdgeCount(), got)
	}
	if strings.Count(svg, opts.PinnedColor) != 1 {
		t.Error("expected exactly one pinned node")
	}
	if !strings.Contains(svg, "&lt;hub&gt;") {
		t.Error("labels should be escaped")
	}

	opts.Labels = false
	if strings.Contains(LayoutToSVG(g, opts), "<text") {
		t.Error("labels disabled but present")
	}
}

func TestLayoutToSVGEmpty(t *testing.T) {
	svg := LayoutToSVG(graph.New[string, string](), DefaultSVGOptions())
	if strings.Contains(svg, "<circle") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Errorf("unexpected empty layout svg:\n%s", svg)
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Errorf("unexpected size in %s", svg[:120])
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single value should give empty output")
	}
	svg := SeriesToSVG([]float64{3, 2, 1, 0.5}, 300, 100, "#00ff88")
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("expected 3 segments, got %d", got)
	}
	if !strings.Contains(svg, "M0.0,") || !strings.Contains(svg, "300.0,") {
		t.Error("path should span the full width")
	}
}
