package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/fdgsim/internal/graph"
	"github.com/san-kum/fdgsim/internal/viz"
)

// SVGOptions controls LayoutToSVG.
type SVGOptions struct {
	Width, Height int
	NodeRadius    float64
	Labels        bool
	Background    string
	NodeColor     string
	PinnedColor   string
	EdgeColor     string
	// Camera projects 3D layouts; nil gives a flat top-down view.
	Camera *viz.Camera
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       800,
		Height:      800,
		NodeRadius:  5,
		Labels:      true,
		Background:  "#0a0a0a",
		NodeColor:   "#00ffff",
		PinnedColor: "#ff00ff",
		EdgeColor:   "#444466",
	}
}

// LayoutToSVG draws the current node locations of g. Edges are lines, nodes
// are circles labelled with their names.
func LayoutToSVG[N, E any](g *graph.ForceGraph[N, E], opts SVGOptions) string {
	scene := viz.SceneOf(g)
	names := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	return sceneToSVG(scene, names, opts)
}

func sceneToSVG(scene viz.Scene, names []string, opts SVGOptions) string {
	w, h := opts.Width, opts.Height
	center, radius := scene.Bounds()
	cam := opts.Camera
	if cam == nil {
		cam = viz.NewCamera()
	}
	cam.Center = center

	type point struct{ x, y int }
	pts := make([]point, len(scene.Points))
	for i, p := range scene.Points {
		x, y, _, _ := cam.Project(p, radius, w, h)
		pts[i] = point{x, y}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, opts.Background)

	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1.5\">\n", opts.EdgeColor)
	for _, e := range scene.Edges {
		a, b := pts[e[0]], pts[e[1]]
		fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", a.x, a.y, b.x, b.y)
	}
	sb.WriteString("</g>\n")

	sb.WriteString("<g>\n")
	for i, p := range pts {
		fill := opts.NodeColor
		if scene.Pinned[i] {
			fill = opts.PinnedColor
		}
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"%s\"/>\n", p.x, p.y, opts.NodeRadius, fill)
		if opts.Labels && i < len(names) && names[i] != "" {
			fmt.Fprintf(&sb, "<text x=\"%d\" y=\"%d\" fill=\"%s\" font-size=\"10\" font-family=\"monospace\">%s</text>\n",
				p.x+int(math.Ceil(opts.NodeRadius))+2, p.y-2, opts.NodeColor, html.EscapeString(names[i]))
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w := float64(canvas.DotWidth()) * scale
	h := float64(canvas.DotHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, w, h, w, h)

	for y := range canvas.DotHeight() {
		for x := range canvas.DotWidth() {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots a per-step series such as maximum displacement as a
// polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`, width, height, width, height, strokeColor)

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
