package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera rotates layout space about Center and projects it onto the canvas. With Perspective off the projection is orthographic, which is what
// 2D layouts use.
type Camera struct {
	RotX, RotY  float64
	Zoom        float64
	Center      r3.Vec
	Distance    float64
	Perspective bool
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Distance: 4}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(20, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

func (c *Camera) Reset() {
	c.RotX, c.RotY, c.Zoom = 0, 0, 1
}

// Rotate applies the camera rotation to p relative to Center.
func (c *Camera) Rotate(p r3.Vec) r3.Vec {
	p = r3.Sub(p, c.Center)
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps p to dot coordinates on a w x h canvas so that a sphere of the
// given radius around Center fills the canvas at zoom 1. The returned depth
// grows toward the viewer.
func (c *Camera) Project(p r3.Vec, radius float64, w, h int) (x, y int, depth float64, visible bool) {
	if !(radius > 0) {
		radius = 1
	}
	rot := c.Rotate(p)
	k := 0.45 * float64(min(w, h)) / radius * c.Zoom
	if c.Perspective {
		d := c.Distance * radius
		if c.behind(rot.Z, radius) {
			return 0, 0, rot.Z, false
		}
		k *= d / (d - rot.Z)
	}
	x = int(math.Round(rot.X*k)) + w/2
	// Screen rows grow downward.
	y = int(math.Round(-rot.Y*k)) + h/2
	return x, y, rot.Z, x >= 0 && x < w && y >= 0 && y < h
}

func (c *Camera) behind(depth, radius float64) bool {
	if !(radius > 0) {
		radius = 1
	}
	return c.Perspective && depth >= c.Distance*radius
}
