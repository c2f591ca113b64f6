package canvas

import (
	"fmt"
	"math"
)

// ClipShape is the geometry of a clip path.
type ClipShape string

// Clip shapes.
const (
	ClipRect   ClipShape = "rect"
	ClipCircle ClipShape = "circle"
)

// Clip restricts where an object is drawn.
//
// Left and Top are the top-left of the shape's bounding box. For circles
// the box is 2*Radius wide. When Absolute is set the coordinates are
// canvas coordinates, otherwise they are in the object's local pixel space.
type Clip struct {
	Shape    ClipShape `json:"type"`
	Left     float64   `json:"left"`
	Top      float64   `json:"top"`
	Width    float64   `json:"width,omitempty"`
	Height   float64   `json:"height,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Absolute bool      `json:"absolutePositioned"`
}

// NewRectClip returns an absolute rectangular clip.
func NewRectClip(r Rect) *Clip {
	r = r.Normalize()
	return &Clip{Shape: ClipRect, Left: r.X, Top: r.Y, Width: r.W, Height: r.H, Absolute: true}
}

// NewCircleClip returns a circular clip centered at c.
func NewCircleClip(c Point, radius float64, absolute bool) *Clip {
	return &Clip{Shape: ClipCircle, Left: c.X - radius, Top: c.Y - radius, Radius: radius, Absolute: absolute}
}

// Validate checks the shape and its dimensions.
func (c *Clip) Validate() error {
	switch c.Shape {
	case ClipRect:
		if c.Width < 0 || c.Height < 0 {
			return fmt.Errorf("clip: negative size %gx%g", c.Width, c.Height)
		}
	case ClipCircle:
		if c.Radius < 0 {
			return fmt.Errorf("clip: negative radius %g", c.Radius)
		}
	default:
		return fmt.Errorf("clip: unknown shape %q", c.Shape)
	}
	return nil
}

// Bounds returns the shape's bounding box in its own coordinate space.
func (c *Clip) Bounds() Rect {
	if c.Shape == ClipCircle {
		return Rect{X: c.Left, Y: c.Top, W: 2 * c.Radius, H: 2 * c.Radius}
	}
	return Rect{X: c.Left, Y: c.Top, W: c.Width, H: c.Height}
}

// contains tests p in the clip's own coordinate space.
func (c *Clip) contains(p Point) bool {
	switch c.Shape {
	case ClipCircle:
		dx := p.X - (c.Left + c.Radius)
		dy := p.Y - (c.Top + c.Radius)
		return math.Hypot(dx, dy) <= c.Radius
	default:
		return p.X >= c.Left && p.X <= c.Left+c.Width &&
			p.Y >= c.Top && p.Y <= c.Top+c.Height
	}
}

// ContainsCanvas tests a canvas-space point against the clip of o.
func (c *Clip) ContainsCanvas(o Object, p Point) bool {
	if c.Absolute {
		return c.contains(p)
	}
	m := ObjectMatrix(o)
	if !m.Invertible() {
		return false
	}
	return c.contains(m.Invert().TransformPoint(p))
}

// Transform maps the clip through m, which must be a uniform scale
// followed by a translation.
func (c *Clip) Transform(m Matrix) {
	p := m.TransformPoint(Pt(c.Left, c.Top))
	k := math.Hypot(m.A, m.D)
	c.Left, c.Top = p.X, p.Y
	c.Width *= k
	c.Height *= k
	c.Radius *= k
}
