package canvas

import (
	"image"
	"math"
)

// Kind names the concrete type of an object in snapshots.
type Kind string

// Object kinds.
const (
	KindImage Kind = "image"
	KindRect  Kind = "rect"
)

// Props holds the placement and visibility shared by every object.
//
// Left and Top locate the top-left corner of the object's unrotated
// bounding box. Rotation and flips happen about the box center.
type Props struct {
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	ScaleX  float64 `json:"scaleX"`
	ScaleY  float64 `json:"scaleY"`
	Angle   float64 `json:"angle"`
	FlipX   bool    `json:"flipX"`
	FlipY   bool    `json:"flipY"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"visible"`
}

// DefaultProps returns unit scale, full opacity, visible.
func DefaultProps() Props {
	return Props{ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true}
}

// Properties returns p itself so that embedding types satisfy Object.
func (p *Props) Properties() *Props { return p }

// Object is an element on the canvas.
type Object interface {
	// Kind returns the snapshot type name.
	Kind() Kind

	// Properties returns the mutable placement of the object.
	Properties() *Props

	// Size returns the intrinsic (unscaled) width and height.
	Size() (w, h float64)

	// Clip returns the clip path or nil.
	Clip() *Clip

	// source renders the object at its intrinsic size.
	source() *image.NRGBA
}

// ObjectMatrix returns the transform from the object's local pixel space
// (origin at the top-left of the intrinsic box) to canvas coordinates.
func ObjectMatrix(o Object) Matrix {
	p := o.Properties()
	w, h := o.Size()
	sx, sy := p.ScaleX, p.ScaleY
	if p.FlipX {
		sx = -sx
	}
	if p.FlipY {
		sy = -sy
	}
	c := Center(o)
	return Translate(c.X, c.Y).
		Multiply(Rotate(p.Angle)).
		Multiply(Scale(sx, sy)).
		Multiply(Translate(-w/2, -h/2))
}

// Center returns the center of the object in canvas coordinates.
func Center(o Object) Point {
	p := o.Properties()
	w, h := o.Size()
	return Point{
		X: p.Left + w*math.Abs(p.ScaleX)/2,
		Y: p.Top + h*math.Abs(p.ScaleY)/2,
	}
}

// ScaledSize returns the on-canvas width and height before rotation.
func ScaledSize(o Object) (w, h float64) {
	p := o.Properties()
	iw, ih := o.Size()
	return iw * math.Abs(p.ScaleX), ih * math.Abs(p.ScaleY)
}

// Bounds returns the axis-aligned bounding box of the transformed object
// in canvas coordinates.
func Bounds(o Object) Rect {
	w, h := o.Size()
	return transformedBounds(ObjectMatrix(o), w, h)
}

// Contains reports whether p (canvas coordinates) lies inside the
// transformed object box.
func Contains(o Object, p Point) bool {
	m := ObjectMatrix(o)
	if !m.Invertible() {
		return false
	}
	q := m.Invert().TransformPoint(p)
	w, h := o.Size()
	return q.X >= 0 && q.X <= w && q.Y >= 0 && q.Y <= h
}

// Rect is an axis-aligned rectangle in floating point coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Normalize returns the rectangle with non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of r and o, or an empty rectangle.
func (r Rect) Intersect(o Rect) Rect {
	r, o = r.Normalize(), o.Normalize()
	x0, y0 := math.Max(r.X, o.X), math.Max(r.Y, o.Y)
	x1, y1 := math.Min(r.X+r.W, o.X+o.W), math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Pixels returns the smallest integer rectangle covering r.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}

func transformedBounds(m Matrix, w, h float64) Rect {
	corners := [4]Point{
		m.TransformPoint(Pt(0, 0)),
		m.TransformPoint(Pt(w, 0)),
		m.TransformPoint(Pt(0, h)),
		m.TransformPoint(Pt(w, h)),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
