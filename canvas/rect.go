package canvas

import (
	"image"
	"math"

	"github.com/gogpu/ggedit/filter"
)

// Shape is a filled rectangle with an optional stroke. It serves as the
// crop selection marker and as full-canvas pattern overlays.
type Shape struct {
	Props

	Width       float64
	Height      float64
	Fill        Pattern
	Stroke      filter.Color
	StrokeWidth float64
	StrokeDash  []float64

	// Selectable objects can become active through hit testing.
	Selectable bool
}

// NewShape returns a rectangle at (left, top) with the given size and fill.
func NewShape(left, top, w, h float64, fill Pattern) *Shape {
	s := &Shape{Props: DefaultProps(), Width: w, Height: h, Fill: fill, Selectable: true}
	s.Left, s.Top = left, top
	return s
}

// Kind implements Object.
func (s *Shape) Kind() Kind { return KindRect }

// Size implements Object.
func (s *Shape) Size() (w, h float64) { return s.Width, s.Height }

// Clip implements Object.
func (s *Shape) Clip() *Clip { return nil }

func (s *Shape) source() *image.NRGBA {
	w := int(math.Ceil(s.Width))
	h := int(math.Ceil(s.Height))
	img := image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if w <= 0 || h <= 0 {
		return img
	}

	if s.Fill != nil {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, s.Fill.ColorAt(x, y))
			}
		}
	}

	sw := int(math.Round(s.StrokeWidth))
	if sw <= 0 || s.Stroke.A == 0 {
		return img
	}
	c := s.Stroke.NRGBA()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			onEdge := x < sw || y < sw || x >= w-sw || y >= h-sw
			if onEdge && s.dashOn(x, y, w, h) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

// dashOn reports whether the stroke is drawn at (x, y) given StrokeDash.
// The dash runs along the perimeter starting at the top-left corner.
func (s *Shape) dashOn(x, y, w, h int) bool {
	if len(s.StrokeDash) == 0 {
		return true
	}
	var pos float64
	switch {
	case y < int(s.StrokeWidth):
		pos = float64(x)
	case x >= w-int(s.StrokeWidth):
		pos = float64(w + y)
	case y >= h-int(s.StrokeWidth):
		pos = float64(w + h + (w - x))
	default:
		pos = float64(2*w + h + (h - y))
	}
	var period float64
	for _, d := range s.StrokeDash {
		period += d
	}
	if period <= 0 {
		return true
	}
	pos = math.Mod(pos, period)
	on := true
	for _, d := range s.StrokeDash {
		if pos < d {
			return on
		}
		pos -= d
		on = !on
	}
	return on
}
