package canvas

import (
	"image"
	"image/color"

	"github.com/gogpu/ggedit/filter"
)

// Pattern represents a fill pattern.
type Pattern interface {
	// ColorAt returns the color at the given pixel of the filled area.
	ColorAt(x, y int) color.NRGBA
}

// SolidPattern represents a solid color pattern.
type SolidPattern struct {
	Color filter.Color
}

// NewSolidPattern creates a solid color pattern.
func NewSolidPattern(c filter.Color) *SolidPattern {
	return &SolidPattern{Color: c}
}

// ColorAt implements Pattern.
func (p *SolidPattern) ColorAt(x, y int) color.NRGBA {
	return p.Color.NRGBA()
}

// Repeat controls how an image pattern tiles.
type Repeat string

// Repeat modes.
const (
	RepeatBoth Repeat = "repeat"
	RepeatX    Repeat = "repeat-x"
	RepeatY    Repeat = "repeat-y"
	NoRepeat   Repeat = "no-repeat"
)

// ImagePattern tiles a source image across the filled area. Outside the
// tiled axes the pattern is transparent.
type ImagePattern struct {
	Source *image.NRGBA
	Repeat Repeat
}

// NewImagePattern creates a pattern from an image.
// Returns nil if img is nil.
func NewImagePattern(img image.Image, repeat Repeat) *ImagePattern {
	if img == nil {
		return nil
	}
	if repeat == "" {
		repeat = RepeatBoth
	}
	return &ImagePattern{Source: toNRGBA(img), Repeat: repeat}
}

// StripePattern returns a pattern of horizontal stripes: on rows of color c
// followed by off transparent rows.
func StripePattern(c filter.Color, on, off int) *ImagePattern {
	on, off = max(on, 1), max(off, 0)
	tile := image.NewNRGBA(image.Rect(0, 0, 1, on+off))
	for y := 0; y < on; y++ {
		tile.SetNRGBA(0, y, c.NRGBA())
	}
	return &ImagePattern{Source: tile, Repeat: RepeatBoth}
}

// ColorAt implements Pattern.
func (p *ImagePattern) ColorAt(x, y int) color.NRGBA {
	if p.Source == nil {
		return color.NRGBA{}
	}
	b := p.Source.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}

	tileX := p.Repeat == RepeatBoth || p.Repeat == RepeatX
	tileY := p.Repeat == RepeatBoth || p.Repeat == RepeatY
	if !tileX && (x < 0 || x >= w) {
		return color.NRGBA{}
	}
	if !tileY && (y < 0 || y >= h) {
		return color.NRGBA{}
	}

	px, py := wrap(x, w), wrap(y, h)
	return p.Source.NRGBAAt(b.Min.X+px, b.Min.Y+py)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// GridPattern returns a size x size tile whose first row and column are c.
func GridPattern(c filter.Color, size int) *ImagePattern {
	size = max(size, 1)
	tile := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < size; i++ {
		tile.SetNRGBA(i, 0, c.NRGBA())
		tile.SetNRGBA(0, i, c.NRGBA())
	}
	return &ImagePattern{Source: tile, Repeat: RepeatBoth}
}
