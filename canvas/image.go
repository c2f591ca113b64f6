package canvas

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/gogpu/ggedit/filter"
)

// Image is a raster object with an ordered filter stack.
//
// The filtered pixels are cached. Changing Filters has no visible effect
// until ApplyFilters is called.
type Image struct {
	Props

	// Filters is the stack applied to the original element, in order.
	Filters filter.List

	// ClipPath restricts drawing, or nil for none.
	ClipPath *Clip

	element  *image.NRGBA
	filtered *image.NRGBA
	src      string
}

// NewImage wraps img as a canvas object with default placement.
func NewImage(img image.Image) *Image {
	return &Image{
		Props:   DefaultProps(),
		element: toNRGBA(img),
	}
}

// Kind implements Object.
func (o *Image) Kind() Kind { return KindImage }

// Size implements Object.
func (o *Image) Size() (w, h float64) {
	b := o.element.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clip implements Object.
func (o *Image) Clip() *Clip { return o.ClipPath }

// Element returns the unfiltered source pixels.
func (o *Image) Element() *image.NRGBA { return o.element }

// Filtered returns the pixels as last produced by ApplyFilters, or the
// element if filters were never applied.
func (o *Image) Filtered() *image.NRGBA {
	if o.filtered != nil {
		return o.filtered
	}
	return o.element
}

// ApplyFilters recomputes the cached filtered pixels from the element.
func (o *Image) ApplyFilters() {
	if len(o.Filters) == 0 {
		o.filtered = nil
		return
	}
	o.filtered = filter.NewChain(o.Filters...).Apply(o.element)
}

// AddFilter appends f to the stack without applying it.
func (o *Image) AddFilter(f filter.Filter) {
	o.Filters = append(o.Filters, f)
}

// ReplaceFilter removes filters of the same type as f and appends f.
func (o *Image) ReplaceFilter(f filter.Filter) {
	o.Filters = append(o.Filters.Without(f.Type()), f)
}

// ClearFilters empties the stack without applying it.
func (o *Image) ClearFilters() {
	o.Filters = nil
}

// Src returns the element as a PNG data URL. The encoding is cached.
func (o *Image) Src() (string, error) {
	if o.src != "" {
		return o.src, nil
	}
	s, err := EncodeDataURL(o.element)
	if err != nil {
		return "", err
	}
	o.src = s
	return s, nil
}

func (o *Image) source() *image.NRGBA {
	return o.Filtered()
}

// toNRGBA returns img as an NRGBA with bounds at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
