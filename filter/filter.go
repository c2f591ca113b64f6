package filter

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidParam is returned by Validate when a filter parameter is out of range.
var ErrInvalidParam = errors.New("filter: invalid parameter")

// Filter is one parameterized image operation.
//
// Apply never modifies src; it returns a new image whose bounds start at
// the origin and match the size of src.
type Filter interface {
	// Type identifies the filter for serialization and for replacing
	// filters of the same kind.
	Type() Type

	// Apply processes src and returns the result.
	Apply(src *image.NRGBA) *image.NRGBA

	// Validate reports whether the parameters are usable.
	Validate() error
}

// Type identifies the kind of a filter.
type Type uint8

// Filter type constants.
const (
	// TypeNone represents no filter (identity).
	TypeNone Type = iota
	TypeBlur
	TypeConvolute
	TypeInvert
	TypeGrayscale
	TypeSepia
	TypePixelate
	TypeBlendColor
	TypeBrightness
	TypeContrast
	TypeSaturation
	TypeHue
	TypeGamma
	TypeNoise
	TypeColorMatrix
	TypeGradient
	TypeDisplacement

	typeCount
)

var typeNames = [typeCount]string{
	TypeNone:         "None",
	TypeBlur:         "Blur",
	TypeConvolute:    "Convolute",
	TypeInvert:       "Invert",
	TypeGrayscale:    "Grayscale",
	TypeSepia:        "Sepia",
	TypePixelate:     "Pixelate",
	TypeBlendColor:   "BlendColor",
	TypeBrightness:   "Brightness",
	TypeContrast:     "Contrast",
	TypeSaturation:   "Saturation",
	TypeHue:          "Hue",
	TypeGamma:        "Gamma",
	TypeNoise:        "Noise",
	TypeColorMatrix:  "ColorMatrix",
	TypeGradient:     "Gradient",
	TypeDisplacement: "Displacement",
}

// String returns the serialized name of the filter type.
func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return "Unknown"
}

// ParseType returns the Type with the given serialized name.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name && Type(i) != TypeNone {
			return Type(i), true
		}
	}
	return TypeNone, false
}

// New returns a zero-valued filter of the given type, or nil for TypeNone
// and unknown types.
func New(t Type) Filter {
	switch t {
	case TypeBlur:
		return &Blur{}
	case TypeConvolute:
		return &Convolute{}
	case TypeInvert:
		return &Invert{}
	case TypeGrayscale:
		return &Grayscale{}
	case TypeSepia:
		return &Sepia{}
	case TypePixelate:
		return &Pixelate{}
	case TypeBlendColor:
		return &BlendColor{}
	case TypeBrightness:
		return &Brightness{}
	case TypeContrast:
		return &Contrast{}
	case TypeSaturation:
		return &Saturation{}
	case TypeHue:
		return &Hue{}
	case TypeGamma:
		return &Gamma{}
	case TypeNoise:
		return &Noise{}
	case TypeColorMatrix:
		return &ColorMatrix{}
	case TypeGradient:
		return &Gradient{}
	case TypeDisplacement:
		return &Displacement{}
	default:
		return nil
	}
}

// Chain represents multiple filters applied in sequence.
// Filters are applied in order from first to last.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain from the given filters.
// Nil filters are skipped.
func NewChain(filters ...Filter) *Chain {
	chain := &Chain{
		filters: make([]Filter, 0, len(filters)),
	}
	for _, f := range filters {
		chain.Add(f)
	}
	return chain
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	if f != nil {
		c.filters = append(c.filters, f)
	}
}

// Apply processes src through all filters in sequence.
// An empty chain returns a copy of src.
func (c *Chain) Apply(src *image.NRGBA) *image.NRGBA {
	if len(c.filters) == 0 {
		return imaging.Clone(src)
	}
	current := src
	for _, f := range c.filters {
		current = f.Apply(current)
	}
	return current
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// IsEmpty returns true if the chain has no filters.
func (c *Chain) IsEmpty() bool {
	return len(c.filters) == 0
}

// Filters returns the filters of the chain in application order.
func (c *Chain) Filters() []Filter {
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// normalize returns img as an NRGBA whose bounds start at the origin.
func normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
