package filter

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// GradientShape selects the geometry of a Gradient overlay.
type GradientShape string

// Gradient shapes.
const (
	GradientLinear GradientShape = "linear"
	GradientRadial GradientShape = "radial"
)

// defaultGradientOpacity is used when Gradient.Opacity is zero.
const defaultGradientOpacity = 0.35

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 `json:"offset"` // Position in gradient, 0.0 to 1.0
	Color  Color   `json:"color"`  // Color at this position
}

// Gradient lays a color gradient over the image.
//
// Linear gradients run across the image along Angle (degrees, 0 = left to
// right); radial gradients run from the center to the farthest corner.
// Opacity controls how strongly the gradient covers the image; zero means
// the default of 0.35.
type Gradient struct {
	Shape      GradientShape `json:"shape"`
	ColorStops []ColorStop   `json:"colorStops"`
	Opacity    float64       `json:"opacity,omitempty"`
	Angle      float64       `json:"angle,omitempty"`
}

// Type implements Filter.
func (f *Gradient) Type() Type { return TypeGradient }

// Validate implements Filter.
func (f *Gradient) Validate() error {
	switch f.Shape {
	case GradientLinear, GradientRadial, "":
	default:
		return fmt.Errorf("%w: gradient shape %q", ErrInvalidParam, f.Shape)
	}
	if len(f.ColorStops) == 0 {
		return fmt.Errorf("%w: gradient without color stops", ErrInvalidParam)
	}
	for i, s := range f.ColorStops {
		if err := checkRange(fmt.Sprintf("colorStops[%d].offset", i), s.Offset, 0, 1); err != nil {
			return err
		}
	}
	return checkRange("opacity", f.Opacity, 0, 1)
}

// Apply implements Filter.
func (f *Gradient) Apply(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	if b.Empty() || len(f.ColorStops) == 0 {
		return imaging.Clone(src)
	}
	opacity := f.Opacity
	if opacity == 0 {
		opacity = defaultGradientOpacity
	}
	return normalize(blend.Opacity(src, f.Render(b.Dx(), b.Dy()), clamp(opacity, 0, 1)))
}

// Render draws the gradient into a new w x h image.
func (f *Gradient) Render(w, h int) *image.NRGBA {
	stops := sortStops(f.ColorStops)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	cx, cy := float64(w)/2, float64(h)/2
	rad := f.Angle * math.Pi / 180
	dx, dy := math.Cos(rad), math.Sin(rad)
	// Half-length of the image projected on the gradient direction, so
	// offset 0 and 1 land on opposite edges for any angle.
	half := (math.Abs(dx)*float64(w) + math.Abs(dy)*float64(h)) / 2
	maxR := math.Hypot(cx, cy)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := float64(x) + 0.5 - cx
			py := float64(y) + 0.5 - cy
			var t float64
			if f.Shape == GradientRadial {
				t = math.Hypot(px, py) / maxR
			} else if half > 0 {
				t = ((px*dx+py*dy)/half + 1) / 2
			}
			c := colorAtOffset(stops, t)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
		}
	}
	return out
}

// sortStops sorts color stops by offset.
func sortStops(stops []ColorStop) []ColorStop {
	if len(stops) == 0 {
		return stops
	}

	// Create a copy to avoid modifying the original
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	return sorted
}

// colorAtOffset returns the interpolated color at a given offset.
// stops must be sorted. Offsets outside [0, 1] take the edge colors.
func colorAtOffset(stops []ColorStop, t float64) Color {
	if len(stops) == 0 {
		return Transparent
	}
	if len(stops) == 1 {
		return stops[0].Color
	}

	t = clamp(t, 0, 1)

	idx := sort.Search(len(stops), func(i int) bool {
		return stops[i].Offset >= t
	})

	if idx == 0 {
		return stops[0].Color
	}
	if idx >= len(stops) {
		return stops[len(stops)-1].Color
	}

	stop1 := stops[idx-1]
	stop2 := stops[idx]

	// Avoid division by zero for coincident stops
	if stop2.Offset == stop1.Offset {
		return stop1.Color
	}

	localT := (t - stop1.Offset) / (stop2.Offset - stop1.Offset)
	return interpolateLinearLight(stop1.Color, stop2.Color, localT)
}

// interpolateLinearLight interpolates two colors in linear sRGB space,
// which avoids the dark bands of naive sRGB interpolation.
func interpolateLinearLight(c1, c2 Color, t float64) Color {
	mix := func(a, b uint8) uint8 {
		la := srgbToLinear(float64(a) / 255)
		lb := srgbToLinear(float64(b) / 255)
		return clampByte(linearToSRGB(la+(lb-la)*t) * 255)
	}
	return Color{
		R: mix(c1.R, c2.R),
		G: mix(c1.G, c2.G),
		B: mix(c1.B, c2.B),
		A: clampByte(float64(c1.A) + (float64(c2.A)-float64(c1.A))*t),
	}
}

func srgbToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func linearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}
