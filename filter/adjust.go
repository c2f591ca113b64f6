package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// Brightness shifts every channel by Brightness*255.
// Range: -1 (black) to 1 (white); 0 leaves the image unchanged.
type Brightness struct {
	Brightness float64 `json:"brightness"`
}

// Type implements Filter.
func (f *Brightness) Type() Type { return TypeBrightness }

// Validate implements Filter.
func (f *Brightness) Validate() error {
	return checkRange("brightness", f.Brightness, -1, 1)
}

// Apply implements Filter.
func (f *Brightness) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.AdjustBrightness(src, clamp(f.Brightness, -1, 1)*100)
}

// Contrast stretches channels away from (or towards) mid gray.
// Range: -1 to 1; 0 leaves the image unchanged.
type Contrast struct {
	Contrast float64 `json:"contrast"`
}

// Type implements Filter.
func (f *Contrast) Type() Type { return TypeContrast }

// Validate implements Filter.
func (f *Contrast) Validate() error {
	return checkRange("contrast", f.Contrast, -1, 1)
}

// Apply implements Filter.
func (f *Contrast) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.AdjustContrast(src, clamp(f.Contrast, -1, 1)*100)
}

// Saturation scales color saturation.
// Range: -1 (grayscale) to 1 (twice as saturated); 0 leaves the image unchanged.
type Saturation struct {
	Saturation float64 `json:"saturation"`
}

// Type implements Filter.
func (f *Saturation) Type() Type { return TypeSaturation }

// Validate implements Filter.
func (f *Saturation) Validate() error {
	return checkRange("saturation", f.Saturation, -1, 1)
}

// Apply implements Filter.
func (f *Saturation) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.AdjustSaturation(src, clamp(f.Saturation, -1, 1)*100)
}

// Hue rotates the hue of every pixel by Rotation degrees.
type Hue struct {
	Rotation float64 `json:"rotation"`
}

// Type implements Filter.
func (f *Hue) Type() Type { return TypeHue }

// Validate implements Filter.
func (f *Hue) Validate() error {
	if math.IsNaN(f.Rotation) || math.IsInf(f.Rotation, 0) {
		return fmt.Errorf("%w: rotation %v", ErrInvalidParam, f.Rotation)
	}
	return nil
}

// Apply implements Filter.
func (f *Hue) Apply(src *image.NRGBA) *image.NRGBA {
	deg := (int(math.Round(math.Mod(f.Rotation, 360)))%360 + 360) % 360
	if deg == 0 {
		return imaging.Clone(src)
	}
	return normalize(adjust.Hue(src, deg))
}

// Gamma applies a per-channel gamma curve: v' = v^(1/g).
// Values above 1 brighten the channel.
type Gamma struct {
	Gamma [3]float64 `json:"gamma"`
}

// Type implements Filter.
func (f *Gamma) Type() Type { return TypeGamma }

// Validate implements Filter.
func (f *Gamma) Validate() error {
	for i, g := range f.Gamma {
		if !(g > 0) || g > 10 {
			return fmt.Errorf("%w: gamma[%d] = %v (must be in (0, 10])", ErrInvalidParam, i, g)
		}
	}
	return nil
}

// Apply implements Filter.
func (f *Gamma) Apply(src *image.NRGBA) *image.NRGBA {
	var lut [3][256]uint8
	for ch, g := range f.Gamma {
		if !(g > 0) {
			g = 1
		}
		inv := 1 / g
		for i := 0; i < 256; i++ {
			lut[ch][i] = clampByte(math.Pow(float64(i)/255, inv) * 255)
		}
	}
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[0][c.R], G: lut[1][c.G], B: lut[2][c.B], A: c.A}
	})
}

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %v (must be in [%v, %v])", ErrInvalidParam, name, v, lo, hi)
	}
	return nil
}
