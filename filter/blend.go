package filter

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// BlendMode selects how BlendColor combines the image with its color.
type BlendMode string

// Blend modes understood by BlendColor.
const (
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendAdd        BlendMode = "add"
	BlendDiff       BlendMode = "diff"
	BlendSubtract   BlendMode = "subtract"
	BlendLighten    BlendMode = "lighten"
	BlendDarken     BlendMode = "darken"
	BlendExclusion  BlendMode = "exclusion"
	BlendOverlay    BlendMode = "overlay"
	BlendSoftLight  BlendMode = "softlight"
	BlendColorBurn  BlendMode = "colorburn"
	BlendColorDodge BlendMode = "colordodge"
	BlendTint       BlendMode = "tint"
)

// blendFuncs maps each mode to its bild implementation.
// Tint is a normal blend: the color replaces the pixel before the alpha mix.
var blendFuncs = map[BlendMode]func(bg, fg image.Image) *image.RGBA{
	BlendMultiply:   blend.Multiply,
	BlendScreen:     blend.Screen,
	BlendAdd:        blend.Add,
	BlendDiff:       blend.Difference,
	BlendSubtract:   blend.Subtract,
	BlendLighten:    blend.Lighten,
	BlendDarken:     blend.Darken,
	BlendExclusion:  blend.Exclusion,
	BlendOverlay:    blend.Overlay,
	BlendSoftLight:  blend.SoftLight,
	BlendColorBurn:  blend.ColorBurn,
	BlendColorDodge: blend.ColorDodge,
	BlendTint:       blend.Normal,
}

// Valid reports whether m is a known blend mode.
func (m BlendMode) Valid() bool {
	_, ok := blendFuncs[m]
	return ok
}

// BlendColor blends a solid color into the image with the given mode,
// then mixes the blended result back over the original by Alpha.
type BlendColor struct {
	Color Color     `json:"color"`
	Mode  BlendMode `json:"mode"`
	Alpha float64   `json:"alpha"`
}

// Type implements Filter.
func (f *BlendColor) Type() Type { return TypeBlendColor }

// Validate implements Filter.
func (f *BlendColor) Validate() error {
	if !f.Mode.Valid() {
		return fmt.Errorf("%w: blend mode %q", ErrInvalidParam, f.Mode)
	}
	return checkRange("alpha", f.Alpha, 0, 1)
}

// Apply implements Filter.
func (f *BlendColor) Apply(src *image.NRGBA) *image.NRGBA {
	fn, ok := blendFuncs[f.Mode]
	alpha := clamp(f.Alpha, 0, 1)
	if !ok || alpha == 0 {
		return imaging.Clone(src)
	}
	b := src.Bounds()
	solid := imaging.New(b.Dx(), b.Dy(), f.Color.NRGBA())
	blended := fn(src, solid)
	return normalize(blend.Opacity(src, blended, alpha))
}
