package filter

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/noise"
	"github.com/disintegration/imaging"
)

// Invert inverts the color channels, keeping alpha.
type Invert struct{}

// Type implements Filter.
func (f *Invert) Type() Type { return TypeInvert }

// Validate implements Filter.
func (f *Invert) Validate() error { return nil }

// Apply implements Filter.
func (f *Invert) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.Invert(src)
}

// Grayscale removes all color.
type Grayscale struct{}

// Type implements Filter.
func (f *Grayscale) Type() Type { return TypeGrayscale }

// Validate implements Filter.
func (f *Grayscale) Validate() error { return nil }

// Apply implements Filter.
func (f *Grayscale) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.Grayscale(src)
}

// Sepia applies a sepia tone.
type Sepia struct{}

// Type implements Filter.
func (f *Sepia) Type() Type { return TypeSepia }

// Validate implements Filter.
func (f *Sepia) Validate() error { return nil }

// Apply implements Filter.
func (f *Sepia) Apply(src *image.NRGBA) *image.NRGBA {
	return normalize(effect.Sepia(src))
}

// Pixelate replaces every Blocksize x Blocksize block with its average color.
type Pixelate struct {
	Blocksize int `json:"blocksize"`
}

// Type implements Filter.
func (f *Pixelate) Type() Type { return TypePixelate }

// Validate implements Filter.
func (f *Pixelate) Validate() error {
	if f.Blocksize < 1 || f.Blocksize > 512 {
		return fmt.Errorf("%w: blocksize %d (must be in [1, 512])", ErrInvalidParam, f.Blocksize)
	}
	return nil
}

// Apply implements Filter.
func (f *Pixelate) Apply(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	bs := f.Blocksize
	if bs <= 1 || b.Empty() {
		return imaging.Clone(src)
	}
	cols := (b.Dx() + bs - 1) / bs
	rows := (b.Dy() + bs - 1) / bs
	small := imaging.Resize(src, cols, rows, imaging.Box)
	large := imaging.Resize(small, cols*bs, rows*bs, imaging.NearestNeighbor)
	return imaging.Crop(large, image.Rect(0, 0, b.Dx(), b.Dy()))
}

// Noise adds monochrome noise: every pixel is shifted by a random offset
// in [-Noise/2, Noise/2] on all color channels.
// Range: 0 to 1000.
type Noise struct {
	Noise float64 `json:"noise"`
}

// Type implements Filter.
func (f *Noise) Type() Type { return TypeNoise }

// Validate implements Filter.
func (f *Noise) Validate() error {
	return checkRange("noise", f.Noise, 0, 1000)
}

// Apply implements Filter.
func (f *Noise) Apply(src *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(src)
	amount := clamp(f.Noise, 0, 1000)
	b := out.Bounds()
	if amount == 0 || b.Empty() {
		return out
	}
	field := noise.Generate(b.Dx(), b.Dy(), &noise.Options{NoiseFn: noise.Uniform, Monochrome: true})
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()*4]
		nrow := field.Pix[y*field.Stride : y*field.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			d := (float64(nrow[x])/255 - 0.5) * amount
			row[x+0] = clampByte(float64(row[x+0]) + d)
			row[x+1] = clampByte(float64(row[x+1]) + d)
			row[x+2] = clampByte(float64(row[x+2]) + d)
		}
	}
	return out
}
