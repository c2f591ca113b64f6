package filter

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Displacement is a glitch effect: the red channel is sampled at
// (+OffsetX, +OffsetY) and the blue channel at (-OffsetX, -OffsetY), and
// every other horizontal band of Scale rows is shifted right by Scale/2.
// Samples outside the image clamp to the nearest edge.
type Displacement struct {
	Scale   int `json:"scale"`
	OffsetX int `json:"offsetX"`
	OffsetY int `json:"offsetY"`
}

// Type implements Filter.
func (f *Displacement) Type() Type { return TypeDisplacement }

// Validate implements Filter.
func (f *Displacement) Validate() error {
	if f.Scale < 0 || f.Scale > 1024 {
		return fmt.Errorf("%w: scale %d (must be in [0, 1024])", ErrInvalidParam, f.Scale)
	}
	return nil
}

// Apply implements Filter.
func (f *Displacement) Apply(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	out := imaging.Clone(src)
	if b.Empty() {
		return out
	}
	w, h := b.Dx(), b.Dy()

	at := func(x, y int) int {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return y*src.Stride + x*4
	}

	for y := 0; y < h; y++ {
		shift := 0
		if f.Scale > 0 && (y/f.Scale)%2 == 1 {
			shift = f.Scale / 2
		}
		for x := 0; x < w; x++ {
			sx := x - shift
			d := y*out.Stride + x*4
			g := at(sx, y)
			out.Pix[d+0] = src.Pix[at(sx+f.OffsetX, y+f.OffsetY)+0]
			out.Pix[d+1] = src.Pix[g+1]
			out.Pix[d+2] = src.Pix[at(sx-f.OffsetX, y-f.OffsetY)+2]
			out.Pix[d+3] = src.Pix[g+3]
		}
	}
	return out
}
