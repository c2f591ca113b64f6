package filter

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// blurScale converts the relative Blur amount into a gaussian sigma in
// pixels: sigma = Blur * blurScale * max(width, height).
const blurScale = 0.02

// Blur applies a gaussian blur whose strength is relative to the image size.
// Range: 0 (none) to 1 (strong).
type Blur struct {
	Blur float64 `json:"blur"`
}

// Type implements Filter.
func (f *Blur) Type() Type { return TypeBlur }

// Validate implements Filter.
func (f *Blur) Validate() error {
	return checkRange("blur", f.Blur, 0, 1)
}

// Sigma returns the gaussian sigma used for an image of the given bounds.
func (f *Blur) Sigma(bounds image.Rectangle) float64 {
	side := max(bounds.Dx(), bounds.Dy())
	return clamp(f.Blur, 0, 1) * blurScale * float64(side)
}

// Apply implements Filter.
func (f *Blur) Apply(src *image.NRGBA) *image.NRGBA {
	sigma := f.Sigma(src.Bounds())
	if sigma <= 0 {
		return imaging.Clone(src)
	}
	return imaging.Blur(src, sigma)
}

// Convolute convolves the image with a square kernel given in row-major
// order. The side of the kernel must be odd. When Opaque is set the result
// alpha is forced to 255.
type Convolute struct {
	Matrix []float64 `json:"matrix"`
	Opaque bool      `json:"opaque,omitempty"`
}

// Common kernels.
var (
	SharpenKernel = []float64{0, -1, 0, -1, 5, -1, 0, -1, 0}
	EmbossKernel  = []float64{1, 1, 1, 1, 0.7, -1, -1, -1, -1}
	EdgeKernel    = []float64{0, 1, 0, 1, -4, 1, 0, 1, 0}
)

// Type implements Filter.
func (f *Convolute) Type() Type { return TypeConvolute }

// Side returns the kernel side length, or 0 if the matrix is not a square
// with an odd side.
func (f *Convolute) Side() int {
	n := len(f.Matrix)
	side := int(math.Sqrt(float64(n)))
	if side*side != n || side%2 == 0 {
		return 0
	}
	return side
}

// Validate implements Filter.
func (f *Convolute) Validate() error {
	if f.Side() == 0 {
		return fmt.Errorf("%w: convolution matrix of %d values is not an odd square", ErrInvalidParam, len(f.Matrix))
	}
	for i, v := range f.Matrix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: matrix[%d] = %v", ErrInvalidParam, i, v)
		}
	}
	return nil
}

// Apply implements Filter.
func (f *Convolute) Apply(src *image.NRGBA) *image.NRGBA {
	var out *image.NRGBA
	switch side := f.Side(); side {
	case 0:
		return imaging.Clone(src)
	case 3:
		var k [9]float64
		copy(k[:], f.Matrix)
		out = imaging.Convolve3x3(src, k, nil)
	case 5:
		var k [25]float64
		copy(k[:], f.Matrix)
		out = imaging.Convolve5x5(src, k, nil)
	default:
		k := convolution.NewKernel(side, side)
		copy(k.Matrix, f.Matrix)
		out = normalize(convolution.Convolve(src, k, &convolution.Options{KeepAlpha: true}))
	}
	if f.Opaque {
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 255
		}
	}
	return out
}
