package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ColorMatrix applies a 4x5 color transformation matrix to an image.
// The transformation is:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// Channels are in [0, 1] during the transformation; the fifth column is a
// bias in the same unit. Results are clamped back to the valid range.
//
// When Name is set the matrix registered under that name is used instead
// of Matrix.
type ColorMatrix struct {
	Name string `json:"name,omitempty"`

	// Matrix is the 4x5 transformation matrix in row-major order.
	// [0-4] = row 0 (R), [5-9] = row 1 (G), [10-14] = row 2 (B), [15-19] = row 3 (A)
	Matrix [20]float64 `json:"matrix"`
}

// Named color matrices.
var (
	IdentityMatrix = [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}

	SepiaMatrix = [20]float64{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}

	BlackWhiteMatrix = [20]float64{
		1.5, 1.5, 1.5, 0, -1,
		1.5, 1.5, 1.5, 0, -1,
		1.5, 1.5, 1.5, 0, -1,
		0, 0, 0, 1, 0,
	}

	BrownieMatrix = [20]float64{
		0.59970, 0.34553, -0.27082, 0, 0.186,
		-0.03770, 0.86095, 0.15059, 0, -0.1449,
		0.24113, -0.07441, 0.44972, 0, -0.02965,
		0, 0, 0, 1, 0,
	}

	VintageMatrix = [20]float64{
		0.62793, 0.32021, -0.03965, 0, 0.03784,
		0.02578, 0.64411, 0.03259, 0, 0.02926,
		0.04660, -0.08512, 0.52416, 0, 0.02023,
		0, 0, 0, 1, 0,
	}

	KodachromeMatrix = [20]float64{
		1.12855, -0.39673, -0.03992, 0, 0.24991,
		-0.16404, 1.08352, -0.05498, 0, 0.09698,
		-0.16786, -0.56034, 1.60148, 0, 0.13972,
		0, 0, 0, 1, 0,
	}

	TechnicolorMatrix = [20]float64{
		1.91252, -0.85453, -0.09155, 0, 0.04624,
		-0.30878, 1.76589, -0.10601, 0, -0.27589,
		-0.23110, -0.75018, 1.84759, 0, 0.12137,
		0, 0, 0, 1, 0,
	}

	PolaroidMatrix = [20]float64{
		1.438, -0.062, -0.062, 0, 0,
		-0.122, 1.378, -0.122, 0, 0,
		-0.016, -0.016, 1.483, 0, 0,
		0, 0, 0, 1, 0,
	}
)

// namedMatrices lets presets refer to a matrix by name.
var namedMatrices = map[string][20]float64{
	"identity":    IdentityMatrix,
	"sepia":       SepiaMatrix,
	"blackwhite":  BlackWhiteMatrix,
	"brownie":     BrownieMatrix,
	"vintage":     VintageMatrix,
	"kodachrome":  KodachromeMatrix,
	"technicolor": TechnicolorMatrix,
	"polaroid":    PolaroidMatrix,
}

// NamedMatrix returns the color matrix registered under name.
func NamedMatrix(name string) ([20]float64, bool) {
	m, ok := namedMatrices[name]
	return m, ok
}

// NewColorMatrix creates a color matrix filter with the given matrix.
func NewColorMatrix(matrix [20]float64) *ColorMatrix {
	return &ColorMatrix{Matrix: matrix}
}

// NewSaturationMatrix creates a matrix that adjusts color saturation.
// factor: 0.0 = grayscale, 1.0 = unchanged, 2.0 = oversaturated
func NewSaturationMatrix(factor float64) *ColorMatrix {
	// Luminance weights (Rec. 709)
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)

	// Saturation matrix blends between luminance (0) and identity (1)
	inv := 1 - factor

	return &ColorMatrix{
		Matrix: [20]float64{
			lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
			lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
			lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
			0, 0, 0, 1, 0,
		},
	}
}

// NewHueRotateMatrix creates a matrix that rotates hue by the given angle in degrees.
func NewHueRotateMatrix(degrees float64) *ColorMatrix {
	rad := degrees * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)

	const (
		lumR = 0.213
		lumG = 0.715
		lumB = 0.072
	)

	return &ColorMatrix{
		Matrix: [20]float64{
			lumR + cos*(1-lumR) + sin*(-lumR), lumG + cos*(-lumG) + sin*(-lumG), lumB + cos*(-lumB) + sin*(1-lumB), 0, 0,
			lumR + cos*(-lumR) + sin*(0.143), lumG + cos*(1-lumG) + sin*(0.140), lumB + cos*(-lumB) + sin*(-0.283), 0, 0,
			lumR + cos*(-lumR) + sin*(-(1 - lumR)), lumG + cos*(-lumG) + sin*(lumG), lumB + cos*(1-lumB) + sin*(lumB), 0, 0,
			0, 0, 0, 1, 0,
		},
	}
}

// Type implements Filter.
func (f *ColorMatrix) Type() Type { return TypeColorMatrix }

// Validate implements Filter.
func (f *ColorMatrix) Validate() error {
	if f.Name != "" {
		if _, ok := namedMatrices[f.Name]; !ok {
			return fmt.Errorf("%w: unknown color matrix %q", ErrInvalidParam, f.Name)
		}
		return nil
	}
	for i, v := range f.Matrix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: matrix[%d] = %v", ErrInvalidParam, i, v)
		}
	}
	return nil
}

// Apply implements Filter.
func (f *ColorMatrix) Apply(src *image.NRGBA) *image.NRGBA {
	m := f.Resolved()
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		r := float64(c.R) / 255
		g := float64(c.G) / 255
		b := float64(c.B) / 255
		a := float64(c.A) / 255

		return color.NRGBA{
			R: clampByte((m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]) * 255),
			G: clampByte((m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]) * 255),
			B: clampByte((m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]) * 255),
			A: clampByte((m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]) * 255),
		}
	})
}

// Resolved returns the effective matrix.
func (f *ColorMatrix) Resolved() [20]float64 {
	if f.Name != "" {
		if m, ok := namedMatrices[f.Name]; ok {
			return m
		}
	}
	return f.Matrix
}

// Multiply returns a new filter that is the product of this filter and another.
// The result applies this filter first, then the other.
func (f *ColorMatrix) Multiply(other *ColorMatrix) *ColorMatrix {
	// other is applied to the output of f: result = other * f
	am := other.Resolved()
	bm := f.Resolved()
	a := &am
	b := &bm

	result := &ColorMatrix{}
	r := &result.Matrix

	// Matrix multiplication for 4x5 * 4x5 (treating 5th column as constant)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += a[row*5+k] * b[k*5+col]
			}
			r[row*5+col] = sum
		}
		// Offset column (5th)
		r[row*5+4] = a[row*5+0]*b[4] + a[row*5+1]*b[9] +
			a[row*5+2]*b[14] + a[row*5+3]*b[19] + a[row*5+4]
	}

	return result
}
