package canvas

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Render draws the background and every visible object into a new image
// the size of the canvas, through the viewport transform.
func (c *Canvas) Render() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	for _, o := range c.objects {
		c.renderObject(dst, o)
	}
	return dst
}

// RenderRegion renders the canvas and crops the result to r (canvas
// coordinates, mapped through the viewport), clamped to the output bounds.
func (c *Canvas) RenderRegion(r Rect) *image.RGBA {
	full := c.Render()
	r = r.Normalize()
	vr := transformedBounds(c.viewport.Multiply(Translate(r.X, r.Y)), r.W, r.H)
	area := vr.Pixels().Intersect(full.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Draw(out, out.Bounds(), full, area.Min, draw.Src)
	return out
}

// VisibleBounds returns the part of o that is drawn: its transformed box
// intersected with its clip.
func VisibleBounds(o Object) Rect {
	b := Bounds(o)
	cp := o.Clip()
	if cp == nil {
		return b
	}
	var cb Rect
	if cp.Absolute {
		cb = cp.Bounds()
	} else {
		lb := cp.Bounds()
		m := ObjectMatrix(o)
		cb = transformedBounds(m.Multiply(Translate(lb.X, lb.Y)), lb.W, lb.H)
	}
	return b.Intersect(cb)
}

func (c *Canvas) renderObject(dst *image.RGBA, o Object) {
	p := o.Properties()
	if !p.Visible || p.Opacity <= 0 {
		return
	}
	w, h := o.Size()
	if w <= 0 || h <= 0 || p.ScaleX == 0 || p.ScaleY == 0 {
		return
	}

	m := c.viewport.Multiply(ObjectMatrix(o))
	area := transformedBounds(m, w, h).Pixels().Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	src := o.source()
	layer := image.NewRGBA(area)
	xdraw.BiLinear.Transform(layer, m.Aff3(), src, src.Bounds(), xdraw.Over, nil)

	mask := c.objectMask(o, area)
	if mask == nil {
		draw.Draw(dst, area, layer, area.Min, draw.Over)
		return
	}
	draw.DrawMask(dst, area, layer, area.Min, mask, area.Min, draw.Over)
}

// objectMask returns the coverage of o's clip and opacity over area, or
// nil when every pixel is fully covered.
func (c *Canvas) objectMask(o Object, area image.Rectangle) *image.Alpha {
	p := o.Properties()
	cp := o.Clip()
	opacity := math.Min(p.Opacity, 1)
	if cp == nil && opacity >= 1 {
		return nil
	}

	alpha := uint8(math.Round(opacity * 255))
	mask := image.NewAlpha(area)
	inv := c.viewport.Invert()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if cp != nil {
				pt := inv.TransformPoint(Pt(float64(x)+0.5, float64(y)+0.5))
				if !cp.ContainsCanvas(o, pt) {
					continue
				}
			}
			mask.Pix[mask.PixOffset(x, y)] = alpha
		}
	}
	return mask
}
