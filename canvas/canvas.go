package canvas

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/ggedit/filter"
)

// Errors returned by Canvas.
var (
	ErrNotFound    = errors.New("canvas: object not on canvas")
	ErrInvalidSize = errors.New("canvas: invalid size")
)

// MaxDimension is the largest width or height a canvas accepts.
const MaxDimension = 16384

// DefaultBackground is the canvas fill used when none is given.
var DefaultBackground = filter.MustParseColor("#0a0e27")

// Canvas holds an ordered list of objects (first drawn first) and an
// optional active object.
//
// Canvas is not safe for concurrent use.
type Canvas struct {
	width, height int
	background    filter.Color
	objects       []Object
	active        Object
	viewport      Matrix
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithBackground sets the background color.
func WithBackground(c filter.Color) Option {
	return func(cv *Canvas) { cv.background = c }
}

// WithViewport sets the client-to-canvas viewport transform.
func WithViewport(m Matrix) Option {
	return func(cv *Canvas) { cv.viewport = m }
}

// New creates an empty canvas of the given size.
func New(width, height int, opts ...Option) (*Canvas, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	c := &Canvas{
		width:      width,
		height:     height,
		background: DefaultBackground,
		viewport:   Identity(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// SetDimensions resizes the canvas. Objects keep their positions.
func (c *Canvas) SetDimensions(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Background returns the background color.
func (c *Canvas) Background() filter.Color { return c.background }

// SetBackground sets the background color.
func (c *Canvas) SetBackground(col filter.Color) { c.background = col }

// Viewport returns the transform from canvas to client coordinates.
func (c *Canvas) Viewport() Matrix { return c.viewport }

// SetViewport sets the transform from canvas to client coordinates.
func (c *Canvas) SetViewport(m Matrix) {
	if !m.Invertible() {
		m = Identity()
	}
	c.viewport = m
}

// Pointer converts client coordinates to canvas coordinates.
func (c *Canvas) Pointer(clientX, clientY float64) Point {
	return c.viewport.Invert().TransformPoint(Pt(clientX, clientY))
}

// Add appends objects on top of the stack.
func (c *Canvas) Add(objs ...Object) {
	for _, o := range objs {
		if o != nil {
			c.objects = append(c.objects, o)
		}
	}
}

// Remove deletes o from the canvas. If o was active the selection is
// discarded. It reports whether o was found.
func (c *Canvas) Remove(o Object) bool {
	i := c.IndexOf(o)
	if i < 0 {
		return false
	}
	c.objects = slices.Delete(c.objects, i, i+1)
	if c.active == o {
		c.active = nil
	}
	return true
}

// Clear removes every object and the selection. Size and background stay.
func (c *Canvas) Clear() {
	c.objects = nil
	c.active = nil
}

// Objects returns the objects in draw order.
func (c *Canvas) Objects() []Object {
	return slices.Clone(c.objects)
}

// Len returns the number of objects.
func (c *Canvas) Len() int { return len(c.objects) }

// IndexOf returns the draw index of o or -1.
func (c *Canvas) IndexOf(o Object) int {
	return slices.Index(c.objects, o)
}

// Images returns the image objects in draw order.
func (c *Canvas) Images() []*Image {
	var out []*Image
	for _, o := range c.objects {
		if img, ok := o.(*Image); ok {
			out = append(out, img)
		}
	}
	return out
}

// Active returns the active object or nil.
func (c *Canvas) Active() Object { return c.active }

// SetActive selects o, which must be on the canvas.
func (c *Canvas) SetActive(o Object) error {
	if c.IndexOf(o) < 0 {
		return ErrNotFound
	}
	c.active = o
	return nil
}

// DiscardActive clears the selection.
func (c *Canvas) DiscardActive() { c.active = nil }

// FindTarget returns the topmost visible selectable object containing the
// canvas point p, or nil.
func (c *Canvas) FindTarget(p Point) Object {
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i]
		if !o.Properties().Visible {
			continue
		}
		if s, ok := o.(*Shape); ok && !s.Selectable {
			continue
		}
		if Contains(o, p) {
			return o
		}
	}
	return nil
}

// Fit scales o uniformly so that it fits inside the canvas at ratio of the
// largest possible size, and centers it. Flips and rotation are kept.
func (c *Canvas) Fit(o Object, ratio float64) {
	w, h := o.Size()
	if w <= 0 || h <= 0 {
		return
	}
	s := min(float64(c.width)/w, float64(c.height)/h) * ratio
	p := o.Properties()
	p.ScaleX, p.ScaleY = s, s
	c.CenterObject(o)
}

// CenterObject moves o so that its center is the canvas center.
func (c *Canvas) CenterObject(o Object) {
	w, h := ScaledSize(o)
	p := o.Properties()
	p.Left = (float64(c.width) - w) / 2
	p.Top = (float64(c.height) - h) / 2
}
