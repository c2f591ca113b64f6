package ggedit

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/filter"
	"github.com/gogpu/ggedit/history"
	"github.com/gogpu/ggedit/preset"
)

// Editor is one editing session: a canvas holding the loaded image, its
// undo history, the crop gesture and the preset table.
//
// Every image operation works on the active image, or on the first image
// when nothing is selected. Operations that change the image save an undo
// snapshot first. Without an image they return ErrNoImage and change
// nothing.
//
// Editor is safe for concurrent use.
type Editor struct {
	mu        sync.Mutex
	opts      editorOptions
	canvas    *canvas.Canvas
	history   *history.Stack
	presets   *preset.Registry
	gesture   crop.Gesture
	selection *canvas.Shape
}

// NewEditor creates an editor with an empty canvas.
func NewEditor(opts ...EditorOption) (*Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.presets == nil {
		o.presets = preset.Default()
	}

	if err := o.checkSize(o.width, o.height); err != nil {
		return nil, err
	}
	cv, err := canvas.New(o.width, o.height, canvas.WithBackground(o.background))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &Editor{
		opts:    o,
		canvas:  cv,
		history: history.New(o.historyLimit),
		presets: o.presets,
	}, nil
}

// Presets returns the registry used by ApplyPreset.
func (e *Editor) Presets() *preset.Registry { return e.presets }

// ExportName returns the suggested file name for exports.
func (e *Editor) ExportName() string { return e.opts.exportName }

// Load decodes an image (PNG, JPEG, GIF, BMP, TIFF or WebP) and loads it
// as with LoadImage.
func (e *Editor) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	img, mime, err := canvas.DecodeImageLimit(data, e.opts.maxPixels)
	if err != nil {
		return err
	}
	Logger().Debug("image decoded", "mime", mime, "bytes", len(data))
	return e.LoadImage(img)
}

// LoadImage clears the canvas and adds img scaled to the fit ratio and
// centered. History is reset.
func (e *Editor) LoadImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelCrop()
	e.canvas.Clear()
	obj := canvas.NewImage(img)
	e.canvas.Add(obj)
	e.canvas.Fit(obj, e.opts.fitRatio)
	_ = e.canvas.SetActive(obj)
	e.history.Reset()

	b := img.Bounds()
	Logger().Info("image loaded", "width", b.Dx(), "height", b.Dy(), "scale", obj.ScaleX)
	return nil
}

// image returns the image operations act on. Caller holds e.mu.
func (e *Editor) image() (*canvas.Image, error) {
	if img, ok := e.canvas.Active().(*canvas.Image); ok {
		return img, nil
	}
	imgs := e.canvas.Images()
	if len(imgs) == 0 {
		return nil, ErrNoImage
	}
	return imgs[0], nil
}

// save records the current canvas on the undo stack. Caller holds e.mu.
func (e *Editor) save(action string) error {
	data, err := e.canvas.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	e.history.Save(action, data)
	Logger().Debug("snapshot saved", "action", action, "bytes", len(data))
	return nil
}

// basicFilters are the single-filter effects of ApplyFilter.
var basicFilters = map[string]func() filter.Filter{
	"blur":       func() filter.Filter { return &filter.Blur{Blur: 0.5} },
	"sharpen":    func() filter.Filter { return &filter.Convolute{Matrix: filter.SharpenKernel} },
	"invert":     func() filter.Filter { return &filter.Invert{} },
	"blackwhite": func() filter.Filter { return &filter.Grayscale{} },
	"pixelate":   func() filter.Filter { return &filter.Pixelate{Blocksize: 8} },
}

// FilterKinds lists the names accepted by ApplyFilter.
func FilterKinds() []string {
	return []string{"blur", "sharpen", "invert", "blackwhite", "pixelate"}
}

// ApplyFilter appends one basic filter (blur, sharpen, invert, blackwhite
// or pixelate) to the image.
func (e *Editor) ApplyFilter(kind string) error {
	newFilter, ok := basicFilters[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.save("filter " + kind); err != nil {
		return err
	}
	img.AddFilter(newFilter())
	img.ApplyFilters()
	return nil
}

// ApplyPreset applies a named preset: its filters are appended to the
// image (or replace the stack for replacing presets) and its overlay, if
// any, is added over the canvas.
func (e *Editor) ApplyPreset(name string) error {
	p, err := e.presets.Get(name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.save("preset " + p.Name); err != nil {
		return err
	}

	if p.Replace {
		img.Filters = p.Filters()
	} else {
		img.Filters = append(img.Filters, p.Filters()...)
	}
	if p.Overlay != nil {
		e.canvas.Add(p.Overlay.Shape(e.canvas.Width(), e.canvas.Height()))
	}
	img.ApplyFilters()
	Logger().Debug("preset applied", "name", p.Name, "filters", len(img.Filters))
	return nil
}

// Rotate turns the image by delta degrees about its center. The stored
// angle is kept in [0, 360).
func (e *Editor) Rotate(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: angle %v", ErrInvalidArgument, delta)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.save("rotate"); err != nil {
		return err
	}
	img.Angle = normalizeAngle(img.Angle + delta)
	return nil
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Axis selects the flip direction.
type Axis uint8

// Flip axes.
const (
	Horizontal Axis = iota
	Vertical
)

// ParseAxis accepts "horizontal"/"h"/"x" and "vertical"/"v"/"y".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "horizontal", "h", "x":
		return Horizontal, nil
	case "vertical", "v", "y":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("%w: flip axis %q", ErrInvalidArgument, s)
	}
}

// String returns "horizontal" or "vertical".
func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Flip mirrors the image along axis. Flipping twice restores it.
func (e *Editor) Flip(axis Axis) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.save("flip " + axis.String()); err != nil {
		return err
	}
	if axis == Vertical {
		img.FlipY = !img.FlipY
	} else {
		img.FlipX = !img.FlipX
	}
	return nil
}

// CircleCrop clips the image to the largest circle centered on it that
// fits its on-canvas size, replacing any previous clip.
func (e *Editor) CircleCrop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.save("circle crop"); err != nil {
		return err
	}
	w, h := canvas.ScaledSize(img)
	img.ClipPath = canvas.NewCircleClip(canvas.Center(img), min(w, h)/2, true)
	return nil
}

// Adjustment names a slider-driven filter.
type Adjustment string

// Adjustments.
const (
	AdjustBrightness Adjustment = "brightness"
	AdjustContrast   Adjustment = "contrast"
)

// SetAdjustment sets brightness or contrast to value in [-1, 1], replacing
// any earlier filter of the same kind. It does not record undo history so
// that slider drags do not flood it.
func (e *Editor) SetAdjustment(kind Adjustment, value float64) error {
	var f filter.Filter
	switch kind {
	case AdjustBrightness:
		f = &filter.Brightness{Brightness: value}
	case AdjustContrast:
		f = &filter.Contrast{Contrast: value}
	default:
		return fmt.Errorf("%w: adjustment %q", ErrInvalidArgument, kind)
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.image()
	if err != nil {
		return err
	}
	img.ReplaceFilter(f)
	img.ApplyFilters()
	return nil
}

// Undo restores the state before the last change. It reports false when
// there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	return e.travel(e.history.Undo, e.history.Redo)
}

// Redo reapplies the last undone change. It reports false when there is
// nothing to redo.
func (e *Editor) Redo() (bool, error) {
	return e.travel(e.history.Redo, e.history.Undo)
}

// travel moves one step through history. When the record cannot be
// restored, back returns the stacks to where they were.
func (e *Editor) travel(step, back func([]byte) (history.Record, bool)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelCrop()
	current, err := e.canvas.Snapshot()
	if err != nil {
		return false, err
	}
	rec, ok := step(current)
	if !ok {
		return false, nil
	}
	if err := e.canvas.Load(rec.Data); err != nil {
		back(rec.Data)
		return false, fmt.Errorf("restore %q: %w", rec.Action, err)
	}
	if imgs := e.canvas.Images(); len(imgs) > 0 {
		_ = e.canvas.SetActive(imgs[0])
	}
	Logger().Debug("history restored", "action", rec.Action)
	return true, nil
}

// CanUndo reports whether Undo would change anything.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Resize changes the canvas size and refits the first image. Absolute
// clips follow the image. Overlays are stretched to the new size.
func (e *Editor) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.opts.checkSize(width, height); err != nil {
		return err
	}
	e.cancelCrop()
	if err := e.canvas.SetDimensions(width, height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	for _, o := range e.canvas.Objects() {
		if s, ok := o.(*canvas.Shape); ok && !s.Selectable {
			s.Width, s.Height = float64(width), float64(height)
		}
	}

	imgs := e.canvas.Images()
	if len(imgs) == 0 {
		return nil
	}
	img := imgs[0]
	before := canvas.ObjectMatrix(img)
	e.canvas.Fit(img, e.opts.fitRatio)
	moved := canvas.ObjectMatrix(img).Multiply(before.Invert())
	if img.ClipPath != nil && img.ClipPath.Absolute {
		img.ClipPath.Transform(moved)
	}
	return nil
}

// Select makes the topmost object under the client point active, or
// clears the selection when there is none. It returns whether an object
// was hit.
func (e *Editor) Select(clientX, clientY float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := e.canvas.FindTarget(e.canvas.Pointer(clientX, clientY))
	if target == nil {
		e.canvas.DiscardActive()
		return false
	}
	_ = e.canvas.SetActive(target)
	return true
}

// SetZoom sets a uniform viewport zoom about the canvas origin. Pointer
// coordinates passed to the editor are divided by it.
func (e *Editor) SetZoom(zoom float64) error {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return fmt.Errorf("%w: zoom %v", ErrInvalidArgument, zoom)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.canvas.SetViewport(canvas.Scale(zoom, zoom))
	return nil
}

// Render draws the whole canvas.
func (e *Editor) Render() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.Render()
}

// Export writes the whole canvas as PNG.
func (e *Editor) Export(w io.Writer) error {
	return imaging.Encode(w, e.Render(), imaging.PNG)
}

// ExportImage writes only the visible part of the image (its rotated,
// clipped bounds) as PNG.
func (e *Editor) ExportImage(w io.Writer) error {
	e.mu.Lock()
	img, err := e.image()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	out := e.canvas.RenderRegion(canvas.VisibleBounds(img))
	e.mu.Unlock()

	if out.Bounds().Empty() {
		return fmt.Errorf("%w: image is outside the canvas", ErrInvalidArgument)
	}
	return imaging.Encode(w, out, imaging.PNG)
}

// ExportPNG returns Export's output as bytes.
func (e *Editor) ExportPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Snapshot returns the canvas serialized as JSON. An unfinished crop
// selection is discarded first.
func (e *Editor) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCrop()
	return e.canvas.Snapshot()
}
