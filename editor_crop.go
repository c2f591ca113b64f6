package ggedit

import (
	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/filter"
)

// Selection marker style.
var (
	selectionFill   = filter.Color{G: 255, B: 157, A: 77}
	selectionStroke = filter.RGB(0, 255, 157)
)

const selectionStrokeWidth = 2

// StartCrop arms the rectangular crop gesture, or cancels it when it is
// already armed. It returns whether crop mode is now on.
func (e *Editor) StartCrop() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gesture.Armed() {
		e.cancelCrop()
		return false, nil
	}
	if _, err := e.image(); err != nil {
		return false, err
	}
	e.gesture.Toggle()
	return true, nil
}

// Cropping reports whether crop mode is armed.
func (e *Editor) Cropping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gesture.Armed()
}

// PointerDown starts a crop selection at the client point when crop mode
// is armed. It reports whether a selection started.
func (e *Editor) PointerDown(clientX, clientY float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.canvas.Pointer(clientX, clientY)
	if !e.gesture.Down(p) {
		return false
	}
	s := canvas.NewShape(p.X, p.Y, 0, 0, canvas.NewSolidPattern(selectionFill))
	s.Stroke = selectionStroke
	s.StrokeWidth = selectionStrokeWidth
	s.Selectable = false
	e.selection = s
	e.canvas.Add(s)
	return true
}

// PointerMove resizes the live selection. It reports whether a selection
// is being dragged.
func (e *Editor) PointerMove(clientX, clientY float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.gesture.Move(e.canvas.Pointer(clientX, clientY)) {
		return false
	}
	e.updateSelection()
	return true
}

// PointerUp finishes the selection. A selection with area clips the image
// to it (an absolute rectangle replacing any previous clip) and records
// undo history. It returns the applied rectangle in canvas coordinates
// and whether a crop happened. Crop mode ends either way.
func (e *Editor) PointerUp(clientX, clientY float64) (canvas.Rect, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.gesture.Up(e.canvas.Pointer(clientX, clientY))
	e.removeSelection()
	if !ok || r.Empty() {
		return canvas.Rect{}, false, nil
	}

	img, err := e.image()
	if err != nil {
		return canvas.Rect{}, false, err
	}
	if err := e.save("crop"); err != nil {
		return canvas.Rect{}, false, err
	}
	img.ClipPath = canvas.NewRectClip(r)
	Logger().Debug("cropped", "x", r.X, "y", r.Y, "w", r.W, "h", r.H)
	return r, true, nil
}

// updateSelection mirrors the gesture into the marker rectangle.
func (e *Editor) updateSelection() {
	if e.selection == nil {
		return
	}
	r := e.gesture.Selection().Normalize()
	e.selection.Left, e.selection.Top = r.X, r.Y
	e.selection.Width, e.selection.Height = r.W, r.H
}

func (e *Editor) removeSelection() {
	if e.selection != nil {
		e.canvas.Remove(e.selection)
		e.selection = nil
	}
}

// cancelCrop disarms the gesture and removes the marker. Caller holds e.mu.
func (e *Editor) cancelCrop() {
	e.gesture.Cancel()
	e.removeSelection()
}
