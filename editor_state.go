package ggedit

import (
	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/crop"
)

// State summarizes an editor for display.
type State struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Objects  int  `json:"objects"`
	HasImage bool `json:"hasImage"`

	Image *ImageState `json:"image,omitempty"`

	CanUndo bool     `json:"canUndo"`
	CanRedo bool     `json:"canRedo"`
	History []string `json:"history"`

	Cropping  bool         `json:"cropping"`
	Dragging  bool         `json:"dragging"`
	Selection *canvas.Rect `json:"selection,omitempty"`
}

// ImageState describes the image operations act on.
type ImageState struct {
	Filters []string    `json:"filters"`
	Angle   float64     `json:"angle"`
	FlipX   bool        `json:"flipX"`
	FlipY   bool        `json:"flipY"`
	Scale   float64     `json:"scale"`
	Clip    string      `json:"clip,omitempty"`
	Bounds  canvas.Rect `json:"bounds"`
}

// State returns a summary of the editor.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Width:    e.canvas.Width(),
		Height:   e.canvas.Height(),
		Objects:  e.canvas.Len(),
		CanUndo:  e.history.CanUndo(),
		CanRedo:  e.history.CanRedo(),
		History:  e.history.Actions(),
		Cropping: e.gesture.Armed(),
		Dragging: e.gesture.State() == crop.Dragging,
	}
	if s.Dragging {
		r := e.gesture.Selection().Normalize()
		s.Selection = &r
	}

	img, err := e.image()
	if err != nil {
		return s
	}
	s.HasImage = true
	is := &ImageState{
		Filters: make([]string, 0, len(img.Filters)),
		Angle:   img.Angle,
		FlipX:   img.FlipX,
		FlipY:   img.FlipY,
		Scale:   img.ScaleX,
		Bounds:  canvas.VisibleBounds(img),
	}
	for _, f := range img.Filters {
		is.Filters = append(is.Filters, f.Type().String())
	}
	if img.ClipPath != nil {
		is.Clip = string(img.ClipPath.Shape)
	}
	s.Image = is
	return s
}
