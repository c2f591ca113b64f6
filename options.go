package ggedit

import (
	"fmt"

	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/filter"
	"github.com/gogpu/ggedit/preset"
)

// EditorOption configures an Editor during creation.
// Use functional options to customize Editor behavior.
//
// Example:
//
//	// Default 800x600 canvas with the built-in presets
//	ed, _ := ggedit.NewEditor()
//
//	// Larger canvas, bounded history and extra presets
//	ed, _ := ggedit.NewEditor(
//	    ggedit.WithSize(1280, 720),
//	    ggedit.WithHistoryLimit(20),
//	    ggedit.WithPresets(reg),
//	)
type EditorOption func(*editorOptions)

// editorOptions holds optional configuration for Editor creation.
type editorOptions struct {
	width, height int
	background    filter.Color
	fitRatio      float64
	historyLimit  int
	presets       *preset.Registry
	exportName    string
	maxDimension  int
	maxPixels     int
}

// Default option values.
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultFitRatio   = 0.9
	DefaultExportName = "cyberpunk-edit.png"

	// DefaultMaxDimension bounds the canvas width and height.
	DefaultMaxDimension = 4096
	// DefaultMaxImagePixels bounds the size of decoded images.
	DefaultMaxImagePixels = canvas.DefaultMaxPixels
)

// defaultOptions returns the default editor options.
func defaultOptions() editorOptions {
	return editorOptions{
		width:      DefaultWidth,
		height:     DefaultHeight,
		background: canvas.DefaultBackground,
		fitRatio:   DefaultFitRatio,
		presets:    nil, // Will be set to preset.Default() if nil
		exportName: DefaultExportName,

		maxDimension: DefaultMaxDimension,
		maxPixels:    DefaultMaxImagePixels,
	}
}

// checkSize reports whether a canvas of width x height is allowed.
func (o *editorOptions) checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > o.maxDimension || height > o.maxDimension {
		return fmt.Errorf("%w: canvas size %dx%d outside 1..%d", ErrInvalidArgument, width, height, o.maxDimension)
	}
	return nil
}

// WithSize sets the initial canvas size in pixels.
func WithSize(width, height int) EditorOption {
	return func(o *editorOptions) {
		o.width, o.height = width, height
	}
}

// WithBackground sets the canvas background color.
func WithBackground(c filter.Color) EditorOption {
	return func(o *editorOptions) {
		o.background = c
	}
}

// WithFitRatio sets how much of the canvas a loaded image may cover,
// as a fraction of the largest size that fits. Values outside (0, 1]
// are ignored.
func WithFitRatio(r float64) EditorOption {
	return func(o *editorOptions) {
		if r > 0 && r <= 1 {
			o.fitRatio = r
		}
	}
}

// WithHistoryLimit bounds the number of undo steps. Zero means unlimited.
func WithHistoryLimit(n int) EditorOption {
	return func(o *editorOptions) {
		o.historyLimit = n
	}
}

// WithPresets sets the preset registry used by ApplyPreset.
// The registry may be shared between editors.
//
// Example:
//
//	reg := preset.Default()
//	_ = reg.LoadFile("my-presets.yaml")
//	ed, _ := ggedit.NewEditor(ggedit.WithPresets(reg))
func WithPresets(r *preset.Registry) EditorOption {
	return func(o *editorOptions) {
		o.presets = r
	}
}

// WithExportName sets the suggested file name for exports.
func WithExportName(name string) EditorOption {
	return func(o *editorOptions) {
		if name != "" {
			o.exportName = name
		}
	}
}

// WithMaxDimension bounds the canvas width and height accepted by NewEditor
// and Resize. Values outside (0, canvas.MaxDimension] are ignored.
func WithMaxDimension(n int) EditorOption {
	return func(o *editorOptions) {
		if n > 0 && n <= canvas.MaxDimension {
			o.maxDimension = n
		}
	}
}

// WithMaxImagePixels bounds the width * height of images accepted by Load.
// Non-positive values are ignored.
func WithMaxImagePixels(n int) EditorOption {
	return func(o *editorOptions) {
		if n > 0 {
			o.maxPixels = n
		}
	}
}
