// Package ggedit is an image editing session for cosmetic photo effects.
//
// # Overview
//
// An Editor holds one canvas with an uploaded image. The image can be
// filtered (single filters or named presets such as "cyberpunk" or
// "vaporwave"), rotated, flipped, cropped to a rectangle drawn with the
// pointer or to a circle, and adjusted with brightness and contrast
// sliders. Every change except slider moves can be undone. The composed
// canvas exports as PNG.
//
// # Quick Start
//
//	ed, err := ggedit.NewEditor(ggedit.WithSize(800, 600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, _ := os.Open("photo.jpg")
//	defer f.Close()
//	if err := ed.Load(f); err != nil {
//	    log.Fatal(err)
//	}
//	_ = ed.ApplyPreset("cyberpunk")
//	_ = ed.Rotate(90)
//	out, _ := os.Create("cyberpunk-edit.png")
//	defer out.Close()
//	_ = ed.Export(out)
//
// # Architecture
//
// The package is organized into:
//   - filter: parameterized image filters over imaging and bild
//   - canvas: object graph, CPU rendering and JSON snapshots
//   - history: undo/redo stacks of snapshots
//   - crop: the press-drag-release crop gesture
//   - preset: the preset table (embedded YAML, hot reload)
//   - config: TOML settings
//   - server: HTTP and WebSocket front end
//
// # Logging
//
// ggedit is silent by default. Call SetLogger to route its log/slog output.
package ggedit
