// Package canvas is a small retained-mode scene for photo editing.
//
// A Canvas holds an ordered stack of objects: raster images with filter
// stacks and clip paths, and rectangles used for selection markers and
// pattern overlays. Every object is placed by a Props value (position,
// scale, rotation, flips, opacity) and is rendered on the CPU through an
// affine transform.
//
// A canvas serializes to JSON with images embedded as PNG data URLs; the
// same encoding is used for undo snapshots.
//
//	cv, _ := canvas.New(800, 600)
//	img := canvas.NewImage(photo)
//	cv.Add(img)
//	cv.Fit(img, 0.9)
//	out := cv.Render()
package canvas
