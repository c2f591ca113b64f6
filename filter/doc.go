// Package filter provides the parameterized image filters that can be
// stacked on a canvas image.
//
// A filter is a small value holding the parameters of one operation (blend a
// color, adjust contrast, convolve with a kernel, and so on). The pixel work
// itself is delegated to github.com/disintegration/imaging and
// github.com/anthonynsimon/bild; this package only maps parameters onto
// those libraries and keeps the result in *image.NRGBA form.
//
// Filters are applied in order through a [Chain]:
//
//	chain := filter.NewChain(
//	    &filter.BlendColor{Color: filter.MustParseColor("#00ffff"), Mode: filter.BlendOverlay, Alpha: 0.3},
//	    &filter.Contrast{Contrast: 0.3},
//	)
//	out := chain.Apply(src)
//
// A [List] of filters encodes to JSON as an array of objects carrying a
// "type" discriminator, which is the form stored in canvas snapshots.
package filter
