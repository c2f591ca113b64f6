package canvas

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/ggedit/filter"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func rgbaNear(got color.RGBA, want color.RGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(got.R, want.R) <= tol && d(got.G, want.G) <= tol &&
		d(got.B, want.B) <= tol && d(got.A, want.A) <= tol
}

func newCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	cv, err := New(w, h, WithBackground(filter.Black))
	if err != nil {
		t.Fatal(err)
	}
	return cv
}

var (
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

func TestNewRejectsInvalidSize(t *testing.T) {
	sizes := [][2]int{{0, 10}, {10, 0}, {-1, 5}, {MaxDimension + 1, 10}, {10, 1 << 30}}
	for _, sz := range sizes {
		if _, err := New(sz[0], sz[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d, %d) err = %v", sz[0], sz[1], err)
		}
	}

	cv := newCanvas(t, 20, 10)
	for _, sz := range sizes {
		if err := cv.SetDimensions(sz[0], sz[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("SetDimensions(%d, %d) err = %v", sz[0], sz[1], err)
		}
	}
	if cv.Width() != 20 || cv.Height() != 10 {
		t.Errorf("size changed to %dx%d", cv.Width(), cv.Height())
	}
	if err := cv.SetDimensions(MaxDimension, 1); err != nil {
		t.Errorf("SetDimensions(MaxDimension, 1) err = %v", err)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(10, -4).Multiply(Rotate(30)).Multiply(Scale(2, 0.5))
	p := Pt(3, 7)
	q := m.Invert().TransformPoint(m.TransformPoint(p))
	if !near(p.X, q.X) || !near(p.Y, q.Y) {
		t.Errorf("inverse round trip = %v, want %v", q, p)
	}
	if Scale(0, 1).Invertible() {
		t.Error("zero scale should not be invertible")
	}
}

func TestObjectMatrixRotatesAboutCenter(t *testing.T) {
	img := NewImage(solid(10, 20, red))
	img.Angle = 90

	c := Center(img)
	if !near(c.X, 5) || !near(c.Y, 10) {
		t.Fatalf("Center = %v", c)
	}
	b := Bounds(img)
	if !near(b.X, -5) || !near(b.Y, 5) || !near(b.W, 20) || !near(b.H, 10) {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestContains(t *testing.T) {
	img := NewImage(solid(10, 10, red))
	img.Left, img.Top = 20, 20
	img.ScaleX, img.ScaleY = 2, 2

	if !Contains(img, Pt(39, 39)) {
		t.Error("point inside scaled box not contained")
	}
	if Contains(img, Pt(41, 30)) {
		t.Error("point outside box contained")
	}
}

func TestFitCenters(t *testing.T) {
	cv := newCanvas(t, 200, 100)
	img := NewImage(solid(50, 50, red))
	cv.Add(img)
	cv.Fit(img, 0.9)

	if !near(img.ScaleX, 1.8) || !near(img.ScaleY, 1.8) {
		t.Errorf("scale = %v, %v; want 1.8", img.ScaleX, img.ScaleY)
	}
	if !near(img.Left, 55) || !near(img.Top, 5) {
		t.Errorf("position = %v, %v; want 55, 5", img.Left, img.Top)
	}
}

func TestFindTarget(t *testing.T) {
	cv := newCanvas(t, 100, 100)
	bottom := NewImage(solid(100, 100, red))
	top := NewImage(solid(10, 10, blue))
	marker := NewShape(0, 0, 100, 100, nil)
	marker.Selectable = false
	cv.Add(bottom, top, marker)

	if got := cv.FindTarget(Pt(5, 5)); got != top {
		t.Errorf("FindTarget(5,5) = %v, want top image", got)
	}
	if got := cv.FindTarget(Pt(50, 50)); got != bottom {
		t.Errorf("FindTarget(50,50) = %v, want bottom image", got)
	}
	top.Visible = false
	if got := cv.FindTarget(Pt(5, 5)); got != bottom {
		t.Errorf("hidden object was hit")
	}
	if got := cv.FindTarget(Pt(500, 500)); got != nil {
		t.Errorf("FindTarget outside = %v", got)
	}
}

func TestRemoveDiscardsActive(t *testing.T) {
	cv := newCanvas(t, 10, 10)
	img := NewImage(solid(2, 2, red))
	cv.Add(img)
	if err := cv.SetActive(img); err != nil {
		t.Fatal(err)
	}
	if !cv.Remove(img) {
		t.Fatal("Remove returned false")
	}
	if cv.Active() != nil {
		t.Error("active object survived removal")
	}
	if cv.Remove(img) {
		t.Error("second Remove returned true")
	}
	if err := cv.SetActive(img); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive(removed) err = %v", err)
	}
}

func TestPointerViewport(t *testing.T) {
	cv := newCanvas(t, 10, 10)
	cv.SetViewport(Translate(4, 0).Multiply(Scale(2, 2)))
	p := cv.Pointer(10, 20)
	if !near(p.X, 3) || !near(p.Y, 10) {
		t.Errorf("Pointer = %v, want (3, 10)", p)
	}
}

func TestRenderPlacesImage(t *testing.T) {
	cv := newCanvas(t, 10, 10)
	img := NewImage(solid(4, 4, red))
	img.Left, img.Top = 2, 2
	cv.Add(img)

	out := cv.Render()
	if got := out.RGBAAt(3, 3); !rgbaNear(got, color.RGBA{255, 0, 0, 255}, 1) {
		t.Errorf("inside = %v, want red", got)
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v, want black", got)
	}
	if got := out.RGBAAt(7, 7); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("outside = %v, want black", got)
	}
}

func TestRenderOpacity(t *testing.T) {
	cv := newCanvas(t, 4, 4)
	img := NewImage(solid(4, 4, white))
	img.Opacity = 0.5
	cv.Add(img)

	got := cv.Render().RGBAAt(2, 2)
	if !rgbaNear(got, color.RGBA{128, 128, 128, 255}, 2) {
		t.Errorf("half opacity white on black = %v", got)
	}
}

func TestRenderFlipX(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)

	cv := newCanvas(t, 2, 1)
	img := NewImage(src)
	img.FlipX = true
	cv.Add(img)

	out := cv.Render()
	if got := out.RGBAAt(0, 0); !rgbaNear(got, color.RGBA{0, 0, 255, 255}, 1) {
		t.Errorf("flipped left pixel = %v, want blue", got)
	}
}

func TestRenderRelativeCircleClip(t *testing.T) {
	cv := newCanvas(t, 10, 10)
	img := NewImage(solid(10, 10, white))
	img.ClipPath = NewCircleClip(Pt(5, 5), 3, false)
	cv.Add(img)

	out := cv.Render()
	if got := out.RGBAAt(5, 5); !rgbaNear(got, color.RGBA{255, 255, 255, 255}, 1) {
		t.Errorf("center = %v, want white", got)
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("corner = %v, want clipped", got)
	}
}

func TestRenderAppliesFiltersOnlyAfterApply(t *testing.T) {
	cv := newCanvas(t, 2, 2)
	img := NewImage(solid(2, 2, white))
	cv.Add(img)

	img.AddFilter(&filter.Invert{})
	if got := cv.Render().RGBAAt(0, 0); got.R != 255 {
		t.Fatalf("filter visible before ApplyFilters: %v", got)
	}
	img.ApplyFilters()
	if got := cv.Render().RGBAAt(0, 0); got.R != 0 {
		t.Errorf("inverted white = %v, want black", got)
	}
}

func TestVisibleBoundsAbsoluteClip(t *testing.T) {
	img := NewImage(solid(100, 100, red))
	img.ClipPath = NewRectClip(Rect{X: 80, Y: 90, W: -30, H: -40})

	b := VisibleBounds(img)
	if !near(b.X, 50) || !near(b.Y, 50) || !near(b.W, 30) || !near(b.H, 40) {
		t.Errorf("VisibleBounds = %+v", b)
	}
}

func TestStripePattern(t *testing.T) {
	p := StripePattern(filter.RGB(0, 255, 0), 1, 2)
	if got := p.ColorAt(7, 0); got.G != 255 || got.A != 255 {
		t.Errorf("row 0 = %v, want green", got)
	}
	if got := p.ColorAt(7, 1); got.A != 0 {
		t.Errorf("row 1 = %v, want transparent", got)
	}
	if got := p.ColorAt(-2, 3); got.G != 255 {
		t.Errorf("row 3 = %v, want green", got)
	}

	p.Repeat = NoRepeat
	if got := p.ColorAt(0, 3); got.A != 0 {
		t.Errorf("no-repeat row 3 = %v, want transparent", got)
	}
}

func TestImagePatternRepeatModes(t *testing.T) {
	tile := solid(2, 2, red)
	tests := []struct {
		repeat Repeat
		x, y   int
		want   uint8 // alpha
	}{
		{RepeatBoth, 5, 7, 255},
		{RepeatBoth, -3, -1, 255},
		{RepeatX, 5, 1, 255},
		{RepeatX, 1, 5, 0},
		{RepeatY, 1, 5, 255},
		{RepeatY, 5, 1, 0},
		{NoRepeat, 1, 1, 255},
		{NoRepeat, 2, 0, 0},
		{"", 9, 9, 255},
	}
	for _, tt := range tests {
		p := NewImagePattern(tile, tt.repeat)
		if got := p.ColorAt(tt.x, tt.y); got.A != tt.want {
			t.Errorf("%q at (%d,%d): alpha = %d, want %d", tt.repeat, tt.x, tt.y, got.A, tt.want)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cv := newCanvas(t, 20, 16)
	src := solid(8, 6, color.NRGBA{200, 100, 50, 255})
	src.SetNRGBA(1, 1, blue)
	img := NewImage(src)
	img.Left, img.Top, img.Angle = 3, 4, 90
	img.Filters = filter.List{&filter.Contrast{Contrast: 0.2}, &filter.Invert{}}
	img.ClipPath = NewCircleClip(Pt(4, 3), 3, false)
	img.ApplyFilters()
	overlay := NewShape(0, 0, 20, 16, StripePattern(filter.RGB(0, 255, 0), 1, 1))
	overlay.Opacity = 0.3
	cv.Add(img, overlay)

	data, err := json.Marshal(cv)
	if err != nil {
		t.Fatal(err)
	}

	restored := newCanvas(t, 1, 1)
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatal(err)
	}
	if restored.Width() != 20 || restored.Height() != 16 || restored.Len() != 2 {
		t.Fatalf("restored %dx%d with %d objects", restored.Width(), restored.Height(), restored.Len())
	}
	got := restored.Images()[0]
	if got.Props != img.Props || len(got.Filters) != 2 || *got.ClipPath != *img.ClipPath {
		t.Errorf("restored image = %+v", got)
	}

	a, b := cv.Render(), restored.Render()
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("render differs at byte %d: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestUnmarshalErrorKeepsCanvas(t *testing.T) {
	cv := newCanvas(t, 10, 10)
	cv.Add(NewImage(solid(2, 2, red)))

	bad := `{"version":"1","width":10,"height":10,"background":"#000000","objects":[{"type":"image","src":"data:image/png;base64,AAAA"}]}`
	if err := json.Unmarshal([]byte(bad), cv); err == nil {
		t.Fatal("expected error for undecodable image")
	}
	if cv.Len() != 1 {
		t.Errorf("canvas changed on error: %d objects", cv.Len())
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	src := solid(3, 2, color.NRGBA{1, 2, 3, 200})
	s, err := EncodeDataURL(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeDataURL(s)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != src.Bounds() || got.NRGBAAt(2, 1) != src.NRGBAAt(2, 1) {
		t.Errorf("decoded %v %v", got.Bounds(), got.NRGBAAt(2, 1))
	}

	if _, _, err := DecodeImage([]byte("plain text")); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("DecodeImage(text) err = %v", err)
	}
	if _, err := DecodeDataURL("http://example.com/a.png"); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("DecodeDataURL(url) err = %v", err)
	}
}

// pngWithHeader encodes a 1x1 PNG and rewrites its IHDR to claim w x h.
func pngWithHeader(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data, err := EncodePNG(solid(1, 1, red))
	if err != nil {
		t.Fatal(err)
	}
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeImageRejectsOversizedHeader(t *testing.T) {
	bomb := pngWithHeader(t, 100000, 100000)
	if _, mime, err := DecodeImage(bomb); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("DecodeImage(100000x100000) err = %v", err)
	} else if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}

	tests := []struct {
		w, h      uint32
		maxPixels int
		wantErr   error
	}{
		{1, 1, 1, nil},
		{4, 4, 15, ErrImageTooLarge},
		{4, 4, 16, ErrUnsupportedImage}, // header passes, pixel data is short
	}
	for _, tt := range tests {
		_, _, err := DecodeImageLimit(pngWithHeader(t, tt.w, tt.h), tt.maxPixels)
		if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("DecodeImageLimit(%dx%d, %d) err = %v, want %v", tt.w, tt.h, tt.maxPixels, err, tt.wantErr)
		}
	}
}
