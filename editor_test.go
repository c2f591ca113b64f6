package ggedit

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/filter"
)

// testPhoto returns an opaque w x h image with a color ramp.
func testPhoto(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

// newTestEditor returns a 200x100 editor with no image.
func newTestEditor(t testing.TB) *Editor {
	t.Helper()
	e, err := NewEditor(WithSize(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// loadedEditor returns a 200x100 editor with a 40x20 photo: scale 4.5,
// on-canvas box (10, 5, 180, 90).
func loadedEditor(t *testing.T) *Editor {
	t.Helper()
	e := newTestEditor(t)
	require.NoError(t, e.LoadImage(testPhoto(40, 20)))
	return e
}

func TestNewEditorRejectsBadSize(t *testing.T) {
	_, err := NewEditor(WithSize(0, 10))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewEditor(WithSize(DefaultMaxDimension+1, 10))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewEditor(WithSize(300, 100), WithMaxDimension(200))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// oversizedPNG returns a valid PNG header claiming w x h pixels.
func oversizedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data, err := canvas.EncodePNG(testPhoto(1, 1))
	require.NoError(t, err)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestLoadRejectsTooManyPixels(t *testing.T) {
	e := loadedEditor(t)
	err := e.Load(bytes.NewReader(oversizedPNG(t, 100000, 100000)))
	assert.ErrorIs(t, err, canvas.ErrImageTooLarge)
	assert.True(t, e.State().HasImage, "failed load keeps the previous image")

	small, err := NewEditor(WithSize(200, 100), WithMaxImagePixels(50))
	require.NoError(t, err)
	data, err := canvas.EncodePNG(testPhoto(10, 10))
	require.NoError(t, err)
	assert.ErrorIs(t, small.Load(bytes.NewReader(data)), canvas.ErrImageTooLarge)

	data, err = canvas.EncodePNG(testPhoto(5, 10))
	require.NoError(t, err)
	assert.NoError(t, small.Load(bytes.NewReader(data)))
}

func TestOperationsWithoutImage(t *testing.T) {
	e := newTestEditor(t)

	assert.ErrorIs(t, e.ApplyFilter("blur"), ErrNoImage)
	assert.ErrorIs(t, e.ApplyPreset("cyberpunk"), ErrNoImage)
	assert.ErrorIs(t, e.Rotate(90), ErrNoImage)
	assert.ErrorIs(t, e.Flip(Horizontal), ErrNoImage)
	assert.ErrorIs(t, e.CircleCrop(), ErrNoImage)
	assert.ErrorIs(t, e.SetAdjustment(AdjustBrightness, 0.2), ErrNoImage)
	_, err := e.StartCrop()
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, e.ExportImage(&bytes.Buffer{}), ErrNoImage)

	assert.False(t, e.CanUndo())
	st := e.State()
	assert.False(t, st.HasImage)
	assert.Zero(t, st.Objects)

	// The empty canvas still renders and exports.
	require.NoError(t, e.Export(&bytes.Buffer{}))
}

func TestLoadImageFitsAndCenters(t *testing.T) {
	e := loadedEditor(t)
	st := e.State()

	require.True(t, st.HasImage)
	assert.Equal(t, 1, st.Objects)
	assert.InDelta(t, 4.5, st.Image.Scale, 1e-9)
	assert.Equal(t, canvas.Rect{X: 10, Y: 5, W: 180, H: 90}, st.Image.Bounds)
	assert.False(t, st.CanUndo, "load does not create history")
}

func TestLoadDecodesBytes(t *testing.T) {
	e := newTestEditor(t)
	data, err := canvas.EncodePNG(testPhoto(10, 10))
	require.NoError(t, err)
	require.NoError(t, e.Load(bytes.NewReader(data)))
	assert.True(t, e.State().HasImage)

	err = e.Load(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, canvas.ErrUnsupportedImage)
	assert.True(t, e.State().HasImage, "failed load keeps the previous image")
}

func TestLoadResetsHistory(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Rotate(90))
	require.True(t, e.CanUndo())

	require.NoError(t, e.LoadImage(testPhoto(8, 8)))
	assert.False(t, e.CanUndo())
	assert.Equal(t, 1, e.State().Objects)
}

func TestApplyFilterUndoRedo(t *testing.T) {
	e := loadedEditor(t)

	require.NoError(t, e.ApplyFilter("invert"))
	assert.Equal(t, []string{"Invert"}, e.State().Image.Filters)
	assert.True(t, e.CanUndo())

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, e.State().Image.Filters)
	assert.True(t, e.CanRedo())

	ok, err = e.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Invert"}, e.State().Image.Filters)

	ok, err = e.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyFilterUnknown(t *testing.T) {
	e := loadedEditor(t)
	assert.ErrorIs(t, e.ApplyFilter("swirl"), ErrUnknownFilter)
	assert.False(t, e.CanUndo(), "failed operation must not snapshot")
}

func TestApplyFilterChangesPixels(t *testing.T) {
	e := loadedEditor(t)
	before := e.Render().RGBAAt(100, 50)
	require.NoError(t, e.ApplyFilter("invert"))
	after := e.Render().RGBAAt(100, 50)
	assert.InDelta(t, 255-int(before.R), int(after.R), 2)
}

func TestApplyPresetAppends(t *testing.T) {
	e := loadedEditor(t)

	require.NoError(t, e.ApplyPreset("cyberpunk"))
	assert.Equal(t, []string{"BlendColor", "BlendColor", "Contrast", "Brightness"}, e.State().Image.Filters)

	require.NoError(t, e.ApplyPreset("Neon"))
	assert.Len(t, e.State().Image.Filters, 8)

	err := e.ApplyPreset("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, []string{"preset cyberpunk", "preset neon"}, e.State().History)
}

func TestApplyPresetReplace(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.ApplyPreset("vintage"))
	require.NoError(t, e.ApplyPreset("reset"))
	assert.Empty(t, e.State().Image.Filters)
}

func TestOverlayPresetAddsShape(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.ApplyPreset("scanline"))
	assert.Equal(t, 2, e.State().Objects)

	// The overlay does not capture pointer hits.
	assert.True(t, e.Select(100, 50))
	assert.True(t, e.State().HasImage)

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, e.State().Objects)
}

func TestRotateNormalizesAngle(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Rotate(-90))
	assert.Equal(t, 270.0, e.State().Image.Angle)
	require.NoError(t, e.Rotate(450))
	assert.Equal(t, 0.0, e.State().Image.Angle)
	assert.Len(t, e.State().History, 2)
}

func TestFlipToggles(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Flip(Horizontal))
	require.NoError(t, e.Flip(Vertical))
	st := e.State()
	assert.True(t, st.Image.FlipX)
	assert.True(t, st.Image.FlipY)

	require.NoError(t, e.Flip(Horizontal))
	assert.False(t, e.State().Image.FlipX)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("v")
	require.NoError(t, err)
	assert.Equal(t, Vertical, a)
	_, err = ParseAxis("diagonal")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCircleCrop(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.CircleCrop())

	st := e.State()
	assert.Equal(t, "circle", st.Image.Clip)
	assert.Equal(t, canvas.Rect{X: 55, Y: 5, W: 90, H: 90}, st.Image.Bounds)

	var buf bytes.Buffer
	require.NoError(t, e.ExportImage(&buf))
	out, err := imaging.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(90, 90), out.Bounds().Size())
}

func TestCropGesture(t *testing.T) {
	e := loadedEditor(t)

	on, err := e.StartCrop()
	require.NoError(t, err)
	require.True(t, on)

	assert.True(t, e.PointerDown(150, 80))
	assert.True(t, e.PointerMove(60, 30))
	st := e.State()
	assert.True(t, st.Dragging)
	assert.Equal(t, 2, st.Objects, "selection marker is on the canvas")
	assert.Equal(t, &canvas.Rect{X: 60, Y: 30, W: 90, H: 50}, st.Selection)

	r, applied, err := e.PointerUp(50, 20)
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, canvas.Rect{X: 50, Y: 20, W: 100, H: 60}, r)

	st = e.State()
	assert.False(t, st.Cropping)
	assert.Equal(t, 1, st.Objects)
	assert.Equal(t, "rect", st.Image.Clip)
	assert.Equal(t, canvas.Rect{X: 50, Y: 20, W: 100, H: 60}, st.Image.Bounds)
	assert.Equal(t, []string{"crop"}, st.History)

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, e.State().Image.Clip)
}

func TestCropZeroAreaCancels(t *testing.T) {
	e := loadedEditor(t)
	_, err := e.StartCrop()
	require.NoError(t, err)
	e.PointerDown(30, 30)

	_, applied, err := e.PointerUp(30, 30)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, e.CanUndo())
	assert.Equal(t, 1, e.State().Objects)
	assert.False(t, e.Cropping())
}

func TestPointerIgnoredWhenNotCropping(t *testing.T) {
	e := loadedEditor(t)
	assert.False(t, e.PointerDown(10, 10))
	assert.False(t, e.PointerMove(20, 20))
	_, applied, err := e.PointerUp(20, 20)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestStartCropTwiceCancels(t *testing.T) {
	e := loadedEditor(t)
	on, _ := e.StartCrop()
	require.True(t, on)
	e.PointerDown(10, 10)

	on, err := e.StartCrop()
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 1, e.State().Objects, "marker removed on cancel")
}

func TestSetAdjustmentReplaces(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.SetAdjustment(AdjustBrightness, 0.2))
	require.NoError(t, e.SetAdjustment(AdjustContrast, 0.1))
	require.NoError(t, e.SetAdjustment(AdjustBrightness, 0.4))

	assert.Equal(t, []string{"Contrast", "Brightness"}, e.State().Image.Filters)
	assert.False(t, e.CanUndo(), "sliders do not record history")

	assert.ErrorIs(t, e.SetAdjustment(AdjustContrast, 2), ErrInvalidArgument)
	assert.ErrorIs(t, e.SetAdjustment("gamma", 0.1), ErrInvalidArgument)
}

func TestUndoRestoresSnapshotBytes(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.ApplyPreset("matrix"))
	before, err := e.Snapshot()
	require.NoError(t, err)

	require.NoError(t, e.Rotate(45))
	require.NoError(t, e.CircleCrop())
	_, err = e.Undo()
	require.NoError(t, err)
	_, err = e.Undo()
	require.NoError(t, err)

	after, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestResizeRefitsAndMovesClip(t *testing.T) {
	e := loadedEditor(t)
	_, err := e.StartCrop()
	require.NoError(t, err)
	e.PointerDown(50, 20)
	_, applied, err := e.PointerUp(150, 80)
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, e.Resize(400, 200))
	st := e.State()
	assert.Equal(t, 400, st.Width)
	assert.InDelta(t, 9, st.Image.Scale, 1e-9)

	b := st.Image.Bounds
	assert.InDelta(t, 100, b.X, 1e-9)
	assert.InDelta(t, 40, b.Y, 1e-9)
	assert.InDelta(t, 200, b.W, 1e-9)
	assert.InDelta(t, 120, b.H, 1e-9)

	assert.ErrorIs(t, e.Resize(0, 10), ErrInvalidArgument)
}

func TestResizeLimit(t *testing.T) {
	e, err := NewEditor(WithSize(200, 100), WithMaxDimension(1000))
	require.NoError(t, err)
	require.NoError(t, e.LoadImage(testPhoto(40, 20)))

	for _, sz := range [][2]int{{1001, 10}, {10, 1 << 30}, {-5, 10}} {
		assert.ErrorIs(t, e.Resize(sz[0], sz[1]), ErrInvalidArgument, "%dx%d", sz[0], sz[1])
	}
	st := e.State()
	assert.Equal(t, 200, st.Width)
	assert.Equal(t, 100, st.Height)

	require.NoError(t, e.Resize(1000, 1000))
	assert.Equal(t, image.Rect(0, 0, 1000, 1000), e.Render().Bounds())
}

func TestUndoBadRecordKeepsHistory(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Rotate(90))
	e.history.Save("corrupt", []byte("{"))
	before, err := e.Snapshot()
	require.NoError(t, err)
	undo, redo := e.history.Len()

	ok, err := e.Undo()
	assert.False(t, ok)
	assert.Error(t, err)

	u, r := e.history.Len()
	assert.Equal(t, undo, u)
	assert.Equal(t, redo, r)
	assert.Equal(t, []string{"rotate", "corrupt"}, e.history.Actions())
	after, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestExportSizes(t *testing.T) {
	e := loadedEditor(t)

	data, err := e.ExportPNG()
	require.NoError(t, err)
	full, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 100), full.Bounds().Size())

	var buf bytes.Buffer
	require.NoError(t, e.ExportImage(&buf))
	only, err := imaging.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(180, 90), only.Bounds().Size())
	assert.Equal(t, DefaultExportName, e.ExportName())
}

func TestSelectMiss(t *testing.T) {
	e := loadedEditor(t)
	assert.False(t, e.Select(1, 1))
	// Operations fall back to the first image.
	require.NoError(t, e.Rotate(90))
}

func TestZoomScalesPointer(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.SetZoom(2))
	// Client (16,8) is canvas (8,4), left of the image at zoom 2.
	assert.False(t, e.Select(16, 8))
	assert.True(t, e.Select(100, 40))
	assert.ErrorIs(t, e.SetZoom(0), ErrInvalidArgument)
}

func TestHistoryLimit(t *testing.T) {
	e, err := NewEditor(WithSize(50, 50), WithHistoryLimit(2))
	require.NoError(t, err)
	require.NoError(t, e.LoadImage(testPhoto(5, 5)))
	for range 4 {
		require.NoError(t, e.Rotate(90))
	}
	assert.Len(t, e.State().History, 2)
}

func TestWithPresets(t *testing.T) {
	e, err := NewEditor(WithSize(50, 50), WithPresets(nil), WithFitRatio(2), WithExportName(""))
	require.NoError(t, err)
	assert.NotNil(t, e.Presets(), "nil registry falls back to the built-in one")
	assert.Equal(t, DefaultExportName, e.ExportName())
	assert.Equal(t, DefaultFitRatio, e.opts.fitRatio, "out-of-range fit ratio ignored")
}

func TestConcurrentUse(t *testing.T) {
	e := loadedEditor(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = e.Rotate(90)
			} else {
				_ = e.State()
				_ = e.SetAdjustment(AdjustContrast, 0.1)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, e.State().History, 4)
}

func TestBackgroundOption(t *testing.T) {
	e, err := NewEditor(WithSize(4, 4), WithBackground(filter.RGB(255, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, e.Render().RGBAAt(0, 0))
}
