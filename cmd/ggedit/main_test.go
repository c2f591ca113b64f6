package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/canvas"
)

// writeConfig writes a small config so tests never read the user's file.
func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas]\nwidth = 200\nheight = 100\n"), 0o644))
	return path
}

func writePhoto(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{200, 40, 90, 255})
	}
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 20,30,40.5")
	require.NoError(t, err)
	assert.Equal(t, canvas.Rect{X: 10, Y: 20, W: 30, H: 40.5}, r)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		_, err := parseRect(bad)
		assert.ErrorIs(t, err, ggedit.ErrInvalidArgument, bad)
	}
}

func TestApplyWritesCanvas(t *testing.T) {
	cfg := writeConfig(t)
	in := writePhoto(t, 40, 20)
	out := filepath.Join(t.TempDir(), "out.png")

	msg, err := run(t, "--config", cfg, "apply", in, "-o", out,
		"--preset", "cyberpunk", "--filter", "invert", "--rotate", "90", "--flip", "h")
	require.NoError(t, err, msg)
	assert.Contains(t, msg, "wrote "+out)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 100), img.Bounds().Size())
}

func TestApplyImageOnlyCrop(t *testing.T) {
	cfg := writeConfig(t)
	in := writePhoto(t, 40, 20)
	out := filepath.Join(t.TempDir(), "crop.png")

	msg, err := run(t, "--config", cfg, "apply", in, "-o", out, "--crop", "50,20,100,60", "--image-only")
	require.NoError(t, err, msg)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 60), img.Bounds().Size())
}

func TestApplyErrors(t *testing.T) {
	cfg := writeConfig(t)
	in := writePhoto(t, 10, 10)
	out := filepath.Join(t.TempDir(), "x.png")

	_, err := run(t, "--config", cfg, "apply", in, "-o", out, "--preset", "nope")
	assert.ErrorIs(t, err, ggedit.ErrUnknownPreset)

	_, err = run(t, "--config", cfg, "apply", in, "-o", out, "--crop", "5,5,0,0")
	assert.ErrorIs(t, err, ggedit.ErrInvalidArgument)

	_, err = run(t, "--config", cfg, "apply", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "--config", cfg, "--log-level", "loud", "presets")
	assert.Error(t, err)
}

func TestPresetsList(t *testing.T) {
	msg, err := run(t, "--config", writeConfig(t), "presets")
	require.NoError(t, err)
	assert.Contains(t, msg, "NAME")
	assert.Contains(t, msg, "cyberpunk")
	assert.Contains(t, msg, "Black & White")
}
