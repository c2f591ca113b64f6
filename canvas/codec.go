package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"

	// Formats beyond those imaging registers.
	_ "golang.org/x/image/webp"
)

// Decoding errors.
var (
	ErrUnsupportedImage = errors.New("canvas: unsupported image data")
	ErrImageTooLarge    = errors.New("canvas: image too large")
)

// DefaultMaxPixels bounds the decoded size of an image (width * height).
const DefaultMaxPixels = 40_000_000

const dataURLPrefix = "data:"

// DecodeImage sniffs and decodes raster image bytes (PNG, JPEG, GIF, BMP,
// TIFF or WebP). EXIF orientation is applied. It returns the MIME type.
// Images above DefaultMaxPixels are rejected.
func DecodeImage(data []byte) (*image.NRGBA, string, error) {
	return DecodeImageLimit(data, DefaultMaxPixels)
}

// DecodeImageLimit is DecodeImage with an explicit pixel limit. The header
// is checked before any pixel data is decoded. maxPixels <= 0 means
// DefaultMaxPixels.
func DecodeImageLimit(data []byte, maxPixels int) (*image.NRGBA, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if !filetype.IsImage(data) {
		return nil, "", ErrUnsupportedImage
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, kind.MIME.Value, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, kind.MIME.Value, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, kind.MIME.Value, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, kind.MIME.Value, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, kind.MIME.Value, err)
	}
	return toNRGBA(img), kind.MIME.Value, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeDataURL encodes img as a base64 PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL decodes a base64 image data URL of any supported format.
func DecodeDataURL(s string) (*image.NRGBA, error) {
	data, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(data)
	return img, err
}

// ParseDataURL returns the payload of a base64 data URL.
func ParseDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, fmt.Errorf("%w: not a data URL", ErrUnsupportedImage)
	}
	meta, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64", ErrUnsupportedImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return data, nil
}
