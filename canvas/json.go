package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/ggedit/filter"
)

// snapshotVersion is written to every snapshot.
const snapshotVersion = "1"

// snapshot is the serialized form of a Canvas.
type snapshot struct {
	Version    string            `json:"version"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Background filter.Color      `json:"background"`
	Objects    []json.RawMessage `json:"objects"`
}

type imageJSON struct {
	Type Kind `json:"type"`
	Props
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Src      string      `json:"src"`
	Filters  filter.List `json:"filters"`
	ClipPath *Clip       `json:"clipPath,omitempty"`
}

type shapeJSON struct {
	Type Kind `json:"type"`
	Props
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Fill        json.RawMessage `json:"fill,omitempty"`
	Stroke      filter.Color    `json:"stroke"`
	StrokeWidth float64         `json:"strokeWidth"`
	StrokeDash  []float64       `json:"strokeDashArray,omitempty"`
	Selectable  bool            `json:"selectable"`
}

type patternJSON struct {
	Source string `json:"source"`
	Repeat Repeat `json:"repeat"`
}

// MarshalJSON encodes the canvas size, background and objects. Image
// pixels are embedded as PNG data URLs.
func (c *Canvas) MarshalJSON() ([]byte, error) {
	s := snapshot{
		Version:    snapshotVersion,
		Width:      c.width,
		Height:     c.height,
		Background: c.background,
		Objects:    make([]json.RawMessage, 0, len(c.objects)),
	}
	for i, o := range c.objects {
		raw, err := marshalObject(o)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.Objects = append(s.Objects, raw)
	}
	return json.Marshal(s)
}

// UnmarshalJSON replaces the canvas content with a snapshot. On error the
// canvas is left unchanged. Filters of restored images are applied and the
// selection is discarded. The viewport is kept.
func (c *Canvas) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := checkSize(s.Width, s.Height); err != nil {
		return err
	}

	known := make(map[string]*Image)
	for _, img := range c.Images() {
		if img.src != "" {
			known[img.src] = img
		}
	}

	objs := make([]Object, 0, len(s.Objects))
	for i, raw := range s.Objects {
		o, err := unmarshalObject(raw, known)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		objs = append(objs, o)
	}

	c.width, c.height = s.Width, s.Height
	c.background = s.Background
	c.objects = objs
	c.active = nil
	if c.viewport == (Matrix{}) {
		c.viewport = Identity()
	}
	return nil
}

func marshalObject(o Object) ([]byte, error) {
	switch v := o.(type) {
	case *Image:
		src, err := v.Src()
		if err != nil {
			return nil, err
		}
		w, h := v.Size()
		return json.Marshal(imageJSON{
			Type:     KindImage,
			Props:    v.Props,
			Width:    int(w),
			Height:   int(h),
			Src:      src,
			Filters:  v.Filters,
			ClipPath: v.ClipPath,
		})
	case *Shape:
		fill, err := marshalPattern(v.Fill)
		if err != nil {
			return nil, err
		}
		return json.Marshal(shapeJSON{
			Type:        KindRect,
			Props:       v.Props,
			Width:       v.Width,
			Height:      v.Height,
			Fill:        fill,
			Stroke:      v.Stroke,
			StrokeWidth: v.StrokeWidth,
			StrokeDash:  v.StrokeDash,
			Selectable:  v.Selectable,
		})
	default:
		return nil, fmt.Errorf("unsupported object %T", o)
	}
}

func unmarshalObject(raw json.RawMessage, known map[string]*Image) (Object, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case KindImage:
		v := imageJSON{Props: DefaultProps()}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if v.ClipPath != nil {
			if err := v.ClipPath.Validate(); err != nil {
				return nil, err
			}
		}
		img := &Image{Props: v.Props, Filters: v.Filters, ClipPath: v.ClipPath, src: v.Src}
		if prev, ok := known[v.Src]; ok {
			img.element = prev.element
		} else {
			el, err := DecodeDataURL(v.Src)
			if err != nil {
				return nil, err
			}
			img.element = el
		}
		img.ApplyFilters()
		return img, nil

	case KindRect:
		v := shapeJSON{Props: DefaultProps(), Selectable: true}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fill, err := unmarshalPattern(v.Fill)
		if err != nil {
			return nil, err
		}
		return &Shape{
			Props:       v.Props,
			Width:       v.Width,
			Height:      v.Height,
			Fill:        fill,
			Stroke:      v.Stroke,
			StrokeWidth: v.StrokeWidth,
			StrokeDash:  v.StrokeDash,
			Selectable:  v.Selectable,
		}, nil

	default:
		return nil, fmt.Errorf("unknown object type %q", head.Type)
	}
}

// marshalPattern writes solid fills as a color string and image patterns
// as {"source": dataURL, "repeat": mode}.
func marshalPattern(p Pattern) (json.RawMessage, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case *SolidPattern:
		return json.Marshal(v.Color)
	case *ImagePattern:
		src, err := EncodeDataURL(v.Source)
		if err != nil {
			return nil, err
		}
		return json.Marshal(patternJSON{Source: src, Repeat: v.Repeat})
	default:
		return nil, fmt.Errorf("unsupported fill %T", p)
	}
}

func unmarshalPattern(raw json.RawMessage) (Pattern, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var col filter.Color
		if err := json.Unmarshal(raw, &col); err != nil {
			return nil, err
		}
		return NewSolidPattern(col), nil
	}
	var v patternJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	img, err := DecodeDataURL(v.Source)
	if err != nil {
		return nil, err
	}
	return NewImagePattern(img, v.Repeat), nil
}

// Load replaces the scene with a snapshot produced by MarshalJSON.
func (c *Canvas) Load(data []byte) error {
	return c.UnmarshalJSON(data)
}

// Snapshot returns the scene encoded as JSON.
func (c *Canvas) Snapshot() ([]byte, error) {
	return c.MarshalJSON()
}
