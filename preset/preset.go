// Package preset holds named filter stacks ("effects") as data.
//
// The built-in table is embedded from presets.yaml. A Registry can merge
// additional YAML files and reload them when they change on disk.
package preset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/filter"
)

// Errors returned by the package.
var (
	ErrUnknown = errors.New("preset: unknown preset")
	ErrInvalid = errors.New("preset: invalid preset")
)

// Preset is a named, ordered list of filter steps with an optional
// full-canvas overlay.
type Preset struct {
	Name     string   `yaml:"name" json:"name"`
	Title    string   `yaml:"title,omitempty" json:"title"`
	Category string   `yaml:"category,omitempty" json:"category"`
	Steps    Steps    `yaml:"steps,omitempty" json:"steps"`
	Overlay  *Overlay `yaml:"overlay,omitempty" json:"overlay,omitempty"`

	// Replace swaps the image's filter stack for Steps instead of
	// appending to it.
	Replace bool `yaml:"replace,omitempty" json:"replace,omitempty"`
}

// Filters returns fresh copies of the preset's filters.
func (p *Preset) Filters() filter.List {
	return filter.List(p.Steps).Clone()
}

// Validate checks the name and the overlay. Steps are validated when
// decoded.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if len(p.Steps) == 0 && p.Overlay == nil && !p.Replace {
		return fmt.Errorf("%w: %s: no steps and no overlay", ErrInvalid, p.Name)
	}
	if p.Overlay != nil {
		if err := p.Overlay.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, p.Name, err)
		}
	}
	return nil
}

// normalizeName lower-cases and trims a preset name for lookup.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var titler = cases.Title(language.English)

// defaultTitle derives a display title from a name such as "blade-runner".
func defaultTitle(name string) string {
	return titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

// Steps is a filter list that decodes from YAML as a sequence of maps,
// each with a "type" key and the filter's parameters.
type Steps filter.List

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Steps) UnmarshalYAML(value *yaml.Node) error {
	var raw []map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	out := make(Steps, 0, len(raw))
	for i, m := range raw {
		f, err := filter.FromMap(m)
		if err != nil {
			return fmt.Errorf("step %d (line %d): %w", i, value.Line, err)
		}
		out = append(out, f)
	}
	*s = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Steps) MarshalYAML() (any, error) {
	data, err := filter.List(s).MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (s Steps) MarshalJSON() ([]byte, error) {
	return filter.List(s).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Steps) UnmarshalJSON(data []byte) error {
	var l filter.List
	if err := l.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = Steps(l)
	return nil
}

// OverlayKind names a built-in overlay pattern.
type OverlayKind string

// Overlay kinds.
const (
	OverlayScanline OverlayKind = "scanline"
	OverlayHologram OverlayKind = "hologram"
	OverlayGrid     OverlayKind = "grid"
)

// Overlay is a pattern-filled rectangle laid over the whole canvas.
type Overlay struct {
	Kind    OverlayKind   `yaml:"kind" json:"kind"`
	Color   *filter.Color `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity float64       `yaml:"opacity" json:"opacity"`
	Repeat  canvas.Repeat `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// overlayColors are the stripe colors used when Overlay.Color is unset.
var overlayColors = map[OverlayKind]filter.Color{
	OverlayScanline: {A: 128},
	OverlayHologram: {G: 255, B: 255, A: 128},
	OverlayGrid:     {G: 255, B: 255, A: 153},
}

// Validate checks the kind and opacity.
func (o *Overlay) Validate() error {
	if _, ok := overlayColors[o.Kind]; !ok {
		return fmt.Errorf("overlay kind %q", o.Kind)
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		return fmt.Errorf("overlay opacity %v (must be in (0, 1])", o.Opacity)
	}
	switch o.Repeat {
	case "", canvas.RepeatBoth, canvas.RepeatX, canvas.RepeatY, canvas.NoRepeat:
	default:
		return fmt.Errorf("overlay repeat %q", o.Repeat)
	}
	return nil
}

// Pattern returns the overlay's tile.
//
//	scanline: 1x4, two colored rows then two clear rows
//	hologram: 1x4, one colored row then three clear rows
//	grid:     8x8, colored first row and first column
func (o *Overlay) Pattern() *canvas.ImagePattern {
	c := overlayColors[o.Kind]
	if o.Color != nil {
		c = *o.Color
	}

	var p *canvas.ImagePattern
	switch o.Kind {
	case OverlayHologram:
		p = canvas.StripePattern(c, 1, 3)
	case OverlayGrid:
		p = canvas.GridPattern(c, 8)
	default:
		p = canvas.StripePattern(c, 2, 2)
	}
	if o.Repeat != "" {
		p.Repeat = o.Repeat
	}
	return p
}

// Shape returns the overlay rectangle covering a w x h canvas. It is not
// selectable so hit testing passes through to the image below.
func (o *Overlay) Shape(w, h int) *canvas.Shape {
	s := canvas.NewShape(0, 0, float64(w), float64(h), o.Pattern())
	s.Opacity = o.Opacity
	s.Selectable = false
	return s
}
