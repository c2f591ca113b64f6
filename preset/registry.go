package preset

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtin []byte

// Registry maps preset names to presets. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewRegistry returns a registry holding the given presets.
func NewRegistry(presets ...*Preset) (*Registry, error) {
	r := &Registry{presets: make(map[string]*Preset, len(presets))}
	for _, p := range presets {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a new registry with the built-in presets.
func Default() *Registry {
	r, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("preset: built-in table: %v", err))
	}
	return r
}

// Parse decodes a YAML sequence of presets into a new registry.
func Parse(data []byte) (*Registry, error) {
	var list []*Preset
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return NewRegistry(list...)
}

// Add validates p and stores it under its normalized name, replacing any
// preset of the same name. A missing title is derived from the name.
func (r *Registry) Add(p *Preset) error {
	if p == nil {
		return fmt.Errorf("%w: nil preset", ErrInvalid)
	}
	p.Name = normalizeName(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Title == "" {
		p.Title = defaultTitle(p.Name)
	}
	if p.Category == "" {
		p.Category = "custom"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.presets == nil {
		r.presets = make(map[string]*Preset)
	}
	r.presets[p.Name] = p
	return nil
}

// Lookup returns the preset with the given name. Names are matched
// case-insensitively.
func (r *Registry) Lookup(name string) (*Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[normalizeName(name)]
	return p, ok
}

// Get is like Lookup but returns ErrUnknown for a missing name.
func (r *Registry) Get(name string) (*Preset, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return p, nil
}

// Len returns the number of presets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}

// Names returns all preset names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns the presets sorted by category, then name.
func (r *Registry) All() []*Preset {
	r.mu.RLock()
	out := make([]*Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Preset) int {
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Merge copies every preset of other into r, replacing same-named ones.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	for _, p := range other.All() {
		r.mu.Lock()
		if r.presets == nil {
			r.presets = make(map[string]*Preset)
		}
		r.presets[p.Name] = p
		r.mu.Unlock()
	}
}

// LoadFile parses a YAML preset file and merges it into r. On error r is
// unchanged.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	other, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.Merge(other)
	return nil
}
