package filter

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when decoding a filter with an unknown "type".
var ErrUnknownType = errors.New("filter: unknown type")

// List is an ordered filter stack. It encodes to JSON as an array of
// objects, each carrying a "type" discriminator next to its parameters:
//
//	[{"type":"Contrast","contrast":0.3},{"type":"Invert"}]
type List []Filter

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for i, f := range l {
		raw, err := MarshalOne(f)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		f, err := UnmarshalOne(raw)
		if err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
		out = append(out, f)
	}
	*l = out
	return nil
}

// Clone returns a deep copy of the list. Filters that cannot be encoded
// are shared with the original.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	data, err := l.MarshalJSON()
	if err != nil {
		out := make(List, len(l))
		copy(out, l)
		return out
	}
	var out List
	if err := out.UnmarshalJSON(data); err != nil {
		out = make(List, len(l))
		copy(out, l)
	}
	return out
}

// Without returns the list with every filter of type t removed.
func (l List) Without(t Type) List {
	out := make(List, 0, len(l))
	for _, f := range l {
		if f.Type() != t {
			out = append(out, f)
		}
	}
	return out
}

// Marshal encodes filters as a JSON array.
func Marshal(filters []Filter) ([]byte, error) {
	return List(filters).MarshalJSON()
}

// Unmarshal decodes a JSON array produced by Marshal.
func Unmarshal(data []byte) ([]Filter, error) {
	var l List
	if err := l.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return l, nil
}

// MarshalOne encodes a single filter as a JSON object with a "type" field.
func MarshalOne(f Filter) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil filter", ErrUnknownType)
	}
	params, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(params, &fields); err != nil {
		return nil, err
	}
	name, err := json.Marshal(f.Type().String())
	if err != nil {
		return nil, err
	}
	fields["type"] = name
	return json.Marshal(fields)
}

// UnmarshalOne decodes a single filter object and validates it.
func UnmarshalOne(data []byte) (Filter, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	t, ok := ParseType(head.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
	f := New(t)
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	return f, nil
}

// FromMap builds a filter from a generic parameter map such as one decoded
// from YAML. The map must contain a "type" key.
func FromMap(m map[string]any) (Filter, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return UnmarshalOne(data)
}
