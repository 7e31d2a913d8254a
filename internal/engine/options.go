package engine

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Options is an opaque formatting options document. Its schema is owned
// by the component that computes options; this package only reads and
// overlays individual fields.
//
// Options values are immutable: With returns a new value and never
// modifies the receiver, so callers may safely reuse an Options across
// format calls.
type Options struct {
	raw string
}

// ParseOptions validates a JSON options document. Empty input yields an
// empty document.
func ParseOptions(s string) (Options, error) {
	if s == "" {
		return Options{}, nil
	}
	if !gjson.Valid(s) {
		return Options{}, fmt.Errorf("%w: %q", ErrInvalidOptions, s)
	}
	return Options{raw: s}, nil
}

// JSON returns the options document. The zero value yields "{}".
func (o Options) JSON() string {
	if o.raw == "" {
		return "{}"
	}
	return o.raw
}

// Get reads a field by gjson path.
func (o Options) Get(path string) gjson.Result {
	return gjson.Get(o.JSON(), path)
}

// With returns a copy of the options with path set to value, overriding
// any prior value at that path.
func (o Options) With(path string, value any) (Options, error) {
	raw, err := sjson.Set(o.JSON(), path, value)
	if err != nil {
		return Options{}, fmt.Errorf("set option %q: %w", path, err)
	}
	return Options{raw: raw}, nil
}

// Merge returns the receiver overridden by overlay: every top-level
// field of overlay replaces the field of the same name in the receiver.
// Neither input is modified.
func (o Options) Merge(overlay Options) (Options, error) {
	merged := o.JSON()
	var err error
	gjson.Parse(overlay.JSON()).ForEach(func(key, value gjson.Result) bool {
		merged, err = sjson.SetRaw(merged, key.String(), value.Raw)
		return err == nil
	})
	if err != nil {
		return Options{}, fmt.Errorf("merge options: %w", err)
	}
	return Options{raw: merged}, nil
}
