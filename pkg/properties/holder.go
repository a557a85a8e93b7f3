package properties

import (
	"iter"
	"maps"
	"slices"
)

// Holder is an insertion-ordered map from key to typed Value.
// The zero Holder is empty and ready to use. A Holder is not safe for
// concurrent mutation; entities hand out clones.
type Holder struct {
	keys   []string
	values map[string]Value
}

// New returns an empty Holder.
func New() *Holder {
	return &Holder{values: make(map[string]Value)}
}

// FromStrings builds a Holder from a wire string map, inferring a typed
// value for each entry. Keys are inserted in sorted order since wire maps
// carry no order.
func FromStrings(m map[string]string) *Holder {
	h := New()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		h.Set(k, Parse(m[k]))
	}
	return h
}

// Set stores value under key. An existing key keeps its position.
func (h *Holder) Set(key string, value Value) *Holder {
	if h.values == nil {
		h.values = make(map[string]Value)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
	return h
}

// Raw stores the value inferred from a wire literal under key.
func (h *Holder) Raw(key, literal string) *Holder {
	return h.Set(key, Parse(literal))
}

// Get returns the value stored under key.
func (h *Holder) Get(key string) (Value, bool) {
	if h == nil {
		return Value{}, false
	}
	v, ok := h.values[key]
	return v, ok
}

// Has reports whether key is present.
func (h *Holder) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (h *Holder) Delete(key string) bool {
	if h == nil {
		return false
	}
	if _, ok := h.values[key]; !ok {
		return false
	}
	delete(h.values, key)
	h.keys = slices.DeleteFunc(h.keys, func(k string) bool { return k == key })
	return true
}

// Len returns the number of entries.
func (h *Holder) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Keys returns the keys in insertion order.
func (h *Holder) Keys() []string {
	if h == nil {
		return nil
	}
	return slices.Clone(h.keys)
}

// All iterates over entries in insertion order.
func (h *Holder) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if h == nil {
			return
		}
		for _, k := range h.keys {
			if !yield(k, h.values[k]) {
				return
			}
		}
	}
}

// Strings returns the wire form: every value as its canonical literal.
func (h *Holder) Strings() map[string]string {
	out := make(map[string]string, h.Len())
	for k, v := range h.All() {
		out[k] = v.Literal()
	}
	return out
}

// Map returns the entries as native Go values.
func (h *Holder) Map() map[string]any {
	out := make(map[string]any, h.Len())
	for k, v := range h.All() {
		out[k] = v.Any()
	}
	return out
}

// Clone returns an independent copy of h.
func (h *Holder) Clone() *Holder {
	c := &Holder{values: make(map[string]Value, h.Len())}
	if h == nil {
		return c
	}
	c.keys = slices.Clone(h.keys)
	maps.Copy(c.values, h.values)
	return c
}

// Equal reports whether h and o hold the same entries. Order is ignored.
func (h *Holder) Equal(o *Holder) bool {
	if h.Len() != o.Len() {
		return false
	}
	for k, v := range h.All() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Bool returns the boolean stored under key.
func (h *Holder) Bool(key string) (bool, bool) {
	v, ok := h.Get(key)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// Int returns the integer stored under key.
func (h *Holder) Int(key string) (int32, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// Double returns the floating point number stored under key.
func (h *Holder) Double(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsDouble()
}

// String returns the string stored under key.
func (h *Holder) String(key string) (string, bool) {
	v, ok := h.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}
