package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/polocloud/polocloud/pkg/fault"
)

// Reader reads typed fields from a Document and records the first failure.
// Once a failure is recorded every further getter returns a zero value.
type Reader struct {
	entity string
	prefix string
	doc    Document
	err    *error
}

// Read returns a Reader over d. entity names the entity kind in errors.
func Read(entity string, d Document) *Reader {
	var err error
	return &Reader{entity: entity, doc: d, err: &err}
}

// Err returns the first schema violation encountered, if any.
func (r *Reader) Err() error {
	return *r.err
}

func (r *Reader) path(key string) string {
	return r.prefix + key
}

func (r *Reader) fail(err error) {
	if *r.err == nil {
		*r.err = err
	}
}

func (r *Reader) missing(key string) {
	r.fail(fault.MissingField(r.entity, r.path(key)))
}

func (r *Reader) malformed(key string, err error) {
	r.fail(fault.BadField(r.entity, r.path(key), err))
}

// lookup returns the value under key. A nil value counts as absent.
func (r *Reader) lookup(key string) (any, bool) {
	if *r.err != nil {
		return nil, false
	}
	v, ok := r.doc[key]
	return v, ok && v != nil
}

// Has reports whether key holds a non-null value.
func (r *Reader) Has(key string) bool {
	v, ok := r.doc[key]
	return ok && v != nil
}

// String reads a required string field.
func (r *Reader) String(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		r.missing(key)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.malformed(key, fmt.Errorf("expected string, got %T", v))
	}
	return s
}

// OptString reads an optional string field.
func (r *Reader) OptString(key, def string) string {
	if !r.Has(key) {
		return def
	}
	return r.String(key)
}

// Int64 reads a required integer field.
func (r *Reader) Int64(key string) int64 {
	v, ok := r.lookup(key)
	if !ok {
		r.missing(key)
		return 0
	}
	i, err := toInt64(v)
	if err != nil {
		r.malformed(key, err)
	}
	return i
}

// OptInt64 reads an optional integer field.
func (r *Reader) OptInt64(key string, def int64) int64 {
	if !r.Has(key) {
		return def
	}
	return r.Int64(key)
}

// Int32 reads a required 32-bit integer field.
func (r *Reader) Int32(key string) int32 {
	i := r.Int64(key)
	if i < math.MinInt32 || i > math.MaxInt32 {
		r.malformed(key, fmt.Errorf("%d overflows int32", i))
		return 0
	}
	return int32(i)
}

// OptInt32 reads an optional 32-bit integer field.
func (r *Reader) OptInt32(key string, def int32) int32 {
	if !r.Has(key) {
		return def
	}
	return r.Int32(key)
}

// Float64 reads a required numeric field.
func (r *Reader) Float64(key string) float64 {
	v, ok := r.lookup(key)
	if !ok {
		r.missing(key)
		return 0
	}
	f, err := toFloat64(v)
	if err != nil {
		r.malformed(key, err)
	}
	return f
}

// OptFloat64 reads an optional numeric field.
func (r *Reader) OptFloat64(key string, def float64) float64 {
	if !r.Has(key) {
		return def
	}
	return r.Float64(key)
}

// Object returns a Reader over a required nested document. Failures inside
// it are reported with a dotted path and surface through r.Err.
func (r *Reader) Object(key string) *Reader {
	child := &Reader{entity: r.entity, prefix: r.path(key) + ".", err: r.err}
	v, ok := r.lookup(key)
	if !ok {
		r.missing(key)
		return child
	}
	d, ok := asDocument(v)
	if !ok {
		r.malformed(key, fmt.Errorf("expected object, got %T", v))
		return child
	}
	child.doc = d
	return child
}

// OptObject returns a Reader over an optional nested document, or nil when
// the key is absent.
func (r *Reader) OptObject(key string) *Reader {
	if !r.Has(key) {
		return nil
	}
	return r.Object(key)
}

// Map returns an optional nested document as a plain map.
func (r *Reader) Map(key string) map[string]any {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	d, ok := asDocument(v)
	if !ok {
		r.malformed(key, fmt.Errorf("expected object, got %T", v))
		return nil
	}
	return d
}

// List returns an optional list field.
func (r *Reader) List(key string) []any {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = d
		}
		return out
	}
	r.malformed(key, fmt.Errorf("expected list, got %T", v))
	return nil
}

// Each calls fn with a Reader over every object in an optional list field.
func (r *Reader) Each(key string, fn func(*Reader)) {
	for i, v := range r.List(key) {
		item := &Reader{entity: r.entity, prefix: fmt.Sprintf("%s[%d].", r.path(key), i), err: r.err}
		d, ok := asDocument(v)
		if !ok {
			r.malformed(fmt.Sprintf("%s[%d]", key, i), fmt.Errorf("expected object, got %T", v))
			return
		}
		item.doc = d
		fn(item)
		if *r.err != nil {
			return
		}
	}
}

// Strings reads an optional list of strings.
func (r *Reader) Strings(key string) []string {
	list := r.List(key)
	out := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			r.malformed(fmt.Sprintf("%s[%d]", key, i), fmt.Errorf("expected string, got %T", v))
			return nil
		}
		out = append(out, s)
	}
	return out
}

func asDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	}
	return nil, false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return strconv.ParseInt(string(n), 10, 64)
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}
