// Package properties implements the ordered, typed property bag attached to
// groups.
//
// On the wire every property value is a string. When a bag is rebuilt from
// the wire each string is sniffed into the narrowest scalar that accepts it,
// in this order: boolean literal (true/false, any case), 32-bit integer,
// double, float, and finally plain string. Writing a bag back to the wire
// emits the canonical literal of each value, so a value always re-parses to
// the same type.
package properties

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is the scalar type held by a Value.
type Type uint8

// Scalar types.
const (
	TypeString Type = iota
	TypeBool
	TypeInt
	TypeDouble
	TypeFloat
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is an immutable typed scalar. The zero Value is the empty string.
type Value struct {
	typ Type
	b   bool
	i   int32
	d   float64
	s   string
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }

// Int returns a 32-bit integer value.
func Int(i int32) Value { return Value{typ: TypeInt, i: i} }

// Double returns a double precision value.
func Double(d float64) Value { return Value{typ: TypeDouble, d: d} }

// Float returns a single precision value.
func Float(f float32) Value { return Value{typ: TypeFloat, d: float64(f)} }

// String returns a string value.
func String(s string) Value { return Value{typ: TypeString, s: s} }

// parsers run in inference order; the first to accept the literal wins.
var parsers = []func(string) (Value, bool){
	func(s string) (Value, bool) {
		switch strings.ToLower(s) {
		case "true":
			return Bool(true), true
		case "false":
			return Bool(false), true
		}
		return Value{}, false
	},
	func(s string) (Value, bool) {
		i, err := strconv.ParseInt(s, 10, 32)
		return Int(int32(i)), err == nil
	},
	func(s string) (Value, bool) {
		d, err := strconv.ParseFloat(s, 64)
		return Double(d), err == nil
	},
	func(s string) (Value, bool) {
		f, err := strconv.ParseFloat(s, 32)
		return Float(float32(f)), err == nil
	},
}

// Parse infers a typed Value from a wire literal.
func Parse(s string) Value {
	for _, parse := range parsers {
		if v, ok := parse(s); ok {
			return v
		}
	}
	return String(s)
}

// Type returns the scalar type of v.
func (v Value) Type() Type { return v.typ }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int32, bool) { return v.i, v.typ == TypeInt }

// AsDouble returns the floating point number held by v. Float values are
// widened.
func (v Value) AsDouble() (float64, bool) {
	return v.d, v.typ == TypeDouble || v.typ == TypeFloat
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.typ == TypeString }

// Any returns the native Go value held by v.
func (v Value) Any() any {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeDouble:
		return v.d
	case TypeFloat:
		return float32(v.d)
	default:
		return v.s
	}
}

// Literal returns the canonical wire literal of v. Parse(v.Literal()) yields
// a value of the same type for every type except Float, which re-parses as
// Double.
func (v Value) Literal() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeInt:
		return strconv.FormatInt(int64(v.i), 10)
	case TypeDouble:
		return floatLiteral(v.d, 64)
	case TypeFloat:
		return floatLiteral(v.d, 32)
	default:
		return v.s
	}
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Literal() }

// floatLiteral formats f so that it never reads back as an integer.
func floatLiteral(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// Equal reports whether v and o hold the same type and value. A Float and
// a Double are equal when their canonical literals match, since a Float
// re-parses from the wire as a Double.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return v.isFloating() && o.isFloating() && v.Literal() == o.Literal()
	}
	switch v.typ {
	case TypeBool:
		return v.b == o.b
	case TypeInt:
		return v.i == o.i
	case TypeDouble, TypeFloat:
		return math.Float64bits(v.d) == math.Float64bits(o.d)
	default:
		return v.s == o.s
	}
}

func (v Value) isFloating() bool { return v.typ == TypeDouble || v.typ == TypeFloat }

// MarshalJSON emits the canonical literal as a JSON scalar. Doubles keep
// their decimal point so they decode back as doubles.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeBool, TypeInt:
		return []byte(v.Literal()), nil
	case TypeDouble, TypeFloat:
		if math.IsInf(v.d, 0) || math.IsNaN(v.d) {
			return json.Marshal(v.Literal())
		}
		return []byte(v.Literal()), nil
	default:
		return json.Marshal(v.s)
	}
}

// MarshalYAML emits the canonical literal tagged with its YAML type.
func (v Value) MarshalYAML() (any, error) {
	tag := "!!str"
	switch v.typ {
	case TypeBool:
		tag = "!!bool"
	case TypeInt:
		tag = "!!int"
	case TypeDouble, TypeFloat:
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Literal()}, nil
}
