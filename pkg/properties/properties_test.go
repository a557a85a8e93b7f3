package properties

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseInference(t *testing.T) {
	tests := []struct {
		literal string
		want    Value
	}{
		{"true", Bool(true)},
		{"FALSE", Bool(false)},
		{"True", Bool(true)},
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"2147483647", Int(math.MaxInt32)},
		{"2147483648", Double(2147483648)},
		{"3.14", Double(3.14)},
		{"1e5", Double(100000)},
		{"hello", String("hello")},
		{"", String("")},
		{"yes", String("yes")},
		{" 42", String(" 42")},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got := Parse(tt.literal)
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s %v, want %s %v", tt.literal, got.Type(), got.Any(), tt.want.Type(), tt.want.Any())
			}
		})
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	values := []Value{
		Bool(true),
		Int(42),
		Double(3.14),
		Double(2),
		Double(1e21),
		Double(math.Inf(1)),
		String("hello"),
	}

	for _, v := range values {
		lit := v.Literal()
		back := Parse(lit)
		if !back.Equal(v) {
			t.Errorf("Parse(%q) = %s, want %s", lit, back.Type(), v.Type())
		}
	}

	if got := Double(2).Literal(); got != "2.0" {
		t.Errorf("expected 2.0, got %s", got)
	}
	if got := Parse(Float(1.5).Literal()); got.Type() != TypeDouble {
		t.Errorf("expected float to re-parse as double, got %s", got.Type())
	}
}

func TestFloatEqualsReparsedDouble(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"float and its reparse", Float(1.5), Parse(Float(1.5).Literal()), true},
		{"inexact float", Float(1.1), Parse(Float(1.1).Literal()), true},
		{"float and double literal", Float(1.1), Double(1.1), true},
		{"widened float bits", Float(1.1), Double(float64(float32(1.1))), false},
		{"different values", Float(1.5), Double(2.5), false},
		{"double and int", Double(2), Int(2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a.Literal(), tt.b.Literal(), got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal is not symmetric for %s and %s", tt.a.Literal(), tt.b.Literal())
			}
		})
	}
}

func TestHolderFromStrings(t *testing.T) {
	h := FromStrings(map[string]string{
		"maintenance": "true",
		"slots":       "42",
		"ratio":       "3.14",
		"motd":        "hello",
	})

	if b, ok := h.Bool("maintenance"); !ok || !b {
		t.Errorf("expected maintenance=true, got %v %v", b, ok)
	}
	if i, ok := h.Int("slots"); !ok || i != 42 {
		t.Errorf("expected slots=42, got %v %v", i, ok)
	}
	if d, ok := h.Double("ratio"); !ok || d != 3.14 {
		t.Errorf("expected ratio=3.14, got %v %v", d, ok)
	}
	if s, ok := h.String("motd"); !ok || s != "hello" {
		t.Errorf("expected motd=hello, got %v %v", s, ok)
	}

	back := h.Strings()
	want := map[string]string{"maintenance": "true", "slots": "42", "ratio": "3.14", "motd": "hello"}
	for k, v := range want {
		if back[k] != v {
			t.Errorf("Strings()[%q] = %q, want %q", k, back[k], v)
		}
	}
}

func TestHolderOrderAndMutation(t *testing.T) {
	var h Holder
	h.Set("b", Int(1)).Set("a", Int(2)).Raw("c", "x")
	h.Set("b", Int(3))

	if got := strings.Join(h.Keys(), ","); got != "b,a,c" {
		t.Errorf("expected insertion order b,a,c, got %s", got)
	}
	if i, _ := h.Int("b"); i != 3 {
		t.Errorf("expected overwritten value 3, got %d", i)
	}
	if !h.Delete("a") || h.Delete("a") {
		t.Error("expected delete to succeed once")
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", h.Len())
	}

	c := h.Clone()
	c.Set("d", Bool(false))
	if h.Has("d") {
		t.Error("clone mutation leaked into original")
	}
	if h.Equal(c) {
		t.Error("expected holders to differ")
	}
	c.Delete("d")
	if !h.Equal(c) {
		t.Error("expected holders to be equal")
	}
}

func TestValueEncodings(t *testing.T) {
	h := New().Set("flag", Bool(true)).Set("n", Int(7)).Set("ratio", Double(2)).Set("name", String("42"))

	data, err := json.Marshal(map[string]Value{"ratio": Double(2), "name": String("42")})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if got := string(data); got != `{"name":"42","ratio":2.0}` {
		t.Errorf("unexpected JSON: %s", got)
	}

	out, err := yaml.Marshal(map[string]Value{"ratio": Double(2)})
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "ratio: 2.0" {
		t.Errorf("unexpected YAML: %q", got)
	}

	m := h.Map()
	if m["n"] != int32(7) || m["flag"] != true {
		t.Errorf("unexpected native map: %v", m)
	}
}
