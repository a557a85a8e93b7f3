package wire

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/polocloud/polocloud/pkg/fault"
)

func sampleGroup() GroupSnapshot {
	return GroupSnapshot{
		Name:                        "lobby",
		MinimumMemory:               512,
		MaximumMemory:               1024,
		MinimumOnline:               1,
		MaximumOnline:               4,
		Platform:                    PlatformIndexSnapshot{Name: "paper", Version: "1.21.4"},
		PercentageToStartNewService: 0.75,
		CreatedAt:                   1700000000000,
		Templates:                   []TemplateSnapshot{{Name: "every", Size: "unknown"}},
		Properties:                  map[string]string{"maintenance": "true", "slots": "42"},
	}
}

func TestMarshalUnmarshalGroup(t *testing.T) {
	in := sampleGroup()
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out GroupSnapshot
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	a, err := Marshal(sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected identical encodings for identical snapshots")
	}
}

func TestUnmarshalMissingRequiredField(t *testing.T) {
	tests := []struct {
		name   string
		input  map[string]any
		target Snapshot
		field  string
	}{
		{
			name:   "group without minimumMemory",
			input:  map[string]any{"name": "lobby", "maximumMemory": 1024, "minimumOnline": 1, "maximumOnline": 2, "platform": map[string]any{"name": "paper", "version": "1.21"}},
			target: &GroupSnapshot{},
			field:  "minimumMemory",
		},
		{
			name:   "group without platform version",
			input:  map[string]any{"name": "lobby", "minimumMemory": 512, "maximumMemory": 1024, "minimumOnline": 1, "maximumOnline": 2, "platform": map[string]any{"name": "paper"}},
			target: &GroupSnapshot{},
			field:  "platform.version",
		},
		{
			name:   "service without state",
			input:  map[string]any{"groupName": "lobby", "id": 3, "serverType": "SERVER", "minimumMemory": 512, "maximumMemory": 1024},
			target: &ServiceSnapshot{},
			field:  "state",
		},
		{
			name:   "player with null uniqueId",
			input:  map[string]any{"name": "Steve", "uniqueId": nil},
			target: &PlayerSnapshot{},
			field:  "uniqueId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encMode.Marshal(tt.input)
			if err != nil {
				t.Fatalf("failed to encode input: %v", err)
			}
			err = Unmarshal(data, tt.target)
			if !fault.IsSchemaViolation(err) {
				t.Fatalf("expected schema violation, got %v", err)
			}
			var fe *fault.Error
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, fe)
			}
			if fe.Entity != string(tt.target.Kind()) {
				t.Errorf("expected entity %q, got %q", tt.target.Kind(), fe.Entity)
			}
		})
	}
}

func TestUnmarshalRejectsNonPointer(t *testing.T) {
	data, _ := Marshal(PlayerSnapshot{Name: "Alex", UniqueID: "x"})
	if err := Unmarshal(data, PlayerSnapshot{}); err == nil {
		t.Error("expected error for non-pointer target")
	}
}

func TestFrameStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	inputs := []Snapshot{
		sampleGroup(),
		PlayerSnapshot{Name: "Alex", UniqueID: "0d1f7a5e-54d4-4c35-8f7e-2f3ad1f7b9a1"},
		TemplateSnapshot{Name: "every", Size: "2.0 MB"},
	}
	for _, s := range inputs {
		if err := enc.Encode(s); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i, want := range inputs {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("Decode #%d failed: %v", i, err)
		}
		if got.Kind() != want.Kind() {
			t.Errorf("frame #%d: expected kind %s, got %s", i, want.Kind(), got.Kind())
		}
	}
	if _, err := dec.Decode(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestUnmarshalFrameUnknownKind(t *testing.T) {
	data, err := encMode.Marshal(Frame{Kind: "starship", Body: RawMessage{0xa0}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalFrame(data); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation, got %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	if got, err := ParseGroupType("proxy"); err != nil || got != GroupTypeProxy {
		t.Errorf("ParseGroupType(proxy) = %v, %v", got, err)
	}
	if _, err := ParseGroupType("LOBBY"); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation, got %v", err)
	}
	if got, err := ParseServiceState("Online"); err != nil || got != ServiceStateOnline {
		t.Errorf("ParseServiceState(Online) = %v, %v", got, err)
	}
	if _, err := ParseServiceState("crashed"); err == nil {
		t.Error("expected error for unknown state")
	}
	for _, k := range Kinds() {
		if New(k) == nil {
			t.Errorf("New(%s) returned nil", k)
		}
	}
}
