package wire

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/polocloud/polocloud/pkg/fault"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding: sorted map keys, smallest integer encoding, no
// indefinite-length items. Nil slices and maps encode as empty containers,
// so an absent list and an empty one share one encoding.
var encMode cbor.EncMode

// decMode is the CBOR decoder. Unknown fields are ignored so newer
// nodes can add snapshot fields without breaking older ones.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.CoreDetEncOptions()
	encOpts.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Snapshots never use non-string map keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// RawMessage is a raw encoded CBOR value.
type RawMessage = cbor.RawMessage

// Marshal encodes a snapshot to CBOR.
func Marshal(s Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s snapshot: %w", s.Kind(), err)
	}
	return data, nil
}

// Unmarshal decodes CBOR data into the snapshot pointed to by s after
// checking that every required field is present.
func Unmarshal(data []byte, s Snapshot) error {
	if reflect.ValueOf(s).Kind() != reflect.Pointer {
		return fmt.Errorf("wire: Unmarshal requires a pointer, got %T", s)
	}

	var fields map[string]RawMessage
	if err := decMode.Unmarshal(data, &fields); err != nil {
		return fault.SchemaViolation(fmt.Sprintf("%s snapshot is not a CBOR map", s.Kind()), err).
			WithEntity(string(s.Kind()))
	}
	for _, path := range s.requiredFields() {
		ok, err := present(fields, path)
		if err != nil {
			return fault.BadField(string(s.Kind()), path, err)
		}
		if !ok {
			return fault.MissingField(string(s.Kind()), path)
		}
	}

	if err := decMode.Unmarshal(data, s); err != nil {
		return fault.SchemaViolation(fmt.Sprintf("failed to decode %s snapshot", s.Kind()), err).
			WithEntity(string(s.Kind()))
	}
	return nil
}

// present resolves a dotted key path against a decoded CBOR map. A key
// holding CBOR null counts as absent.
func present(fields map[string]RawMessage, path string) (bool, error) {
	head, rest, nested := strings.Cut(path, ".")
	raw, ok := fields[head]
	if !ok || isNull(raw) {
		return false, nil
	}
	if !nested {
		return true, nil
	}
	var inner map[string]RawMessage
	if err := decMode.Unmarshal(raw, &inner); err != nil {
		return false, fmt.Errorf("%s is not a map: %w", head, err)
	}
	return present(inner, rest)
}

func isNull(raw RawMessage) bool {
	// 0xf6 is null, 0xf7 is undefined.
	return len(raw) == 1 && (raw[0] == 0xf6 || raw[0] == 0xf7)
}

// Frame carries a snapshot together with its kind tag, for payloads whose
// kind is not known by the receiver ahead of time.
type Frame struct {
	Kind Kind       `cbor:"kind"`
	Body RawMessage `cbor:"body"`
}

// Marshal encodes the frame.
func (f Frame) Marshal() ([]byte, error) {
	return encMode.Marshal(f)
}

// MarshalFrame encodes a snapshot inside a kind-tagged frame.
func MarshalFrame(s Snapshot) ([]byte, error) {
	body, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	return Frame{Kind: s.Kind(), Body: body}.Marshal()
}

// ReadFrame decodes a frame without decoding its body.
func ReadFrame(data []byte) (Frame, error) {
	var f Frame
	if err := decMode.Unmarshal(data, &f); err != nil {
		return Frame{}, fault.SchemaViolation("malformed frame", err)
	}
	if f.Kind == "" {
		return Frame{}, fault.MissingField("frame", "kind")
	}
	return f, nil
}

// UnmarshalFrame decodes a kind-tagged frame and its snapshot body.
func UnmarshalFrame(data []byte) (Snapshot, error) {
	f, err := ReadFrame(data)
	if err != nil {
		return nil, err
	}
	s := New(f.Kind)
	if s == nil {
		return nil, fault.SchemaViolation(fmt.Sprintf("unknown entity kind %q", f.Kind), nil).
			WithCode(fault.CodeUnknownKind)
	}
	if err := Unmarshal(f.Body, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Encoder writes a stream of frames.
type Encoder struct {
	enc *cbor.Encoder
}

// NewEncoder returns an Encoder writing deterministic CBOR frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: encMode.NewEncoder(w)}
}

// Encode writes s as a single frame.
func (e *Encoder) Encode(s Snapshot) error {
	body, err := Marshal(s)
	if err != nil {
		return err
	}
	return e.enc.Encode(Frame{Kind: s.Kind(), Body: body})
}

// EncodeFrame writes an already encoded frame.
func (e *Encoder) EncodeFrame(f Frame) error {
	return e.enc.Encode(f)
}

// Decoder reads a stream of frames.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns a Decoder reading CBOR frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decMode.NewDecoder(r)}
}

// Decode reads the next frame and its snapshot. It returns io.EOF at the
// end of the stream.
func (d *Decoder) Decode() (Snapshot, error) {
	var raw RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return nil, err
	}
	return UnmarshalFrame(raw)
}

// DecodeFrame reads the next frame without decoding its body.
func (d *Decoder) DecodeFrame() (Frame, error) {
	var raw RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return Frame{}, err
	}
	return ReadFrame(raw)
}

// Diagnose returns the CBOR diagnostic notation for data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
