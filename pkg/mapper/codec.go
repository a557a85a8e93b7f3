package mapper

import (
	"fmt"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

// EntityCodec is the untyped view of a Codec, used where the entity kind is
// only known at runtime.
type EntityCodec interface {
	Kind() wire.Kind
	EncodeWire(v any) ([]byte, error)
	DecodeWire(data []byte) (any, error)
	EncodeDocument(v any) (document.Document, error)
	DecodeDocument(d document.Document) (any, error)
}

// Codec bundles the wire and document mappings of one entity kind.
type Codec[E any] struct {
	kind         wire.Kind
	marshal      func(E) ([]byte, error)
	unmarshal    func([]byte) (E, error)
	toDocument   func(E) document.Document
	fromDocument func(document.Document) (E, error)
}

func newCodec[E any, S wire.Snapshot, PS interface {
	*S
	wire.Snapshot
}](
	toWire func(E) S,
	fromWire func(S) (E, error),
	toDocument func(E) document.Document,
	fromDocument func(document.Document) (E, error),
) *Codec[E] {
	var zero S
	return &Codec[E]{
		kind: zero.Kind(),
		marshal: func(e E) ([]byte, error) {
			return wire.Marshal(toWire(e))
		},
		unmarshal: func(data []byte) (E, error) {
			var s S
			if err := wire.Unmarshal(data, PS(&s)); err != nil {
				var none E
				return none, err
			}
			return fromWire(s)
		},
		toDocument:   toDocument,
		fromDocument: fromDocument,
	}
}

// Kind returns the entity kind tag.
func (c *Codec[E]) Kind() wire.Kind { return c.kind }

// Marshal encodes e as a CBOR snapshot.
func (c *Codec[E]) Marshal(e E) ([]byte, error) { return c.marshal(e) }

// Unmarshal decodes a CBOR snapshot into an entity.
func (c *Codec[E]) Unmarshal(data []byte) (E, error) { return c.unmarshal(data) }

// ToDocument returns the document form of e.
func (c *Codec[E]) ToDocument(e E) document.Document { return c.toDocument(e) }

// FromDocument builds an entity from its document form.
func (c *Codec[E]) FromDocument(d document.Document) (E, error) { return c.fromDocument(d) }

func (c *Codec[E]) cast(v any) (E, error) {
	e, ok := v.(E)
	if !ok {
		var none E
		return none, fault.ContractViolation(fmt.Sprintf("%s codec cannot encode %T", c.kind, v)).
			WithCode(fault.CodeTypeMismatch)
	}
	return e, nil
}

// EncodeWire implements EntityCodec.
func (c *Codec[E]) EncodeWire(v any) ([]byte, error) {
	e, err := c.cast(v)
	if err != nil {
		return nil, err
	}
	return c.marshal(e)
}

// DecodeWire implements EntityCodec.
func (c *Codec[E]) DecodeWire(data []byte) (any, error) {
	return c.unmarshal(data)
}

// EncodeDocument implements EntityCodec.
func (c *Codec[E]) EncodeDocument(v any) (document.Document, error) {
	e, err := c.cast(v)
	if err != nil {
		return nil, err
	}
	return c.toDocument(e), nil
}

// DecodeDocument implements EntityCodec.
func (c *Codec[E]) DecodeDocument(d document.Document) (any, error) {
	return c.fromDocument(d)
}

func infallible[S, E any](f func(S) E) func(S) (E, error) {
	return func(s S) (E, error) { return f(s), nil }
}

// Entity codecs.
var (
	Groups    = newCodec(GroupToWire, GroupFromWire, GroupToDocument, GroupFromDocument)
	Services  = newCodec(ServiceToWire, ServiceFromWire, ServiceToDocument, ServiceFromDocument)
	Players   = newCodec(PlayerToWire, PlayerFromWire, PlayerToDocument, PlayerFromDocument)
	Templates = newCodec(TemplateToWire, TemplateFromWire, TemplateToDocument, TemplateFromDocument)
	Platforms = newCodec(PlatformToWire, PlatformFromWire, PlatformToDocument, PlatformFromDocument)

	ServiceInformations = newCodec(ServiceInformationToWire, infallible(ServiceInformationFromWire),
		ServiceInformationToDocument, ServiceInformationFromDocument)
	CloudInformations = newCodec(CloudInformationToWire, CloudInformationFromWire,
		CloudInformationToDocument, CloudInformationFromDocument)
	AggregateCloudInformations = newCodec(AggregateCloudInformationToWire, AggregateCloudInformationFromWire,
		AggregateCloudInformationToDocument, AggregateCloudInformationFromDocument)
)

// registry is the closed set of kinds that travel as standalone payloads.
var registry = map[wire.Kind]EntityCodec{
	wire.KindGroup:                     Groups,
	wire.KindService:                   Services,
	wire.KindPlayer:                    Players,
	wire.KindTemplate:                  Templates,
	wire.KindPlatform:                  Platforms,
	wire.KindServiceInformation:        ServiceInformations,
	wire.KindCloudInformation:          CloudInformations,
	wire.KindAggregateCloudInformation: AggregateCloudInformations,
}

// Lookup returns the codec registered for kind.
func Lookup(kind wire.Kind) (EntityCodec, bool) {
	c, ok := registry[kind]
	return c, ok
}

// KindOf returns the kind tag of an entity value.
func KindOf(v any) (wire.Kind, bool) {
	switch v.(type) {
	case *entity.Group:
		return wire.KindGroup, true
	case *entity.Service:
		return wire.KindService, true
	case *entity.Player:
		return wire.KindPlayer, true
	case *entity.Platform:
		return wire.KindPlatform, true
	case entity.ServiceInformation:
		return wire.KindServiceInformation, true
	case entity.CloudInformation:
		return wire.KindCloudInformation, true
	case entity.AggregateCloudInformation:
		return wire.KindAggregateCloudInformation, true
	case entity.Template:
		return wire.KindTemplate, true
	}
	return "", false
}

// EncodeFrame encodes any registered entity as a kind-tagged wire frame.
func EncodeFrame(v any) ([]byte, error) {
	kind, ok := KindOf(v)
	if !ok {
		return nil, fault.ContractViolation(fmt.Sprintf("no codec for %T", v)).WithCode(fault.CodeUnknownKind)
	}
	body, err := registry[kind].EncodeWire(v)
	if err != nil {
		return nil, err
	}
	return wire.Frame{Kind: kind, Body: body}.Marshal()
}

// DecodeFrame decodes a kind-tagged wire frame into its entity.
func DecodeFrame(data []byte) (any, error) {
	f, err := wire.ReadFrame(data)
	if err != nil {
		return nil, err
	}
	return DecodeFramed(f)
}

// DecodeFramed decodes the body of an already split frame.
func DecodeFramed(f wire.Frame) (any, error) {
	c, ok := Lookup(f.Kind)
	if !ok {
		return nil, fault.SchemaViolation(fmt.Sprintf("unknown entity kind %q", f.Kind), nil).
			WithCode(fault.CodeUnknownKind)
	}
	return c.DecodeWire(f.Body)
}
