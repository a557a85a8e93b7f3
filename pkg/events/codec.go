package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/mapper"
	"github.com/polocloud/polocloud/pkg/telemetry"
	"github.com/polocloud/polocloud/pkg/wire"
)

// Envelope keys.
const (
	keyID        = "id"
	keyKind      = "kind"
	keyTimestamp = "timestamp"
	keyPayload   = "payload"
)

// Payload keys of the built-in events.
const (
	keyPlayer      = "player"
	keyService     = "service"
	keyGroup       = "group"
	keyTemplate    = "template"
	keyLog         = "log"
	keyPrevious    = "previousState"
	keyInformation = "information"
)

// Envelope is the transport form of one event.
type Envelope struct {
	ID        uuid.UUID         `json:"id"`
	Kind      Kind              `json:"kind"`
	Timestamp int64             `json:"timestamp"`
	Payload   document.Document `json:"payload"`
}

type eventCodec struct {
	encode func(Event) (document.Document, error)
	decode func(document.Document) (Event, error)
}

// Codec encodes events into envelopes and back. It is safe for concurrent
// use.
type Codec struct {
	mu      sync.RWMutex
	kinds   map[Kind]eventCodec
	now     func() time.Time
	metrics *telemetry.Metrics
}

// NewCodec returns a codec that knows every built-in event kind.
func NewCodec() *Codec {
	c := &Codec{kinds: make(map[Kind]eventCodec), now: time.Now}
	registerBuiltins(c)
	return c
}

// WithMetrics counts envelopes that fail to encode or decode in m.
func (c *Codec) WithMetrics(m *telemetry.Metrics) *Codec {
	c.metrics = m
	return c
}

// RegisterEvent adds an event type to c. Registering a kind twice is a
// conflict.
func RegisterEvent[T Event](c *Codec, encode func(T) (document.Document, error), decode func(document.Document) (T, error)) error {
	kind := KindOf[T]()
	if kind == "" {
		return fault.ContractViolation("event type reports an empty kind")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.kinds[kind]; ok {
		return fault.Conflict(fmt.Sprintf("event kind %q is already registered", kind))
	}
	c.kinds[kind] = eventCodec{
		encode: func(e Event) (document.Document, error) {
			t, ok := e.(T)
			if !ok {
				return nil, fault.ContractViolation(fmt.Sprintf("codec for %s cannot encode %T", kind, e)).
					WithCode(fault.CodeTypeMismatch)
			}
			return encode(t)
		},
		decode: func(d document.Document) (Event, error) {
			return decode(d)
		},
	}
	return nil
}

// Knows reports whether kind is registered.
func (c *Codec) Knows(kind Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.kinds[kind]
	return ok
}

func (c *Codec) lookup(kind Kind) (eventCodec, error) {
	c.mu.RLock()
	ec, ok := c.kinds[kind]
	c.mu.RUnlock()
	if !ok {
		return eventCodec{}, fault.SchemaViolation(fmt.Sprintf("unknown event kind %q", kind), nil).
			WithCode(fault.CodeUnknownKind)
	}
	return ec, nil
}

// Seal wraps event into a new envelope.
func (c *Codec) Seal(event Event) (Envelope, error) {
	if event == nil {
		return Envelope{}, fault.ContractViolation("cannot encode a nil event")
	}
	ec, err := c.lookup(event.Kind())
	if err != nil {
		return Envelope{}, err
	}
	payload, err := ec.encode(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.New(),
		Kind:      event.Kind(),
		Timestamp: c.now().UnixMilli(),
		Payload:   payload,
	}, nil
}

// Open decodes the event carried by env.
func (c *Codec) Open(env Envelope) (Event, error) {
	ec, err := c.lookup(env.Kind)
	if err != nil {
		return nil, err
	}
	if env.Payload == nil {
		return nil, fault.MissingField("event", keyPayload)
	}
	return ec.decode(env.Payload)
}

// Marshal encodes event as a JSON envelope.
func (c *Codec) Marshal(event Event) ([]byte, error) {
	data, err := c.marshal(event)
	if err != nil {
		c.metrics.RecordCodecError("event", "encode")
	}
	return data, err
}

func (c *Codec) marshal(event Event) ([]byte, error) {
	env, err := c.Seal(event)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON envelope into its envelope and event.
func (c *Codec) Unmarshal(data []byte) (Envelope, Event, error) {
	env, event, err := c.unmarshal(data)
	if err != nil {
		c.metrics.RecordCodecError("event", "decode")
	}
	return env, event, err
}

func (c *Codec) unmarshal(data []byte) (Envelope, Event, error) {
	doc, err := document.UnmarshalJSON(data)
	if err != nil {
		return Envelope{}, nil, fault.SchemaViolation("malformed event envelope", err)
	}

	r := document.Read("event", doc)
	rawID := r.String(keyID)
	kind := Kind(r.String(keyKind))
	ts := r.Int64(keyTimestamp)
	payload := r.Map(keyPayload)
	if err := r.Err(); err != nil {
		return Envelope{}, nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Envelope{}, nil, fault.BadField("event", keyID, err)
	}

	env := Envelope{ID: id, Kind: kind, Timestamp: ts, Payload: document.Document(payload)}
	event, err := c.Open(env)
	if err != nil {
		return env, nil, err
	}
	return env, event, nil
}

// payloadOf reads a nested entity document from an event payload.
func payloadOf(d document.Document, key string) (document.Document, error) {
	r := document.Read("event", d)
	m := r.Map(key)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fault.MissingField("event", key)
	}
	return document.Document(m), nil
}

// entityEvent registers an event whose payload is a single entity document.
func entityEvent[T Event, E any](c *Codec, key string, codec *mapper.Codec[E], get func(T) E, build func(E) T) {
	must(RegisterEvent(c,
		func(e T) (document.Document, error) {
			v := get(e)
			if absent(v) {
				return nil, fault.MissingField("event", key)
			}
			return document.Document{key: codec.ToDocument(v)}, nil
		},
		func(d document.Document) (T, error) {
			var zero T
			sub, err := payloadOf(d, key)
			if err != nil {
				return zero, err
			}
			v, err := codec.FromDocument(sub)
			if err != nil {
				return zero, err
			}
			return build(v), nil
		},
	))
}

// absent reports whether an entity payload is a nil pointer or interface.
func absent(v any) bool {
	switch e := v.(type) {
	case nil:
		return true
	case *entity.Player:
		return e == nil
	case *entity.Service:
		return e == nil
	case *entity.Group:
		return e == nil
	}
	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func registerBuiltins(c *Codec) {
	entityEvent(c, keyPlayer, mapper.Players,
		func(e PlayerJoinEvent) *entity.Player { return e.Player },
		func(p *entity.Player) PlayerJoinEvent { return PlayerJoinEvent{Player: p} })
	entityEvent(c, keyPlayer, mapper.Players,
		func(e PlayerLeaveEvent) *entity.Player { return e.Player },
		func(p *entity.Player) PlayerLeaveEvent { return PlayerLeaveEvent{Player: p} })
	entityEvent(c, keyPlayer, mapper.Players,
		func(e PlayerUpdateEvent) *entity.Player { return e.Player },
		func(p *entity.Player) PlayerUpdateEvent { return PlayerUpdateEvent{Player: p} })

	entityEvent(c, keyService, mapper.Services,
		func(e ServiceChangePlayerCountEvent) *entity.Service { return e.Service },
		func(s *entity.Service) ServiceChangePlayerCountEvent { return ServiceChangePlayerCountEvent{Service: s} })
	entityEvent(c, keyService, mapper.Services,
		func(e ServiceRegisterEvent) *entity.Service { return e.Service },
		func(s *entity.Service) ServiceRegisterEvent { return ServiceRegisterEvent{Service: s} })
	entityEvent(c, keyService, mapper.Services,
		func(e ServiceUnregisterEvent) *entity.Service { return e.Service },
		func(s *entity.Service) ServiceUnregisterEvent { return ServiceUnregisterEvent{Service: s} })
	entityEvent(c, keyService, mapper.Services,
		func(e ServiceShutdownEvent) *entity.Service { return e.Service },
		func(s *entity.Service) ServiceShutdownEvent { return ServiceShutdownEvent{Service: s} })

	entityEvent(c, keyGroup, mapper.Groups,
		func(e GroupCreateEvent) *entity.Group { return e.Group },
		func(g *entity.Group) GroupCreateEvent { return GroupCreateEvent{Group: g} })
	entityEvent(c, keyGroup, mapper.Groups,
		func(e GroupUpdateEvent) *entity.Group { return e.Group },
		func(g *entity.Group) GroupUpdateEvent { return GroupUpdateEvent{Group: g} })
	entityEvent(c, keyGroup, mapper.Groups,
		func(e GroupDeleteEvent) *entity.Group { return e.Group },
		func(g *entity.Group) GroupDeleteEvent { return GroupDeleteEvent{Group: g} })

	entityEvent(c, keyTemplate, mapper.Templates,
		func(e TemplateCreateEvent) entity.Template { return e.Template },
		func(t entity.Template) TemplateCreateEvent { return TemplateCreateEvent{Template: t} })
	entityEvent(c, keyTemplate, mapper.Templates,
		func(e TemplateDeleteEvent) entity.Template { return e.Template },
		func(t entity.Template) TemplateDeleteEvent { return TemplateDeleteEvent{Template: t} })

	entityEvent(c, keyInformation, mapper.CloudInformations,
		func(e CloudInformationEvent) entity.CloudInformation { return e.Information },
		func(i entity.CloudInformation) CloudInformationEvent { return CloudInformationEvent{Information: i} })

	must(RegisterEvent(c,
		func(e LogEvent) (document.Document, error) {
			return document.Document{keyLog: e.Log}, nil
		},
		func(d document.Document) (LogEvent, error) {
			r := document.Read("event", d)
			msg := r.String(keyLog)
			return LogEvent{Log: msg}, r.Err()
		},
	))

	must(RegisterEvent(c,
		func(e ServiceChangeStateEvent) (document.Document, error) {
			if e.Service == nil {
				return nil, fault.MissingField("event", keyService)
			}
			return document.Document{
				keyService:  mapper.ServiceToDocument(e.Service),
				keyPrevious: string(e.Previous),
			}, nil
		},
		func(d document.Document) (ServiceChangeStateEvent, error) {
			sub, err := payloadOf(d, keyService)
			if err != nil {
				return ServiceChangeStateEvent{}, err
			}
			s, err := mapper.ServiceFromDocument(sub)
			if err != nil {
				return ServiceChangeStateEvent{}, err
			}
			r := document.Read("event", d)
			raw := r.OptString(keyPrevious, "")
			if err := r.Err(); err != nil {
				return ServiceChangeStateEvent{}, err
			}
			ev := ServiceChangeStateEvent{Service: s}
			if raw != "" {
				prev, err := wire.ParseServiceState(raw)
				if err != nil {
					return ServiceChangeStateEvent{}, fault.BadField("event", keyPrevious, err)
				}
				ev.Previous = prev
			}
			return ev, nil
		},
	))
}
