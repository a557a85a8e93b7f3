package entity

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/polocloud/polocloud/pkg/wire"
)

// Unknown marks a service metric that has not been reported yet.
const Unknown = -1

// ServiceName derives the name of a service from its group and id.
func ServiceName(groupName string, id int32) string {
	return fmt.Sprintf("%s-%d", groupName, id)
}

// ServiceInformation holds static facts about a service instance.
type ServiceInformation struct {
	// CreatedAt is epoch milliseconds.
	CreatedAt int64
}

// ServiceSpec describes a service to construct.
type ServiceSpec struct {
	GroupName   string       `validate:"required"`
	ID          int32        `validate:"gte=0"`
	State       ServiceState `validate:"oneof=PREPARING STARTING ONLINE STOPPING STOPPED"`
	Type        GroupType    `validate:"oneof=SERVER PROXY SERVICE"`
	Properties  map[string]string
	Hostname    string
	Port        int32 `validate:"gte=0,lte=65535"`
	Templates   []Template
	Information ServiceInformation
	MinMemory   int32 `validate:"gte=0"`
	MaxMemory   int32 `validate:"gtefield=MinMemory"`

	// Metrics default to Unknown when left nil.
	Metrics *ServiceMetrics
	Motd    string
}

// ServiceMetrics are the values replaced on every heartbeat.
type ServiceMetrics struct {
	PlayerCount    int32
	MaxPlayerCount int32
	MemoryUsage    float64
	CPUUsage       float64
}

// UnknownMetrics returns metrics with every value Unknown.
func UnknownMetrics() ServiceMetrics {
	return ServiceMetrics{
		PlayerCount:    Unknown,
		MaxPlayerCount: Unknown,
		MemoryUsage:    Unknown,
		CPUUsage:       Unknown,
	}
}

// Service is one running instance of a group.
type Service struct {
	groupName   string
	id          int32
	state       ServiceState
	typ         GroupType
	properties  map[string]string
	hostname    string
	port        int32
	templates   []Template
	information ServiceInformation
	minMemory   int32
	maxMemory   int32
	metrics     ServiceMetrics
	motd        string
}

// NewService validates spec and returns the service it describes.
func NewService(spec ServiceSpec) (*Service, error) {
	if err := check(wire.KindService, spec); err != nil {
		return nil, err
	}
	metrics := UnknownMetrics()
	if spec.Metrics != nil {
		metrics = *spec.Metrics
	}
	props := maps.Clone(spec.Properties)
	if props == nil {
		props = make(map[string]string)
	}
	return &Service{
		groupName:   spec.GroupName,
		id:          spec.ID,
		state:       spec.State,
		typ:         spec.Type,
		properties:  props,
		hostname:    spec.Hostname,
		port:        spec.Port,
		templates:   slices.Clone(spec.Templates),
		information: spec.Information,
		minMemory:   spec.MinMemory,
		maxMemory:   spec.MaxMemory,
		metrics:     metrics,
		motd:        spec.Motd,
	}, nil
}

// Name returns "{groupName}-{id}", the identity of the service.
func (s *Service) Name() string { return ServiceName(s.groupName, s.id) }

// GroupName returns the owning group name.
func (s *Service) GroupName() string { return s.groupName }

// ID returns the service number within its group.
func (s *Service) ID() int32 { return s.id }

// State returns the lifecycle state.
func (s *Service) State() ServiceState { return s.state }

// Type returns the group type the service runs as.
func (s *Service) Type() GroupType { return s.typ }

// Properties returns a copy of the service properties.
func (s *Service) Properties() map[string]string { return maps.Clone(s.properties) }

// Property returns a single property.
func (s *Service) Property(key string) (string, bool) {
	v, ok := s.properties[key]
	return v, ok
}

// Hostname returns the host the service listens on.
func (s *Service) Hostname() string { return s.hostname }

// Port returns the port the service listens on.
func (s *Service) Port() int32 { return s.port }

// Templates returns the templates the service was booted with.
func (s *Service) Templates() []Template { return slices.Clone(s.templates) }

// Information returns the static service facts.
func (s *Service) Information() ServiceInformation { return s.information }

// MinMemory returns the minimum memory in megabytes.
func (s *Service) MinMemory() int32 { return s.minMemory }

// MaxMemory returns the maximum memory in megabytes.
func (s *Service) MaxMemory() int32 { return s.maxMemory }

// Metrics returns the last reported metrics.
func (s *Service) Metrics() ServiceMetrics { return s.metrics }

// PlayerCount returns the online player count, or Unknown.
func (s *Service) PlayerCount() int32 { return s.metrics.PlayerCount }

// MaxPlayerCount returns the player limit, or Unknown.
func (s *Service) MaxPlayerCount() int32 { return s.metrics.MaxPlayerCount }

// MemoryUsage returns the used memory in megabytes, or Unknown.
func (s *Service) MemoryUsage() float64 { return s.metrics.MemoryUsage }

// CPUUsage returns the cpu load in percent, or Unknown.
func (s *Service) CPUUsage() float64 { return s.metrics.CPUUsage }

// Motd returns the message of the day.
func (s *Service) Motd() string { return s.motd }

// Spec returns a ServiceSpec reproducing s.
func (s *Service) Spec() ServiceSpec {
	metrics := s.metrics
	return ServiceSpec{
		GroupName:   s.groupName,
		ID:          s.id,
		State:       s.state,
		Type:        s.typ,
		Properties:  s.Properties(),
		Hostname:    s.hostname,
		Port:        s.port,
		Templates:   s.Templates(),
		Information: s.information,
		MinMemory:   s.minMemory,
		MaxMemory:   s.maxMemory,
		Metrics:     &metrics,
		Motd:        s.motd,
	}
}

func (s *Service) clone() *Service {
	c := *s
	c.properties = maps.Clone(s.properties)
	c.templates = slices.Clone(s.templates)
	return &c
}

// Stamped returns s with its creation time set to now, or s itself when it
// already carries one.
func (s *Service) Stamped(now time.Time) *Service {
	if s.information.CreatedAt != 0 {
		return s
	}
	c := s.clone()
	c.information.CreatedAt = now.UnixMilli()
	return c
}

// WithState returns a copy of s in the given state. Any transition is allowed.
func (s *Service) WithState(state ServiceState) *Service {
	c := s.clone()
	c.state = state
	return c
}

// WithMetrics returns a copy of s carrying new heartbeat metrics.
func (s *Service) WithMetrics(m ServiceMetrics) *Service {
	c := s.clone()
	c.metrics = m
	return c
}

// WithPlayerCount returns a copy of s with a new online player count.
func (s *Service) WithPlayerCount(count int32) *Service {
	c := s.clone()
	c.metrics.PlayerCount = count
	return c
}

// WithEndpoint returns a copy of s listening on hostname and port.
func (s *Service) WithEndpoint(hostname string, port int32) *Service {
	c := s.clone()
	c.hostname = hostname
	c.port = port
	return c
}

// WithMotd returns a copy of s with a new message of the day.
func (s *Service) WithMotd(motd string) *Service {
	c := s.clone()
	c.motd = motd
	return c
}

// WithProperty returns a copy of s with key set to value.
func (s *Service) WithProperty(key, value string) *Service {
	c := s.clone()
	c.properties[key] = value
	return c
}

// Equal compares identity, state, type, properties, hostname and port.
// Heartbeat metrics, memory bounds, templates and motd are ignored.
func (s *Service) Equal(o *Service) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.groupName == o.groupName &&
		s.id == o.id &&
		s.state == o.state &&
		s.typ == o.typ &&
		maps.Equal(s.properties, o.properties) &&
		s.hostname == o.hostname &&
		s.port == o.port
}

// Identical reports whether s and o agree on every field, metrics included.
func (s *Service) Identical(o *Service) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Equal(o) &&
		s.information == o.information &&
		s.minMemory == o.minMemory &&
		s.maxMemory == o.maxMemory &&
		s.metrics == o.metrics &&
		s.motd == o.motd &&
		SameTemplates(s.templates, o.templates)
}

// String implements fmt.Stringer.
func (s *Service) String() string {
	return fmt.Sprintf("Service(%s, %s, %s:%d)", s.Name(), s.state, s.hostname, s.port)
}
