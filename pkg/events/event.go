package events

import (
	"github.com/polocloud/polocloud/pkg/entity"
)

// Kind tags an event type. Kinds are unique across all registered events.
type Kind string

// Event is an immutable payload describing a state change. The zero value
// of an event type must report its kind.
type Event interface {
	Kind() Kind
}

// Built-in event kinds.
const (
	KindPlayerJoin         Kind = "player.join"
	KindPlayerLeave        Kind = "player.leave"
	KindPlayerUpdate       Kind = "player.update"
	KindLog                Kind = "log"
	KindServicePlayerCount Kind = "service.player_count"
	KindServiceState       Kind = "service.state"
	KindServiceRegister    Kind = "service.register"
	KindServiceUnregister  Kind = "service.unregister"
	KindServiceShutdown    Kind = "service.shutdown"
	KindGroupCreate        Kind = "group.create"
	KindGroupUpdate        Kind = "group.update"
	KindGroupDelete        Kind = "group.delete"
	KindTemplateCreate     Kind = "template.create"
	KindTemplateDelete     Kind = "template.delete"
	KindCloudInformation   Kind = "cloud.information"
)

// KindOf returns the kind reported by the zero value of T.
func KindOf[T Event]() Kind {
	var zero T
	return zero.Kind()
}

// PlayerJoinEvent is published when a player joins the network.
type PlayerJoinEvent struct {
	Player *entity.Player
}

// Kind implements Event.
func (PlayerJoinEvent) Kind() Kind { return KindPlayerJoin }

// PlayerLeaveEvent is published when a player leaves the network.
type PlayerLeaveEvent struct {
	Player *entity.Player
}

// Kind implements Event.
func (PlayerLeaveEvent) Kind() Kind { return KindPlayerLeave }

// PlayerUpdateEvent is published when a player moves between services.
type PlayerUpdateEvent struct {
	Player *entity.Player
}

// Kind implements Event.
func (PlayerUpdateEvent) Kind() Kind { return KindPlayerUpdate }

// LogEvent carries one log line emitted by a node.
type LogEvent struct {
	Log string
}

// Kind implements Event.
func (LogEvent) Kind() Kind { return KindLog }

// ServiceChangePlayerCountEvent is published when the player count of a
// service changes.
type ServiceChangePlayerCountEvent struct {
	Service *entity.Service
}

// Kind implements Event.
func (ServiceChangePlayerCountEvent) Kind() Kind { return KindServicePlayerCount }

// ServiceChangeStateEvent is published when a service enters a new state.
type ServiceChangeStateEvent struct {
	Service  *entity.Service
	Previous entity.ServiceState
}

// Kind implements Event.
func (ServiceChangeStateEvent) Kind() Kind { return KindServiceState }

// ServiceRegisterEvent is published when a service instance is added.
type ServiceRegisterEvent struct {
	Service *entity.Service
}

// Kind implements Event.
func (ServiceRegisterEvent) Kind() Kind { return KindServiceRegister }

// ServiceUnregisterEvent is published when a service instance is removed.
type ServiceUnregisterEvent struct {
	Service *entity.Service
}

// Kind implements Event.
func (ServiceUnregisterEvent) Kind() Kind { return KindServiceUnregister }

// ServiceShutdownEvent is published when a shutdown was requested for a
// service.
type ServiceShutdownEvent struct {
	Service *entity.Service
}

// Kind implements Event.
func (ServiceShutdownEvent) Kind() Kind { return KindServiceShutdown }

// GroupCreateEvent is published when a group is created.
type GroupCreateEvent struct {
	Group *entity.Group
}

// Kind implements Event.
func (GroupCreateEvent) Kind() Kind { return KindGroupCreate }

// GroupUpdateEvent is published when a group is replaced.
type GroupUpdateEvent struct {
	Group *entity.Group
}

// Kind implements Event.
func (GroupUpdateEvent) Kind() Kind { return KindGroupUpdate }

// GroupDeleteEvent is published when a group is deleted.
type GroupDeleteEvent struct {
	Group *entity.Group
}

// Kind implements Event.
func (GroupDeleteEvent) Kind() Kind { return KindGroupDelete }

// TemplateCreateEvent is published when a template is created.
type TemplateCreateEvent struct {
	Template entity.Template
}

// Kind implements Event.
func (TemplateCreateEvent) Kind() Kind { return KindTemplateCreate }

// TemplateDeleteEvent is published when a template is deleted.
type TemplateDeleteEvent struct {
	Template entity.Template
}

// Kind implements Event.
func (TemplateDeleteEvent) Kind() Kind { return KindTemplateDelete }

// CloudInformationEvent carries a periodic node sample.
type CloudInformationEvent struct {
	Information entity.CloudInformation
}

// Kind implements Event.
func (CloudInformationEvent) Kind() Kind { return KindCloudInformation }
