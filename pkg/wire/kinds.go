package wire

import (
	"fmt"
	"strings"

	"github.com/polocloud/polocloud/pkg/fault"
)

// Kind is the tag identifying an entity type on the wire and in codec registries.
type Kind string

// Entity kinds.
const (
	KindGroup                     Kind = "group"
	KindService                   Kind = "service"
	KindPlayer                    Kind = "player"
	KindTemplate                  Kind = "template"
	KindPlatform                  Kind = "platform"
	KindPlatformVersion           Kind = "platform_version"
	KindPlatformIndex             Kind = "platform_index"
	KindServiceInformation        Kind = "service_information"
	KindCloudInformation          Kind = "cloud_information"
	KindAggregateCloudInformation Kind = "aggregate_cloud_information"
)

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindGroup,
		KindService,
		KindPlayer,
		KindTemplate,
		KindPlatform,
		KindPlatformVersion,
		KindPlatformIndex,
		KindServiceInformation,
		KindCloudInformation,
		KindAggregateCloudInformation,
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// GroupType classifies what a group runs.
type GroupType string

// Group types.
const (
	GroupTypeServer  GroupType = "SERVER"
	GroupTypeProxy   GroupType = "PROXY"
	GroupTypeService GroupType = "SERVICE"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeServer, GroupTypeProxy, GroupTypeService:
		return true
	}
	return false
}

// ParseGroupType parses a group type literal. Matching is case-insensitive.
func ParseGroupType(s string) (GroupType, error) {
	t := GroupType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fault.SchemaViolation(fmt.Sprintf("unknown group type %q", s), nil).WithCode(fault.CodeMalformedField)
	}
	return t, nil
}

// ServiceState is the lifecycle state of a running service instance.
type ServiceState string

// Service states.
const (
	ServiceStatePreparing ServiceState = "PREPARING"
	ServiceStateStarting  ServiceState = "STARTING"
	ServiceStateOnline    ServiceState = "ONLINE"
	ServiceStateStopping  ServiceState = "STOPPING"
	ServiceStateStopped   ServiceState = "STOPPED"
)

// Valid reports whether s is a known service state.
func (s ServiceState) Valid() bool {
	switch s {
	case ServiceStatePreparing, ServiceStateStarting, ServiceStateOnline, ServiceStateStopping, ServiceStateStopped:
		return true
	}
	return false
}

// ParseServiceState parses a service state literal. Matching is case-insensitive.
func ParseServiceState(s string) (ServiceState, error) {
	st := ServiceState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fault.SchemaViolation(fmt.Sprintf("unknown service state %q", s), nil).WithCode(fault.CodeMalformedField)
	}
	return st, nil
}
