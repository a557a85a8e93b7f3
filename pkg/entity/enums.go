package entity

import "github.com/polocloud/polocloud/pkg/wire"

type (
	// GroupType classifies what a group runs.
	GroupType = wire.GroupType
	// ServiceState is the lifecycle state of a service.
	ServiceState = wire.ServiceState
)

// Group types.
const (
	GroupTypeServer  = wire.GroupTypeServer
	GroupTypeProxy   = wire.GroupTypeProxy
	GroupTypeService = wire.GroupTypeService
)

// Service states.
const (
	ServiceStatePreparing = wire.ServiceStatePreparing
	ServiceStateStarting  = wire.ServiceStateStarting
	ServiceStateOnline    = wire.ServiceStateOnline
	ServiceStateStopping  = wire.ServiceStateStopping
	ServiceStateStopped   = wire.ServiceStateStopped
)
