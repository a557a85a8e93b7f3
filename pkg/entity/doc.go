// Package entity defines the immutable orchestration entities shared by every
// polocloud node: groups, services, platforms, templates, players and cloud
// health samples.
//
// Entities are values. Their fields are unexported and changes produce new
// values: Group.Patch for groups, the With* methods for services and
// players. Nothing in this package talks to a provider; operations that act
// on the running cloud (booting or shutting down a service) live on the
// provider contracts instead.
//
// Constructors validate invariants and return a fault.ClassInvalid error when
// they do not hold:
//
//	g, err := entity.NewGroup(entity.GroupSpec{
//	    Name:             "lobby",
//	    MinMemory:        512,
//	    MaxMemory:        1024,
//	    MinOnlineService: 1,
//	    MaxOnlineService: 4,
//	    Platform:         entity.PlatformIndex{Name: "paper", Version: "1.21.4"},
//	    StartThreshold:   0.75,
//	})
package entity
