package entity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

// Player is a connected player and the services it is currently on.
type Player struct {
	name              string
	uniqueID          uuid.UUID
	currentServerName string
	currentProxyName  string
}

// NewPlayer returns a player. The unique id is its identity and must not be
// the nil UUID.
func NewPlayer(name string, uniqueID uuid.UUID, currentServerName, currentProxyName string) (*Player, error) {
	if name == "" {
		return nil, fault.Invalid("player name is required", nil).WithEntity(string(wire.KindPlayer)).WithField("name")
	}
	if uniqueID == uuid.Nil {
		return nil, fault.Invalid("player unique id is required", nil).WithEntity(string(wire.KindPlayer)).WithField("uniqueId")
	}
	return &Player{
		name:              name,
		uniqueID:          uniqueID,
		currentServerName: currentServerName,
		currentProxyName:  currentProxyName,
	}, nil
}

// Name returns the player name.
func (p *Player) Name() string { return p.name }

// UniqueID returns the player identity.
func (p *Player) UniqueID() uuid.UUID { return p.uniqueID }

// CurrentServerName returns the server service the player is on.
func (p *Player) CurrentServerName() string { return p.currentServerName }

// CurrentProxyName returns the proxy service the player connected through.
func (p *Player) CurrentProxyName() string { return p.currentProxyName }

// WithServer returns a copy of p moved to another server service.
func (p *Player) WithServer(serverName string) *Player {
	c := *p
	c.currentServerName = serverName
	return &c
}

// WithProxy returns a copy of p moved to another proxy service.
func (p *Player) WithProxy(proxyName string) *Player {
	c := *p
	c.currentProxyName = proxyName
	return &c
}

// Equal reports whether p and o hold the same values.
func (p *Player) Equal(o *Player) bool {
	if p == nil || o == nil {
		return p == o
	}
	return *p == *o
}

// String implements fmt.Stringer.
func (p *Player) String() string {
	return fmt.Sprintf("Player(%s, %s)", p.name, p.uniqueID)
}
