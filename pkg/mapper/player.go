package mapper

import (
	"github.com/google/uuid"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

const playerKind = string(wire.KindPlayer)

// PlayerFromWire builds a player from its snapshot. The unique id must be a
// valid UUID.
func PlayerFromWire(s wire.PlayerSnapshot) (*entity.Player, error) {
	return playerFrom(s.Name, s.UniqueID, s.CurrentServerName, s.CurrentProxyName)
}

// PlayerToWire returns the snapshot of p.
func PlayerToWire(p *entity.Player) wire.PlayerSnapshot {
	return wire.PlayerSnapshot{
		Name:              p.Name(),
		UniqueID:          p.UniqueID().String(),
		CurrentServerName: p.CurrentServerName(),
		CurrentProxyName:  p.CurrentProxyName(),
	}
}

// PlayerToDocument returns the document form of p.
func PlayerToDocument(p *entity.Player) document.Document {
	return document.Document{
		document.KeyName:              p.Name(),
		document.KeyUniqueID:          p.UniqueID().String(),
		document.KeyCurrentServerName: p.CurrentServerName(),
		document.KeyCurrentProxyName:  p.CurrentProxyName(),
	}
}

// PlayerFromDocument builds a player from its document form.
func PlayerFromDocument(d document.Document) (*entity.Player, error) {
	r := document.Read(playerKind, d)
	name := r.String(document.KeyName)
	id := r.String(document.KeyUniqueID)
	server := r.OptString(document.KeyCurrentServerName, "")
	proxy := r.OptString(document.KeyCurrentProxyName, "")
	if err := r.Err(); err != nil {
		return nil, err
	}
	return playerFrom(name, id, server, proxy)
}

func playerFrom(name, rawID, server, proxy string) (*entity.Player, error) {
	if name == "" {
		return nil, fault.MissingField(playerKind, document.KeyName)
	}
	if rawID == "" {
		return nil, fault.MissingField(playerKind, document.KeyUniqueID)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fault.BadField(playerKind, document.KeyUniqueID, err)
	}
	return entity.NewPlayer(name, id, server, proxy)
}
