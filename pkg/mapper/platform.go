package mapper

import (
	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

const platformKind = string(wire.KindPlatform)

// PlatformIndexFromWire converts a platform reference.
func PlatformIndexFromWire(s wire.PlatformIndexSnapshot) entity.PlatformIndex {
	return entity.PlatformIndex{Name: s.Name, Version: s.Version}
}

// PlatformIndexToWire converts a platform reference.
func PlatformIndexToWire(p entity.PlatformIndex) wire.PlatformIndexSnapshot {
	return wire.PlatformIndexSnapshot{Name: p.Name, Version: p.Version}
}

// PlatformIndexToDocument returns the {name, version} document of p.
func PlatformIndexToDocument(p entity.PlatformIndex) document.Document {
	return document.Document{
		document.KeyName:    p.Name,
		document.KeyVersion: p.Version,
	}
}

func platformIndexFromReader(r *document.Reader) entity.PlatformIndex {
	return entity.PlatformIndex{
		Name:    r.String(document.KeyName),
		Version: r.String(document.KeyVersion),
	}
}

// PlatformFromWire builds a platform from its snapshot.
func PlatformFromWire(s wire.PlatformSnapshot) (*entity.Platform, error) {
	if s.Name == "" {
		return nil, fault.MissingField(platformKind, "name")
	}
	if !s.Type.Valid() {
		return nil, fault.BadField(platformKind, "type", nil)
	}
	versions := make([]entity.PlatformVersion, 0, len(s.Versions))
	for _, v := range s.Versions {
		if v.Version == "" {
			return nil, fault.MissingField(platformKind, "versions.version")
		}
		versions = append(versions, entity.PlatformVersion{Version: v.Version})
	}
	return entity.NewPlatform(s.Name, s.Type, versions...)
}

// PlatformToWire returns the snapshot of p.
func PlatformToWire(p *entity.Platform) wire.PlatformSnapshot {
	versions := make([]wire.PlatformVersionSnapshot, 0, len(p.Versions()))
	for _, v := range p.Versions() {
		versions = append(versions, wire.PlatformVersionSnapshot{Version: v.Version})
	}
	return wire.PlatformSnapshot{Name: p.Name(), Type: p.Type(), Versions: versions}
}

// PlatformToDocument returns the {name, type, versions} document of p.
func PlatformToDocument(p *entity.Platform) document.Document {
	versions := make([]any, 0, len(p.Versions()))
	for _, v := range p.Versions() {
		versions = append(versions, document.Document{document.KeyVersion: v.Version})
	}
	return document.Document{
		document.KeyName:     p.Name(),
		document.KeyType:     string(p.Type()),
		document.KeyVersions: versions,
	}
}

// PlatformFromDocument builds a platform from its document form.
func PlatformFromDocument(d document.Document) (*entity.Platform, error) {
	r := document.Read(platformKind, d)
	name := r.String(document.KeyName)
	rawType := r.String(document.KeyType)
	var versions []entity.PlatformVersion
	r.Each(document.KeyVersions, func(item *document.Reader) {
		versions = append(versions, entity.PlatformVersion{Version: item.String(document.KeyVersion)})
	})
	if err := r.Err(); err != nil {
		return nil, err
	}
	typ, err := wire.ParseGroupType(rawType)
	if err != nil {
		return nil, fault.BadField(platformKind, document.KeyType, err)
	}
	return entity.NewPlatform(name, typ, versions...)
}
