package entity

import (
	"fmt"
	"slices"

	"github.com/polocloud/polocloud/pkg/wire"
)

// PlatformIndex references one version of a platform.
type PlatformIndex struct {
	Name    string `validate:"required"`
	Version string `validate:"required"`
}

// String implements fmt.Stringer.
func (p PlatformIndex) String() string {
	return fmt.Sprintf("%s-%s", p.Name, p.Version)
}

// PlatformVersion is one release of a platform.
type PlatformVersion struct {
	Version string `validate:"required"`
}

// Platform is a server or proxy software family and the versions the cloud
// knows how to run.
type Platform struct {
	name     string
	typ      GroupType
	versions []PlatformVersion
}

// NewPlatform returns a platform. Version uniqueness is the caller's
// responsibility.
func NewPlatform(name string, typ GroupType, versions ...PlatformVersion) (*Platform, error) {
	p := &Platform{name: name, typ: typ, versions: slices.Clone(versions)}
	if err := check(wire.KindPlatform, struct {
		Name     string            `validate:"required"`
		Type     GroupType         `validate:"oneof=SERVER PROXY SERVICE"`
		Versions []PlatformVersion `validate:"omitempty,dive"`
	}{name, typ, versions}); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the platform name.
func (p *Platform) Name() string { return p.name }

// Type returns the kind of group the platform runs.
func (p *Platform) Type() GroupType { return p.typ }

// Versions returns the known versions in order.
func (p *Platform) Versions() []PlatformVersion { return slices.Clone(p.versions) }

// Index returns a reference to version of p, if p knows it.
func (p *Platform) Index(version string) (PlatformIndex, bool) {
	for _, v := range p.versions {
		if v.Version == version {
			return PlatformIndex{Name: p.name, Version: version}, true
		}
	}
	return PlatformIndex{}, false
}

// Equal reports whether p and o describe the same platform.
func (p *Platform) Equal(o *Platform) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.name == o.name && p.typ == o.typ && slices.Equal(p.versions, o.versions)
}
