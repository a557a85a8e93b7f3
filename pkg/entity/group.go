package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/polocloud/polocloud/pkg/properties"
	"github.com/polocloud/polocloud/pkg/wire"
)

// GroupSpec describes a group to construct.
type GroupSpec struct {
	Name             string        `validate:"required"`
	MinMemory        int32         `validate:"gte=0"`
	MaxMemory        int32         `validate:"gtefield=MinMemory"`
	MinOnlineService int32         `validate:"gte=0"`
	MaxOnlineService int32         `validate:"gtefield=MinOnlineService"`
	Platform         PlatformIndex `validate:"required"`
	StartThreshold   float64       `validate:"gte=0,lte=1"`

	// CreatedAt is epoch milliseconds. Zero means not yet stamped; providers
	// stamp it on creation.
	CreatedAt  int64
	Templates  []Template
	Properties *properties.Holder
}

// Group is a named template for launching service instances with shared
// memory bounds, scaling limits, platform and templates.
type Group struct {
	name             string
	minMemory        int32
	maxMemory        int32
	minOnlineService int32
	maxOnlineService int32
	platform         PlatformIndex
	startThreshold   float64
	createdAt        int64
	templates        []Template
	properties       *properties.Holder
}

// NewGroup validates spec and returns the group it describes.
func NewGroup(spec GroupSpec) (*Group, error) {
	if err := check(wire.KindGroup, spec); err != nil {
		return nil, err
	}
	return &Group{
		name:             spec.Name,
		minMemory:        spec.MinMemory,
		maxMemory:        spec.MaxMemory,
		minOnlineService: spec.MinOnlineService,
		maxOnlineService: spec.MaxOnlineService,
		platform:         spec.Platform,
		startThreshold:   spec.StartThreshold,
		createdAt:        spec.CreatedAt,
		templates:        slices.Clone(spec.Templates),
		properties:       spec.Properties.Clone(),
	}, nil
}

// Name returns the group name, its identity.
func (g *Group) Name() string { return g.name }

// MinMemory returns the minimum memory of each service in megabytes.
func (g *Group) MinMemory() int32 { return g.minMemory }

// MaxMemory returns the maximum memory of each service in megabytes.
func (g *Group) MaxMemory() int32 { return g.maxMemory }

// MinOnlineService returns how many services are kept online at least.
func (g *Group) MinOnlineService() int32 { return g.minOnlineService }

// MaxOnlineService returns how many services may be online at most.
func (g *Group) MaxOnlineService() int32 { return g.maxOnlineService }

// Platform returns the platform the group runs.
func (g *Group) Platform() PlatformIndex { return g.platform }

// StartThreshold returns the player fill ratio at which a new service is
// started.
func (g *Group) StartThreshold() float64 { return g.startThreshold }

// CreatedAt returns the creation time in epoch milliseconds.
func (g *Group) CreatedAt() int64 { return g.createdAt }

// Stamped returns g with its creation time set to now, or g itself when it
// already carries one.
func (g *Group) Stamped(now time.Time) *Group {
	if g.createdAt != 0 {
		return g
	}
	c := *g
	c.createdAt = now.UnixMilli()
	return &c
}

// Templates returns the ordered templates applied to each service.
func (g *Group) Templates() []Template { return slices.Clone(g.templates) }

// Properties returns a copy of the group properties.
func (g *Group) Properties() *properties.Holder { return g.properties.Clone() }

// Spec returns a GroupSpec reproducing g.
func (g *Group) Spec() GroupSpec {
	return GroupSpec{
		Name:             g.name,
		MinMemory:        g.minMemory,
		MaxMemory:        g.maxMemory,
		MinOnlineService: g.minOnlineService,
		MaxOnlineService: g.maxOnlineService,
		Platform:         g.platform,
		StartThreshold:   g.startThreshold,
		CreatedAt:        g.createdAt,
		Templates:        g.Templates(),
		Properties:       g.Properties(),
	}
}

// GroupPatch lists the fields of a group to change. Nil fields are kept.
// Name and creation time cannot be patched.
type GroupPatch struct {
	MinMemory        *int32
	MaxMemory        *int32
	MinOnlineService *int32
	MaxOnlineService *int32
	Platform         *PlatformIndex
	StartThreshold   *float64
	Templates        []Template
	Properties       *properties.Holder
}

// Patch returns a new group with p applied. The result is validated like a
// newly constructed group; g itself is never modified.
func (g *Group) Patch(p GroupPatch) (*Group, error) {
	spec := g.Spec()
	if p.MinMemory != nil {
		spec.MinMemory = *p.MinMemory
	}
	if p.MaxMemory != nil {
		spec.MaxMemory = *p.MaxMemory
	}
	if p.MinOnlineService != nil {
		spec.MinOnlineService = *p.MinOnlineService
	}
	if p.MaxOnlineService != nil {
		spec.MaxOnlineService = *p.MaxOnlineService
	}
	if p.Platform != nil {
		spec.Platform = *p.Platform
	}
	if p.StartThreshold != nil {
		spec.StartThreshold = *p.StartThreshold
	}
	if p.Templates != nil {
		spec.Templates = p.Templates
	}
	if p.Properties != nil {
		spec.Properties = p.Properties
	}
	return NewGroup(spec)
}

// ServiceName returns the name of the service with the given id in g.
func (g *Group) ServiceName(id int32) string {
	return ServiceName(g.name, id)
}

// Equal reports whether g and o hold the same values. Templates compare by
// name.
func (g *Group) Equal(o *Group) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.name == o.name &&
		g.minMemory == o.minMemory &&
		g.maxMemory == o.maxMemory &&
		g.minOnlineService == o.minOnlineService &&
		g.maxOnlineService == o.maxOnlineService &&
		g.platform == o.platform &&
		g.startThreshold == o.startThreshold &&
		g.createdAt == o.createdAt &&
		SameTemplates(g.templates, o.templates) &&
		g.properties.Equal(o.properties)
}

// String implements fmt.Stringer.
func (g *Group) String() string {
	return fmt.Sprintf("Group(%s, %s, %d-%dMB)", g.name, g.platform, g.minMemory, g.maxMemory)
}
