package entity

import (
	"maps"
	"slices"
)

// BootConfiguration overrides group defaults for a single service boot.
type BootConfiguration struct {
	minMemory         *int32
	maxMemory         *int32
	templates         []string
	excludedTemplates []string
	properties        map[string]string
}

// BootOption configures a BootConfiguration.
type BootOption func(*BootConfiguration)

// NewBootConfiguration returns a configuration with opts applied.
func NewBootConfiguration(opts ...BootOption) BootConfiguration {
	var c BootConfiguration
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithMinMemory overrides the group minimum memory.
func WithMinMemory(mb int32) BootOption {
	return func(c *BootConfiguration) { c.minMemory = &mb }
}

// WithMaxMemory overrides the group maximum memory.
func WithMaxMemory(mb int32) BootOption {
	return func(c *BootConfiguration) { c.maxMemory = &mb }
}

// WithTemplate adds a template on top of the group templates.
func WithTemplate(name string) BootOption {
	return func(c *BootConfiguration) { c.templates = append(c.templates, name) }
}

// WithoutTemplate removes a group template for this boot.
func WithoutTemplate(name string) BootOption {
	return func(c *BootConfiguration) { c.excludedTemplates = append(c.excludedTemplates, name) }
}

// WithProperty sets a service property.
func WithProperty(key, value string) BootOption {
	return func(c *BootConfiguration) {
		if c.properties == nil {
			c.properties = make(map[string]string)
		}
		c.properties[key] = value
	}
}

// MinMemory returns the minimum memory override.
func (c BootConfiguration) MinMemory() (int32, bool) {
	if c.minMemory == nil {
		return 0, false
	}
	return *c.minMemory, true
}

// MaxMemory returns the maximum memory override.
func (c BootConfiguration) MaxMemory() (int32, bool) {
	if c.maxMemory == nil {
		return 0, false
	}
	return *c.maxMemory, true
}

// Templates returns the additional template names.
func (c BootConfiguration) Templates() []string { return slices.Clone(c.templates) }

// ExcludedTemplates returns the template names removed for this boot.
func (c BootConfiguration) ExcludedTemplates() []string { return slices.Clone(c.excludedTemplates) }

// Properties returns the service property overrides.
func (c BootConfiguration) Properties() map[string]string { return maps.Clone(c.properties) }

// Resolve merges c over the defaults of g into the spec of service id. The
// result starts in PREPARING; templates keep group order, minus exclusions,
// followed by additions not already present.
func (c BootConfiguration) Resolve(g *Group, typ GroupType, id int32) ServiceSpec {
	spec := ServiceSpec{
		GroupName:  g.Name(),
		ID:         id,
		State:      ServiceStatePreparing,
		Type:       typ,
		Properties: c.Properties(),
		MinMemory:  g.MinMemory(),
		MaxMemory:  g.MaxMemory(),
	}
	if v, ok := c.MinMemory(); ok {
		spec.MinMemory = v
	}
	if v, ok := c.MaxMemory(); ok {
		spec.MaxMemory = v
	}

	for _, t := range g.Templates() {
		if !slices.Contains(c.excludedTemplates, t.Name()) {
			spec.Templates = append(spec.Templates, t)
		}
	}
	for _, name := range c.templates {
		if slices.Contains(TemplateNames(spec.Templates), name) {
			continue
		}
		spec.Templates = append(spec.Templates, NewTemplate(name, ""))
	}
	return spec
}
