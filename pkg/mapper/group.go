package mapper

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/properties"
	"github.com/polocloud/polocloud/pkg/wire"
)

const groupKind = string(wire.KindGroup)

// GroupFromWire builds a group from its snapshot. Property values are
// re-inferred from their string literals.
func GroupFromWire(s wire.GroupSnapshot) (*entity.Group, error) {
	if s.Name == "" {
		return nil, fault.MissingField(groupKind, "name")
	}
	if s.Platform.Name == "" {
		return nil, fault.MissingField(groupKind, "platform.name")
	}
	if s.Platform.Version == "" {
		return nil, fault.MissingField(groupKind, "platform.version")
	}

	templates, err := templatesFromWire(groupKind, s.Templates)
	if err != nil {
		return nil, err
	}

	return entity.NewGroup(entity.GroupSpec{
		Name:             s.Name,
		MinMemory:        s.MinimumMemory,
		MaxMemory:        s.MaximumMemory,
		MinOnlineService: s.MinimumOnline,
		MaxOnlineService: s.MaximumOnline,
		Platform:         PlatformIndexFromWire(s.Platform),
		StartThreshold:   s.PercentageToStartNewService,
		CreatedAt:        s.CreatedAt,
		Templates:        templates,
		Properties:       properties.FromStrings(s.Properties),
	})
}

// GroupToWire returns the snapshot of g. Property values are written as
// their canonical literals.
func GroupToWire(g *entity.Group) wire.GroupSnapshot {
	return wire.GroupSnapshot{
		Name:                        g.Name(),
		MinimumMemory:               g.MinMemory(),
		MaximumMemory:               g.MaxMemory(),
		MinimumOnline:               g.MinOnlineService(),
		MaximumOnline:               g.MaxOnlineService(),
		Platform:                    PlatformIndexToWire(g.Platform()),
		PercentageToStartNewService: g.StartThreshold(),
		CreatedAt:                   g.CreatedAt(),
		Templates:                   templatesToWire(g.Templates()),
		Properties:                  g.Properties().Strings(),
	}
}

// GroupToDocument returns the document form of g. Templates are listed by
// name only.
func GroupToDocument(g *entity.Group) document.Document {
	props := make(map[string]any)
	for k, v := range g.Properties().All() {
		props[k] = v
	}
	names := make([]any, 0, len(g.Templates()))
	for _, t := range g.Templates() {
		names = append(names, t.Name())
	}
	return document.Document{
		document.KeyName:             g.Name(),
		document.KeyMinMemory:        g.MinMemory(),
		document.KeyMaxMemory:        g.MaxMemory(),
		document.KeyMinOnlineService: g.MinOnlineService(),
		document.KeyMaxOnlineService: g.MaxOnlineService(),
		document.KeyStartThreshold:   g.StartThreshold(),
		document.KeyCreatedAt:        g.CreatedAt(),
		document.KeyPlatform:         PlatformIndexToDocument(g.Platform()),
		document.KeyTemplates:        names,
		document.KeyProperties:       props,
	}
}

// GroupFromDocument builds a group from its document form.
func GroupFromDocument(d document.Document) (*entity.Group, error) {
	r := document.Read(groupKind, d)
	spec := entity.GroupSpec{
		Name:             r.String(document.KeyName),
		MinMemory:        r.Int32(document.KeyMinMemory),
		MaxMemory:        r.Int32(document.KeyMaxMemory),
		MinOnlineService: r.Int32(document.KeyMinOnlineService),
		MaxOnlineService: r.Int32(document.KeyMaxOnlineService),
		StartThreshold:   r.OptFloat64(document.KeyStartThreshold, 0),
		CreatedAt:        r.OptInt64(document.KeyCreatedAt, 0),
	}
	spec.Platform = platformIndexFromReader(r.Object(document.KeyPlatform))
	for _, name := range r.Strings(document.KeyTemplates) {
		spec.Templates = append(spec.Templates, entity.NewTemplate(name, ""))
	}
	props := r.Map(document.KeyProperties)
	if err := r.Err(); err != nil {
		return nil, err
	}

	holder, err := propertiesFromDocument(props)
	if err != nil {
		return nil, err
	}
	spec.Properties = holder
	return entity.NewGroup(spec)
}

// propertiesFromDocument rebuilds typed values from decoded document leaves.
// Keys are inserted in sorted order.
func propertiesFromDocument(m map[string]any) (*properties.Holder, error) {
	h := properties.New()
	for _, k := range sortedKeys(m) {
		v, err := propertyValue(m[k])
		if err != nil {
			return nil, fault.BadField(groupKind, "properties."+k, err)
		}
		h.Set(k, v)
	}
	return h, nil
}

func propertyValue(v any) (properties.Value, error) {
	switch t := v.(type) {
	case properties.Value:
		return t, nil
	case bool:
		return properties.Bool(t), nil
	case string:
		return properties.String(t), nil
	case json.Number:
		return properties.Parse(t.String()), nil
	case int:
		return intValue(int64(t)), nil
	case int32:
		return properties.Int(t), nil
	case int64:
		return intValue(t), nil
	case float32:
		return properties.Float(t), nil
	case float64:
		return properties.Double(t), nil
	}
	return properties.Value{}, fmt.Errorf("unsupported property value %T", v)
}

func intValue(i int64) properties.Value {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return properties.Double(float64(i))
	}
	return properties.Int(int32(i))
}
