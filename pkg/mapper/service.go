package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

const serviceKind = string(wire.KindService)

// ServiceFromWire builds a service from its snapshot.
func ServiceFromWire(s wire.ServiceSnapshot) (*entity.Service, error) {
	if s.GroupName == "" {
		return nil, fault.MissingField(serviceKind, "groupName")
	}
	if !s.State.Valid() {
		return nil, fault.BadField(serviceKind, "state", fmt.Errorf("unknown state %q", s.State))
	}
	if !s.ServerType.Valid() {
		return nil, fault.BadField(serviceKind, "serverType", fmt.Errorf("unknown type %q", s.ServerType))
	}
	templates, err := templatesFromWire(serviceKind, s.Templates)
	if err != nil {
		return nil, err
	}

	return entity.NewService(entity.ServiceSpec{
		GroupName:   s.GroupName,
		ID:          s.ID,
		State:       s.State,
		Type:        s.ServerType,
		Properties:  s.Properties,
		Hostname:    s.Hostname,
		Port:        s.Port,
		Templates:   templates,
		Information: ServiceInformationFromWire(s.Information),
		MinMemory:   s.MinimumMemory,
		MaxMemory:   s.MaximumMemory,
		Metrics: &entity.ServiceMetrics{
			PlayerCount:    s.PlayerCount,
			MaxPlayerCount: s.MaxPlayerCount,
			MemoryUsage:    s.MemoryUsage,
			CPUUsage:       s.CPUUsage,
		},
		Motd: s.Motd,
	})
}

// ServiceToWire returns the snapshot of s, metrics included.
func ServiceToWire(s *entity.Service) wire.ServiceSnapshot {
	return wire.ServiceSnapshot{
		GroupName:      s.GroupName(),
		ID:             s.ID(),
		State:          s.State(),
		ServerType:     s.Type(),
		Properties:     s.Properties(),
		Hostname:       s.Hostname(),
		Port:           s.Port(),
		Templates:      templatesToWire(s.Templates()),
		Information:    ServiceInformationToWire(s.Information()),
		MinimumMemory:  s.MinMemory(),
		MaximumMemory:  s.MaxMemory(),
		MaxPlayerCount: s.MaxPlayerCount(),
		PlayerCount:    s.PlayerCount(),
		MemoryUsage:    s.MemoryUsage(),
		CPUUsage:       s.CPUUsage(),
		Motd:           s.Motd(),
	}
}

// ServiceToDocument returns the document form of s. The derived name is
// included for readers; id and information keep the form lossless.
func ServiceToDocument(s *entity.Service) document.Document {
	templates := make([]any, 0, len(s.Templates()))
	for _, t := range s.Templates() {
		templates = append(templates, TemplateToDocument(t))
	}
	props := make(map[string]any, len(s.Properties()))
	for k, v := range s.Properties() {
		props[k] = v
	}
	return document.Document{
		document.KeyName:           s.Name(),
		document.KeyID:             s.ID(),
		document.KeyGroupName:      s.GroupName(),
		document.KeyState:          string(s.State()),
		document.KeyType:           string(s.Type()),
		document.KeyHostname:       s.Hostname(),
		document.KeyPort:           s.Port(),
		document.KeyTemplates:      templates,
		document.KeyProperties:     props,
		document.KeyInformation:    ServiceInformationToDocument(s.Information()),
		document.KeyMinMemory:      s.MinMemory(),
		document.KeyMaxMemory:      s.MaxMemory(),
		document.KeyPlayerCount:    s.PlayerCount(),
		document.KeyMaxPlayerCount: s.MaxPlayerCount(),
		document.KeyMemoryUsage:    s.MemoryUsage(),
		document.KeyCPUUsage:       s.CPUUsage(),
		document.KeyMotd:           s.Motd(),
	}
}

// ServiceFromDocument builds a service from its document form. When a name
// is present it must match the one derived from groupName and id.
func ServiceFromDocument(d document.Document) (*entity.Service, error) {
	r := document.Read(serviceKind, d)
	groupName := r.String(document.KeyGroupName)
	id := r.Int32(document.KeyID)
	rawState := r.String(document.KeyState)
	rawType := r.String(document.KeyType)
	name := r.OptString(document.KeyName, "")

	spec := entity.ServiceSpec{
		GroupName: groupName,
		ID:        id,
		Hostname:  r.OptString(document.KeyHostname, ""),
		Port:      r.OptInt32(document.KeyPort, 0),
		MinMemory: r.Int32(document.KeyMinMemory),
		MaxMemory: r.Int32(document.KeyMaxMemory),
		Metrics: &entity.ServiceMetrics{
			PlayerCount:    r.OptInt32(document.KeyPlayerCount, entity.Unknown),
			MaxPlayerCount: r.OptInt32(document.KeyMaxPlayerCount, entity.Unknown),
			MemoryUsage:    r.OptFloat64(document.KeyMemoryUsage, entity.Unknown),
			CPUUsage:       r.OptFloat64(document.KeyCPUUsage, entity.Unknown),
		},
		Motd: r.OptString(document.KeyMotd, ""),
	}
	r.Each(document.KeyTemplates, func(item *document.Reader) {
		spec.Templates = append(spec.Templates, templateFromReader(item))
	})
	if info := r.OptObject(document.KeyInformation); info != nil {
		spec.Information = entity.ServiceInformation{CreatedAt: info.Int64(document.KeyCreatedAt)}
	}
	props := r.Map(document.KeyProperties)
	if err := r.Err(); err != nil {
		return nil, err
	}

	var err error
	if spec.State, err = wire.ParseServiceState(rawState); err != nil {
		return nil, fault.BadField(serviceKind, document.KeyState, err)
	}
	if spec.Type, err = wire.ParseGroupType(rawType); err != nil {
		return nil, fault.BadField(serviceKind, document.KeyType, err)
	}
	if name != "" && name != entity.ServiceName(groupName, id) {
		return nil, fault.BadField(serviceKind, document.KeyName,
			fmt.Errorf("name %q does not match %q", name, entity.ServiceName(groupName, id)))
	}

	spec.Properties = make(map[string]string, len(props))
	for k, v := range props {
		s, err := scalarString(v)
		if err != nil {
			return nil, fault.BadField(serviceKind, "properties."+k, err)
		}
		spec.Properties[k] = s
	}
	return entity.NewService(spec)
}

// ServiceInformationFromWire converts static service facts.
func ServiceInformationFromWire(s wire.ServiceInformationSnapshot) entity.ServiceInformation {
	return entity.ServiceInformation{CreatedAt: s.CreatedAt}
}

// ServiceInformationToWire converts static service facts.
func ServiceInformationToWire(i entity.ServiceInformation) wire.ServiceInformationSnapshot {
	return wire.ServiceInformationSnapshot{CreatedAt: i.CreatedAt}
}

// ServiceInformationToDocument returns the {createdAt} document of i.
func ServiceInformationToDocument(i entity.ServiceInformation) document.Document {
	return document.Document{document.KeyCreatedAt: i.CreatedAt}
}

// ServiceInformationFromDocument reads static service facts.
func ServiceInformationFromDocument(d document.Document) (entity.ServiceInformation, error) {
	r := document.Read(string(wire.KindServiceInformation), d)
	info := entity.ServiceInformation{CreatedAt: r.Int64(document.KeyCreatedAt)}
	return info, r.Err()
}

// scalarString renders a decoded scalar document leaf as a string.
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool, int, int32, int64, float64:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("expected scalar, got %T", v)
}
