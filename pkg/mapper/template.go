package mapper

import (
	"maps"
	"slices"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

const templateKind = string(wire.KindTemplate)

// TemplateFromWire builds a template from its snapshot. A missing size
// becomes entity.DefaultTemplateSize.
func TemplateFromWire(s wire.TemplateSnapshot) (entity.Template, error) {
	if s.Name == "" {
		return nil, fault.MissingField(templateKind, "name")
	}
	return entity.NewTemplate(s.Name, s.Size), nil
}

// TemplateToWire returns the snapshot of t. Computed templates are measured.
func TemplateToWire(t entity.Template) wire.TemplateSnapshot {
	return wire.TemplateSnapshot{Name: t.Name(), Size: t.Size()}
}

// TemplateToDocument returns the document form of t.
func TemplateToDocument(t entity.Template) document.Document {
	return document.Document{
		document.KeyName: t.Name(),
		document.KeySize: t.Size(),
	}
}

// TemplateFromDocument builds a template from its document form.
func TemplateFromDocument(d document.Document) (entity.Template, error) {
	r := document.Read(templateKind, d)
	t := templateFromReader(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func templateFromReader(r *document.Reader) entity.Template {
	return entity.NewTemplate(r.String(document.KeyName), r.OptString(document.KeySize, ""))
}

func templatesFromWire(owner string, in []wire.TemplateSnapshot) ([]entity.Template, error) {
	out := make([]entity.Template, 0, len(in))
	for _, s := range in {
		if s.Name == "" {
			return nil, fault.MissingField(owner, "templates.name")
		}
		out = append(out, entity.NewTemplate(s.Name, s.Size))
	}
	return out, nil
}

func templatesToWire(in []entity.Template) []wire.TemplateSnapshot {
	out := make([]wire.TemplateSnapshot, 0, len(in))
	for _, t := range in {
		out = append(out, TemplateToWire(t))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
