package entity

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// DefaultTemplateSize is reported when a template's size is not known.
const DefaultTemplateSize = "unknown"

// SizedArtifact is anything that can report a display size.
type SizedArtifact interface {
	Size() string
}

// Template is a named, sized bundle of files copied into a service on boot.
// Templates are identified by name alone.
type Template interface {
	SizedArtifact
	Name() string
}

// StaticTemplate is a template whose size was reported by another node.
type StaticTemplate struct {
	name string
	size string
}

// NewTemplate returns a StaticTemplate. An empty size becomes
// DefaultTemplateSize.
func NewTemplate(name, size string) StaticTemplate {
	if size == "" {
		size = DefaultTemplateSize
	}
	return StaticTemplate{name: name, size: size}
}

// Name implements Template.
func (t StaticTemplate) Name() string { return t.name }

// Size implements SizedArtifact.
func (t StaticTemplate) Size() string { return t.size }

// ComputedTemplate is a template whose size is measured on demand, typically
// on the node that stores its files.
type ComputedTemplate struct {
	name    string
	measure func() (int64, error)
}

// NewComputedTemplate returns a template sized by measure.
func NewComputedTemplate(name string, measure func() (int64, error)) ComputedTemplate {
	return ComputedTemplate{name: name, measure: measure}
}

// NewDirectoryTemplate returns a template sized by the total size of the
// regular files below dir.
func NewDirectoryTemplate(name, dir string) ComputedTemplate {
	return NewComputedTemplate(name, func() (int64, error) {
		return DirectorySize(dir)
	})
}

// Name implements Template.
func (t ComputedTemplate) Name() string { return t.name }

// Size implements SizedArtifact. Measurement failures report
// DefaultTemplateSize.
func (t ComputedTemplate) Size() string {
	if t.measure == nil {
		return DefaultTemplateSize
	}
	n, err := t.measure()
	if err != nil {
		return DefaultTemplateSize
	}
	return HumanReadableSize(n)
}

// SameTemplate reports whether a and b name the same template.
func SameTemplate(a, b Template) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// SameTemplates reports whether two template lists name the same templates
// in the same order.
func SameTemplates(a, b []Template) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameTemplate(a[i], b[i]) {
			return false
		}
	}
	return true
}

// TemplateNames returns the names of ts in order.
func TemplateNames(ts []Template) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name()
	}
	return names
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanReadableSize formats a byte count with one decimal and a 1024-based
// unit, for example "1.5 MB". Zero and negative sizes are "empty".
func HumanReadableSize(bytes int64) string {
	if bytes <= 0 {
		return "empty"
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, sizeUnits[unit])
}

// DirectorySize sums the sizes of all regular files below dir.
func DirectorySize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", dir, err)
	}
	return total, nil
}
