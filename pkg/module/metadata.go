package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/polocloud/polocloud/pkg/fault"
)

// MetadataFile is the file name ScanDirectory looks for.
const MetadataFile = "module.yaml"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Metadata describes a module.
type Metadata struct {
	ID          string `yaml:"id" validate:"required,max=64,excludesall=/"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description" validate:"required"`
	Author      string `yaml:"author" validate:"required"`
	Main        string `yaml:"main" validate:"required"`

	// Path is the file the metadata was loaded from, if any.
	Path string `yaml:"-"`
}

// Validate checks that every field is set.
func (m *Metadata) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fault.Invalid("invalid module metadata", err).WithEntity("module")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fault.Invalid(strings.Join(msgs, "; "), nil).
		WithEntity("module").
		WithField(strings.ToLower(verrs[0].Field()))
}

// ParseMetadata parses and validates YAML metadata.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fault.SchemaViolation("failed to parse module metadata YAML", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMetadata reads metadata from a YAML file.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module metadata: %w", err)
	}
	m, err := ParseMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("invalid module metadata %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// ScanDirectory loads the metadata of every subdirectory of dir holding a
// module.yaml. Invalid files are returned as a joined error next to the
// metadata that did load.
func ScanDirectory(dir string) ([]*Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var found []*Metadata
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), MetadataFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		m, err := LoadMetadata(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found = append(found, m)
	}
	return found, errors.Join(errs...)
}
