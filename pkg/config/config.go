package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/stores"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NodeConfig is the configuration of one node.
type NodeConfig struct {
	// Telemetry configures logging, tracing and metrics.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// Events configures event delivery.
	Events events.Config `yaml:"events"`

	// Store selects the provider storage backend.
	Store StoreConfig `yaml:"store"`

	// Modules configures module discovery.
	Modules ModulesConfig `yaml:"modules"`
}

// StoreConfig selects the provider storage backend.
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=memory sqlite"`

	// SQLite is required when Driver is sqlite.
	SQLite *stores.Config `yaml:"sqlite" validate:"required_if=Driver sqlite"`

	// Journal records every published event in the SQLite event log.
	Journal bool `yaml:"journal"`
}

// ModulesConfig configures module discovery.
type ModulesConfig struct {
	// Dir is scanned for <module>/module.yaml files. Empty disables discovery.
	Dir string `yaml:"dir"`

	// Disabled lists module ids that are never admitted.
	Disabled []string `yaml:"disabled" validate:"dive,required"`
}

// Default returns the configuration of a single in-memory node.
func Default() *NodeConfig {
	return &NodeConfig{
		Telemetry: *telemetry.DefaultConfig(),
		Events:    events.Config{Mode: events.ModeAsync},
		Store:     StoreConfig{Driver: DriverMemory},
		Modules:   ModulesConfig{Dir: "modules"},
	}
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*NodeConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fault.SchemaViolation("failed to parse node config YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the node configuration at path.
func Load(path string) (*NodeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *NodeConfig) Validate() error {
	if err := c.Telemetry.Validate(); err != nil {
		return fault.Invalid("invalid telemetry config", err).WithEntity("config").WithField("telemetry")
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fault.Invalid("invalid node config", err).WithEntity("config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fault.Invalid(strings.Join(msgs, "; "), nil).
		WithEntity("config").
		WithField(verrs[0].Field())
}

// Marshal renders the configuration as YAML.
func (c *NodeConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node config: %w", err)
	}
	return data, nil
}
