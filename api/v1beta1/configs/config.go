// Package configs provides the global Configuration document for folio.
package configs

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/configurators"
	"github.com/macropower/folio/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/config/main.go -o configs.v1beta1.json

// Kind is the document kind.
const Kind = "Configuration"

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for global configurations.
	ValidKinds = []string{Kind}

	// DefaultValidator validates global configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the global folio configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Dispatch controls how configurators run.
	Dispatch         *configurator.Config  `json:"dispatch,omitempty" jsonschema:"title=Dispatch"`
	Folders          *configurators.Config `json:",inline"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new global [Config] with default values.
func New() *Config {
	c := &Config{TypeMeta: v1beta1.NewTypeMeta(Kind)}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Dispatch == nil {
		c.Dispatch = configurator.NewConfig()
	} else {
		c.Dispatch.EnsureDefaults()
	}

	if c.Folders == nil {
		c.Folders = configurators.NewConfig()
	} else {
		c.Folders.EnsureDefaults()
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Dispatch != nil {
		err := c.Dispatch.Validate()
		if err != nil {
			return fmt.Errorf("validate dispatch config: %w", err)
		}
	}

	if c.Folders != nil {
		err := c.Folders.Validate()
		if err != nil {
			return fmt.Errorf("validate configurators: %w", err)
		}
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Write writes the config to the specified path if it doesn't already exist.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// GetPath returns the path to the global configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
