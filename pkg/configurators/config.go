package configurators

import (
	"errors"
	"fmt"
	"path"

	"github.com/macropower/folio/pkg/rule"
)

var (
	ErrDuplicateName = errors.New("duplicate configurator name")
	ErrReservedName  = errors.New("reserved configurator name")
)

// Config declares rule configurators, default overrides and the folder scan
// that feeds them.
type Config struct {
	// Scan controls which files rules and default overrides see.
	Scan *ScanConfig `json:"scan,omitempty" jsonschema:"title=Scan"`
	// Configurators are rule configurators, registered in order after the
	// built-in configurators.
	Configurators []*RuleConfig `json:"configurators,omitempty" jsonschema:"title=Configurators"`
	// Overrides are applied to matching files that have no override yet,
	// when a folder is configured for the first time.
	Overrides []*OverridePattern `json:"overrides,omitempty" jsonschema:"title=Default Overrides"`
}

// ScanConfig controls the folder listing.
type ScanConfig struct {
	// MaxDepth limits how many directory levels below the folder are listed.
	MaxDepth *int `json:"maxDepth,omitempty" jsonschema:"title=Max Depth,minimum=0"`
	// Exclude lists directory names or globs that are not listed.
	Exclude []string `json:"exclude,omitempty" jsonschema:"title=Exclude"`
}

// RuleConfig declares a configurator that applies when a CEL rule matches.
type RuleConfig struct {
	rule *rule.Rule

	// Name identifies the configurator.
	Name string `json:"name" jsonschema:"required,title=Name"`
	// Match is a CEL expression evaluated against the folder.
	Match string `json:"match" jsonschema:"required,title=Match Expression"`
	// Module is reported as the project module when the rule matches.
	// $DIR expands to the folder name and $PROJECT to the project name.
	Module string `json:"module,omitempty" jsonschema:"title=Module"`
	// Facets are enabled when the rule matches.
	Facets []*FacetConfig `json:"facets,omitempty" jsonschema:"title=Facets"`
	// Primary runs the configurator on the primary context instead of a
	// background worker.
	Primary bool `json:"primary,omitempty" jsonschema:"title=Primary"`
}

// FacetConfig is a facet enabled by a [RuleConfig].
type FacetConfig struct {
	// Settings holds facet specific values.
	Settings map[string]string `json:"settings,omitempty" jsonschema:"title=Settings"`
	// Name identifies the facet.
	Name string `json:"name" jsonschema:"required,title=Name"`
}

// OverridePattern assigns a type to files matching a glob.
type OverridePattern struct {
	// Pattern is a glob. Patterns containing a slash match the
	// folder-relative path, others match the file name.
	Pattern string `json:"pattern" jsonschema:"required,title=Pattern"`
	// Type is the content type assigned to matching files.
	Type string `json:"type" jsonschema:"required,title=Type"`
}

// NewConfig creates a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Scan == nil {
		c.Scan = &ScanConfig{}
	}

	c.Scan.EnsureDefaults()

	if c.Configurators == nil {
		c.Configurators = []*RuleConfig{}
	}
	if c.Overrides == nil {
		c.Overrides = []*OverridePattern{}
	}
}

// Validate compiles every rule and checks names and patterns.
func (c *Config) Validate() error {
	seen := map[string]struct{}{
		GoModName:            {},
		DefaultOverridesName: {},
	}

	for i, rc := range c.Configurators {
		if _, ok := seen[rc.Name]; ok {
			if rc.Name == GoModName || rc.Name == DefaultOverridesName {
				return fmt.Errorf("configurators[%d]: %w: %q", i, ErrReservedName, rc.Name)
			}

			return fmt.Errorf("configurators[%d]: %w: %q", i, ErrDuplicateName, rc.Name)
		}

		seen[rc.Name] = struct{}{}

		err := rc.CompileMatch()
		if err != nil {
			return fmt.Errorf("configurators[%d]: %w", i, err)
		}
	}

	for i, op := range c.Overrides {
		_, err := path.Match(op.Pattern, "")
		if err != nil {
			return fmt.Errorf("overrides[%d]: pattern %q: %w", i, op.Pattern, err)
		}
	}

	return nil
}

// EnsureDefaults initializes nil fields to their default values.
func (s *ScanConfig) EnsureDefaults() {
	if s.MaxDepth == nil {
		depth := rule.DefaultMaxDepth
		s.MaxDepth = &depth
	}
	if s.Exclude == nil {
		s.Exclude = append([]string{}, rule.DefaultExclude...)
	}
}

// Options returns the listing options.
func (s *ScanConfig) Options() rule.ListOptions {
	opts := rule.ListOptions{MaxDepth: rule.DefaultMaxDepth, Exclude: s.Exclude}
	if s.MaxDepth != nil {
		opts.MaxDepth = *s.MaxDepth
	}

	return opts
}

// CompileMatch compiles the rule's match expression.
func (rc *RuleConfig) CompileMatch() error {
	if rc.rule != nil {
		return nil
	}

	r, err := rule.New(rc.Match)
	if err != nil {
		return fmt.Errorf("%s: %w", rc.Name, err)
	}

	rc.rule = r

	return nil
}
