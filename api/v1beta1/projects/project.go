// Package projects provides the Project document, which records how a
// workspace was configured when it was first opened.
package projects

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/project/main.go -o projects.v1beta1.json

// Kind is the document kind.
const Kind = "Project"

var (
	//go:embed projects.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for project documents.
	ValidKinds = []string{Kind}

	// DefaultValidator validates project documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/projects.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Project)(nil)
)

// Facet is a project capability enabled by a configurator.
type Facet struct {
	// Settings holds facet specific values.
	Settings map[string]string `json:"settings,omitempty" jsonschema:"title=Settings"`
	// Name identifies the facet, e.g. "go" or "python".
	Name string `json:"name" jsonschema:"required,title=Name"`
}

// Project describes a configured workspace.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Project struct {
	v1beta1.TypeMeta `json:",inline"`

	// Name is the project name.
	Name string `json:"name" jsonschema:"title=Name"`
	// Module is the module name derived by the configurators, if any.
	Module string `json:"module,omitempty" jsonschema:"title=Module"`
	// Facets are the facets enabled for the project, sorted by name.
	Facets []*Facet `json:"facets,omitempty" jsonschema:"title=Facets"`
	// CreatedByWizard is set when the folder was created by a project wizard.
	CreatedByWizard bool `json:"createdByWizard,omitempty" jsonschema:"title=Created By Wizard"`
}

// New creates a [Project] named name.
func New(name string) *Project {
	p := &Project{TypeMeta: v1beta1.NewTypeMeta(Kind), Name: name}
	p.EnsureDefaults()

	return p
}

// NewEmpty creates an unnamed [Project]. It is the constructor used when
// loading project documents.
func NewEmpty() *Project {
	return New("")
}

// EnsureDefaults initializes nil fields to their default values.
func (p *Project) EnsureDefaults() {
	if p.Facets == nil {
		p.Facets = []*Facet{}
	}
}

// EnableFacet enables the named facet, replacing the settings of an already
// enabled facet with the same name.
func (p *Project) EnableFacet(name string, settings map[string]string) {
	settings = maps.Clone(settings)

	for _, f := range p.Facets {
		if f.Name == name {
			f.Settings = settings

			return
		}
	}

	p.Facets = append(p.Facets, &Facet{Name: name, Settings: settings})
	slices.SortFunc(p.Facets, func(a, b *Facet) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Facet returns the enabled facet with the given name.
func (p *Project) Facet(name string) (*Facet, bool) {
	for _, f := range p.Facets {
		if f.Name == name {
			return f, true
		}
	}

	return nil, false
}

func (p Project) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the project to YAML.
func (p Project) MarshalYAML() ([]byte, error) {
	type alias Project

	b, err := api.MarshalYAML(alias(p))
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}

	return b, nil
}

// Write replaces the project document at path.
func (p Project) Write(path string) error {
	b, err := p.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteFileAtomic(path, b)
	if err != nil {
		return fmt.Errorf("write project: %w", err)
	}

	return nil
}

// GetPath returns the path of the project document of the workspace at root.
func GetPath(root string) string {
	return api.MetadataPath(root, "project.yaml")
}
