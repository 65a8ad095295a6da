// Package overrides provides the FileTypeOverrides document, which persists
// per-file content type overrides of a workspace.
package overrides

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/overrides/main.go -o overrides.v1beta1.json

// Kind is the document kind.
const Kind = "FileTypeOverrides"

var (
	//go:embed overrides.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for override documents.
	ValidKinds = []string{Kind}

	// DefaultValidator validates override documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/overrides.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*FileTypeOverrides)(nil)
)

// File is a single override.
type File struct {
	// Path is the workspace-relative, slash separated file path.
	Path string `json:"path" jsonschema:"required,title=Path"`
	// Token identifies the file. It is derived from the path and rewritten on save.
	Token string `json:"token,omitempty" jsonschema:"title=Token"`
	// Type is the content type the file is treated as.
	Type string `json:"type" jsonschema:"required,title=Type"`
}

// FileTypeOverrides lists the file type overrides of a workspace.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type FileTypeOverrides struct {
	v1beta1.TypeMeta `json:",inline"`

	Files []*File `json:"files,omitempty" jsonschema:"title=Files"`
}

// New creates an empty [FileTypeOverrides] document.
func New() *FileTypeOverrides {
	o := &FileTypeOverrides{TypeMeta: v1beta1.NewTypeMeta(Kind)}
	o.EnsureDefaults()

	return o
}

// EnsureDefaults initializes nil fields to their default values.
func (o *FileTypeOverrides) EnsureDefaults() {
	if o.Files == nil {
		o.Files = []*File{}
	}
}

func (o FileTypeOverrides) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the document to YAML.
func (o FileTypeOverrides) MarshalYAML() ([]byte, error) {
	type alias FileTypeOverrides

	b, err := api.MarshalYAML(alias(o))
	if err != nil {
		return nil, fmt.Errorf("marshal overrides: %w", err)
	}

	return b, nil
}

// GetPath returns the path of the overrides document of the workspace at root.
func GetPath(root string) string {
	return api.MetadataPath(root, "overrides.yaml")
}
