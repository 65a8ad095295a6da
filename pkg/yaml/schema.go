package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value. Field descriptions
// are taken from the Go doc comments found in the listed source directories.
type SchemaGenerator struct {
	value      any
	modulePath string
	dirs       []string
}

// NewSchemaGenerator creates a [SchemaGenerator] for v. modulePath is the Go
// module path, and each of dirs is a source directory relative to the module root.
func NewSchemaGenerator(v any, modulePath string, dirs ...string) *SchemaGenerator {
	return &SchemaGenerator{
		value:      v,
		modulePath: modulePath,
		dirs:       dirs,
	}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	for _, dir := range g.dirs {
		err := r.AddGoComments(g.modulePath, dir)
		if err != nil {
			return nil, fmt.Errorf("add go comments from %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(r.Reflect(g.value), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}
