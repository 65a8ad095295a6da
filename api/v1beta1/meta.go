// Package v1beta1 contains the v1beta1 API types for folio documents.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all folio document kinds.
const APIVersion = "folio.jacobcolvin.com/v1beta1"

var (
	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}

	// ErrTypeMeta is returned when a document has an unexpected apiVersion or kind.
	ErrTypeMeta = errors.New("invalid type metadata")
)

// TypeMeta contains the API version and kind metadata common to all documents.
type TypeMeta struct {
	// APIVersion specifies the API version for this document.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of document.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// NewTypeMeta returns a [TypeMeta] for kind at the current [APIVersion].
func NewTypeMeta(kind string) TypeMeta {
	return TypeMeta{APIVersion: APIVersion, Kind: kind}
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check returns [ErrTypeMeta] unless the API version is known and the kind is
// one of kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("%w: unknown apiVersion %q", ErrTypeMeta, tm.APIVersion)
	}
	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w: unexpected kind %q, want one of %v", ErrTypeMeta, tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all document types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums adds apiVersion and kind enum constraints to a JSON
// schema and marks both properties as required.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	setConstants(jss, "apiVersion", "API Version", apiVersions)
	setConstants(jss, "kind", "Kind", kinds)

	for _, property := range []string{"apiVersion", "kind"} {
		if !slices.Contains(jss.Required, property) {
			jss.Required = append(jss.Required, property)
		}
	}
}

func setConstants(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	_, _ = jss.Properties.Set(property, prop)
}
