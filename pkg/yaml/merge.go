package yaml

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// ErrNotMapping is returned by [SetKey] when the document root is not a mapping.
var ErrNotMapping = errors.New("document root is not a mapping")

// SetKey sets the top-level key of the YAML document in data to v, adding the
// key when it is absent. Comments and other keys are kept as they are.
func SetKey(data []byte, key string, v any) ([]byte, error) {
	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	update := map[string]any{key: v}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		var buf bytes.Buffer

		enc := NewEncoder(&buf)
		if err := enc.Encode(update); err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}

		return buf.Bytes(), nil
	}

	switch file.Docs[0].Body.(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
	default:
		return nil, ErrNotMapping
	}

	node, err := yaml.ValueToNode(update, DefaultEncoderOptions...)
	if err != nil {
		return nil, fmt.Errorf("convert %s to node: %w", key, err)
	}

	err = NewPathBuilder().Root().Build().MergeFromNode(file, node)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}

	return []byte(file.String()), nil
}
