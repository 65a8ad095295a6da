package yaml

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// DefaultEncoderOptions are applied to every encoder and value-to-node conversion,
// so that documents written by folio share one layout.
var DefaultEncoderOptions = []yaml.EncodeOption{
	yaml.Indent(2),
	yaml.IndentSequence(true),
}

// Encoder writes YAML documents using [DefaultEncoderOptions].
type Encoder struct {
	e *yaml.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{e: yaml.NewEncoder(w, DefaultEncoderOptions...)}
}

func (e *Encoder) Encode(v any) error {
	return e.e.Encode(v) //nolint:wrapcheck // Return the original error.
}

func (e *Encoder) Close() error {
	return e.e.Close() //nolint:wrapcheck // Return the original error.
}

// Decoder reads YAML documents. Errors produced by the parser are converted
// into [*Error] values carrying the offending token.
type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{d: yaml.NewDecoder(r, yaml.AllowDuplicateMapKey())}
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return err //nolint:wrapcheck // Return the original error.
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return NewError(errors.New(yamlErr.GetMessage()), WithToken(yamlErr.GetToken()))
	}

	return err //nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
}

// Unmarshal decodes a single document from data into v.
// An empty document leaves v untouched.
func Unmarshal(data []byte, v any) error {
	if isEmpty(data) {
		return nil
	}

	err := NewDecoder(bytes.NewReader(data)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// isEmpty reports whether data holds no document body, only whitespace or
// comments. Unparsable data is not empty, so the decoder reports the error.
func isEmpty(data []byte) bool {
	if len(bytes.TrimSpace(data)) == 0 {
		return true
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return false
	}

	for _, doc := range file.Docs {
		if doc.Body != nil {
			if _, ok := doc.Body.(*ast.CommentGroupNode); !ok {
				return false
			}
		}
	}

	return true
}
