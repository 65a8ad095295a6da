package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/pkg/yaml"
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator Validator
	kinds     []string
}

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithKinds restricts the accepted document kinds. Loading a document with
// another kind fails with [v1beta1.ErrTypeMeta].
func WithKinds(kinds ...string) LoaderOpt {
	return func(o *loaderOptions) {
		o.kinds = kinds
	}
}

// Loader is a generic document loader that handles validation, YAML parsing,
// and error annotation for any document type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	yamlError *yaml.ErrorWrapper
	kinds     []string
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., configs.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{validator: defaultValidator}
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		kinds:     options.kinds,
		yamlError: yaml.NewErrorWrapper(yaml.WithSource(data)),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, newFunc, defaultValidator, opts...), nil
}

// Validate validates the document against the schema.
func (l *Loader[T]) Validate() error {
	var doc any

	err := yaml.Unmarshal(l.data, &doc)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator == nil {
		return nil
	}

	return l.yamlError.Wrap(l.validator.Validate(doc))
}

// Load parses and returns the document.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	doc := l.newFunc()

	err := yaml.Unmarshal(l.data, doc)
	if err != nil {
		return zero, l.yamlError.Wrap(err)
	}

	if len(l.kinds) > 0 {
		// Decoded on its own so that defaults set by newFunc cannot stand in
		// for fields missing from the document.
		var tm v1beta1.TypeMeta

		err = yaml.Unmarshal(l.data, &tm)
		if err != nil {
			return zero, l.yamlError.Wrap(err)
		}

		err = tm.Check(l.kinds...)
		if err != nil {
			return zero, err //nolint:wrapcheck // Already descriptive.
		}
	}

	doc.EnsureDefaults()

	return doc, nil
}

// LoadFile validates and loads the document at path.
// If the file does not exist, it returns a new default document and
// found=false.
//
//nolint:ireturn // Generic type parameter return is intentional.
func LoadFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (doc T, found bool, err error) {
	l, err := NewLoaderFromFile(path, newFunc, defaultValidator, opts...)
	if errors.Is(err, fs.ErrNotExist) {
		return newFunc(), false, nil
	}
	if err != nil {
		return doc, false, err
	}

	err = l.Validate()
	if err != nil {
		return doc, true, fmt.Errorf("validate %q: %w", path, err)
	}

	doc, err = l.Load()
	if err != nil {
		return doc, true, fmt.Errorf("load %q: %w", path, err)
	}

	return doc, true, nil
}
