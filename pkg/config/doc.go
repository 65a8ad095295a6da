// Package config loads and validates folio documents.
//
// A [Loader] validates YAML against a document's JSON schema, decodes it
// into the document type, optionally checks its kind, and fills defaults.
// Errors are annotated with the offending source location.
package config
