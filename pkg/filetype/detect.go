// Package filetype resolves the content type of workspace files, taking
// overrides into account.
package filetype

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is the type of files no lexer matches.
const PlainText = "plaintext"

// Detector detects content types from file names, using the chroma lexer
// registry. Type identifiers are lexer names, e.g. "Go" or "YAML".
type Detector struct{}

// NewDetector creates a [Detector].
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the content type for the file name of p.
func (d *Detector) Detect(p string) string {
	l := lexers.Match(filepath.Base(p))
	if l == nil {
		return PlainText
	}

	return l.Config().Name
}

// Canonical returns the lexer name for a type name, alias or file
// extension, e.g. "golang" or "go" both yield "Go". Unknown types are
// returned unchanged with ok=false.
func (d *Detector) Canonical(typ string) (name string, ok bool) {
	l := lexers.Get(typ)
	if l == nil {
		return typ, false
	}

	return l.Config().Name, true
}

// Known reports whether typ names a known content type.
func (d *Detector) Known(typ string) bool {
	_, ok := d.Canonical(typ)

	return ok
}

// Types returns the names of all known content types.
func (d *Detector) Types() []string {
	return lexers.Names(false)
}
