package override

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const tokenLength = 12

var (
	ErrOutsideRoot = errors.New("path is outside the workspace root")
	ErrEmptyPath   = errors.New("empty path")
)

// FileID is a stable reference to a file within a workspace.
//
// Path is workspace-relative, slash separated, cleaned and NFC normalized, so
// the same file yields the same [FileID] across reopen and across file systems
// that decompose file names. Two FileIDs refer to the same file iff their
// paths are equal. Token is a short digest of Path, persisted alongside it and
// shown to users; it is not unique and never used for lookups.
type FileID struct {
	Path  string
	Token string
}

// NewFileID returns the [FileID] for p, which may be absolute or relative to
// root. Paths that resolve outside of root are rejected with [ErrOutsideRoot].
func NewFileID(root, p string) (FileID, error) {
	if p == "" {
		return FileID{}, ErrEmptyPath
	}

	rel := p
	if filepath.IsAbs(p) {
		var err error

		rel, err = filepath.Rel(root, p)
		if err != nil {
			return FileID{}, fmt.Errorf("%w: %s", ErrOutsideRoot, p)
		}
	}

	id := ParseFileID(rel)
	if id.Path == "." || id.Path == ".." || strings.HasPrefix(id.Path, "../") || path.IsAbs(id.Path) {
		return FileID{}, fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}

	return id, nil
}

// ParseFileID returns the [FileID] for a workspace-relative path without
// checking that it stays inside the workspace.
func ParseFileID(rel string) FileID {
	p := norm.NFC.String(path.Clean(filepath.ToSlash(rel)))

	return FileID{Path: p, Token: tokenFor(p)}
}

func tokenFor(p string) string {
	sum := sha256.Sum256([]byte(p))

	return hex.EncodeToString(sum[:])[:tokenLength]
}

// Key returns the map key identifying the file.
func (f FileID) Key() string {
	return f.Path
}

// Name returns the last element of the path.
func (f FileID) Name() string {
	return path.Base(f.Path)
}

// Abs returns the absolute path of the file in the workspace rooted at root.
func (f FileID) Abs(root string) string {
	return filepath.Join(root, filepath.FromSlash(f.Path))
}

// IsZero reports whether f is the zero value.
func (f FileID) IsZero() bool {
	return f.Path == ""
}

func (f FileID) String() string {
	return f.Path
}
