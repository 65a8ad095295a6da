package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
)

// DefaultMaxDepth is the default number of directory levels listed below the
// folder root.
const DefaultMaxDepth = 3

// DefaultExclude lists directory names that are never listed.
var DefaultExclude = []string{".git", ".folio", ".hg", ".svn", "node_modules", "vendor"}

// Folder is the input to [Rule.MatchFolder].
type Folder struct {
	// Dir is the absolute folder path.
	Dir string
	// Files are absolute file paths within Dir.
	Files []string
	// Wizard reports whether the folder was just created by a project wizard.
	Wizard bool
}

// ListOptions control [ListFolder].
type ListOptions struct {
	// Exclude holds directory names (or globs matched against the name) that
	// are skipped.
	Exclude []string
	// MaxDepth limits how many directory levels below the root are listed.
	// Zero lists only the root itself.
	MaxDepth int
}

// ListFolder walks dir and returns the [Folder] used for rule evaluation.
// The walk is confined to dir; symlinks pointing outside of it are not followed.
func ListFolder(dir string, opts ListOptions) (*Folder, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absDir)
	if err != nil {
		return nil, fmt.Errorf("open folder: %w", err)
	}
	defer root.Close() //nolint:errcheck // Read-only.

	var files []string

	err = fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, filepath.Join(absDir, filepath.FromSlash(p)))

			return nil
		}
		if p == "." {
			return nil
		}
		if excluded(d.Name(), opts.Exclude) {
			return fs.SkipDir
		}
		if depth(p) > opts.MaxDepth {
			return fs.SkipDir
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", absDir, err)
	}

	slices.Sort(files)

	return &Folder{Dir: absDir, Files: files}, nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := path.Match(pattern, name); err == nil && matched {
			return true
		}
	}

	return false
}

// depth returns the number of path elements of a slash-separated relative path.
func depth(p string) int {
	n := 1
	for _, c := range p {
		if c == '/' {
			n++
		}
	}

	return n
}
