package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/macropower/folio/pkg/expr"
)

var (
	ErrEmptyMatch = errors.New("empty match expression")

	folderEnv     *expr.Environment
	folderEnvErr  error
	folderEnvOnce sync.Once
)

// Rule uses a CEL matcher to determine if a folder matches.
//
// CEL expressions have access to variables:
//   - `files` (list<string>): All file paths in the folder
//   - `dir` (string): The folder being configured
//   - `wizard` (bool): Whether the folder was just created by a project wizard
//
// CEL expressions must return a boolean value:
//   - files.exists(f, pathBase(f) == "go.mod") - true if a Go module exists
//   - files.exists(f, pathExt(f) in [".py", ".pyi"]) - true if Python files exist
//   - files.exists(f, pathMatch("*_test.go", f)) - true if Go tests exist
//   - files.exists(f, pathBase(f) == "pubspec.yaml" && yamlPath(f, "$.flutter") != null) - Flutter apps
//   - files.exists(f, pathBase(f) == "package.json" && fileContains(f, "\"react\"")) - React apps
//   - false - rule doesn't match
//
// CEL path functions available:
//   - pathBase(string): Returns the last element of the path (filename)
//   - pathDir(string): Returns all but the last element of the path (directory)
//   - pathExt(string): Returns the file extension including the dot
//   - pathMatch(pattern, path): Matches the file name against a shell glob
//   - fileContains(file, substr): Reports whether the file contains substr
//   - yamlPath(file, path): Reads a YAML file and extracts value at path (returns null if not found)
//
// CEL also provides standard functions like `endsWith`, `contains`,
// `startsWith`, `matches`, along with list functions like `filter`, `exists`, `in`, and
// logical operators like `&&`, `||`, and `!`.
type Rule struct {
	matchProgram cel.Program // Compiled CEL program for matching folders.

	// Match is a CEL expression evaluated against the folder.
	Match string `json:"match" jsonschema:"title=Match Expression"`
}

// New creates a new rule with the given match expression.
func New(match string) (*Rule, error) {
	r := &Rule{Match: match}

	err := r.CompileMatch()
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", match, err)
	}

	return r, nil
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(match string) *Rule {
	r, err := New(match)
	if err != nil {
		panic(err)
	}

	return r
}

// CompileMatch compiles the rule's match expression into a CEL program.
// Compiling an already compiled rule is a no-op.
func (r *Rule) CompileMatch() error {
	if r.matchProgram != nil {
		return nil
	}

	if r.Match == "" {
		return ErrEmptyMatch
	}

	folderEnvOnce.Do(func() {
		folderEnv, folderEnvErr = expr.NewFolderEnvironment()
	})

	if folderEnvErr != nil {
		return fmt.Errorf("create CEL environment: %w", folderEnvErr)
	}

	program, err := folderEnv.Compile(r.Match)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	r.matchProgram = program

	return nil
}

// MatchFolder evaluates the rule against a [Folder].
// Evaluation errors and non-boolean results are reported as non-matches.
func (r *Rule) MatchFolder(f *Folder) bool {
	if r.matchProgram == nil {
		panic(errors.New("rule missing a match expression"))
	}

	result, _, err := r.matchProgram.Eval(map[string]any{
		expr.VarFiles:  f.Files,
		expr.VarDir:    f.Dir,
		expr.VarWizard: f.Wizard,
	})
	if err != nil {
		return false
	}

	if boolVal, ok := result.Value().(bool); ok {
		return boolVal
	}

	return false
}

// MatchFiles evaluates the rule against the files of a directory.
func (r *Rule) MatchFiles(dirPath string, files []string) bool {
	return r.MatchFolder(&Folder{Dir: dirPath, Files: files})
}

func (r *Rule) String() string {
	return r.Match
}
