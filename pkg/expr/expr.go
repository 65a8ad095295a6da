package expr

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

const (
	VarFiles  = "files"
	VarDir    = "dir"
	VarWizard = "wizard"
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment] with the folio function library.
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts, cel.Lib(&lib{}))

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Environment{env: env}, nil
}

// NewFolderEnvironment creates an [Environment] declaring the folder
// variables [VarFiles], [VarDir] and [VarWizard].
func NewFolderEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	opts = append([]cel.EnvOption{
		cel.Variable(VarFiles, cel.ListType(cel.StringType)),
		cel.Variable(VarDir, cel.StringType),
		cel.Variable(VarWizard, cel.BoolType),
	}, opts...)

	return NewEnvironment(opts...)
}

// MustNewFolderEnvironment is like [NewFolderEnvironment] but panics on error.
func MustNewFolderEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewFolderEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// Compile compiles a CEL expression and returns a program.
// The expression must evaluate to a bool.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile expression: result must be bool, got %s", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}
