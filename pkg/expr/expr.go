package expr

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment] with the foldsort function
// library and the given options.
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

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// Compile compiles a CEL expression and returns a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// FoldVariables declares the variables available to fold expressions.
func FoldVariables() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Variable("line", cel.StringType),
		cel.Variable("lnum", cel.IntType),
		cel.Variable("lines", cel.ListType(cel.StringType)),
		cel.Variable("prevLine", cel.StringType),
		cel.Variable("nextLine", cel.StringType),
		cel.Variable("shiftwidth", cel.IntType),
	}
}

// RuleVariables declares the variables available to config rules.
func RuleVariables() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Variable("path", cel.StringType),
		cel.Variable("firstLine", cel.StringType),
	}
}

// Indent returns the display width of the leading whitespace of s, with
// tabs advancing to the next multiple of tabStop.
func Indent(s string, tabStop int) int {
	if tabStop <= 0 {
		tabStop = 8
	}

	width := 0

	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabStop - width%tabStop
		default:
			return width
		}
	}

	return width
}
