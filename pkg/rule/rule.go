package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/macropower/foldsort/pkg/expr"
)

var (
	ErrEmptyMatch = errors.New("empty match expression")

	ruleEnv = sync.OnceValues(func() (*expr.Environment, error) {
		return expr.NewEnvironment(expr.RuleVariables()...)
	})
)

// Rule uses a CEL matcher to determine if its profile should be applied.
//
// CEL expressions have access to variables:
//   - `path` (string): The path of the file being sorted, or "" for stdin
//   - `firstLine` (string): The first line of the file
//
// CEL expressions must return a boolean value:
//   - pathExt(path) in [".py", ".yaml"] - true for Python and YAML files
//   - pathBase(path) == "Makefile" - true for Makefiles
//   - firstLine.contains("foldmethod=indent") - true for files with an indent modeline
//   - false - rule doesn't match
//
// CEL path functions available:
//   - pathBase(string): Returns the last element of the path (filename)
//   - pathDir(string): Returns all but the last element of the path (directory)
//   - pathExt(string): Returns the file extension including the dot
type Rule struct {
	matchProgram cel.Program // Compiled CEL program for matching files.

	// Match is a CEL expression to match files.
	Match string `json:"match" jsonschema:"title=Match Expression,required"`
	// Profile is the name of the profile to use when this rule matches.
	Profile string `json:"profile" jsonschema:"title=Profile Name,required"`
}

// New creates a new rule with the given profile name and match expression.
func New(profileName, match string) (*Rule, error) {
	r := &Rule{
		Match:   match,
		Profile: profileName,
	}

	err := r.CompileMatch()
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", match, err)
	}

	return r, nil
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(profileName, match string) *Rule {
	r, err := New(profileName, match)
	if err != nil {
		panic(err)
	}

	return r
}

// CompileMatch compiles the rule's match expression into a CEL program.
func (r *Rule) CompileMatch() error {
	if r.matchProgram != nil {
		return nil
	}

	if r.Match == "" {
		return ErrEmptyMatch
	}

	env, err := ruleEnv()
	if err != nil {
		return err
	}

	program, err := env.Compile(r.Match)
	if err != nil {
		return err
	}

	r.matchProgram = program

	return nil
}

// Matches evaluates the rule against a file. Evaluation errors and
// non-boolean results are treated as non-matches.
func (r *Rule) Matches(path, firstLine string) bool {
	if r.matchProgram == nil {
		panic(errors.New("rule missing a match expression"))
	}

	result, _, err := r.matchProgram.Eval(map[string]any{
		"path":      path,
		"firstLine": firstLine,
	})
	if err != nil {
		return false
	}

	if boolVal, ok := result.Value().(bool); ok {
		return boolVal
	}

	return false
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %s", r.Profile, r.Match)
}
