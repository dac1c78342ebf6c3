package foldmethod

import (
	"errors"
	"fmt"
	"strings"

	"github.com/macropower/foldsort/pkg/fold"
)

// Method is a fold method name.
type Method string

const (
	MethodMarker Method = "marker"
	MethodIndent Method = "indent"
	MethodExpr   Method = "expr"
	MethodNone   Method = "none"

	// Methods recognized but not supported. Closed folds for these cannot be
	// derived from content alone.
	MethodManual Method = "manual"
	MethodSyntax Method = "syntax"
	MethodDiff   Method = "diff"

	DefaultMarker     = "{{{,}}}"
	DefaultShiftWidth = 4
	DefaultTabStop    = 8
)

var (
	ErrUnknownMethod  = errors.New("unknown fold method")
	ErrInvalidMarker  = errors.New("invalid fold marker")
	ErrInvalidExpr    = errors.New("invalid fold expression")
	ErrInvalidOptions = errors.New("invalid fold options")

	// AllMethods lists methods accepted by [ParseMethod] without error.
	AllMethods = []string{
		string(MethodMarker),
		string(MethodIndent),
		string(MethodExpr),
		string(MethodNone),
	}
)

// ParseMethod parses a method name. Unsupported methods return an error
// matching [fold.ErrUnsupportedFoldMode].
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))

	switch m {
	case "":
		return MethodMarker, nil
	case MethodMarker, MethodIndent, MethodExpr, MethodNone:
		return m, nil
	case MethodManual, MethodSyntax, MethodDiff:
		return "", fmt.Errorf("%w: foldmethod=%s", fold.ErrUnsupportedFoldMode, m)
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Options configure fold derivation. Zero values select defaults.
type Options struct {
	// Method is the fold method: marker, indent, expr, or none.
	Method Method `json:"method,omitempty" jsonschema:"title=Fold Method,enum=marker,enum=indent,enum=expr,enum=none"`
	// Marker holds the open and close fold markers, separated by a comma.
	Marker string `json:"marker,omitempty" jsonschema:"title=Fold Marker"`
	// Expr is a CEL expression returning the fold level of each line.
	Expr string `json:"expr,omitempty" jsonschema:"title=Fold Expression"`
	// ShiftWidth is the number of columns per indent level.
	ShiftWidth int `json:"shiftWidth,omitempty" jsonschema:"title=Shift Width,minimum=1"`
	// TabStop is the number of columns a tab advances to.
	TabStop int `json:"tabStop,omitempty" jsonschema:"title=Tab Stop,minimum=1"`
	// Level is the fold level: folds deeper than this are closed.
	Level int `json:"level,omitempty" jsonschema:"title=Fold Level,minimum=0"`
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Method == "" {
		o.Method = MethodMarker
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.ShiftWidth == 0 {
		o.ShiftWidth = DefaultShiftWidth
	}
	if o.TabStop == 0 {
		o.TabStop = DefaultTabStop
	}

	return o
}

// Validate checks o without compiling expressions.
func (o Options) Validate() error {
	o = o.WithDefaults()

	_, err := ParseMethod(string(o.Method))
	if err != nil {
		return err
	}

	_, _, err = ParseMarker(o.Marker)
	if err != nil {
		return err
	}

	switch {
	case o.ShiftWidth < 0:
		return fmt.Errorf("%w: shiftWidth %d is negative", ErrInvalidOptions, o.ShiftWidth)
	case o.TabStop < 0:
		return fmt.Errorf("%w: tabStop %d is negative", ErrInvalidOptions, o.TabStop)
	case o.Level < 0:
		return fmt.Errorf("%w: level %d is negative", ErrInvalidOptions, o.Level)
	case o.Method == MethodExpr && strings.TrimSpace(o.Expr) == "":
		return fmt.Errorf("%w: foldmethod=expr requires an expression", ErrInvalidExpr)
	}

	return nil
}

func (o Options) String() string {
	o = o.WithDefaults()

	switch o.Method {
	case MethodMarker:
		return fmt.Sprintf("marker %s, level %d", o.Marker, o.Level)
	case MethodIndent:
		return fmt.Sprintf("indent sw=%d ts=%d, level %d", o.ShiftWidth, o.TabStop, o.Level)
	case MethodExpr:
		return fmt.Sprintf("expr %q, level %d", o.Expr, o.Level)
	}

	return string(o.Method)
}

// ParseMarker splits a 'foldmarker' value into its open and close markers.
func ParseMarker(s string) (string, string, error) {
	open, closing, ok := strings.Cut(s, ",")
	if !ok || open == "" || closing == "" || strings.Contains(closing, ",") {
		return "", "", fmt.Errorf("%w: %q must be two markers separated by a comma", ErrInvalidMarker, s)
	}

	return open, closing, nil
}
