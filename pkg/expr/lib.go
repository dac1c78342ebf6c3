package expr

import (
	"path/filepath"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `pathBase` returns the last element of the path.
		// Example: pathBase(path) == "Makefile".
		cel.Function("pathBase",
			cel.Overload("path_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathBase", filepath.Base)),
			),
		),

		// `pathDir` returns all but the last element of the path.
		// Example: pathDir(path).endsWith("/notes").
		cel.Function("pathDir",
			cel.Overload("path_dir", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathDir", filepath.Dir)),
			),
		),

		// `pathExt` returns the file extension of the path.
		// Example: pathExt(path) in [".py", ".yaml"].
		cel.Function("pathExt",
			cel.Overload("path_ext", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathExt", filepath.Ext)),
			),
		),

		// `indent` returns the width of a line's leading whitespace.
		// Tabs count to the next multiple of 8, or of the second argument.
		// Example: indent(line) / shiftwidth.
		cel.Function("indent",
			cel.Overload("indent_string", []*cel.Type{cel.StringType}, cel.IntType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					str, ok := s.Value().(string)
					if !ok {
						return types.NewErr("indent: invalid string value")
					}

					return types.Int(Indent(str, 8))
				}),
			),
			cel.Overload("indent_string_int", []*cel.Type{cel.StringType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(s, ts ref.Val) ref.Val {
					str, ok := s.Value().(string)
					if !ok {
						return types.NewErr("indent: invalid string value")
					}

					tabStop, ok := ts.Value().(int64)
					if !ok {
						return types.NewErr("indent: invalid tab stop value")
					}

					return types.Int(Indent(str, int(tabStop)))
				}),
			),
		),

		// `isBlank` reports whether a line is empty or only whitespace.
		// Example: isBlank(line) ? "-1" : ">1".
		cel.Function("isBlank",
			cel.Overload("is_blank_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					str, ok := s.Value().(string)
					if !ok {
						return types.NewErr("isBlank: invalid string value")
					}

					return types.Bool(strings.TrimSpace(str) == "")
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func stringFunc(name string, fn func(string) string) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		str, ok := v.Value().(string)
		if !ok {
			return types.NewErr("%s: invalid string value", name)
		}

		return types.String(fn(str))
	}
}
