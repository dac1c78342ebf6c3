package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

// usageErrors are caused by what was typed on the command line, and get a
// hint to run --help.
var usageErrors = []error{
	ErrInvalidArgument,
	fold.ErrInvalidRange,
	fold.ErrInvalidOffset,
	fold.ErrUnsupportedFoldMode,
	foldmethod.ErrUnknownMethod,
	foldmethod.ErrInvalidMarker,
}

// ErrorHandler writes err to w for [fang.WithErrorHandler].
//
// A --check failure is a result rather than a fault, so it is reported on a
// single line that scripts can match, without the error header.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	if errors.Is(err, ErrNotSorted) {
		mustN(fmt.Fprintln(w, styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().Render(err.Error())))

		return
	}

	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, lipgloss.NewStyle().MarginLeft(2).Render(err.Error())))
	mustN(fmt.Fprintln(w))

	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))
	}
}

func isUsageError(err error) bool {
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	// Cobra and pflag errors are not wrapped sentinels.
	// See: https://github.com/spf13/cobra/pull/2266
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
		"accepts at most",
		"if any flags in the group",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
