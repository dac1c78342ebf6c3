package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/foldsort/internal/cli"
	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err      error
		wantHelp bool
		oneLine  bool
	}{
		"usage error": {
			err:      fmt.Errorf("%w: range %q", cli.ErrInvalidArgument, "x"),
			wantHelp: true,
		},
		"unknown flag": {
			err:      errors.New("unknown flag: --nope"),
			wantHelp: true,
		},
		"mutually exclusive flags": {
			err:      errors.New("if any flags in the group [write diff check] are set none of the others can be; [check write] were all set"),
			wantHelp: true,
		},
		"wrapped range error": {
			err:      fmt.Errorf("sort notes.txt: %w: last line 9 is past the end", fold.ErrInvalidRange),
			wantHelp: true,
		},
		"wrapped offset error": {
			err:      fmt.Errorf("sort notes.txt: %w: offset 3 is outside segment [1]", fold.ErrInvalidOffset),
			wantHelp: true,
		},
		"unknown method": {
			err:      fmt.Errorf("load options: %w: %q", foldmethod.ErrUnknownMethod, "zz"),
			wantHelp: true,
		},
		"not sorted": {
			err:     fmt.Errorf("%w: notes.txt", cli.ErrNotSorted),
			oneLine: true,
		},
		"runtime error": {
			err: errors.New("read notes.txt: permission denied"),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			cli.ErrorHandler(buf, fang.Styles{}, tc.err)

			assert.Contains(t, buf.String(), tc.err.Error())

			if tc.wantHelp {
				assert.Contains(t, buf.String(), "--help")
			} else {
				assert.NotContains(t, buf.String(), "--help")
			}

			if tc.oneLine {
				assert.Equal(t, tc.err.Error(), strings.TrimSpace(buf.String()))
			}
		})
	}
}
