package diff_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/foldsort/pkg/diff"
)

func TestUnified(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		name   string
		before string
		after  string
		want   []string
	}{
		"equal": {
			name:   "notes.txt",
			before: "a\nb\n",
			after:  "a\nb\n",
		},
		"swapped": {
			name:   "notes.txt",
			before: "b\na\n",
			after:  "a\nb\n",
			want:   []string{"--- a/notes.txt", "+++ b/notes.txt", "-b", "+b"},
		},
		"stdin": {
			before: "b\na\n",
			after:  "a\nb\n",
			want:   []string{"--- a/stdin", "+++ b/stdin"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := diff.Unified(tc.name, tc.before, tc.after)
			if tc.want == nil {
				assert.Empty(t, got)

				return
			}

			for _, want := range tc.want {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestStat(t *testing.T) {
	t.Parallel()

	added, removed := diff.Stat(diff.Unified("f", "c\nb\na\n", "a\nb\nc\n"))
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, removed)

	added, removed = diff.Stat("")
	assert.Zero(t, added)
	assert.Zero(t, removed)
}

func TestHighlighter(t *testing.T) {
	t.Parallel()

	src := diff.Unified("f", "b\na\n", "a\nb\n")

	tcs := map[string]struct {
		profile   termenv.Profile
		wantColor bool
	}{
		"ascii": {profile: termenv.Ascii},
		"ansi256": {
			profile:   termenv.ANSI256,
			wantColor: true,
		},
		"truecolor": {
			profile:   termenv.TrueColor,
			wantColor: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			err := diff.NewHighlighter("diff", tc.profile).Highlight(&buf, src)
			require.NoError(t, err)

			if tc.wantColor {
				assert.Contains(t, buf.String(), "\x1b[")
				assert.NotEqual(t, src, buf.String())
			} else {
				assert.Equal(t, src, buf.String())
			}
		})
	}
}

func TestHighlighter_UnknownLanguage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := diff.NewHighlighter("no-such-language", termenv.Ascii).Highlight(&buf, "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", buf.String())
}

func TestFormatterName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "terminal16m", diff.FormatterName(termenv.TrueColor))
	assert.Equal(t, "terminal256", diff.FormatterName(termenv.ANSI256))
	assert.Equal(t, "terminal8", diff.FormatterName(termenv.ANSI))
	assert.Equal(t, "noop", diff.FormatterName(termenv.Ascii))
}
