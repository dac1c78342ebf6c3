package foldmethod_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

func TestNew_Folds(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts  foldmethod.Options
		lines []string
		want  []foldmethod.Fold
	}{
		"marker": {
			opts: foldmethod.Options{Method: foldmethod.MethodMarker},
			lines: []string{
				"b {{{",
				"  x",
				"}}}",
				"a {{{",
				"}}}",
				"c",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 3, Depth: 1},
				{Start: 4, End: 5, Depth: 1},
			},
		},
		"marker nested": {
			lines: []string{
				"a {{{",
				"  b {{{",
				"  }}}",
				"}}}",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 4, Depth: 1},
				{Start: 2, End: 3, Depth: 2},
			},
		},
		"marker numbered": {
			lines: []string{
				"{{{1",
				"{{{2",
				"x",
				"{{{1",
				"y",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 3, Depth: 1},
				{Start: 2, End: 3, Depth: 2},
				{Start: 4, End: 5, Depth: 1},
			},
		},
		"marker open and close on one line": {
			lines: []string{
				"a {{{ }}}",
				"b",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 1, Depth: 1},
			},
		},
		"marker custom": {
			opts: foldmethod.Options{Marker: "<<,>>"},
			lines: []string{
				"<<",
				"x {{{",
				">>",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 3, Depth: 1},
			},
		},
		"marker unclosed": {
			lines: []string{
				"x",
				"a {{{",
				"b",
			},
			want: []foldmethod.Fold{
				{Start: 2, End: 3, Depth: 1},
			},
		},
		"indent": {
			opts: foldmethod.Options{Method: foldmethod.MethodIndent, ShiftWidth: 2},
			lines: []string{
				"a",
				"  b",
				"  c",
				"d",
				"  e",
			},
			want: []foldmethod.Fold{
				{Start: 2, End: 3, Depth: 1},
				{Start: 5, End: 5, Depth: 1},
			},
		},
		"indent blank lines join the lower neighbor": {
			opts: foldmethod.Options{Method: foldmethod.MethodIndent, ShiftWidth: 2},
			lines: []string{
				"a",
				"  b",
				"",
				"  c",
				"",
				"d",
			},
			want: []foldmethod.Fold{
				{Start: 2, End: 4, Depth: 1},
			},
		},
		"indent tabs": {
			opts: foldmethod.Options{Method: foldmethod.MethodIndent, ShiftWidth: 4, TabStop: 4},
			lines: []string{
				"a",
				"\tb",
				"\t\tc",
			},
			want: []foldmethod.Fold{
				{Start: 2, End: 3, Depth: 1},
				{Start: 3, End: 3, Depth: 2},
			},
		},
		"expr start": {
			opts: foldmethod.Options{
				Method: foldmethod.MethodExpr,
				Expr:   `line.startsWith("#") ? ">1" : "="`,
			},
			lines: []string{
				"# b",
				"x",
				"# a",
				"y",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 2, Depth: 1},
				{Start: 3, End: 4, Depth: 1},
			},
		},
		"expr start and end": {
			opts: foldmethod.Options{
				Method: foldmethod.MethodExpr,
				Expr:   `line == "end" ? "<1" : line == "begin" ? ">1" : "="`,
			},
			lines: []string{
				"begin",
				"x",
				"end",
				"y",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 3, Depth: 1},
			},
		},
		"expr int": {
			opts: foldmethod.Options{
				Method:     foldmethod.MethodExpr,
				ShiftWidth: 2,
				Expr:       `indent(line) / shiftwidth`,
			},
			lines: []string{
				"a",
				"  b",
				"c",
			},
			want: []foldmethod.Fold{
				{Start: 2, End: 2, Depth: 1},
			},
		},
		"expr undefined": {
			opts: foldmethod.Options{
				Method: foldmethod.MethodExpr,
				Expr:   `isBlank(line) ? "-1" : line.startsWith(" ") ? "1" : "0"`,
			},
			lines: []string{
				" a",
				"",
				" b",
				"",
				"c",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 3, Depth: 1},
			},
		},
		"expr add and subtract": {
			opts: foldmethod.Options{
				Method: foldmethod.MethodExpr,
				Expr:   `line == "+" ? "a1" : line == "-" ? "s1" : "="`,
			},
			lines: []string{
				"+",
				"x",
				"-",
				"y",
			},
			want: []foldmethod.Fold{
				{Start: 1, End: 2, Depth: 1},
			},
		},
		"none": {
			opts: foldmethod.Options{Method: foldmethod.MethodNone},
			lines: []string{
				"a {{{",
				"}}}",
			},
			want: nil,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			o, err := foldmethod.New(tc.opts, tc.lines)
			require.NoError(t, err)
			assert.Equal(t, tc.want, o.Folds())
		})
	}
}

func TestOracle_FoldEnd(t *testing.T) {
	t.Parallel()

	lines := []string{
		"{{{1",
		"{{{2",
		"x",
		"{{{1",
		"y",
		"z",
	}

	tcs := map[string]struct {
		want  map[int]int
		level int
	}{
		"level 0 closes everything": {
			level: 0,
			want:  map[int]int{1: 3, 2: 3, 3: 3, 4: 6, 5: 6, 6: 6},
		},
		"level 1 closes nested folds": {
			level: 1,
			want:  map[int]int{1: 0, 2: 3, 3: 3, 4: 0, 5: 0, 6: 0},
		},
		"level 2 closes nothing": {
			level: 2,
			want:  map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			o, err := foldmethod.New(foldmethod.Options{Level: tc.level}, lines)
			require.NoError(t, err)

			for line, want := range tc.want {
				end, closed, err := o.FoldEnd(line)
				require.NoError(t, err)
				assert.Equal(t, want > 0, closed, "line %d", line)
				assert.Equal(t, want, end, "line %d", line)
			}
		})
	}
}

func TestOracle_OutOfBounds(t *testing.T) {
	t.Parallel()

	o, err := foldmethod.New(foldmethod.Options{}, []string{"a {{{", "}}}"})
	require.NoError(t, err)

	for _, line := range []int{-1, 0, 3} {
		_, closed, err := o.FoldEnd(line)
		require.NoError(t, err)
		assert.False(t, closed)
	}
}

func TestOracle_Levels(t *testing.T) {
	t.Parallel()

	o, err := foldmethod.New(foldmethod.Options{}, []string{"a {{{", "b", "}}}", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 0}, o.Levels())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  error
		opts foldmethod.Options
	}{
		"manual": {
			opts: foldmethod.Options{Method: foldmethod.MethodManual},
			err:  fold.ErrUnsupportedFoldMode,
		},
		"syntax": {
			opts: foldmethod.Options{Method: foldmethod.MethodSyntax},
			err:  fold.ErrUnsupportedFoldMode,
		},
		"diff": {
			opts: foldmethod.Options{Method: foldmethod.MethodDiff},
			err:  fold.ErrUnsupportedFoldMode,
		},
		"unknown method": {
			opts: foldmethod.Options{Method: "bogus"},
			err:  foldmethod.ErrUnknownMethod,
		},
		"bad marker": {
			opts: foldmethod.Options{Marker: "{{{"},
			err:  foldmethod.ErrInvalidMarker,
		},
		"negative level": {
			opts: foldmethod.Options{Level: -1},
			err:  foldmethod.ErrInvalidOptions,
		},
		"missing expression": {
			opts: foldmethod.Options{Method: foldmethod.MethodExpr},
			err:  foldmethod.ErrInvalidExpr,
		},
		"expression does not compile": {
			opts: foldmethod.Options{Method: foldmethod.MethodExpr, Expr: `line +`},
			err:  foldmethod.ErrInvalidExpr,
		},
		"expression returns bool": {
			opts: foldmethod.Options{Method: foldmethod.MethodExpr, Expr: `true`},
			err:  foldmethod.ErrInvalidExpr,
		},
		"expression returns bad level": {
			opts: foldmethod.Options{Method: foldmethod.MethodExpr, Expr: `"x1"`},
			err:  foldmethod.ErrInvalidExpr,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := foldmethod.New(tc.opts, []string{"a", "b"})
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := foldmethod.ParseMethod(" Indent ")
	require.NoError(t, err)
	assert.Equal(t, foldmethod.MethodIndent, m)

	m, err = foldmethod.ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, foldmethod.MethodMarker, m)

	_, err = foldmethod.ParseMethod("manual")
	require.ErrorIs(t, err, fold.ErrUnsupportedFoldMode)
}

func TestParseMarker(t *testing.T) {
	t.Parallel()

	open, closing, err := foldmethod.ParseMarker("{{{,}}}")
	require.NoError(t, err)
	assert.Equal(t, "{{{", open)
	assert.Equal(t, "}}}", closing)

	for _, bad := range []string{"", ",", "{{{,", ",}}}", "a,b,c"} {
		_, _, err := foldmethod.ParseMarker(bad)
		require.ErrorIs(t, err, foldmethod.ErrInvalidMarker, bad)
	}
}

func TestSortWithMarkerFolds(t *testing.T) {
	t.Parallel()

	lines := []string{
		"zeta {{{",
		"  z",
		"}}}",
		"alpha {{{",
		"  a",
		"}}}",
		"mid",
	}

	o, err := foldmethod.New(foldmethod.Options{}, lines)
	require.NoError(t, err)

	got, res, err := fold.SortLines(lines, o, fold.WholeDocument(len(lines)), 0)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{
		"alpha {{{",
		"  a",
		"}}}",
		"mid",
		"zeta {{{",
		"  z",
		"}}}",
	}, got)
}

func TestSortText(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err         error
		req         foldmethod.Request
		input       string
		want        string
		wantChanged bool
	}{
		"markers": {
			input:       "b {{{\n1\n}}}\na {{{\n2\n}}}\n",
			want:        "a {{{\n2\n}}}\nb {{{\n1\n}}}\n",
			wantChanged: true,
		},
		"indent blocks": {
			req: foldmethod.Request{
				Options: foldmethod.Options{Method: foldmethod.MethodIndent, ShiftWidth: 2},
			},
			input:       "  z\n  z2\nb\n  a\n",
			want:        "  a\n  z\n  z2\nb\n",
			wantChanged: true,
		},
		"expr with offset": {
			req: foldmethod.Request{
				Options: foldmethod.Options{
					Method: foldmethod.MethodExpr,
					Expr:   `line.startsWith("#") ? ">1" : "="`,
				},
				Offset: 1,
			},
			input:       "# x\nname: b\n# y\nname: a\n",
			want:        "# y\nname: a\n# x\nname: b\n",
			wantChanged: true,
		},
		"range with open end": {
			req:         foldmethod.Request{Range: fold.Range{First: 2}},
			input:       "header\nb\na\n",
			want:        "header\na\nb\n",
			wantChanged: true,
		},
		"already sorted": {
			input: "a\nb\n",
			want:  "a\nb\n",
		},
		"no trailing newline": {
			input:       "b\na",
			want:        "a\nb",
			wantChanged: true,
		},
		"empty": {
			input: "",
			want:  "",
		},
		"offset past a segment": {
			req:   foldmethod.Request{Offset: 1},
			input: "b {{{\n}}}\na\n",
			err:   fold.ErrInvalidOffset,
		},
		"range past the end": {
			req:   foldmethod.Request{Range: fold.Range{First: 1, Last: 9}},
			input: "a\n",
			err:   fold.ErrInvalidRange,
		},
		"manual folds": {
			req:   foldmethod.Request{Options: foldmethod.Options{Method: foldmethod.MethodManual}},
			input: "a\n",
			err:   fold.ErrUnsupportedFoldMode,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, res, err := foldmethod.SortText(t.Context(), []byte(tc.input), tc.req)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
			assert.Equal(t, tc.wantChanged, res.Changed)
		})
	}
}

func TestSegments(t *testing.T) {
	t.Parallel()

	got, err := foldmethod.Segments([]byte("b {{{\n1\n}}}\na\n"), foldmethod.Request{})
	require.NoError(t, err)
	assert.Equal(t, []foldmethod.SegmentKey{
		{Segment: fold.Segment{Start: 1, End: 3}, Key: "b {{{"},
		{Segment: fold.Segment{Start: 4, End: 4}, Key: "a"},
	}, got)

	got, err = foldmethod.Segments(nil, foldmethod.Request{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
