package foldmethod

import (
	"cmp"
	"fmt"
	"slices"
)

// Fold is a fold derived from content. Depth 1 is the outermost level.
type Fold struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Depth int `json:"depth"`
}

func (f Fold) String() string {
	return fmt.Sprintf("%d-%d (depth %d)", f.Start, f.End, f.Depth)
}

// Oracle answers closed fold queries for a fixed set of lines.
type Oracle struct {
	folds  []Fold
	levels []int
	// closedEnd[i] is the end of the outermost closed fold containing line
	// i+1, or zero.
	closedEnd []int
	level     int
}

// New derives folds from lines using opts.
func New(opts Options, lines []string) (*Oracle, error) {
	opts = opts.WithDefaults()

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	var infos []lineInfo

	switch opts.Method {
	case MethodMarker:
		infos, err = markerLevels(lines, opts.Marker)
	case MethodIndent:
		infos = indentLevels(lines, opts.ShiftWidth, opts.TabStop)
	case MethodExpr:
		infos, err = exprLevels(lines, opts.Expr, opts.ShiftWidth)
	case MethodNone:
		infos = make([]lineInfo, len(lines))
	}

	if err != nil {
		return nil, err
	}

	o := &Oracle{
		folds:     build(infos),
		levels:    make([]int, len(infos)),
		closedEnd: make([]int, len(infos)),
		level:     opts.Level,
	}
	for i, info := range infos {
		o.levels[i] = info.level
	}

	// Outermost folds claim their lines first.
	byDepth := slices.Clone(o.folds)
	slices.SortStableFunc(byDepth, func(a, b Fold) int {
		return cmp.Compare(a.Depth, b.Depth)
	})

	for _, f := range byDepth {
		if f.Depth <= o.level {
			continue
		}

		for line := f.Start; line <= f.End; line++ {
			if o.closedEnd[line-1] == 0 {
				o.closedEnd[line-1] = f.End
			}
		}
	}

	return o, nil
}

// FoldEnd returns the last line of the outermost closed fold containing
// line.
func (o *Oracle) FoldEnd(line int) (int, bool, error) {
	if line < 1 || line > len(o.closedEnd) {
		return 0, false, nil
	}

	end := o.closedEnd[line-1]

	return end, end > 0, nil
}

// Folds returns all folds, ordered by start line and then depth.
func (o *Oracle) Folds() []Fold {
	return slices.Clone(o.folds)
}

// Levels returns the fold level of each line.
func (o *Oracle) Levels() []int {
	return slices.Clone(o.levels)
}

// build converts line infos to folds.
func build(infos []lineInfo) []Fold {
	var (
		folds []Fold
		// open[d-1] is the start line of the open fold of depth d.
		open []int
	)

	closeFrom := func(depth, end int) {
		for len(open) >= depth && len(open) > 0 {
			d := len(open)
			folds = append(folds, Fold{Start: open[d-1], End: end, Depth: d})
			open = open[:d-1]
		}
	}

	for i, info := range infos {
		line := i + 1

		closeFrom(info.level+1, line-1)

		if info.start > 0 {
			closeFrom(info.start, line-1)
		}

		for len(open) < info.level {
			open = append(open, line)
		}

		if info.end > 0 {
			closeFrom(info.end, line)
		}
	}

	closeFrom(1, len(infos))

	slices.SortFunc(folds, func(a, b Fold) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.Depth, b.Depth))
	})

	return folds
}
