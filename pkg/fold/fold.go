package fold

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a range is empty, inverted, or outside
	// of the document.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidOffset is returned when a key offset is negative or points
	// past the end of a segment.
	ErrInvalidOffset = errors.New("invalid offset")
	// ErrUnsupportedFoldMode is returned when the host cannot report closed
	// folds for its current fold configuration.
	ErrUnsupportedFoldMode = errors.New("unsupported fold mode")
)

// Document is a line-indexed text document. Line numbers are 1-based and
// ranges are inclusive.
type Document interface {
	LineCount() int
	Lines(first, last int) ([]string, error)
	// ReplaceLines replaces lines first through last with the given lines,
	// as one atomic edit.
	ReplaceLines(first, last int, lines []string) error
}

// Oracle reports closed folds.
type Oracle interface {
	// FoldEnd returns the last line of the closed fold containing line.
	// If no closed fold contains line, closed is false.
	FoldEnd(line int) (end int, closed bool, err error)
}

// OracleFunc adapts a function to the [Oracle] interface.
type OracleFunc func(line int) (int, bool, error)

// FoldEnd calls f(line).
func (f OracleFunc) FoldEnd(line int) (int, bool, error) {
	return f(line)
}

// NoFolds is an [Oracle] without any closed folds. Every line becomes its own
// segment.
var NoFolds Oracle = OracleFunc(func(int) (int, bool, error) {
	return 0, false, nil
})

// Range is a 1-based inclusive span of lines.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// WholeDocument returns a [Range] covering lineCount lines.
func WholeDocument(lineCount int) Range {
	return Range{First: 1, Last: lineCount}
}

// Validate checks that r is non-empty and lies within a document of
// lineCount lines.
func (r Range) Validate(lineCount int) error {
	switch {
	case r.First < 1:
		return fmt.Errorf("%w: first line %d is before line 1", ErrInvalidRange, r.First)
	case r.Last < r.First:
		return fmt.Errorf("%w: last line %d is before first line %d", ErrInvalidRange, r.Last, r.First)
	case r.Last > lineCount:
		return fmt.Errorf("%w: last line %d is past the end of the document (%d lines)",
			ErrInvalidRange, r.Last, lineCount)
	}

	return nil
}

// Len returns the number of lines in r.
func (r Range) Len() int {
	return r.Last - r.First + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d,%d", r.First, r.Last)
}

// Segment is a contiguous block of lines that moves as a unit: one closed
// fold, or a single line.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines in s.
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

// Contains reports whether line is within s.
func (s Segment) Contains(line int) bool {
	return line >= s.Start && line <= s.End
}

// KeyLine returns the line number holding the sort key for the given offset.
func (s Segment) KeyLine(offset int) (int, error) {
	line := s.Start + offset
	if offset < 0 || !s.Contains(line) {
		return 0, fmt.Errorf("%w: offset %d is outside segment %s", ErrInvalidOffset, offset, s)
	}

	return line, nil
}

func (s Segment) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("[%d]", s.Start)
	}

	return fmt.Sprintf("[%d-%d]", s.Start, s.End)
}
