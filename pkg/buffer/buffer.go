// Package buffer provides an in-memory, line-indexed text document.
package buffer

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/macropower/foldsort/pkg/fold"
)

var _ fold.Document = (*Buffer)(nil)

// Buffer holds text as lines. Line numbers are 1-based and ranges inclusive.
// Line text excludes the "\n" separator but keeps any "\r", so that
// [Buffer.Bytes] reproduces the input exactly.
type Buffer struct {
	lines           []string
	edits           int
	trailingNewline bool
}

// Parse splits data into lines.
func Parse(data []byte) *Buffer {
	if len(data) == 0 {
		return &Buffer{}
	}

	s := string(data)
	trailing := strings.HasSuffix(s, "\n")
	if trailing {
		s = s[:len(s)-1]
	}

	return &Buffer{
		lines:           strings.Split(s, "\n"),
		trailingNewline: trailing,
	}
}

// FromLines creates a [Buffer] holding a copy of lines, terminated by a
// newline.
func FromLines(lines ...string) *Buffer {
	return &Buffer{
		lines:           slices.Clone(lines),
		trailingNewline: len(lines) > 0,
	}
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Lines returns a copy of lines first through last.
func (b *Buffer) Lines(first, last int) ([]string, error) {
	err := b.check(first, last)
	if err != nil {
		return nil, err
	}

	return slices.Clone(b.lines[first-1 : last]), nil
}

// Line returns the text of line n.
func (b *Buffer) Line(n int) (string, error) {
	err := b.check(n, n)
	if err != nil {
		return "", err
	}

	return b.lines[n-1], nil
}

// ReplaceLines replaces lines first through last with lines.
func (b *Buffer) ReplaceLines(first, last int, lines []string) error {
	err := b.check(first, last)
	if err != nil {
		return err
	}

	b.lines = slices.Concat(b.lines[:first-1], lines, b.lines[last:])
	b.edits++

	return nil
}

// All returns a copy of every line.
func (b *Buffer) All() []string {
	return slices.Clone(b.lines)
}

// Edits returns the number of replacements applied since the buffer was
// created.
func (b *Buffer) Edits() int {
	return b.edits
}

// Bytes joins the lines back into text.
func (b *Buffer) Bytes() []byte {
	if len(b.lines) == 0 {
		return nil
	}

	buf := &bytes.Buffer{}
	for i, line := range b.lines {
		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString(line)
	}

	if b.trailingNewline {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func (b *Buffer) String() string {
	return string(b.Bytes())
}

func (b *Buffer) check(first, last int) error {
	err := fold.Range{First: first, Last: last}.Validate(len(b.lines))
	if err != nil {
		return fmt.Errorf("buffer: %w", err)
	}

	return nil
}
