package foldmethod

import (
	"context"

	"github.com/macropower/foldsort/pkg/buffer"
	"github.com/macropower/foldsort/pkg/fold"
)

// Request describes a sort of text using folds derived from its content.
type Request struct {
	Options Options
	// Range limits the sort. A zero First or Last means the first or last
	// line of the text.
	Range  fold.Range
	Offset int
}

// Resolve fills the zero bounds of r for a text of lineCount lines.
func Resolve(r fold.Range, lineCount int) fold.Range {
	if r.First == 0 {
		r.First = 1
	}
	if r.Last == 0 {
		r.Last = lineCount
	}

	return r
}

// SortText sorts the closed folds of text. Empty text is returned as is.
func SortText(ctx context.Context, text []byte, req Request, opts ...fold.Option) ([]byte, *fold.Result, error) {
	buf := buffer.Parse(text)
	if buf.LineCount() == 0 && req.Range == (fold.Range{}) {
		return text, &fold.Result{}, nil
	}

	oracle, err := New(req.Options, buf.All())
	if err != nil {
		return nil, nil, err
	}

	res, err := fold.New(buf, oracle, opts...).Sort(ctx, Resolve(req.Range, buf.LineCount()), req.Offset)
	if err != nil {
		return nil, nil, err
	}

	if !res.Changed {
		return text, res, nil
	}

	return buf.Bytes(), res, nil
}

// SegmentKey is a segment with the text of its key line.
type SegmentKey struct {
	Key string `json:"key"`
	fold.Segment
}

// Segments partitions text into segments without sorting it.
func Segments(text []byte, req Request) ([]SegmentKey, error) {
	buf := buffer.Parse(text)
	if buf.LineCount() == 0 && req.Range == (fold.Range{}) {
		return nil, nil
	}

	oracle, err := New(req.Options, buf.All())
	if err != nil {
		return nil, err
	}

	segs, err := fold.New(buf, oracle).Segments(Resolve(req.Range, buf.LineCount()))
	if err != nil {
		return nil, err
	}

	out := make([]SegmentKey, len(segs))
	for i, seg := range segs {
		out[i] = SegmentKey{Segment: seg}

		keyLine, err := seg.KeyLine(req.Offset)
		if err != nil {
			return nil, err
		}

		out[i].Key, err = buf.Line(keyLine)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
