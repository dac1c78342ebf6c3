package mcp

import (
	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

// FoldParams are the fold inputs shared by all tools.
type FoldParams struct {
	Offset     *int              `json:"offset,omitempty"`
	Level      *int              `json:"level,omitempty"`
	Text       string            `json:"text"`
	Method     foldmethod.Method `json:"method,omitempty"`
	Marker     string            `json:"marker,omitempty"`
	Expr       string            `json:"expr,omitempty"`
	First      int               `json:"first,omitempty"`
	Last       int               `json:"last,omitempty"`
	ShiftWidth int               `json:"shiftWidth,omitempty"`
	TabStop    int               `json:"tabStop,omitempty"`
}

// Defaults are used for inputs a tool call leaves unset.
type Defaults struct {
	Fold       foldmethod.Options
	Offset     int
	IgnoreCase bool
	Reverse    bool
}

// request merges p over d.
func (p FoldParams) request(d Defaults) foldmethod.Request {
	opts := d.Fold
	if p.Method != "" {
		// An unparsable method is kept as given and rejected when folds are built.
		method, err := foldmethod.ParseMethod(string(p.Method))
		if err != nil {
			method = p.Method
		}

		// Switching method drops options that belong to the default method.
		current, _ := foldmethod.ParseMethod(string(opts.Method))
		if method != current {
			opts = foldmethod.Options{
				Marker:     opts.Marker,
				ShiftWidth: opts.ShiftWidth,
				TabStop:    opts.TabStop,
				Level:      opts.Level,
			}
		}

		opts.Method = method
	}
	if p.Marker != "" {
		opts.Marker = p.Marker
	}
	if p.Expr != "" {
		opts.Expr = p.Expr
	}
	if p.ShiftWidth != 0 {
		opts.ShiftWidth = p.ShiftWidth
	}
	if p.TabStop != 0 {
		opts.TabStop = p.TabStop
	}
	if p.Level != nil {
		opts.Level = *p.Level
	}

	offset := d.Offset
	if p.Offset != nil {
		offset = *p.Offset
	}

	return foldmethod.Request{
		Options: opts,
		Range:   fold.Range{First: p.First, Last: p.Last},
		Offset:  offset,
	}
}

// SortFoldsParams defines parameters for the sort_folds tool.
type SortFoldsParams struct {
	IgnoreCase *bool `json:"ignoreCase,omitempty"`
	Reverse    *bool `json:"reverse,omitempty"`
	FoldParams
}

func (p SortFoldsParams) engineOptions(d Defaults) []fold.Option {
	ignoreCase, reverse := d.IgnoreCase, d.Reverse
	if p.IgnoreCase != nil {
		ignoreCase = *p.IgnoreCase
	}
	if p.Reverse != nil {
		reverse = *p.Reverse
	}

	return []fold.Option{fold.WithIgnoreCase(ignoreCase), fold.WithReverse(reverse)}
}

// SortFoldsResult contains the result of sorting folds.
type SortFoldsResult struct {
	Error        string `json:"error,omitempty"`
	Message      string `json:"message"`
	Text         string `json:"text"`
	SegmentCount int    `json:"segmentCount"`
	Changed      bool   `json:"changed"`
}

// ListSegmentsParams defines parameters for the list_segments tool.
type ListSegmentsParams struct {
	FoldParams
}

// Segment is one segment of a list_segments result.
type Segment struct {
	Key   string `json:"key"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ListSegmentsResult contains the result of listing segments.
type ListSegmentsResult struct {
	Error        string    `json:"error,omitempty"`
	Message      string    `json:"message"`
	Segments     []Segment `json:"segments"`
	SegmentCount int       `json:"segmentCount"`
}
