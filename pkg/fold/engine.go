package fold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/macropower/foldsort/pkg/log"
)

// Result describes a completed sort.
type Result struct {
	// Segments in their original order.
	Segments []Segment `json:"segments"`
	// Order holds, for each output position, the index into Segments of the
	// segment placed there.
	Order []int `json:"order"`
	Range Range `json:"range"`
	// Changed is false when the segments were already in order and the
	// document was left untouched.
	Changed bool `json:"changed"`
}

// Sorted returns the segments in their new order.
func (r *Result) Sorted() []Segment {
	out := make([]Segment, len(r.Order))
	for i, idx := range r.Order {
		out[i] = r.Segments[idx]
	}

	return out
}

// Engine sorts the closed folds of a [Document].
type Engine struct {
	doc    Document
	oracle Oracle
	tracer trace.Tracer
	keyOptions
}

type keyOptions struct {
	ignoreCase bool
	reverse    bool
}

// Option configures an [Engine].
type Option func(*Engine)

// WithIgnoreCase compares keys after Unicode case folding.
func WithIgnoreCase(ignoreCase bool) Option {
	return func(e *Engine) {
		e.ignoreCase = ignoreCase
	}
}

// WithReverse sorts keys in descending order. Segments with equal keys keep
// their original relative order.
func WithReverse(reverse bool) Option {
	return func(e *Engine) {
		e.reverse = reverse
	}
}

// WithTracer sets the tracer used for sort spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// New creates a new [Engine] for doc, using oracle to find closed folds.
func New(doc Document, oracle Oracle, opts ...Option) *Engine {
	e := &Engine{
		doc:    doc,
		oracle: oracle,
		tracer: otel.Tracer("fold-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Segments partitions r into segments after validating it against the
// document.
func (e *Engine) Segments(r Range) ([]Segment, error) {
	err := r.Validate(e.doc.LineCount())
	if err != nil {
		return nil, err
	}

	return Partition(e.oracle, r)
}

// Sort reorders the segments in r by the line at offset within each segment.
// The document is modified with at most one [Document.ReplaceLines] call, and
// not at all when an error is returned.
func (e *Engine) Sort(ctx context.Context, r Range, offset int) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "sort", trace.WithAttributes(
		attribute.String("range", r.String()),
		attribute.Int("offset", offset),
	))
	defer span.End()

	res, err := e.sort(ctx, r, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("segments", len(res.Segments)),
		attribute.Bool("changed", res.Changed),
	)

	return res, nil
}

func (e *Engine) sort(ctx context.Context, r Range, offset int) (*Result, error) {
	logger := log.WithContext(ctx)

	err := r.Validate(e.doc.LineCount())
	if err != nil {
		return nil, err
	}

	if offset < 0 {
		return nil, fmt.Errorf("%w: offset %d is negative", ErrInvalidOffset, offset)
	}

	lines, err := e.doc.Lines(r.First, r.Last)
	if err != nil {
		return nil, fmt.Errorf("read lines %s: %w", r, err)
	}

	segs, err := Partition(e.oracle, r)
	if err != nil {
		return nil, err
	}

	order, err := e.order(lines, r, segs, offset)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Range:    r,
		Segments: segs,
		Order:    order,
		Changed:  !isIdentity(order),
	}

	logger.DebugContext(ctx, "sorted segments",
		slog.String("range", r.String()),
		slog.Int("segments", len(segs)),
		slog.Bool("changed", res.Changed),
	)

	if !res.Changed {
		return res, nil
	}

	err = e.doc.ReplaceLines(r.First, r.Last, reassemble(lines, r, segs, order))
	if err != nil {
		return nil, fmt.Errorf("replace lines %s: %w", r, err)
	}

	return res, nil
}

// order returns the stable sort permutation of segs.
func (ko keyOptions) order(lines []string, r Range, segs []Segment, offset int) ([]int, error) {
	var caser cases.Caser
	if ko.ignoreCase {
		caser = cases.Fold()
	}

	keys := make([]string, len(segs))
	for i, seg := range segs {
		line, err := seg.KeyLine(offset)
		if err != nil {
			return nil, err
		}

		key := lines[line-r.First]
		if ko.ignoreCase {
			key = caser.String(key)
		}

		keys[i] = key
	}

	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		c := strings.Compare(keys[a], keys[b])
		if ko.reverse {
			return -c
		}

		return c
	})

	return order, nil
}

// Partition splits r into segments using oracle. Segments cover r exactly,
// in ascending order. A closed fold extending past r.Last is cut at r.Last.
func Partition(oracle Oracle, r Range) ([]Segment, error) {
	if r.First < 1 || r.Last < r.First {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}

	var segs []Segment

	for cursor := r.First; cursor <= r.Last; {
		end, closed, err := oracle.FoldEnd(cursor)
		if errors.Is(err, ErrUnsupportedFoldMode) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("find fold end at line %d: %w", cursor, err)
		}

		if !closed || end < cursor {
			end = cursor
		}

		end = min(end, r.Last)

		segs = append(segs, Segment{Start: cursor, End: end})
		cursor = end + 1
	}

	return segs, nil
}

// SortLines sorts the segments of r within lines, which hold the whole
// document (lines[0] is line 1). It returns a new slice; lines is not
// modified.
func SortLines(lines []string, oracle Oracle, r Range, offset int, opts ...Option) ([]string, *Result, error) {
	doc := &sliceDocument{lines: slices.Clone(lines)}

	res, err := New(doc, oracle, opts...).Sort(context.Background(), r, offset)
	if err != nil {
		return nil, nil, err
	}

	return doc.lines, res, nil
}

func reassemble(lines []string, r Range, segs []Segment, order []int) []string {
	out := make([]string, 0, len(lines))
	for _, idx := range order {
		seg := segs[idx]
		out = append(out, lines[seg.Start-r.First:seg.End-r.First+1]...)
	}

	return out
}

func isIdentity(order []int) bool {
	for i, idx := range order {
		if i != idx {
			return false
		}
	}

	return true
}

type sliceDocument struct {
	lines []string
}

func (d *sliceDocument) LineCount() int {
	return len(d.lines)
}

func (d *sliceDocument) Lines(first, last int) ([]string, error) {
	err := Range{First: first, Last: last}.Validate(len(d.lines))
	if err != nil {
		return nil, err
	}

	return slices.Clone(d.lines[first-1 : last]), nil
}

func (d *sliceDocument) ReplaceLines(first, last int, lines []string) error {
	err := Range{First: first, Last: last}.Validate(len(d.lines))
	if err != nil {
		return err
	}

	d.lines = slices.Concat(d.lines[:first-1], lines, d.lines[last:])

	return nil
}
