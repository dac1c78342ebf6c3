package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/foldsort/pkg/foldmethod"
	"github.com/macropower/foldsort/pkg/log"
)

// handleSortFolds handles the sort_folds tool call.
func (s *Server) handleSortFolds(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[SortFoldsParams],
) (*mcp.CallToolResultFor[SortFoldsResult], error) {
	args := params.Arguments

	out, res, err := foldmethod.SortText(ctx, []byte(args.Text), args.request(s.defaults), args.engineOptions(s.defaults)...)
	if err != nil {
		result := SortFoldsResult{Text: args.Text, Error: err.Error(), Message: errorMessage(err)}

		return &mcp.CallToolResultFor[SortFoldsResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
			StructuredContent: result,
			IsError:           true,
		}, nil
	}

	result := SortFoldsResult{
		Text:         string(out),
		Changed:      res.Changed,
		SegmentCount: len(res.Segments),
	}

	if res.Changed {
		result.Message = fmt.Sprintf("Sorted %d segments.", result.SegmentCount)
	} else {
		result.Message = fmt.Sprintf("All %d segments were already sorted.", result.SegmentCount)
	}

	log.WithContext(ctx).DebugContext(ctx, "sorted folds",
		slog.Int("segments", result.SegmentCount),
		slog.Bool("changed", result.Changed),
	)

	return &mcp.CallToolResultFor[SortFoldsResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Message},
			&mcp.TextContent{Text: result.Text},
		},
		StructuredContent: result,
	}, nil
}

// handleListSegments handles the list_segments tool call.
func (s *Server) handleListSegments(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ListSegmentsParams],
) (*mcp.CallToolResultFor[ListSegmentsResult], error) {
	args := params.Arguments

	segs, err := foldmethod.Segments([]byte(args.Text), args.request(s.defaults))
	if err != nil {
		result := ListSegmentsResult{Segments: []Segment{}, Error: err.Error(), Message: errorMessage(err)}

		return &mcp.CallToolResultFor[ListSegmentsResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
			StructuredContent: result,
			IsError:           true,
		}, nil
	}

	result := ListSegmentsResult{
		Segments:     make([]Segment, 0, len(segs)),
		SegmentCount: len(segs),
		Message:      fmt.Sprintf("Found %d segments.", len(segs)),
	}
	for _, seg := range segs {
		result.Segments = append(result.Segments, Segment{Start: seg.Start, End: seg.End, Key: seg.Key})
	}

	log.WithContext(ctx).DebugContext(ctx, "listed segments", slog.Int("segments", len(segs)))

	return &mcp.CallToolResultFor[ListSegmentsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}

// errorMessage formats err for the client. Failures are reported as tool
// results, not protocol errors, so the model can correct its input.
func errorMessage(err error) string {
	return fmt.Sprintf("ERROR: %v", err)
}
