// Package mcp serves foldsort over the Model Context Protocol.
package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/macropower/foldsort/pkg/foldmethod"
)

const (
	name         = "foldsort"
	instructions = `MCP Server 'foldsort' sorts blocks of text, treating each closed fold as one unit that moves intact.

Folds are derived from the text like vim does: "marker" folds between {{{ and }}} markers (the default), "indent" folds by indentation, and "expr" folds by a CEL expression returning a vim fold level. Folds deeper than "level" are closed.

Workflow:
1. Use 'list_segments' to see how the text is partitioned, and the key line of each segment.
2. Adjust the fold options until each block you want to move is one segment.
3. Use 'sort_folds' with the same options to get the sorted text.
`
)

func newFoldProperties() map[string]*jsonschema.Schema {
	methods := make([]any, 0, len(foldmethod.AllMethods))
	for _, m := range foldmethod.AllMethods {
		methods = append(methods, m)
	}

	return map[string]*jsonschema.Schema{
		"text": {
			Type:        "string",
			Description: "The text to operate on.",
		},
		"first": {
			Type:        "integer",
			Description: "First line of the range to sort (1-based). Defaults to the first line.",
		},
		"last": {
			Type:        "integer",
			Description: "Last line of the range to sort (inclusive). Defaults to the last line.",
		},
		"offset": {
			Type:        "integer",
			Description: "Zero-based line within each segment used as its sort key. Defaults to 0.",
		},
		"method": {
			Type:        "string",
			Description: "Fold method. Defaults to marker.",
			Enum:        methods,
		},
		"marker": {
			Type:        "string",
			Description: `Open and close fold markers, separated by a comma. Defaults to "{{{,}}}".`,
		},
		"shiftWidth": {
			Type:        "integer",
			Description: "Columns per indent level, for the indent method. Defaults to 4.",
		},
		"tabStop": {
			Type:        "integer",
			Description: "Columns a tab advances to. Defaults to 8.",
		},
		"level": {
			Type:        "integer",
			Description: "Fold level: folds deeper than this are closed. Defaults to 0.",
		},
		"expr": {
			Type: "string",
			Description: "CEL fold expression for the expr method. Variables: line, lnum, lines, prevLine, nextLine, shiftwidth. " +
				`Returns an int level or a vim fold level string such as ">1", "<1", "=", "a1", "s1", or "-1".`,
		},
	}
}

func newSortProperties() map[string]*jsonschema.Schema {
	props := newFoldProperties()
	props["ignoreCase"] = &jsonschema.Schema{
		Type:        "boolean",
		Description: "Compare keys after Unicode case folding.",
	}
	props["reverse"] = &jsonschema.Schema{
		Type:        "boolean",
		Description: "Sort keys in descending order.",
	}

	return props
}
