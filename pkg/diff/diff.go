// Package diff produces and highlights unified diffs of sort results.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/muesli/termenv"
)

// DefaultStyle is the chroma style used by [NewHighlighter].
const DefaultStyle = "github"

// Unified returns a unified diff between before and after, labeled with
// name. It returns "" when the contents are equal.
func Unified(name, before, after string) string {
	if before == after {
		return ""
	}

	if name == "" {
		name = "stdin"
	}

	return udiff.Unified("a/"+name, "b/"+name, before, after)
}

// Stat counts the added and removed lines of a unified diff.
func Stat(unified string) (int, int) {
	var added, removed int

	for line := range strings.Lines(unified) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	return added, removed
}

// Highlighter colors source text for terminals.
type Highlighter struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewHighlighter creates a [Highlighter] for the given chroma language
// (e.g. "diff" or "YAML"), choosing a formatter for the color profile.
func NewHighlighter(language string, profile termenv.Profile) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: formatters.Get(FormatterName(profile)),
		style:     styles.Get(DefaultStyle),
	}
}

// Highlight writes src to w with terminal colors.
func (h *Highlighter) Highlight(w io.Writer, src string) error {
	iterator, err := h.lexer.Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("lexer tokenize: %w", err)
	}

	err = h.formatter.Format(w, h.style, iterator)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// FormatterName returns the chroma formatter for a terminal color profile.
func FormatterName(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal8"
	}

	return "noop"
}
