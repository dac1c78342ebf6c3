// Package nvim sorts folds in a running Neovim through its RPC API.
//
// Folds are whatever Neovim reports as closed. Ranges are 1-based and
// inclusive, and are translated to the 0-based, end-exclusive indexes of the
// buffer API at this boundary.
package nvim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"

	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/log"
)

// CommandName is the user command registered by [Register].
const CommandName = "SortFolds"

// ErrInvalidArgument is reported when the command argument is not an integer.
var ErrInvalidArgument = errors.New("invalid argument")

// Client is the subset of [*nvim.Nvim] used to sort folds.
type Client interface {
	CurrentBuffer() (nvim.Buffer, error)
	BufferLineCount(buffer nvim.Buffer) (int, error)
	BufferLines(buffer nvim.Buffer, start, end int, strict bool) ([][]byte, error)
	SetBufferLines(buffer nvim.Buffer, start, end int, strict bool, replacement [][]byte) error
	Call(fname string, result any, args ...any) error
	Eval(expr string, result any) error
	Command(cmd string) error
	WritelnErr(str string) error
}

// Document is a [fold.Document] over one Neovim buffer.
type Document struct {
	client    Client
	buffer    nvim.Buffer
	lineCount int
}

// NewDocument returns a [Document] for the current buffer.
func NewDocument(client Client) (*Document, error) {
	buf, err := client.CurrentBuffer()
	if err != nil {
		return nil, fmt.Errorf("get current buffer: %w", err)
	}

	count, err := client.BufferLineCount(buf)
	if err != nil {
		return nil, fmt.Errorf("get line count: %w", err)
	}

	return &Document{client: client, buffer: buf, lineCount: count}, nil
}

// LineCount returns the line count read when d was created, adjusted for any
// replacements made through d.
func (d *Document) LineCount() int {
	return d.lineCount
}

func (d *Document) Lines(first, last int) ([]string, error) {
	err := fold.Range{First: first, Last: last}.Validate(d.lineCount)
	if err != nil {
		return nil, err
	}

	raw, err := d.client.BufferLines(d.buffer, first-1, last, true)
	if err != nil {
		return nil, fmt.Errorf("get buffer lines: %w", err)
	}

	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}

	return lines, nil
}

// ReplaceLines replaces lines first through last in a single call, so the
// change is one undo step.
func (d *Document) ReplaceLines(first, last int, lines []string) error {
	err := fold.Range{First: first, Last: last}.Validate(d.lineCount)
	if err != nil {
		return err
	}

	raw := make([][]byte, len(lines))
	for i, l := range lines {
		raw[i] = []byte(l)
	}

	err = d.client.SetBufferLines(d.buffer, first-1, last, true, raw)
	if err != nil {
		return fmt.Errorf("set buffer lines: %w", err)
	}

	d.lineCount += len(lines) - (last - first + 1)

	return nil
}

// Oracle is a [fold.Oracle] asking Neovim for closed folds in the current
// window.
type Oracle struct {
	client Client
}

// NewOracle returns an [Oracle] for the current window. Manual folds are
// rejected with [fold.ErrUnsupportedFoldMode]: they are attached to line
// positions, and would no longer match the text after a sort.
func NewOracle(client Client) (*Oracle, error) {
	var method string

	err := client.Eval("&foldmethod", &method)
	if err != nil {
		return nil, fmt.Errorf("get foldmethod: %w", err)
	}

	if method == "manual" {
		return nil, fmt.Errorf("%w: foldmethod=%s", fold.ErrUnsupportedFoldMode, method)
	}

	return &Oracle{client: client}, nil
}

func (o *Oracle) FoldEnd(line int) (int, bool, error) {
	var end int

	err := o.client.Call("foldclosedend", &end, line)
	if err != nil {
		return 0, false, fmt.Errorf("foldclosedend(%d): %w", line, err)
	}

	if end == -1 {
		return 0, false, nil
	}

	return end, true, nil
}

// Command runs :SortFolds.
type Command struct {
	Client  Client
	Options []fold.Option
}

// Handle sorts the closed folds in rng by the line at the offset given in
// args (default 0). Sort failures are shown to the user as an error message
// and are not returned, so Neovim does not treat them as a plugin crash.
func (c Command) Handle(args []string, rng [2]int) error {
	ctx := context.Background()

	err := c.sort(ctx, args, rng)
	if err == nil {
		return nil
	}

	log.WithContext(ctx).WarnContext(ctx, "sort folds", slog.Any("err", err))

	err = c.Client.WritelnErr(fmt.Sprintf("%s: %v", CommandName, err))
	if err != nil {
		return fmt.Errorf("write error message: %w", err)
	}

	return nil
}

func (c Command) sort(ctx context.Context, args []string, rng [2]int) error {
	offset := 0
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("%w: offset %q is not an integer", ErrInvalidArgument, args[0])
		}

		offset = n
	}

	doc, err := NewDocument(c.Client)
	if err != nil {
		return err
	}

	oracle, err := NewOracle(c.Client)
	if err != nil {
		return err
	}

	res, err := fold.New(doc, oracle, c.Options...).Sort(ctx, fold.Range{First: rng[0], Last: rng[1]}, offset)
	if err != nil {
		return err
	}

	if !res.Changed {
		return nil
	}

	// Recompute folds from the new content.
	err = c.Client.Command("normal! zx")
	if err != nil {
		return fmt.Errorf("update folds: %w", err)
	}

	return nil
}

// HostName is the remote plugin host name used in the manifest.
const HostName = "foldsort"

// Register registers the :SortFolds command with p. Neovim only defines the
// command once the manifest from [Manifest] has been sourced.
func Register(p *plugin.Plugin, opts ...fold.Option) error {
	cmd := Command{Client: p.Nvim, Options: opts}

	p.HandleCommand(&plugin.CommandOptions{
		Name:  CommandName,
		NArgs: "?",
		Range: "%",
	}, cmd.Handle)

	return nil
}

// Manifest returns the remote#host#RegisterPlugin call that defines the
// commands of [Register] for host.
func Manifest(host string) ([]byte, error) {
	p := plugin.New(nil)

	err := Register(p)
	if err != nil {
		return nil, err
	}

	return p.Manifest(host), nil
}
