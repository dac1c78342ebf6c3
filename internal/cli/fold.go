package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/foldsort/api"
	"github.com/macropower/foldsort/api/v1beta1/configs"
	"github.com/macropower/foldsort/pkg/config"
	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
)

// ErrInvalidArgument is returned for malformed flag values.
var ErrInvalidArgument = errors.New("invalid argument")

// FoldArgs are the flags selecting which lines are sorted and how folds are
// found.
type FoldArgs struct {
	*RootArgs

	Path       string
	ConfigPath string
	Profile    string
	Range      string
	Method     string
	Marker     string
	Expr       string
	Offset     int
	ShiftWidth int
	TabStop    int
	FoldLevel  int
}

func (fa *FoldArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fa.ConfigPath, "config", "", "Path to the foldsort configuration file")
	cmd.Flags().StringVarP(&fa.Profile, "profile", "p", "", "Use the named fold profile instead of matching rules")
	cmd.Flags().StringVarP(&fa.Range, "range", "r", "", "Lines to sort, as first,last or first-last (default all)")
	cmd.Flags().IntVarP(&fa.Offset, "offset", "k", 0, "Line within each segment holding its sort key")
	cmd.Flags().StringVarP(&fa.Method, "method", "m", string(foldmethod.MethodMarker),
		fmt.Sprintf("Fold method, one of: %s", foldmethod.AllMethods))
	cmd.Flags().StringVar(&fa.Marker, "marker", foldmethod.DefaultMarker, "Fold markers for the marker method")
	cmd.Flags().StringVar(&fa.Expr, "expr", "", "CEL fold expression for the expr method")
	cmd.Flags().IntVar(&fa.ShiftWidth, "shiftwidth", foldmethod.DefaultShiftWidth, "Indent width of one fold level")
	cmd.Flags().IntVar(&fa.TabStop, "tabstop", foldmethod.DefaultTabStop, "Width of a tab character")
	cmd.Flags().IntVar(&fa.FoldLevel, "foldlevel", 0, "Folds deeper than this level are closed")

	must(cmd.MarkFlagFilename("config", "yaml", "yml"))
	must(cmd.RegisterFlagCompletionFunc("method",
		cobra.FixedCompletions(foldmethod.AllMethods, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("profile", profileCompletion(fa)))
}

// isStdin reports whether input is read from standard input.
func (fa *FoldArgs) isStdin() bool {
	return fa.Path == "" || fa.Path == "-"
}

// readInput returns the text to sort.
func (fa *FoldArgs) readInput(cmd *cobra.Command) ([]byte, error) {
	if fa.isStdin() {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return b, nil
	}

	b, err := api.ReadFile(fa.Path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return b, nil
}

// configPath returns --config, or the configuration file found for the input.
func (fa *FoldArgs) configPath() (string, error) {
	if fa.ConfigPath != "" {
		return fa.ConfigPath, nil
	}

	target := "."
	if !fa.isStdin() {
		target = filepath.Dir(fa.Path)
	}

	return configs.FindPath(target)
}

func (fa *FoldArgs) loadConfig() (*configs.Config, error) {
	path, err := fa.configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path, config.WithColor(term.IsTerminal(int(os.Stderr.Fd()))))
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped with the path.
	}

	return cfg, nil
}

// request builds the sort request for text. Options come from, in order of
// precedence: flags that were set, the profile selected with --profile or by
// the first matching rule, and the configuration's fold defaults.
func (fa *FoldArgs) request(cmd *cobra.Command, cfg *configs.Config, text []byte) (foldmethod.Request, error) {
	var (
		opts    foldmethod.Options
		profile string
		err     error
	)

	if fa.Profile != "" {
		profile = fa.Profile

		opts, err = cfg.Profile(fa.Profile)
		if err != nil {
			return foldmethod.Request{}, fmt.Errorf("%w: --profile: %w", ErrInvalidArgument, err)
		}
	} else {
		firstLine, _, _ := strings.Cut(string(text), "\n")
		opts, profile = cfg.FoldOptionsFor(fa.Path, firstLine)
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		opts.Method, err = foldmethod.ParseMethod(fa.Method)
		if err != nil {
			return foldmethod.Request{}, fmt.Errorf("%w: --method: %w", ErrInvalidArgument, err)
		}
	}
	if flags.Changed("marker") {
		opts.Marker = fa.Marker
	}
	if flags.Changed("expr") {
		opts.Expr = fa.Expr
	}
	if flags.Changed("shiftwidth") {
		opts.ShiftWidth = fa.ShiftWidth
	}
	if flags.Changed("tabstop") {
		opts.TabStop = fa.TabStop
	}
	if flags.Changed("foldlevel") {
		opts.Level = fa.FoldLevel
	}

	err = opts.Validate()
	if err != nil {
		return foldmethod.Request{}, fmt.Errorf("fold options: %w", err)
	}

	offset := cfg.Sort.Offset
	if flags.Changed("offset") {
		offset = fa.Offset
	}

	rng, err := ParseRange(fa.Range)
	if err != nil {
		return foldmethod.Request{}, err
	}

	slog.Debug("fold options",
		slog.String("path", fa.Path),
		slog.String("profile", profile),
		slog.String("folds", opts.String()),
		slog.String("range", rng.String()),
		slog.Int("offset", offset),
	)

	return foldmethod.Request{Options: opts, Range: rng, Offset: offset}, nil
}

// ParseRange parses a --range value. Either bound may be omitted, and the
// empty string selects the whole document.
func ParseRange(s string) (fold.Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fold.Range{}, nil
	}

	sep := ","
	if !strings.Contains(s, sep) {
		sep = "-"
	}

	firstStr, lastStr, ok := strings.Cut(s, sep)
	if !ok {
		// A single line.
		lastStr = firstStr
	}

	first, err := parseBound(firstStr)
	if err != nil {
		return fold.Range{}, fmt.Errorf("%w: range %q: %w", ErrInvalidArgument, s, err)
	}

	last, err := parseBound(lastStr)
	if err != nil {
		return fold.Range{}, fmt.Errorf("%w: range %q: %w", ErrInvalidArgument, s, err)
	}

	if last != 0 && first > last {
		return fold.Range{}, fmt.Errorf("%w: range %q ends before it starts", ErrInvalidArgument, s)
	}

	return fold.Range{First: first, Last: last}, nil
}

func parseBound(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a line number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("line %d is before line 1", n)
	}

	return n, nil
}

func profileCompletion(fa *FoldArgs) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		cfg, err := fa.loadConfig()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]cobra.Completion, 0, len(cfg.Profiles))
		for name, p := range cfg.Profiles {
			completions = append(completions, cobra.CompletionWithDesc(name, p.String()))
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
