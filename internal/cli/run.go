package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/foldsort/api"
	"github.com/macropower/foldsort/api/v1beta1/configs"
	"github.com/macropower/foldsort/pkg/diff"
	"github.com/macropower/foldsort/pkg/fold"
	"github.com/macropower/foldsort/pkg/foldmethod"
	"github.com/macropower/foldsort/pkg/log"
	"github.com/macropower/foldsort/pkg/mcp"
	"github.com/macropower/foldsort/pkg/telemetry"
	"github.com/macropower/foldsort/pkg/watch"
)

const (
	cmdExamples = `  # Sort marker folds read from stdin:
  foldsort < notes.txt

  # Sort a file in place:
  foldsort -w notes.txt

  # Show what would change:
  foldsort -d notes.txt

  # Fail if a file is not sorted (e.g. in CI):
  foldsort --check notes.txt

  # Sort top-level YAML keys with their values (using the "yaml" profile):
  foldsort -p yaml values.yaml

  # Sort lines 10 to 40, keyed by the second line of each fold:
  foldsort -r 10,40 -k 1 notes.txt

  # Keep a file sorted while editing it:
  foldsort -w --watch notes.txt

  # Serve the MCP server over stdio:
  foldsort --serve-mcp stdio`
)

// ErrNotSorted is returned by --check when sorting would change the input.
var ErrNotSorted = errors.New("not sorted")

type RunArgs struct {
	FoldArgs

	ServeMCP      string
	TraceEndpoint string
	IgnoreCase    bool
	Reverse       bool
	Write         bool
	Diff          bool
	Check         bool
	Watch         bool
	WriteConfig   bool
	ShowConfig    bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		FoldArgs: FoldArgs{RootArgs: rootArgs},
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	ra.FoldArgs.AddFlags(cmd)

	cmd.Flags().BoolVarP(&ra.IgnoreCase, "ignore-case", "i", false, "Compare keys ignoring case")
	cmd.Flags().BoolVar(&ra.Reverse, "reverse", false, "Sort in descending order")
	cmd.Flags().BoolVarP(&ra.Write, "write", "w", false, "Write the result to the file instead of stdout")
	cmd.Flags().BoolVarP(&ra.Diff, "diff", "d", false, "Print a diff instead of the result")
	cmd.Flags().BoolVar(&ra.Check, "check", false, "Exit with an error if the input is not sorted")
	cmd.Flags().BoolVar(&ra.Watch, "watch", false, "Sort the file again whenever it changes (requires --write)")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration file and exit")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active configuration and exit")
	cmd.Flags().StringVar(&ra.ServeMCP, "serve-mcp", "", "Serve the MCP server at the specified address, or \"stdio\"")
	cmd.Flags().StringVar(&ra.TraceEndpoint, "trace-endpoint", "", "Export traces to this OTLP/gRPC endpoint")

	cmd.MarkFlagsMutuallyExclusive("write", "diff", "check")
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "run [file]",
		Short:        "Default command, can be used explicitly if the file name is ambiguous",
		Example:      cmdExamples,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ra.Path = args[0]
			}

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	ctx := cmd.Context()

	if ra.WriteConfig {
		path := ra.ConfigPath
		if path == "" {
			path = configs.GetPath()
		}

		return configs.WriteDefault(path, false) //nolint:wrapcheck // Already wrapped.
	}

	if ra.Watch && (!ra.Write || ra.isStdin()) {
		return fmt.Errorf("%w: --watch requires a file and --write", ErrInvalidArgument)
	}
	if ra.Write && ra.isStdin() {
		return fmt.Errorf("%w: --write requires a file", ErrInvalidArgument)
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{Endpoint: ra.TraceEndpoint, Insecure: true})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Error("shut down tracing", slog.Any("err", err))
		}
	}()

	cfg, err := ra.loadConfig()
	if err != nil {
		return err
	}

	if ra.ShowConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	if ra.ServeMCP != "" {
		return serveMCP(ctx, cmd, cfg, ra)
	}

	if ra.Watch {
		return watchFile(ctx, cmd, cfg, ra)
	}

	return sortOnce(ctx, cmd, cfg, ra)
}

// keyOptions returns the key comparison options, preferring flags that were
// set over the configuration.
func (ra *RunArgs) keyOptions(cmd *cobra.Command, cfg *configs.Config) (bool, bool) {
	ignoreCase, reverse := cfg.Sort.IgnoreCase, cfg.Sort.Reverse
	if cmd.Flags().Changed("ignore-case") {
		ignoreCase = ra.IgnoreCase
	}
	if cmd.Flags().Changed("reverse") {
		reverse = ra.Reverse
	}

	return ignoreCase, reverse
}

func (ra *RunArgs) engineOptions(cmd *cobra.Command, cfg *configs.Config) []fold.Option {
	ignoreCase, reverse := ra.keyOptions(cmd, cfg)

	return []fold.Option{fold.WithIgnoreCase(ignoreCase), fold.WithReverse(reverse)}
}

func sortOnce(ctx context.Context, cmd *cobra.Command, cfg *configs.Config, ra *RunArgs) error {
	logger := log.WithContext(ctx)

	text, err := ra.readInput(cmd)
	if err != nil {
		return err
	}

	req, err := ra.request(cmd, cfg, text)
	if err != nil {
		return err
	}

	out, res, err := foldmethod.SortText(ctx, text, req, ra.engineOptions(cmd, cfg)...)
	if err != nil {
		return fmt.Errorf("sort %s: %w", ra.displayName(), err)
	}

	logger.DebugContext(ctx, "sorted input",
		slog.String("input", ra.displayName()),
		slog.String("size", humanize.Bytes(uint64(len(text)))),
		slog.Int("segments", len(res.Segments)),
		slog.Bool("changed", res.Changed),
	)

	switch {
	case ra.Check:
		if res.Changed {
			return fmt.Errorf("%w: %s", ErrNotSorted, ra.displayName())
		}

		return nil

	case ra.Diff:
		return printDiff(cmd.OutOrStdout(), ra.diffName(), string(text), string(out))

	case ra.Write:
		if !res.Changed {
			logger.DebugContext(ctx, "already sorted", slog.String("path", ra.Path))

			return nil
		}

		err = api.WriteFile(ra.Path, out)
		if err != nil {
			return fmt.Errorf("write %s: %w", ra.Path, err)
		}

		logger.InfoContext(ctx, "sorted file",
			slog.String("path", ra.Path),
			slog.Int("segments", len(res.Segments)),
		)

		return nil
	}

	_, err = cmd.OutOrStdout().Write(out)
	if err != nil {
		return fmt.Errorf("write to stdout: %w", err)
	}

	return nil
}

func (fa *FoldArgs) displayName() string {
	if fa.isStdin() {
		return "stdin"
	}

	return fa.Path
}

func (fa *FoldArgs) diffName() string {
	if fa.isStdin() {
		return ""
	}

	return fa.Path
}

func watchFile(ctx context.Context, cmd *cobra.Command, cfg *configs.Config, ra *RunArgs) error {
	err := sortOnce(ctx, cmd, cfg, ra)
	if err != nil {
		return err
	}

	w, err := watch.New(ra.Path, func(ctx context.Context, _ string) error {
		return sortOnce(ctx, cmd, cfg, ra)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", ra.Path, err)
	}

	defer func() {
		err := w.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	slog.InfoContext(ctx, "watching for changes", slog.String("path", w.Path()))

	return w.Run(ctx) //nolint:wrapcheck // Returns only context errors.
}

func serveMCP(ctx context.Context, cmd *cobra.Command, cfg *configs.Config, ra *RunArgs) error {
	// Flag and config values become defaults for tool calls.
	req, err := ra.request(cmd, cfg, nil)
	if err != nil {
		return err
	}

	ignoreCase, reverse := ra.keyOptions(cmd, cfg)

	server := mcp.NewServer(ra.ServeMCP, mcp.WithDefaults(mcp.Defaults{
		Fold:       req.Options,
		Offset:     req.Offset,
		IgnoreCase: ignoreCase,
		Reverse:    reverse,
	}))

	err = server.Serve(ctx)
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}

	return nil
}

func printDiff(w io.Writer, name, before, after string) error {
	unified := diff.Unified(name, before, after)
	if unified == "" {
		return nil
	}

	added, removed := diff.Stat(unified)
	slog.Debug("diff", slog.Int("added", added), slog.Int("removed", removed))

	if !isTerminal(w) {
		_, err := io.WriteString(w, unified)
		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}

		return nil
	}

	err := diff.NewHighlighter("diff", termenv.EnvColorProfile()).Highlight(w, unified)
	if err != nil {
		return fmt.Errorf("highlight diff: %w", err)
	}

	return nil
}

func showConfig(w io.Writer, cfg *configs.Config) error {
	b, err := cfg.MarshalYAML()
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if !isTerminal(w) {
		_, err = w.Write(b)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		return nil
	}

	err = diff.NewHighlighter("YAML", termenv.EnvColorProfile()).Highlight(w, string(b))
	if err != nil {
		return fmt.Errorf("highlight config: %w", err)
	}

	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
