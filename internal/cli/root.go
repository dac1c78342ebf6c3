package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/foldsort/pkg/log"
)

const (
	cmdName = "foldsort"
	cmdDesc = `Sort blocks of text by their first line, moving each closed fold as a unit.`
	cmdLong = cmdDesc + `

Folds are derived from the text with a vim-like fold method. Each closed fold
is one segment and every other line is its own segment; segments are stably
sorted by their key line, and lines inside a segment never move.

Settings are resolved in this order, first match wins:
  1. Flags on the command line.
  2. FOLDSORT_<FLAG> environment variables.
  3. The --profile, or the profile of the first matching config rule.
  4. The sort and fold sections of the config file.`
)

type RootArgs struct {
	LogLevel  string
	LogFormat string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	runArgs := NewRunArgs(args)

	runCmd := NewRunCmd(runArgs)
	cmd := &cobra.Command{
		Use:               cmdName + " [file]",
		Short:             cmdDesc,
		Long:              cmdLong,
		Example:           cmdExamples,
		PersistentPreRunE: preRun(args),
		SilenceUsage:      true,
		Args:              runCmd.Args,
		RunE:              runCmd.RunE,
	}

	args.AddFlags(cmd)
	runArgs.AddFlags(cmd)
	cmd.AddCommand(runCmd, NewSegmentsCmd(NewSegmentsArgs(args)))

	describeEnvVars(cmd)

	return cmd
}

// preRun applies environment variables to the executing command, then sets
// up logging from the resolved log flags.
func preRun(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		err := applyEnvVars(cmd)
		if err != nil {
			return err
		}

		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}
