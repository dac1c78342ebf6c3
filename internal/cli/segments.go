package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/macropower/foldsort/pkg/foldmethod"
)

type SegmentsArgs struct {
	FoldArgs
}

func NewSegmentsArgs(rootArgs *RootArgs) *SegmentsArgs {
	return &SegmentsArgs{
		FoldArgs: FoldArgs{RootArgs: rootArgs},
	}
}

func NewSegmentsCmd(sa *SegmentsArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segments [file]",
		Short: "List the segments that would be sorted, with their key lines",
		Example: `  # Check how a file is split before sorting it:
  foldsort segments -m indent values.yaml`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				sa.Path = args[0]
			}

			return listSegments(cmd, sa)
		},
	}
	sa.AddFlags(cmd)

	return cmd
}

func listSegments(cmd *cobra.Command, sa *SegmentsArgs) error {
	cfg, err := sa.loadConfig()
	if err != nil {
		return err
	}

	text, err := sa.readInput(cmd)
	if err != nil {
		return err
	}

	req, err := sa.request(cmd, cfg, text)
	if err != nil {
		return err
	}

	segs, err := foldmethod.Segments(text, req)
	if err != nil {
		return fmt.Errorf("segments %s: %w", sa.displayName(), err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
	for _, seg := range segs {
		mustN(fmt.Fprintf(tw, "%d-%d\t%s\n", seg.Start, seg.End, seg.Key))
	}

	err = tw.Flush()
	if err != nil {
		return fmt.Errorf("write segments: %w", err)
	}

	return nil
}
