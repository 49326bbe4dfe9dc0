package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
)

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress (<record-id> | <class> <job-id>)",
		Short: "Show planned, executed and remaining quantities of a job",
		Long: `Show the progress of a job grouping.

With one argument, the grouping is the one the record counts against.
With two, <class> is print, cut or cut-from-print and <job-id> is the print
job id, the cut job id, or the print source record id respectively.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				var p ops.Progress
				var err error
				if len(args) == 1 {
					var rec ops.Record
					rec, err = s.store.GetRecord(s.ctx, args[0])
					if errors.Is(err, ops.ErrNotFound) {
						return outputError(s.out, string(engine.ErrCodeNotFound), err)
					}
					if err != nil {
						return outputError(s.out, CodeStore, err)
					}
					p, err = s.engine.ProgressFor(s.ctx, rec)
				} else {
					class, perr := ops.ParseJobClass(args[0])
					if perr != nil {
						return outputError(s.out, CodeUsage, perr)
					}
					p, err = s.engine.Progress(s.ctx, ops.JobRef{Class: class, ID: args[1]})
				}
				if err != nil {
					return engineError(s.out, err)
				}
				return s.out.Render(p, func(w io.Writer) error {
					fmt.Fprintf(w, "%s\n", p.Job)
					return writeProgress(w, p)
				})
			})
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show every job of an item with its progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				jobs, err := s.engine.Summarize(s.ctx, itemID)
				if err != nil {
					return engineError(s.out, err)
				}
				return s.out.Render(jobs, func(w io.Writer) error {
					return writeSummary(w, itemID, jobs)
				})
			})
		},
	}
	cmd.Flags().StringVar(&itemID, "item", "", "item id (required)")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filter     ops.Filter
	Kind       string
	Sources    bool
	Executions bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operation records in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Filter.ItemID, "item", "", "only records of this item")
	f.StringVar(&opts.Filter.PrintJobID, "print-job", "", "only records of this print job")
	f.StringVar(&opts.Filter.CutJobID, "cut-job", "", "only records of this cut job")
	f.StringVar(&opts.Filter.SourcePrintID, "source-print", "", "only cut records consuming this print source")
	f.StringVar(&opts.Kind, "kind", "", "only print or cut records")
	f.BoolVar(&opts.Sources, "sources", false, "only source records")
	f.BoolVar(&opts.Executions, "executions", false, "only execution records")
	cmd.MarkFlagsMutuallyExclusive("sources", "executions")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	return withSession(cmd, opts.RootOptions, func(s *session) error {
		f := opts.Filter
		if opts.Kind != "" {
			kind, err := ops.ParseKind(opts.Kind)
			if err != nil {
				return outputError(s.out, CodeUsage, err)
			}
			f.Kind = kind
		}
		switch {
		case opts.Sources:
			f.IsSource = ops.Bool(true)
		case opts.Executions:
			f.IsSource = ops.Bool(false)
		}

		recs, err := s.store.ListRecords(s.ctx, f)
		if err != nil {
			return outputError(s.out, CodeStore, err)
		}
		return s.out.Render(recs, func(w io.Writer) error {
			return writeRecords(w, recs)
		})
	})
}
