package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <source-id>",
		Short: "Start work on a job: create its first execution record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				id, err := s.engine.StartExecution(s.ctx, args[0])
				if err != nil {
					return engineError(s.out, err)
				}
				return s.out.Render(map[string]string{"record_id": id}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Started execution %s\n", id)
					return err
				})
			})
		},
	}
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split <record-id>",
		Short: "Continue a job on a new execution record prefilled with what remains",
		Long: `Create a new execution record in the same job grouping as <record-id>.

The new record is prefilled with the job's remaining quantity as a draft:
it is shown but not counted until confirmed with "opsledger confirm" or
"opsledger set-qty". Splitting print work also opens an empty cut execution
under the cut job consuming the print job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				res, err := s.engine.Split(s.ctx, args[0])
				if err != nil {
					return engineError(s.out, err)
				}
				if res.PairError != "" {
					s.logger.Warn("split without cut pairing", "record_id", res.RecordID, "error", res.PairError)
				}
				return s.out.Render(res, func(w io.Writer) error {
					return writeSplit(w, res)
				})
			})
		},
	}
}

func writeSplit(w io.Writer, res engine.SplitResult) error {
	state := "confirmed"
	if res.Draft {
		state = "draft"
	}
	fmt.Fprintf(w, "Split into %s with %d (%s)\n", res.RecordID, res.Quantity, state)
	if res.PairedCutID != "" {
		fmt.Fprintf(w, "Paired cut execution %s\n", res.PairedCutID)
	}
	if res.PairError != "" {
		fmt.Fprintf(w, "Warning: no cut execution created: %s\n", res.PairError)
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <record-id> <quantity>",
		Short: "Check a proposed executed quantity without saving it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				v := s.engine.ValidateQuantity(s.ctx, args[0], q)
				if !v.Valid {
					return rejected(s.out, v)
				}
				return s.out.Render(v, func(w io.Writer) error {
					return writeValidation(w, v)
				})
			})
		},
	}
}

// NewSetQuantityCommand creates the set-qty command.
func NewSetQuantityCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <record-id> <quantity>",
		Short: "Set the executed quantity of an execution record",
		Long: `Validate and save the executed quantity of an execution record.

Rejected quantities are not saved and exit with status 1. Saving confirms
a draft quantity.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				v, err := s.engine.UpdateQuantity(s.ctx, args[0], q)
				return outputQuantityEdit(s, v, err)
			})
		},
	}
}

// NewConfirmCommand creates the confirm command.
func NewConfirmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <record-id>",
		Short: "Confirm a draft quantity left by a split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				v, err := s.engine.ConfirmDraft(s.ctx, args[0])
				return outputQuantityEdit(s, v, err)
			})
		},
	}
}

func outputQuantityEdit(s *session, v ops.Validation, err error) error {
	if err != nil {
		return engineError(s.out, err)
	}
	if !v.Valid {
		return rejected(s.out, v)
	}
	return s.out.Render(v, func(w io.Writer) error {
		return writeValidation(w, v)
	})
}

func writeValidation(w io.Writer, v ops.Validation) error {
	if v.Warning != "" {
		_, err := fmt.Fprintf(w, "OK: %s\n", v.Warning)
		return err
	}
	_, err := fmt.Fprintln(w, "OK")
	return err
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <record-id>",
		Short: "Mark a record complete, or reopen it with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				if err := s.engine.SetCompleted(s.ctx, args[0], !undo); err != nil {
					return engineError(s.out, err)
				}
				state := "completed"
				if undo {
					state = "reopened"
				}
				return s.out.Render(map[string]any{"record_id": args[0], "completed": !undo}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Record %s %s\n", args[0], state)
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "reopen a completed record")
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var material, machine, operator, pallet, notes, date string

	cmd := &cobra.Command{
		Use:   "update <record-id>",
		Short: "Edit record details",
		Long: `Edit the descriptive fields of a record. Only flags that are given change.

Material, pallet, notes and date edited on a print source are copied to
every cut record consuming that print source.

Example:
  opsledger update rec-12 --material "ACM 3mm" --pallet P-07`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p ops.Patch
			flags := cmd.Flags()
			if flags.Changed("material") {
				p.Material = ops.String(material)
			}
			if flags.Changed("machine") {
				p.Machine = ops.String(machine)
			}
			if flags.Changed("operator") {
				p.Operator = ops.String(operator)
			}
			if flags.Changed("pallet") {
				p.Pallet = ops.String(pallet)
			}
			if flags.Changed("notes") {
				p.Notes = ops.String(notes)
			}
			if flags.Changed("date") {
				p.Date = ops.String(date)
			}

			return withSession(cmd, rootOpts, func(s *session) error {
				if p.Empty() {
					return outputError(s.out, CodeUsage, fmt.Errorf("nothing to update: pass at least one field flag"))
				}
				if err := s.engine.UpdateDetails(s.ctx, args[0], p); err != nil {
					return engineError(s.out, err)
				}
				return s.out.Render(map[string]string{"record_id": args[0]}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Updated %s\n", args[0])
					return err
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&material, "material", "", "material")
	f.StringVar(&machine, "machine", "", "machine id")
	f.StringVar(&operator, "operator", "", "operator")
	f.StringVar(&pallet, "pallet", "", "pallet")
	f.StringVar(&notes, "notes", "", "notes")
	f.StringVar(&date, "date", "", "operation date (YYYY-MM-DD)")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete an execution record, or a whole job with --cascade",
		Long: `Delete one execution record. Deleting print work that cutting already
consumed is refused.

With --cascade, <record-id> must be a source record: its executions, the
cut records consuming it, and the source itself are deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				var err error
				if cascade {
					err = s.engine.DeleteJob(s.ctx, args[0])
				} else {
					err = s.engine.DeleteExecution(s.ctx, args[0])
				}
				if err != nil {
					return engineError(s.out, err)
				}
				return s.out.Render(map[string]any{"record_id": args[0], "cascade": cascade}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %s\n", args[0])
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "delete a source record and its whole job")
	return cmd
}

func parseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return q, nil
}
