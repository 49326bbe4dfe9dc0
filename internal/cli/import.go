package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/planfile"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plans-file>",
		Short: "Import quantity plans as job source records",
		Long: `Import the quantity plans of one work order from a YAML or CUE file.

Each print plan becomes a print source record plus a cut source consuming
it; each cut plan becomes a cut source record. Plans imported before are
skipped. A plan that fails does not stop the rest of the file.

Example:
  opsledger import plans/FO2026-0042.yaml
  opsledger import --format json plans/FO2026-0042.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	return withSession(cmd, opts, func(s *session) error {
		f, err := planfile.Load(path)
		if err != nil {
			return outputError(s.out, CodePlanFile, err)
		}
		s.out.VerboseLog("Loaded %d plan(s) for work order %s", len(f.Plans), f.WorkOrder.ID)

		res := s.engine.ImportPlans(s.ctx, f.WorkOrder, f.Plans)
		return outputImport(s.out, res)
	})
}

// outputImport prints an import result. Partial failures exit with 1.
func outputImport(out *OutputFormatter, res engine.ImportResult) error {
	if err := out.Render(res, func(w io.Writer) error {
		return writeImport(w, res)
	}); err != nil {
		return err
	}
	if !res.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d plan(s) failed to import", len(res.Errors)))
	}
	return nil
}

func writeImport(w io.Writer, res engine.ImportResult) error {
	fmt.Fprintf(w, "Imported %d job(s), skipped %d\n", res.Imported, res.Skipped)
	for _, j := range res.Jobs {
		fmt.Fprintf(w, "  %s  source=%s", j.InternalCode, j.SourceID)
		if j.PairedCutID != "" {
			fmt.Fprintf(w, " cut=%s", j.PairedCutID)
		}
		if j.Machine != "" {
			fmt.Fprintf(w, " machine=%s", j.Machine)
		}
		fmt.Fprintln(w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  FAILED %s\n", e.Error())
	}
	return nil
}

// JobCreateOptions holds flags for the job create command.
type JobCreateOptions struct {
	*RootOptions
	WorkOrder ops.WorkOrder
	Plan      ops.PlanDescription
	Kind      string
}

// NewJobCommand creates the job command group.
func NewJobCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage job groupings",
	}
	cmd.AddCommand(newJobCreateCommand(rootOpts))
	return cmd
}

func newJobCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JobCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job by hand, without a quantity plan",
		Long: `Create a source record for ad hoc work. Print and print_flexible jobs
also get a paired cut source, exactly as imported print plans do.

Example:
  opsledger job create --item item-7 --work-order wo-3 --number FO2026-0099 \
    --kind print --name "Adesivo vitrine" --quantity 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobCreate(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.WorkOrder.ID, "work-order", "", "owning work order id")
	f.StringVar(&opts.WorkOrder.Number, "number", "", "work order number, used in the internal code")
	f.StringVar(&opts.WorkOrder.ItemID, "item", "", "owning item id (required)")
	f.StringVar(&opts.Plan.Name, "name", "", "job name (required)")
	f.StringVar(&opts.Kind, "kind", string(ops.PlanPrint), "print, print_flexible or cut")
	f.Int64Var(&opts.Plan.Quantity, "quantity", 0, "planned quantity")
	f.StringVar(&opts.Plan.Material, "material", "", "material")
	f.StringVar(&opts.Plan.Colors, "colors", "", "color spec")
	f.StringVar(&opts.Plan.Machine, "machine", "", "machine id or name")
	f.StringVar(&opts.Plan.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runJobCreate(opts *JobCreateOptions, cmd *cobra.Command) error {
	return withSession(cmd, opts.RootOptions, func(s *session) error {
		kind, err := ops.ParsePlanKind(opts.Kind)
		if err != nil {
			return outputError(s.out, CodeUsage, err)
		}
		if opts.Plan.Quantity < 0 {
			return outputError(s.out, CodeUsage, fmt.Errorf("quantity %d is negative", opts.Plan.Quantity))
		}

		plan := opts.Plan
		plan.Kind = kind
		plan.Ordinal = 1
		res := s.engine.CreateManualJob(s.ctx, opts.WorkOrder, plan)
		return outputImport(s.out, res)
	})
}
