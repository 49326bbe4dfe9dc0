package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/opsledger/internal/ops"
)

// NewMachineCommand creates the machine command group.
func NewMachineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machine",
		Short: "Manage the machine directory used to resolve plan machine hints",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add or rename a machine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				m := ops.Machine{ID: args[0], Name: args[1]}
				if err := s.store.AddMachine(s.ctx, m); err != nil {
					return outputError(s.out, CodeStore, err)
				}
				return s.out.Render(m, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Machine %s: %s\n", m.ID, m.Name)
					return err
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known machines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				machines, err := s.store.Machines(s.ctx)
				if err != nil {
					return outputError(s.out, CodeStore, err)
				}
				return s.out.Render(machines, func(w io.Writer) error {
					for _, m := range machines {
						fmt.Fprintf(w, "%s  %s\n", m.ID, m.Name)
					}
					return nil
				})
			})
		},
	})

	return cmd
}
