package cli

import (
	"fmt"

	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/spf13/cobra"
)

func newCPUCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpu",
		Short: "Manage CPU power profiles (governors)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current CPU governor",
			Args:  cobra.NoArgs,
			RunE:  a.runCPUStatus,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available CPU governors for your system",
			Args:  cobra.NoArgs,
			RunE:  a.runCPUList,
		},
		&cobra.Command{
			Use:     "set GOVERNOR",
			Short:   "Set a new CPU governor on every core (requires root)",
			Example: "  ampurr cpu set powersave\n  ampurr cpu set performance",
			Args:    cobra.ExactArgs(1),
			RunE:    a.journaled(a.runCPUSet),
		},
	)

	return cmd
}

func (a *app) runCPUStatus(cmd *cobra.Command, _ []string) error {
	g, err := a.svc.Governor()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "current CPU governor: %s\n", g)
	return nil
}

func (a *app) runCPUList(cmd *cobra.Command, _ []string) error {
	governors, err := a.svc.AvailableGovernors()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(governors) == 0 {
		fmt.Fprintln(out, "could not find any available governors.")
		return nil
	}

	fmt.Fprintln(out, "available governors for your system:")
	fmt.Fprintf(out, "  %s\n", governors)
	return nil
}

func (a *app) runCPUSet(cmd *cobra.Command, args []string) error {
	name := sysfs.Governor(args[0])

	n, err := a.svc.SetGovernor(cmd.Context(), name)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "CPU governor successfully set to '%s' on %d cores.\n", name, n)
	return nil
}
