package cli

import (
	"fmt"
	"strconv"

	"codeberg.org/mutker/ampurr/internal/errors"
	"github.com/spf13/cobra"
)

func newBatteryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battery",
		Short: "Manage battery settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the currently set limit",
			Args:  cobra.NoArgs,
			RunE:  a.runBatteryGet,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current limit and battery capacity",
			Args:  cobra.NoArgs,
			RunE:  a.runBatteryStatus,
		},
		&cobra.Command{
			Use:   "set LIMIT",
			Short: "Set a new charge limit (requires root)",
			Long:  "Set the charge percentage to stop at (50-100). The limit is applied now and saved for the next boot.",
			Args:  cobra.ExactArgs(1),
			RunE:  a.journaled(a.runBatterySet),
		},
	)

	return cmd
}

func (a *app) runBatteryGet(cmd *cobra.Command, _ []string) error {
	b, err := a.svc.Locate()
	if err != nil {
		return err
	}

	limit, err := a.svc.ChargeLimit(b)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "current charge limit: %d%%\n", limit)
	return nil
}

func (a *app) runBatteryStatus(cmd *cobra.Command, _ []string) error {
	b, err := a.svc.Locate()
	if err != nil {
		return err
	}

	limit, err := a.svc.ChargeLimit(b)
	if err != nil {
		return err
	}

	capacity, ok, err := a.svc.Capacity(b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "set charge limit: %d%%\n", limit)
	if ok {
		fmt.Fprintf(out, "current capacity:   %d%%\n", capacity)
	} else {
		fmt.Fprintln(out, "could not determine current capacity")
	}

	return nil
}

func (a *app) runBatterySet(cmd *cobra.Command, args []string) error {
	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New().Wrap(errors.ErrInvalidArgument, err).
			WithMessage(fmt.Sprintf("invalid limit %q, expected a number between 50 and 100", args[0]))
	}

	b, err := a.svc.Locate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	err = a.svc.SetChargeLimit(cmd.Context(), b, limit)
	if err != nil && !errors.HasCode(err, errors.ErrPersistence) {
		return err
	}

	fmt.Fprintf(out, "charge limit successfully set to %d%% for the current session.\n", limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "limit of %d%% saved and will be applied on next boot.\n", limit)
	return nil
}
