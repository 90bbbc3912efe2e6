package cli

import (
	"fmt"
	"text/tabwriter"

	"codeberg.org/mutker/ampurr/internal/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently applied settings",
		Long:  "List recently applied settings. Requires history to be enabled in the config file or with --history.",
		Args:  cobra.NoArgs,
		RunE:  a.journaled(a.runHistory),
	}

	cmd.Flags().Int("limit", 20, "number of entries to show")

	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, _ []string) error {
	if !a.cfg.History {
		return errors.New().WithMessage(errors.ErrInvalidConfig,
			"history is disabled, enable it with history = true in "+defaultConfigHint(cmd)+" or --history")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	changes, err := a.recorder.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintln(out, "no changes recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSETTING\tVALUE\tSOURCE\tSAVED")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.Kind,
			c.Value,
			c.Source,
			c.Persisted,
		)
	}

	return w.Flush()
}

func defaultConfigHint(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}

	return "the config file"
}
