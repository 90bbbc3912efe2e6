package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/ampurr/internal/config"
	"codeberg.org/mutker/ampurr/internal/control"
	"codeberg.org/mutker/ampurr/internal/logger"
	"github.com/spf13/cobra"
)

// snapshotter is the part of the control service the monitor polls.
type snapshotter interface {
	Snapshot() control.Snapshot
}

func newMonitorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print battery and CPU status every interval until interrupted",
		Args:  cobra.NoArgs,
		RunE:  a.runMonitor,
	}

	cmd.Flags().Int("interval", config.DefaultInterval, "seconds between snapshots")
	cmd.Flags().Int("count", 0, "stop after this many snapshots (0 runs until interrupted)")

	return cmd
}

func (a *app) runMonitor(cmd *cobra.Command, _ []string) error {
	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleSignals(ctx, cancel)

	interval := time.Duration(a.cfg.Interval) * time.Second

	return monitor(ctx, cmd.OutOrStdout(), a.svc, interval, count)
}

// monitor prints a snapshot immediately and then on every tick. A count of
// zero or less runs until ctx is done.
func monitor(ctx context.Context, w io.Writer, src snapshotter, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug().Dur("interval", interval).Msg("Monitor started")

	printed := 0
	for {
		if err := printSnapshot(w, src.Snapshot()); err != nil {
			return err
		}
		printed++
		if count > 0 && printed >= count {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal")
		cancel()
	case <-ctx.Done():
	}
}

func printSnapshot(w io.Writer, snap control.Snapshot) error {
	battery := snap.Battery
	if snap.BatteryErr != "" {
		battery = snap.BatteryErr
	}

	limit := fmt.Sprintf("%d%%", snap.ChargeLimit)
	if snap.ChargeLimitErr != "" {
		limit = "unknown"
	}

	capacity := "unknown"
	if snap.HasCapacity {
		capacity = fmt.Sprintf("%d%%", snap.Capacity)
	}

	governor := string(snap.Governor)
	if snap.GovernorErr != "" {
		governor = snap.GovernorErr
	}

	_, err := fmt.Fprintf(w, "%s  battery: %s  limit: %s  capacity: %s  governor: %s\n",
		time.Now().Format("15:04:05"), battery, limit, capacity, governor)

	return err
}
