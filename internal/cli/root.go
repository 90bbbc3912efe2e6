// Package cli implements the ampurr command-line interface using Cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/mutker/ampurr/internal/config"
	"codeberg.org/mutker/ampurr/internal/control"
	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/logger"
	"codeberg.org/mutker/ampurr/internal/pid"
	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// privileged is replaced in tests.
var privileged = control.IsPrivileged

// app carries what PersistentPreRunE sets up for the subcommands. recorder
// is a no-op unless the command is journaled.
type app struct {
	cfg      *config.Config
	recorder history.Recorder
	svc      *control.Service
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ampurr",
		Short: "ampurr - a simple utility to manage your battery",
		Long: `ampurr caps the battery charge level and switches the CPU frequency
governor through sysfs.

The charge limit is saved to the limit file and re-applied at boot by
running "ampurr --apply-on-boot" from a system service.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default "+config.DefaultConfigFile+")")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warning, error)")
	flags.Bool("history", false, "record applied settings in the history database")
	flags.String("history-db", config.DefaultHistoryDB, "history database path")

	root.AddCommand(
		newBatteryCmd(a),
		newCPUCmd(a),
		newMonitorCmd(a),
		newHistoryCmd(a),
	)

	return root
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	if isBoot(os.Args[1:]) {
		runBoot(context.Background())
		os.Exit(0)
	}

	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	var opts []config.Option
	if path, _ := flags.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	cfg, err := config.Load(flags, opts...)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level, logger.IsService())

	a.cfg = cfg
	a.recorder = history.Noop()
	a.svc = newService(cfg, a.recorder)

	return nil
}

// journaled wraps the RunE of a command that uses the history journal. The
// recorder is open only for the duration of run.
func (a *app) journaled(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		recorder, err := history.NewService(historyConfig(a.cfg), logger.Default())
		if err != nil {
			return err
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close history")
			}
		}()

		a.recorder = recorder
		a.svc = newService(a.cfg, recorder)

		return run(cmd, args)
	}
}

func historyConfig(cfg *config.Config) history.Config {
	return history.Config{DBPath: cfg.HistoryDB, Enabled: cfg.History}
}

func newService(cfg *config.Config, recorder history.Recorder, opts ...control.Option) *control.Service {
	fs := afero.NewOsFs()
	locator := sysfs.NewLocator(fs,
		sysfs.WithPowerSupplyPath(cfg.PowerSupplyPath),
		sysfs.WithCPUPath(cfg.CPUPath),
	)

	base := []control.Option{
		control.WithLimitFile(cfg.LimitFile),
		control.WithPrivilegeCheck(privileged),
		control.WithRecorder(recorder),
		control.WithLocker(pid.NewFile(cfg.LockFile)),
		control.WithLogger(logger.Default()),
	}

	return control.New(fs, locator, append(base, opts...)...)
}
