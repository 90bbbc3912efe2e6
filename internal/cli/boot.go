package cli

import (
	"context"

	"codeberg.org/mutker/ampurr/internal/config"
	"codeberg.org/mutker/ampurr/internal/control"
	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/logger"
)

const bootFlag = "--apply-on-boot"

// isBoot reports whether the process was started by the boot service, which
// passes the flag as the only argument. It is checked before cobra parses
// anything so that no parse error can escape. Anywhere else the flag is
// unknown to cobra and reported as such.
func isBoot(args []string) bool {
	return len(args) > 0 && args[0] == bootFlag
}

// runBoot re-applies the saved charge limit. It prints nothing and never
// fails: a broken config falls back to the defaults and every error is
// dropped.
func runBoot(ctx context.Context) {
	logger.Disable()

	cfg, err := config.Load(nil)
	if err != nil {
		cfg = config.Default()
	}

	recorder, err := history.NewService(historyConfig(cfg), logger.Default())
	if err != nil {
		recorder = history.Noop()
	}
	defer recorder.Close()

	svc := newService(cfg, recorder, control.WithReportErrors(false))
	_ = svc.ApplyOnBoot(ctx)
}
