package control

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/sysfs"
)

// Governor returns cpu0's scaling governor, or sysfs.GovernorNotAvailable
// when the system has no cpufreq support.
func (s *Service) Governor() (sysfs.Governor, error) {
	g, err := sysfs.ReadString(s.fs, s.locator.Core(0).GovernorPath())
	if err != nil {
		if os.IsNotExist(err) {
			return sysfs.GovernorNotAvailable, nil
		}
		return "", errors.New().Wrap(ErrRead, err).WithMessage("could not read the CPU governor")
	}

	return sysfs.Governor(g), nil
}

// AvailableGovernors lists the governors the system offers.
func (s *Service) AvailableGovernors() (sysfs.Governors, error) {
	return s.locator.AvailableGovernors()
}

// SetGovernor writes name to every core with a scaling_governor file and
// returns how many cores were written.
//
// Cores are written in ascending order and the first failure aborts the
// loop. Cores written before the failure keep the new governor; there is no
// rollback.
func (s *Service) SetGovernor(ctx context.Context, name sysfs.Governor) (int, error) {
	errFactory := errors.New()

	if !s.privileged() {
		return 0, errFactory.WithMessage(ErrPermission, "modifying the CPU governor requires superuser privileges")
	}

	available, err := s.locator.AvailableGovernors()
	if err != nil {
		return 0, err
	}
	if len(available) == 0 {
		return 0, errFactory.WithMessage(ErrUnsupported,
			"could not detect available CPU governors, your system may not support this")
	}
	if !available.Contains(name) {
		return 0, errFactory.WithMessage(ErrInvalidGovernor, fmt.Sprintf(
			"'%s' is not a valid governor, available options for your system", name)).
			WithData(available)
	}

	cores, err := s.locator.Cores()
	if err != nil {
		return 0, err
	}
	if len(cores) == 0 {
		return 0, errFactory.WithMessage(ErrNotFound, "could not find any CPU cores")
	}

	unlock, err := s.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	written := 0
	for _, core := range cores {
		path := core.GovernorPath()

		ok, err := sysfs.Exists(s.fs, path)
		if err == nil && !ok {
			s.log.Debug().Int("core", core.Index).Msg("No cpufreq support, skipping core")
			continue
		}
		if err == nil {
			err = sysfs.WriteString(s.fs, path, string(name))
		}
		if err != nil {
			if written > 0 {
				s.record(ctx, &history.Change{Kind: history.KindGovernor, Value: string(name)})
			}
			return written, errFactory.Wrap(ErrWrite, err).WithMessage(fmt.Sprintf(
				"could not set the CPU governor on cpu%d (%d of %d cores already changed)",
				core.Index, written, len(cores)))
		}

		written++
	}

	if written == 0 {
		s.log.Warn().Msg("No core exposes a scaling governor")
	} else {
		s.record(ctx, &history.Change{Kind: history.KindGovernor, Value: string(name)})
	}

	s.log.Info().Str("governor", string(name)).Int("cores", written).Msg("CPU governor applied")

	return written, nil
}
