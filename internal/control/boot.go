package control

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/sysfs"
)

// ApplyOnBoot re-applies the saved charge limit. A missing limit file means
// nothing was ever saved and is not an error.
//
// Unless WithReportErrors(true) is in effect every failure is logged at
// debug level and nil is returned, so an init system never sees a failure.
func (s *Service) ApplyOnBoot(ctx context.Context) error {
	err := s.applyOnBoot(ctx)
	if err == nil || s.reportErrors {
		return err
	}

	s.log.Debug().Err(err).Msg("Boot apply failed")

	return nil
}

func (s *Service) applyOnBoot(ctx context.Context) error {
	errFactory := errors.New()

	stored, err := sysfs.ReadString(s.fs, s.limitFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("path", s.limitFile).Msg("No saved charge limit")
			return nil
		}
		return errFactory.Wrap(ErrRead, err).WithMessage("could not read the saved charge limit")
	}

	limit, err := strconv.Atoi(stored)
	if err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err).
			WithMessage(fmt.Sprintf("saved charge limit in %s is not a number", s.limitFile))
	}
	if err := validateChargeLimit(limit); err != nil {
		return err
	}

	if !s.privileged() {
		return errFactory.WithMessage(ErrPermission, "applying the charge limit requires superuser privileges")
	}

	b, err := s.locator.FindBattery()
	if err != nil {
		return err
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := sysfs.WriteString(s.fs, b.ThresholdPath(), strconv.Itoa(limit)); err != nil {
		return errFactory.Wrap(ErrWrite, err).WithMessage("could not apply the saved charge limit")
	}

	s.log.Info().Str("battery", b.Name).Int("limit", limit).Msg("Saved charge limit applied")

	s.record(ctx, &history.Change{
		Kind:      history.KindChargeLimit,
		Value:     strconv.Itoa(limit),
		Source:    history.SourceBoot,
		Persisted: true,
	})

	return nil
}
