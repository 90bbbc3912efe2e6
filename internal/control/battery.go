package control

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/spf13/afero"
)

// ChargeLimit returns the charge threshold currently set in sysfs.
func (s *Service) ChargeLimit(b sysfs.Battery) (int, error) {
	limit, err := sysfs.ReadInt(s.fs, b.ThresholdPath())
	if err != nil {
		return 0, errors.New().Wrap(ErrRead, err).WithMessage("could not read the charge limit")
	}

	return limit, nil
}

// Capacity returns the battery's charge percentage. ok is false, with a nil
// error, when the battery has no capacity file. A file that exists but
// cannot be read or parsed is an ErrRead error.
func (s *Service) Capacity(b sysfs.Battery) (capacity int, ok bool, err error) {
	capacity, err = sysfs.ReadInt(s.fs, b.CapacityPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("battery", b.Name).Msg("Capacity unavailable")
			return 0, false, nil
		}
		return 0, false, errors.New().Wrap(ErrRead, err).WithMessage("could not read the battery capacity")
	}

	return capacity, true, nil
}

// SetChargeLimit applies limit to the battery for the running session and
// saves it to the limit file for ApplyOnBoot.
//
// A failed sysfs write leaves the limit file untouched. A failed save after
// a successful sysfs write returns an ErrPersistence error: the new limit is
// active but will be lost on reboot.
func (s *Service) SetChargeLimit(ctx context.Context, b sysfs.Battery, limit int) error {
	errFactory := errors.New()

	if !s.privileged() {
		return errFactory.WithMessage(ErrPermission, "modifying the charge limit requires superuser privileges")
	}

	if err := validateChargeLimit(limit); err != nil {
		return err
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	value := strconv.Itoa(limit)

	if err := sysfs.WriteString(s.fs, b.ThresholdPath(), value); err != nil {
		return errFactory.Wrap(ErrWrite, err).
			WithMessage("could not set the charge limit, nothing was changed")
	}

	s.log.Info().Str("battery", b.Name).Int("limit", limit).Msg("Charge limit applied")

	persistErr := s.saveLimit(value)
	s.record(ctx, &history.Change{
		Kind:      history.KindChargeLimit,
		Value:     value,
		Persisted: persistErr == nil,
	})

	if persistErr != nil {
		return errFactory.Wrap(ErrPersistence, persistErr).WithMessage(fmt.Sprintf(
			"charge limit of %d%% is active for the current session but could not be saved to %s and will not survive a reboot",
			limit, s.limitFile))
	}

	s.log.Debug().Str("path", s.limitFile).Int("limit", limit).Msg("Charge limit saved")

	return nil
}

func (s *Service) saveLimit(value string) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.limitFile), limitDirPerm); err != nil {
		return err
	}

	return afero.WriteFile(s.fs, s.limitFile, []byte(value), limitFilePerm)
}

func validateChargeLimit(limit int) error {
	if limit < MinChargeLimit || limit > MaxChargeLimit {
		return errors.New().WithMessage(ErrOutOfRange, fmt.Sprintf(
			"the limit value must be between %d and %d, got %d", MinChargeLimit, MaxChargeLimit, limit))
	}

	return nil
}
