// Package control applies and reports battery charge limits and CPU
// frequency governors. Every write is validated before anything is touched
// and requires superuser privileges.
package control

import (
	"context"

	"codeberg.org/mutker/ampurr/internal/history"
	"codeberg.org/mutker/ampurr/internal/logger"
	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const (
	MinChargeLimit = 50
	MaxChargeLimit = 100

	DefaultLimitFile = "/etc/ampurr.conf"

	limitFilePerm = 0o644
	limitDirPerm  = 0o755
)

// Service is the hardware control layer. It keeps no device state between
// calls.
type Service struct {
	fs           afero.Fs
	locator      Locator
	limitFile    string
	privileged   func() bool
	recorder     history.Recorder
	locker       Locker
	log          logger.Logger
	reportErrors bool
}

// Option configures a Service.
type Option func(*Service)

// WithLimitFile sets where the charge limit is saved for boot.
func WithLimitFile(path string) Option {
	return func(s *Service) {
		s.limitFile = path
	}
}

// WithPrivilegeCheck replaces the effective UID check.
func WithPrivilegeCheck(check func() bool) Option {
	return func(s *Service) {
		s.privileged = check
	}
}

// WithRecorder journals successful writes.
func WithRecorder(r history.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLocker serializes writes across processes.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithReportErrors controls whether ApplyOnBoot returns its failures. When
// false they are only logged at debug level.
func WithReportErrors(report bool) Option {
	return func(s *Service) {
		s.reportErrors = report
	}
}

// New returns a Service performing I/O on fs.
func New(fs afero.Fs, locator Locator, opts ...Option) *Service {
	s := &Service{
		fs:           fs,
		locator:      locator,
		limitFile:    DefaultLimitFile,
		privileged:   IsPrivileged,
		recorder:     history.Noop(),
		locker:       nopLocker{},
		log:          logger.Default(),
		reportErrors: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsPrivileged reports whether the process runs with an effective UID of 0.
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}

// Locate returns the controllable battery.
func (s *Service) Locate() (sysfs.Battery, error) {
	return s.locator.FindBattery()
}

// lock acquires the cross-process lock and returns its release func.
func (s *Service) lock() (func(), error) {
	if err := s.locker.Lock(); err != nil {
		return nil, err
	}

	return func() {
		if err := s.locker.Unlock(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to release lock")
		}
	}, nil
}

func (s *Service) record(ctx context.Context, change *history.Change) {
	if change.Source == "" {
		change.Source = history.SourceCLI
	}
	if err := s.recorder.Record(ctx, change); err != nil {
		s.log.Warn().Err(err).Str("kind", string(change.Kind)).Msg("Failed to record change")
	}
}

type nopLocker struct{}

func (nopLocker) Lock() error   { return nil }
func (nopLocker) Unlock() error { return nil }
