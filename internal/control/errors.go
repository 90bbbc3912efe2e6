package control

import "codeberg.org/mutker/ampurr/internal/errors"

const (
	ErrNotFound        = errors.ErrNotFound
	ErrPermission      = errors.ErrPermission
	ErrOutOfRange      = errors.ErrOutOfRange
	ErrInvalidGovernor = errors.ErrInvalidGovernor
	ErrRead            = errors.ErrRead
	ErrWrite           = errors.ErrWrite
	ErrPersistence     = errors.ErrPersistence
	ErrUnsupported     = errors.ErrUnsupported
	ErrLocked          = errors.ErrAlreadyRunning
)
