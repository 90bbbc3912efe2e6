package sysfs

import "codeberg.org/mutker/ampurr/internal/errors"

const (
	ErrBatteryNotFound = errors.ErrNotFound
	ErrRead            = errors.ErrRead
	ErrWrite           = errors.ErrWrite
)
