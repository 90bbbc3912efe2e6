// Package pid serializes mutating invocations through a PID file held under
// an exclusive flock.
package pid

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/ampurr/internal/errors"
	"golang.org/x/sys/unix"
)

// attempts bounds the retries when the file is replaced between open and
// flock.
const attempts = 5

// File is a PID lock file. The lock is the flock on the open file; the PID
// written into it is informational.
type File struct {
	path string
	f    *os.File
}

// NewFile returns a lock on path. An empty path gives a lock that always
// succeeds.
func NewFile(path string) *File {
	return &File{path: path}
}

// Lock takes the exclusive lock and writes the current process ID into the
// file. It fails with ErrAlreadyRunning, carrying the holder's PID, when
// another open file already holds it. Calling Lock again on a held File is
// a no-op.
func (f *File) Lock() error {
	if f.path == "" || f.f != nil {
		return nil
	}

	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	for i := 0; i < attempts; i++ {
		file, err := os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			holder := readPID(file)
			file.Close()
			if errors.Is(err, unix.EWOULDBLOCK) {
				return errFactory.WithData(errors.ErrAlreadyRunning, holder)
			}
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		// The previous holder may have removed the file after we opened it.
		if !samePath(file, f.path) {
			file.Close()
			continue
		}

		if err := writePID(file); err != nil {
			file.Close()
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		f.f = file
		return nil
	}

	return errFactory.WithMessage(errors.ErrInternal, "lock file kept changing: "+f.path)
}

// Unlock removes the PID file and releases the lock. It does nothing if the
// lock is not held.
func (f *File) Unlock() error {
	if f.f == nil {
		return nil
	}

	errFactory := errors.New()

	removeErr := os.Remove(f.path)
	closeErr := f.f.Close()
	f.f = nil

	if removeErr != nil && !os.IsNotExist(removeErr) {
		return errFactory.Wrap(errors.ErrInternal, removeErr)
	}
	if closeErr != nil {
		return errFactory.Wrap(errors.ErrInternal, closeErr)
	}

	return nil
}

func writePID(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	_, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	return err
}

// readPID returns the PID recorded in file, or 0 if there is none yet.
func readPID(file *os.File) int {
	data, err := io.ReadAll(io.NewSectionReader(file, 0, 32))
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}

	return pid
}

func samePath(file *os.File, path string) bool {
	held, err := file.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}

	return os.SameFile(held, current)
}
