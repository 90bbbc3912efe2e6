package sysfs

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ReadString reads a sysfs attribute and returns its trimmed content.
func ReadString(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// ReadInt reads a sysfs attribute holding a decimal integer.
func ReadInt(fs afero.Fs, path string) (int, error) {
	s, err := ReadString(fs, path)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(s)
}

// WriteString writes value to an existing sysfs attribute. Attributes are
// never created: a missing file is an error.
func WriteString(fs afero.Fs, path, value string) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// Exists reports whether path exists. Errors other than "does not exist"
// are returned.
func Exists(fs afero.Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}
