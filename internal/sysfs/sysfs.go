// Package sysfs locates the battery and CPU devices that can be controlled
// through /sys and reads and writes their text attributes.
package sysfs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/ampurr/internal/errors"
	"github.com/spf13/afero"
)

var coreName = regexp.MustCompile(`^cpu([0-9]+)$`)

// Locator discovers devices. It holds no device state: every call rescans,
// so a hot-plugged battery is picked up by the next invocation.
type Locator struct {
	fs              afero.Fs
	powerSupplyPath string
	cpuPath         string
}

// Option configures a Locator.
type Option func(*Locator)

// WithPowerSupplyPath overrides the power supply class directory.
func WithPowerSupplyPath(path string) Option {
	return func(l *Locator) {
		l.powerSupplyPath = path
	}
}

// WithCPUPath overrides the CPU device directory.
func WithCPUPath(path string) Option {
	return func(l *Locator) {
		l.cpuPath = path
	}
}

// NewLocator returns a Locator reading from fs.
func NewLocator(fs afero.Fs, opts ...Option) *Locator {
	l := &Locator{
		fs:              fs,
		powerSupplyPath: DefaultPowerSupplyPath,
		cpuPath:         DefaultCPUPath,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// FindBattery returns the first BAT* power supply with a charge threshold
// attribute. Candidates are tried in natural order (BAT2 before BAT10).
func (l *Locator) FindBattery() (Battery, error) {
	errFactory := errors.New()

	entries, err := afero.ReadDir(l.fs, l.powerSupplyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Battery{}, errFactory.WithMessage(ErrBatteryNotFound, "no supported battery found")
		}
		return Battery{}, errFactory.Wrap(ErrRead, err).WithMessage("could not scan power supplies")
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), batteryPrefix) {
			names = append(names, entry.Name())
		}
	}
	sortBatteries(names)

	for _, name := range names {
		b := Battery{Name: name, Path: filepath.Join(l.powerSupplyPath, name)}
		ok, err := Exists(l.fs, b.ThresholdPath())
		if err != nil || !ok {
			continue
		}
		return b, nil
	}

	return Battery{}, errFactory.WithMessage(ErrBatteryNotFound, "no supported battery found")
}

// Cores returns the cpu<N> directories in ascending index order. A missing
// CPU directory yields an empty list.
func (l *Locator) Cores() ([]Core, error) {
	entries, err := afero.ReadDir(l.fs, l.cpuPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New().Wrap(ErrRead, err).WithMessage("could not scan CPU cores")
	}

	var cores []Core
	for _, entry := range entries {
		m := coreName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		cores = append(cores, Core{Index: index, Path: filepath.Join(l.cpuPath, entry.Name())})
	}

	sort.Slice(cores, func(i, j int) bool { return cores[i].Index < cores[j].Index })

	return cores, nil
}

// Core returns core index without checking that it exists.
func (l *Locator) Core(index int) Core {
	return Core{
		Index: index,
		Path:  filepath.Join(l.cpuPath, "cpu"+strconv.Itoa(index)),
	}
}

// AvailableGovernors lists the governors cpu0 offers. Systems without
// cpufreq (older kernels, most VMs) yield an empty list.
func (l *Locator) AvailableGovernors() (Governors, error) {
	path := filepath.Join(l.Core(0).Path, AvailableGovernorsFile)

	s, err := ReadString(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Governors{}, nil
		}
		return nil, errors.New().Wrap(ErrRead, err).WithMessage("could not read available governors")
	}

	fields := strings.Fields(s)
	governors := make(Governors, 0, len(fields))
	for _, f := range fields {
		governors = append(governors, Governor(f))
	}

	return governors, nil
}

// sortBatteries orders BAT<N> names by N, then anything else by name.
func sortBatteries(names []string) {
	suffix := func(name string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimPrefix(name, batteryPrefix))
		return n, err == nil
	}

	sort.SliceStable(names, func(i, j int) bool {
		ni, iok := suffix(names[i])
		nj, jok := suffix(names[j])
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
}
