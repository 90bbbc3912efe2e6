package sysfs

import (
	"path/filepath"
	"strings"
)

const (
	DefaultPowerSupplyPath = "/sys/class/power_supply"
	DefaultCPUPath         = "/sys/devices/system/cpu"

	ThresholdFile          = "charge_control_end_threshold"
	CapacityFile           = "capacity"
	GovernorFile           = "cpufreq/scaling_governor"
	AvailableGovernorsFile = "cpufreq/scaling_available_governors"

	batteryPrefix = "BAT"
)

// GovernorNotAvailable is reported in place of a governor when the system
// exposes no scaling_governor file.
const GovernorNotAvailable Governor = "not available"

// Battery is a power supply that supports charge limiting.
type Battery struct {
	Name string
	Path string
}

// ThresholdPath returns the path of the charge_control_end_threshold file.
func (b Battery) ThresholdPath() string {
	return filepath.Join(b.Path, ThresholdFile)
}

// CapacityPath returns the path of the capacity file.
func (b Battery) CapacityPath() string {
	return filepath.Join(b.Path, CapacityFile)
}

// Core is a cpu<N> directory.
type Core struct {
	Index int
	Path  string
}

// GovernorPath returns the path of the core's scaling_governor file.
func (c Core) GovernorPath() string {
	return filepath.Join(c.Path, GovernorFile)
}

type (
	// Governor is a CPU frequency scaling policy token.
	Governor string

	// Governors is a list of governor tokens as exposed by the kernel.
	Governors []Governor
)

// Contains reports whether g is in the list.
func (gs Governors) Contains(g Governor) bool {
	for _, candidate := range gs {
		if candidate == g {
			return true
		}
	}

	return false
}

// String joins the governors with single spaces.
func (gs Governors) String() string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = string(g)
	}

	return strings.Join(names, " ")
}
