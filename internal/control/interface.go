package control

import "codeberg.org/mutker/ampurr/internal/sysfs"

// Locator finds the devices the service operates on.
type Locator interface {
	FindBattery() (sysfs.Battery, error)
	Cores() ([]sysfs.Core, error)
	Core(index int) sysfs.Core
	AvailableGovernors() (sysfs.Governors, error)
}

// Locker guards the mutating section of a write operation.
type Locker interface {
	Lock() error
	Unlock() error
}

// Snapshot is a read-only view of the controllable state, as shown by a
// polling client. Every field is either a value or a readable error.
type Snapshot struct {
	Battery        string
	BatteryErr     string
	ChargeLimit    int
	ChargeLimitErr string
	Capacity       int
	HasCapacity    bool
	CapacityErr    string
	Governor       sysfs.Governor
	GovernorErr    string
	Governors      sysfs.Governors
	GovernorsErr   string
}
