package control

// Snapshot reads the current state once. Nothing is written.
func (s *Service) Snapshot() Snapshot {
	var snap Snapshot

	b, err := s.locator.FindBattery()
	if err != nil {
		snap.BatteryErr = err.Error()
		snap.ChargeLimitErr = err.Error()
	} else {
		snap.Battery = b.Name
		if limit, err := s.ChargeLimit(b); err != nil {
			snap.ChargeLimitErr = err.Error()
		} else {
			snap.ChargeLimit = limit
		}
		capacity, ok, err := s.Capacity(b)
		if err != nil {
			snap.CapacityErr = err.Error()
		}
		snap.Capacity, snap.HasCapacity = capacity, ok
	}

	if g, err := s.Governor(); err != nil {
		snap.GovernorErr = err.Error()
	} else {
		snap.Governor = g
	}

	if governors, err := s.AvailableGovernors(); err != nil {
		snap.GovernorsErr = err.Error()
	} else {
		snap.Governors = governors
	}

	return snap
}
