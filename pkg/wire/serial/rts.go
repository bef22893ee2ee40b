package serial

// RTSSetter drives the RTS modem line.
type RTSSetter interface {
	SetRTS(bool) error
}

// RTSDirection uses RTS as driver-enable, as wired on most USB RS-485
// adapters without automatic direction control.
type RTSDirection struct {
	Port      RTSSetter
	ActiveLow bool
}

// NewRTSDirection creates a RTSDirection.
func NewRTSDirection(p RTSSetter, activeLow bool) *RTSDirection {
	return &RTSDirection{Port: p, ActiveLow: activeLow}
}

// SetTransmit implements halfduplex.Direction.
func (d *RTSDirection) SetTransmit() error {
	return d.Port.SetRTS(!d.ActiveLow)
}

// SetReceive implements halfduplex.Direction.
func (d *RTSDirection) SetReceive() error {
	return d.Port.SetRTS(d.ActiveLow)
}
