package halfduplex

// DirectionState is the state of the half-duplex direction line.
type DirectionState int

const (
	// Receive lets the bus drive the line towards the gateway.
	Receive DirectionState = iota
	// Transmit lets the gateway drive the bus.
	Transmit
)

// String implements fmt.Stringer.
func (s DirectionState) String() string {
	if s == Transmit {
		return "transmit"
	}
	return "receive"
}

// Direction drives the transceiver's driver-enable line.
type Direction interface {
	SetTransmit() error
	SetReceive() error
}

// NoDirection is used with transceivers switching direction by themselves.
type NoDirection struct{}

// SetTransmit implements Direction.
func (NoDirection) SetTransmit() error { return nil }

// SetReceive implements Direction.
func (NoDirection) SetReceive() error { return nil }
