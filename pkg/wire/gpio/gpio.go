// Package gpio drives the transceiver direction line from a GPIO pin.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is a DE/RE direction line. It implements halfduplex.Direction.
type Pin struct {
	Pin       gpio.PinOut
	ActiveLow bool
}

// Open initializes the host drivers and looks up the pin by name,
// e.g. "GPIO11".
func Open(name string, activeLow bool) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return New(p, activeLow), nil
}

// New wraps a pin.
func New(p gpio.PinOut, activeLow bool) *Pin {
	return &Pin{Pin: p, ActiveLow: activeLow}
}

// SetTransmit implements halfduplex.Direction.
func (p *Pin) SetTransmit() error {
	return p.Pin.Out(p.level(true))
}

// SetReceive implements halfduplex.Direction.
func (p *Pin) SetReceive() error {
	return p.Pin.Out(p.level(false))
}

// Close leaves the line in receive.
func (p *Pin) Close() error {
	return p.SetReceive()
}

func (p *Pin) level(transmit bool) gpio.Level {
	return gpio.Level(transmit != p.ActiveLow)
}
