// Package serial opens the UART side of the gateway.
package serial

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Config defines the line settings.
type Config struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string
	StopBits string
}

// DefaultConfig is 9600 8N1.
var DefaultConfig = Config{
	BaudRate: 9600,
	DataBits: 8,
	Parity:   "none",
	StopBits: "1",
}

// Port is an opened serial port. It implements halfduplex.Port and
// halfduplex.Drainer.
type Port struct {
	serial.Port
	Device string
}

// Open opens the serial port.
func Open(conf Config) (*Port, error) {
	mode, err := conf.Mode()
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(conf.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Device, err)
	}
	// drop whatever the bus sent before we were listening.
	if err = p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("reset %s: %w", conf.Device, err)
	}
	return &Port{Port: p, Device: conf.Device}, nil
}

// Mode converts the config into serial.Mode.
func (c Config) Mode() (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = DefaultConfig.BaudRate
	}
	if mode.DataBits == 0 {
		mode.DataBits = DefaultConfig.DataBits
	}
	switch strings.ToLower(c.Parity) {
	case "", "none", "n":
		mode.Parity = serial.NoParity
	case "odd", "o":
		mode.Parity = serial.OddParity
	case "even", "e":
		mode.Parity = serial.EvenParity
	case "mark", "m":
		mode.Parity = serial.MarkParity
	case "space", "s":
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("unknown parity %q", c.Parity)
	}
	switch c.StopBits {
	case "", "1":
		mode.StopBits = serial.OneStopBit
	case "1.5":
		mode.StopBits = serial.OnePointFiveStopBits
	case "2":
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unknown stop bits %q", c.StopBits)
	}
	return mode, nil
}

// Ports lists the serial ports available.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
