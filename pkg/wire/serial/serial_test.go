package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestMode(t *testing.T) {
	mode, err := DefaultConfig.Mode()
	require.NoError(t, err)
	require.Equal(t, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}, mode)

	mode, err = Config{BaudRate: 115200, Parity: "E", StopBits: "2"}.Mode()
	require.NoError(t, err)
	require.Equal(t, 115200, mode.BaudRate)
	require.Equal(t, 8, mode.DataBits)
	require.Equal(t, serial.EvenParity, mode.Parity)
	require.Equal(t, serial.TwoStopBits, mode.StopBits)
}

func TestModeInvalid(t *testing.T) {
	_, err := Config{Parity: "x"}.Mode()
	require.Error(t, err)
	_, err = Config{StopBits: "3"}.Mode()
	require.Error(t, err)
}

type rtsLog []bool

func (l *rtsLog) SetRTS(v bool) error {
	*l = append(*l, v)
	return nil
}

func TestRTSDirection(t *testing.T) {
	var levels rtsLog
	d := NewRTSDirection(&levels, false)
	require.NoError(t, d.SetTransmit())
	require.NoError(t, d.SetReceive())
	require.Equal(t, rtsLog{true, false}, levels)

	levels = nil
	d.ActiveLow = true
	require.NoError(t, d.SetTransmit())
	require.NoError(t, d.SetReceive())
	require.Equal(t, rtsLog{false, true}, levels)
}
