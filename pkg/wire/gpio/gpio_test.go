package gpio

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestPinLevels(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO11", L: gpio.High}
	dir := New(p, false)
	require.NoError(t, dir.SetReceive())
	require.Equal(t, gpio.Low, p.Read())
	require.NoError(t, dir.SetTransmit())
	require.Equal(t, gpio.High, p.Read())
	require.NoError(t, dir.Close())
	require.Equal(t, gpio.Low, p.Read())
}

func TestPinActiveLow(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO11"}
	dir := New(p, true)
	require.NoError(t, dir.SetTransmit())
	require.Equal(t, gpio.Low, p.Read())
	require.NoError(t, dir.SetReceive())
	require.Equal(t, gpio.High, p.Read())
}
