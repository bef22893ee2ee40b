package halfduplex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	header := []byte{0xAA, 0x01}
	cases := []struct {
		name   string
		buf    []byte
		expect Result
	}{
		{"aligned", []byte{0xAA, 0x01, 0x02}, Matched([]byte{0xAA, 0x01, 0x02})},
		{"leading garbage", []byte{0xFF, 0xAA, 0x01, 0x02, 0x99}, Matched([]byte{0xAA, 0x01, 0x02, 0x99})},
		{"header only", []byte{0x00, 0xAA, 0x01}, Matched([]byte{0xAA, 0x01})},
		{"leftmost wins", []byte{0xAA, 0x01, 0x05, 0xAA, 0x01, 0x06}, Matched([]byte{0xAA, 0x01, 0x05, 0xAA, 0x01, 0x06})},
		{"partial header at start", []byte{0x01, 0xAA, 0xAA, 0x01, 0x07}, Matched([]byte{0xAA, 0x01, 0x07})},
		{"truncated header at end", []byte{0x10, 0x20, 0xAA}, NoMatch},
		{"swapped header", []byte{0x01, 0xAA}, NoMatch},
		{"single byte", []byte{0xAA}, NoMatch},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.expect, Scan(c.buf, header))
		})
	}
}

func TestScanFindsEchoAfterAnyGarbage(t *testing.T) {
	request := []byte{0x5A, 0xC3, 0x10, 0x20, 0x30}
	for size := 0; size < 32; size++ {
		garbage := make([]byte, size)
		for n := range garbage {
			// never forms the header 5A C3
			garbage[n] = byte(n*7) | 0x80
		}
		buf := append(garbage, request...)
		require.Equal(t, Matched(request), Scan(buf, Header(request)), "garbage size %d", size)
	}
}

func TestScanWithoutHeader(t *testing.T) {
	header := []byte{0x5A, 0xC3}
	buf := make([]byte, 0, 256)
	for n := 0; n < 256; n++ {
		if n == 0x5A {
			continue
		}
		buf = append(buf, byte(n))
	}
	require.Equal(t, NoMatch, Scan(buf, header))
}

func TestHeader(t *testing.T) {
	require.Nil(t, Header([]byte{0x01}))
	require.Equal(t, []byte{0x01, 0x02}, Header([]byte{0x01, 0x02, 0x03}))
}
