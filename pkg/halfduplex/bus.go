package halfduplex

import (
	"io"
	"os"
	"sync"
	"time"

	fx "github.com/robotalks/bleserial/pkg/framework"
)

// Port is the byte stream of the serial bus.
// Read returns 0 bytes (or a timeout error) once the read timeout elapses
// without data.
type Port interface {
	io.ReadWriter
	SetReadTimeout(time.Duration) error
}

// Drainer is implemented by ports able to wait until all written bytes left
// the transmitter.
type Drainer interface {
	Drain() error
}

// Bus owns the port and its direction line. Only one Wire is handed out at
// a time.
type Bus struct {
	port Port
	dir  Direction
	lock sync.Mutex
}

// Wire is exclusive access to the Bus until Release.
type Wire struct {
	bus      *Bus
	released bool
}

// NewBus creates a Bus and puts the line in Receive.
func NewBus(port Port, dir Direction) (*Bus, error) {
	if dir == nil {
		dir = NoDirection{}
	}
	if err := dir.SetReceive(); err != nil {
		return nil, &DirectionError{State: Receive, Err: err}
	}
	return &Bus{port: port, dir: dir}, nil
}

// Acquire blocks until the Bus is free and returns the Wire.
func (b *Bus) Acquire() *Wire {
	b.lock.Lock()
	return &Wire{bus: b}
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	var errs fx.AggregatedError
	if closer, ok := b.dir.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	if closer, ok := b.port.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	return errs.Aggregate()
}

// Release returns the Wire to the Bus. Further calls are no-ops.
func (w *Wire) Release() {
	if !w.released {
		w.released = true
		w.bus.lock.Unlock()
	}
}

// Send writes payload with the line in Transmit and returns the line to
// Receive as soon as the bytes are out.
func (w *Wire) Send(payload []byte) error {
	if w.released {
		return ErrReleased
	}
	b := w.bus
	if err := b.dir.SetTransmit(); err != nil {
		return &DirectionError{State: Transmit, Err: err}
	}
	if err := b.write(payload); err != nil {
		// the caller aborts, but leave the bus to the other participants.
		var errs fx.AggregatedError
		errs.Add(&WriteError{Payload: payload, Err: err})
		if err = b.dir.SetReceive(); err != nil {
			errs.Add(&DirectionError{State: Receive, Err: err})
		}
		return errs.Aggregate()
	}
	if err := b.dir.SetReceive(); err != nil {
		return &DirectionError{State: Receive, Err: err}
	}
	return nil
}

// Receive performs one read bounded by timeout. A timeout is not an error:
// it returns 0 bytes.
func (w *Wire) Receive(buf []byte, timeout time.Duration) (int, error) {
	if w.released {
		return 0, ErrReleased
	}
	port := w.bus.port
	if err := port.SetReadTimeout(timeout); err != nil {
		return 0, &ReadError{Err: err}
	}
	n, err := port.Read(buf)
	if err != nil {
		if os.IsTimeout(err) {
			return n, nil
		}
		return n, &ReadError{Err: err}
	}
	return n, nil
}

func (b *Bus) write(payload []byte) error {
	n, err := b.port.Write(payload)
	if err != nil {
		return err
	}
	if n < len(payload) {
		return io.ErrShortWrite
	}
	if drainer, ok := b.port.(Drainer); ok {
		return drainer.Drain()
	}
	return nil
}
