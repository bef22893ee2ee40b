package halfduplex

import (
	"bytes"

	"github.com/golang/glog"
)

// ClearSentinel is the inbound payload clearing the published value.
var ClearSentinel = []byte{0x00}

// WriteHandler receives payloads written by a wireless client.
type WriteHandler interface {
	HandleWrite(payload []byte) error
}

// HandleWriteFunc is func type of WriteHandler.
type HandleWriteFunc func([]byte) error

// HandleWrite implements WriteHandler.
func (f HandleWriteFunc) HandleWrite(payload []byte) error {
	return f(payload)
}

// Inbound dispatches wireless writes: the clear sentinel clears the
// Publisher directly, anything else is queued for the Engine.
// It is safe to call from any goroutine.
type Inbound struct {
	Mailbox   *Mailbox
	Publisher *Publisher
}

// NewInbound creates an Inbound.
func NewInbound(mb *Mailbox, pub *Publisher) *Inbound {
	return &Inbound{Mailbox: mb, Publisher: pub}
}

// HandleWrite implements WriteHandler. The payload is copied.
func (in *Inbound) HandleWrite(payload []byte) error {
	if bytes.Equal(payload, ClearSentinel) {
		glog.V(2).Info("clear")
		in.Publisher.Clear()
		return nil
	}
	if len(payload) > MaxPayloadLen {
		glog.Warningf("drop %d bytes payload", len(payload))
		return ErrPayloadTooLong
	}
	in.Mailbox.Enqueue(append([]byte{}, payload...))
	return nil
}
