package halfduplex

import (
	"errors"
	"fmt"
)

var (
	// ErrReleased indicates a Wire is used after Release.
	ErrReleased = errors.New("wire released")
	// ErrPayloadTooLong indicates an inbound payload exceeds MaxPayloadLen.
	ErrPayloadTooLong = errors.New("payload too long")
)

// WriteError is a failure writing a request to the bus.
// It is fatal: the direction line may be left in the wrong state.
type WriteError struct {
	Payload []byte
	Err     error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write % X: %v", e.Payload, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReadError is a failure reading from the bus other than a timeout.
type ReadError struct {
	Err error
}

// Error implements error.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// DirectionError is a failure driving the direction line.
type DirectionError struct {
	State DirectionState
	Err   error
}

// Error implements error.
func (e *DirectionError) Error() string {
	return fmt.Sprintf("set direction %s: %v", e.State, e.Err)
}

// Unwrap returns the underlying error.
func (e *DirectionError) Unwrap() error {
	return e.Err
}
