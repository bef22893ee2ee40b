package halfduplex

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// State is the transaction state of the Engine.
type State int32

// Transaction states, in the order a transaction goes through them.
const (
	Idle State = iota
	Sending
	AwaitingReply
	Resyncing
	Publishing
)

var stateNames = [...]string{"idle", "sending", "awaiting-reply", "resyncing", "publishing"}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// DefaultReadTimeout is the deadline of the reply read.
const DefaultReadTimeout = 300 * time.Millisecond

// ResultHandler is called after a transaction completes.
type ResultHandler interface {
	HandleResult(ctx context.Context, request []byte, result Result)
}

// HandleResultFunc is func type of ResultHandler.
type HandleResultFunc func(context.Context, []byte, Result)

// HandleResult implements ResultHandler.
func (f HandleResultFunc) HandleResult(ctx context.Context, request []byte, result Result) {
	f(ctx, request, result)
}

// Engine runs transactions for queued requests, strictly one at a time.
type Engine struct {
	Mailbox   *Mailbox
	Bus       *Bus
	Publisher *Publisher
	Handler   ResultHandler

	// ReadTimeout bounds the wait for the reply.
	ReadTimeout time.Duration
	// SettleGap keeps collecting reply bytes until the bus is silent for
	// this long (within ReadTimeout). Zero means a single read.
	SettleGap time.Duration

	state int32
}

// NewEngine creates an Engine with default timing.
func NewEngine(mb *Mailbox, bus *Bus, pub *Publisher) *Engine {
	return &Engine{
		Mailbox:     mb,
		Bus:         bus,
		Publisher:   pub,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Name implements framework.Named.
func (e *Engine) Name() string {
	return "engine"
}

// State gets the current transaction state.
func (e *Engine) State() State {
	return State(atomic.LoadInt32(&e.state))
}

func (e *Engine) setState(s State) {
	atomic.StoreInt32(&e.state, int32(s))
}

// Run implements Runnable. It returns on context cancellation or on the
// first fatal bus error.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if payload, ok := e.Mailbox.TryDequeue(); ok {
			if _, err := e.RunTransaction(ctx, payload); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.Mailbox.Ready():
		}
	}
}

// RunTransaction writes payload to the bus and publishes the re-anchored
// reply. Payloads not longer than the header are dropped without touching
// the bus. Errors are fatal to the Engine.
func (e *Engine) RunTransaction(ctx context.Context, payload []byte) (Result, error) {
	if len(payload) <= HeaderLen {
		glog.V(2).Infof("drop: % X", payload)
		return Empty, nil
	}

	defer e.setState(Idle)
	buf := make([]byte, MaxPayloadLen)
	n, err := e.exchange(payload, buf)
	if err != nil {
		return Empty, err
	}

	result := Empty
	if n > 0 {
		e.setState(Resyncing)
		result = Scan(buf[:n], Header(payload))
		glog.Infof("read: % X, len: %d", result.Payload, n)
	}

	e.setState(Publishing)
	e.Publisher.Publish(result)
	glog.V(2).Infof("result: %s", result.Kind)
	if h := e.Handler; h != nil {
		h.HandleResult(ctx, payload, result)
	}
	return result, nil
}

// exchange holds the wire only for the write and the reply read.
func (e *Engine) exchange(payload, buf []byte) (int, error) {
	wire := e.Bus.Acquire()
	defer wire.Release()

	e.setState(Sending)
	if err := wire.Send(payload); err != nil {
		return 0, err
	}
	glog.Infof("write: % X", payload)

	e.setState(AwaitingReply)
	return e.receive(wire, buf)
}

func (e *Engine) receive(wire *Wire, buf []byte) (int, error) {
	timeout := e.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	deadline := time.Now().Add(timeout)
	n, err := wire.Receive(buf, timeout)
	if err != nil || n == 0 || e.SettleGap <= 0 {
		return n, err
	}
	for n < len(buf) {
		remains := time.Until(deadline)
		if remains <= 0 {
			break
		}
		gap := e.SettleGap
		if gap > remains {
			gap = remains
		}
		m, err := wire.Receive(buf[n:], gap)
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}
