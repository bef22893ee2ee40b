package halfduplex

import (
	"errors"
	"sync"
	"time"
)

// event records what happened on the bus, in order.
type event struct {
	op      string
	payload []byte
}

type busLog struct {
	events []event
	lock   sync.Mutex
}

func (l *busLog) add(op string, payload []byte) {
	l.lock.Lock()
	l.events = append(l.events, event{op: op, payload: append([]byte(nil), payload...)})
	l.lock.Unlock()
}

func (l *busLog) ops() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	ops := make([]string, len(l.events))
	for n, ev := range l.events {
		ops[n] = ev.op
	}
	return ops
}

func (l *busLog) writes() [][]byte {
	l.lock.Lock()
	defer l.lock.Unlock()
	var writes [][]byte
	for _, ev := range l.events {
		if ev.op == "write" {
			writes = append(writes, ev.payload)
		}
	}
	return writes
}

func (l *busLog) reset() {
	l.lock.Lock()
	l.events = nil
	l.lock.Unlock()
}

type recordingDirection struct {
	log         *busLog
	state       DirectionState
	transmitErr error
	receiveErr  error
}

func (d *recordingDirection) SetTransmit() error {
	if d.transmitErr != nil {
		return d.transmitErr
	}
	d.state = Transmit
	d.log.add("transmit", nil)
	return nil
}

func (d *recordingDirection) SetReceive() error {
	if d.receiveErr != nil {
		return d.receiveErr
	}
	d.state = Receive
	d.log.add("receive", nil)
	return nil
}

// fakePort replies to each read with the next scripted chunk; an exhausted
// script behaves like a silent bus.
type fakePort struct {
	log      *busLog
	dir      *recordingDirection
	replies  [][]byte
	writeErr error
	readErr  error
	timeout  time.Duration
	lock     sync.Mutex

	// reads issued while the line was in Transmit
	readsInTransmit int
}

var errTimeout = &timeoutError{}

type timeoutError struct{}

func (e *timeoutError) Error() string { return "i/o timeout" }
func (e *timeoutError) Timeout() bool { return true }

func (p *fakePort) Write(b []byte) (int, error) {
	p.log.add("write", b)
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.dir != nil && p.dir.state == Transmit {
		p.readsInTransmit++
	}
	p.log.add("read", nil)
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.replies) == 0 {
		return 0, nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	if reply == nil {
		return 0, errTimeout
	}
	return copy(b, reply), nil
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}

func (p *fakePort) reply(chunks ...[]byte) {
	p.lock.Lock()
	p.replies = append(p.replies, chunks...)
	p.lock.Unlock()
}

type testEnv struct {
	log       *busLog
	dir       *recordingDirection
	port      *fakePort
	mailbox   *Mailbox
	publisher *Publisher
	engine    *Engine
}

func newTestEnv() *testEnv {
	env := &testEnv{log: &busLog{}}
	env.dir = &recordingDirection{log: env.log}
	env.port = &fakePort{log: env.log, dir: env.dir}
	bus, err := NewBus(env.port, env.dir)
	if err != nil {
		panic(err)
	}
	env.mailbox = NewMailbox()
	env.publisher = NewPublisher()
	env.engine = NewEngine(env.mailbox, bus, env.publisher)
	env.log.reset()
	return env
}

var errBroken = errors.New("broken")
