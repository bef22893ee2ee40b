package halfduplex

import "sync"

// WatchFunc receives the new published value.
type WatchFunc func(value []byte)

// Publisher holds the value exposed to wireless readers.
// A transient Empty or NoMatch keeps the previous value visible.
//
// Watchers see changes one at a time and in the order they were made, so
// the last value a watcher received is always the current one. Watchers
// must not call back into the Publisher.
type Publisher struct {
	value    []byte
	watchers []WatchFunc
	lock     sync.RWMutex
	// held across a change and its delivery
	notify sync.Mutex
}

// NewPublisher creates a Publisher with an empty value.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Value returns a copy of the current value.
func (p *Publisher) Value() []byte {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return append([]byte{}, p.value...)
}

// Watch registers fn to be called after every change.
func (p *Publisher) Watch(fn WatchFunc) {
	p.lock.Lock()
	p.watchers = append(p.watchers, fn)
	p.lock.Unlock()
}

// Replay calls fn with the current value, ordered with the deliveries to
// watchers. A consumer that joins late calls Watch and then Replay, or
// registers itself inside fn, to never end up behind.
func (p *Publisher) Replay(fn WatchFunc) {
	p.notify.Lock()
	defer p.notify.Unlock()
	fn(p.Value())
}

// Publish replaces the value with a Matched payload and ignores other
// results. It reports whether the value changed.
func (p *Publisher) Publish(r Result) bool {
	if !r.IsMatched() {
		return false
	}
	p.set(append([]byte{}, r.Payload...))
	return true
}

// Clear empties the value.
func (p *Publisher) Clear() {
	p.set([]byte{})
}

func (p *Publisher) set(value []byte) {
	p.notify.Lock()
	defer p.notify.Unlock()
	p.lock.Lock()
	p.value = value
	watchers := p.watchers
	p.lock.Unlock()
	for _, fn := range watchers {
		fn(append([]byte{}, value...))
	}
}

// LatestValue hands published values to a consumer that may be slow,
// keeping only the most recent one pending. Put never blocks.
type LatestValue struct {
	ch   chan []byte
	lock sync.Mutex
}

// NewLatestValue creates an empty LatestValue.
func NewLatestValue() *LatestValue {
	return &LatestValue{ch: make(chan []byte, 1)}
}

// Put replaces the pending value.
func (l *LatestValue) Put(value []byte) {
	l.lock.Lock()
	defer l.lock.Unlock()
	select {
	case <-l.ch:
	default:
	}
	l.ch <- value
}

// C is where pending values are received.
func (l *LatestValue) C() <-chan []byte {
	return l.ch
}
