package halfduplex

import "sync"

// Mailbox hands requests from the wireless side to the Engine.
// Enqueue never blocks and the backlog is unbounded; requests are dequeued
// in the order they were enqueued.
type Mailbox struct {
	head *mailItem
	tail *mailItem
	size int
	lock sync.Mutex

	readyCh chan struct{}
}

type mailItem struct {
	payload []byte
	next    *mailItem
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{readyCh: make(chan struct{}, 1)}
}

// Enqueue appends a payload. The Mailbox takes ownership of payload.
func (m *Mailbox) Enqueue(payload []byte) {
	item := &mailItem{payload: payload}
	m.lock.Lock()
	if m.head == nil {
		m.head = item
	} else {
		m.tail.next = item
	}
	m.tail = item
	m.size++
	m.lock.Unlock()
	select {
	case m.readyCh <- struct{}{}:
	default:
	}
}

// TryDequeue removes the oldest payload without blocking.
func (m *Mailbox) TryDequeue() ([]byte, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	item := m.head
	if item == nil {
		return nil, false
	}
	if m.head = item.next; m.head == nil {
		m.tail = nil
	}
	m.size--
	return item.payload, true
}

// Len returns the size of the backlog.
func (m *Mailbox) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.size
}

// Ready is signaled after Enqueue. A signal may cover more than one
// payload, so consumers drain with TryDequeue until it reports empty.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.readyCh
}
