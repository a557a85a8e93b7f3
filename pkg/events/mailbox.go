package events

import "sync"

// mailbox is an unbounded FIFO queue drained by a single goroutine.
type mailbox struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

// push enqueues e and reports whether it was accepted.
func (m *mailbox) push(e Event) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, e)
	m.mu.Unlock()
	m.signal()
	return true
}

func (m *mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// close stops accepting events. Queued events are still drained.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

// run delivers queued events in order until the mailbox is closed and empty.
func (m *mailbox) run(deliver func(Event)) {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			closed := m.closed
			m.mu.Unlock()
			if closed {
				return
			}
			<-m.wake
			continue
		}
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()

		for _, e := range batch {
			deliver(e)
		}
	}
}
