package environment

import "sync"

// Mailbox carries completions from worker goroutines to the UI goroutine,
// which runs them with Drain once per frame.
type Mailbox struct {
	mu    sync.Mutex
	queue []func()
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post queues fn. Safe from any goroutine.
func (m *Mailbox) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Drain runs every queued completion on the calling goroutine and returns how
// many ran.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	q := m.queue
	m.queue = nil
	m.mu.Unlock()
	for _, fn := range q {
		fn()
	}
	return len(q)
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
