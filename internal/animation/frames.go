package animation

// FrameID identifies a requested frame callback.
type FrameID uint64

// FrameSource is the host's display-refresh primitive: callbacks requested
// before a refresh run once on that refresh.
type FrameSource interface {
	Request(cb func()) FrameID
	Cancel(id FrameID)
}

// ManualFrames is a FrameSource pumped explicitly, once per display frame, by
// the host loop (or by tests).
type ManualFrames struct {
	next    FrameID
	pending map[FrameID]func()
	order   []FrameID
}

func NewManualFrames() *ManualFrames {
	return &ManualFrames{pending: make(map[FrameID]func())}
}

func (m *ManualFrames) Request(cb func()) FrameID {
	m.next++
	m.pending[m.next] = cb
	m.order = append(m.order, m.next)
	return m.next
}

func (m *ManualFrames) Cancel(id FrameID) {
	delete(m.pending, id)
}

// Step runs every callback requested before the call, in request order, and
// returns how many ran. Callbacks requested while stepping wait for the next Step.
func (m *ManualFrames) Step() int {
	order := m.order
	m.order = nil
	ran := 0
	for _, id := range order {
		cb, ok := m.pending[id]
		if !ok {
			continue
		}
		delete(m.pending, id)
		cb()
		ran++
	}
	return ran
}

// Pending returns the number of callbacks waiting for the next Step.
func (m *ManualFrames) Pending() int {
	return len(m.pending)
}
