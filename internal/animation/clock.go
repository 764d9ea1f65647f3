// Package animation drives the per-frame motion of a crystal scene from a
// single virtual clock.
package animation

// NominalStep is the virtual time added per display frame.
const NominalStep float32 = 0.01

// Clock is the scheduler's virtual time source.
type Clock interface {
	// Advance moves time forward by one tick and returns the new time.
	Advance() float32
	Now() float32
}

// FixedClock advances by a constant step per tick, independent of wall time.
type FixedClock struct {
	step float32
	t    float32
}

// NewFixedClock returns a clock starting at zero. step <= 0 selects NominalStep.
func NewFixedClock(step float32) *FixedClock {
	if step <= 0 {
		step = NominalStep
	}
	return &FixedClock{step: step}
}

func (c *FixedClock) Advance() float32 {
	c.t += c.step
	return c.t
}

func (c *FixedClock) Now() float32 {
	return c.t
}
