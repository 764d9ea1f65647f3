package lighting

import (
	"errors"
	"fmt"
)

// ErrLightNotFound is returned when an id does not name a light in the rig.
var ErrLightNotFound = errors.New("lighting: light not found")

// InvariantViolation is returned when an operation would leave the rig in an
// invalid state. The rig is unchanged when it is returned.
type InvariantViolation struct {
	Op     string
	ID     string
	Reason string
}

func (e *InvariantViolation) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("lighting: %s rejected: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("lighting: %s %s rejected: %s", e.Op, e.ID, e.Reason)
}

// IsInvariantViolation reports whether err is (or wraps) an *InvariantViolation.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolation
	return errors.As(err, &iv)
}
