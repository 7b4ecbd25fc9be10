package placement

import (
	"errors"
	"fmt"
)

// CapacityExhaustedError signals that one tiered quota was hit. It is
// recoverable exactly one tier above its origin: the enclosing tier
// tries the next sibling or creates a new instance of itself. Every
// other error is fatal and propagates to the Place caller unmodified.
type CapacityExhaustedError struct {
	Quota string
	Limit int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("capacity exhausted: quota %s is at its limit of %d", e.Quota, e.Limit)
}

func IsCapacityExhausted(err error) bool {
	var capErr *CapacityExhaustedError
	return errors.As(err, &capErr)
}
