package dbus

import "fmt"

// InvariantError is returned when constructing a Value would violate
// one of the value tree's invariants: a string containing a NUL byte,
// an oversized signature, mismatched array element types, and so on.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("dbus: invalid value: %s", e.Reason)
}

func invariantf(format string, args ...any) error {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}
