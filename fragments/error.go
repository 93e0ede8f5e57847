package fragments

import "fmt"

// ParseError is returned when a byte stream does not conform to the
// DBus wire format. Offset is the absolute byte position, relative to
// the start of the frame being parsed, at which the failure was
// detected.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dbus wire format error at offset %d: %s", e.Offset, e.Msg)
}

func errAt(offset int, msg string, args ...any) error {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(msg, args...)}
}

// Errorf builds a [ParseError] at the given offset. It is exported
// for use by packages, such as the signature codec, that parse other
// DBus wire grammars (not raw continuation streams) but want to
// signal failure the same way.
func Errorf(offset int, msg string, args ...any) error {
	return errAt(offset, msg, args...)
}
