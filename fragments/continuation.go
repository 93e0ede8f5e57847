package fragments

// MaxLookahead is the largest number of bytes any [Continuation] may
// demand in a single [Continuation.Feed] call. A driver that keeps a
// stationary buffer of this size can always satisfy any continuation
// in the framework.
const MaxLookahead = 255

// ParseState is the state threaded through a chain of continuations:
// the byte order in effect for the surrounding frame, and the byte
// offset from the start of that frame, used to compute alignment
// padding.
type ParseState struct {
	// Order is the byte order used to decode multi-byte integers.
	Order ByteOrder
	// Offset is the number of bytes consumed from the front of the
	// frame so far.
	Offset int
}

// Pad returns the number of zero padding bytes required to bring
// Offset to a multiple of align.
func (s *ParseState) Pad(align int) int {
	extra := s.Offset % align
	if extra == 0 {
		return 0
	}
	return align - extra
}

// A Continuation is one step of an incremental, heap-resident parser.
// Continuations chain by returning the next continuation to run from
// Feed, rather than recursing on the host call stack, so that no
// input shape (in particular, a very long flat array) can grow the
// call stack.
type Continuation interface {
	// MinRequired is the fewest bytes a call to Feed may be given.
	MinRequired() int
	// MaxRequired is the most bytes a call to Feed may be given. Zero
	// means the continuation is terminal: parsing is complete and
	// Feed must not be called.
	MaxRequired() int
	// Feed advances the parse using between MinRequired and
	// MaxRequired bytes of input, and returns the next continuation.
	Feed(s *ParseState, b []byte) (Continuation, error)
}

// Stop is the terminal continuation. A driver observing Stop (or any
// continuation with MaxRequired() == 0) must not call Feed again.
var Stop Continuation = stopContinuation{}

type stopContinuation struct{}

func (stopContinuation) MinRequired() int { return 0 }
func (stopContinuation) MaxRequired() int { return 0 }
func (stopContinuation) Feed(s *ParseState, b []byte) (Continuation, error) {
	return nil, errAt(s.Offset, "Feed called on Stop continuation")
}

// fixedContinuation implements a continuation that always consumes
// exactly n bytes.
type fixedContinuation struct {
	n    int
	next func(s *ParseState, b []byte) (Continuation, error)
}

func (f *fixedContinuation) MinRequired() int { return f.n }
func (f *fixedContinuation) MaxRequired() int { return f.n }
func (f *fixedContinuation) Feed(s *ParseState, b []byte) (Continuation, error) {
	if len(b) != f.n {
		return nil, errAt(s.Offset, "expected exactly %d bytes, got %d", f.n, len(b))
	}
	return f.next(s, b)
}

// ConsumeByte reads a single byte and passes it to next.
func ConsumeByte(next func(byte) (Continuation, error)) Continuation {
	return &fixedContinuation{1, func(s *ParseState, b []byte) (Continuation, error) {
		s.Offset++
		return next(b[0])
	}}
}

// ConsumeUint16 reads a uint16 in the parse state's byte order and
// passes it to next.
func ConsumeUint16(next func(uint16) (Continuation, error)) Continuation {
	return &fixedContinuation{2, func(s *ParseState, b []byte) (Continuation, error) {
		s.Offset += 2
		return next(s.Order.Uint16(b))
	}}
}

// ConsumeUint32 reads a uint32 in the parse state's byte order and
// passes it to next.
func ConsumeUint32(next func(uint32) (Continuation, error)) Continuation {
	return &fixedContinuation{4, func(s *ParseState, b []byte) (Continuation, error) {
		s.Offset += 4
		return next(s.Order.Uint32(b))
	}}
}

// ConsumeUint64 reads a uint64 in the parse state's byte order and
// passes it to next.
func ConsumeUint64(next func(uint64) (Continuation, error)) Continuation {
	return &fixedContinuation{8, func(s *ParseState, b []byte) (Continuation, error) {
		s.Offset += 8
		return next(s.Order.Uint64(b))
	}}
}

// chunkedContinuation consumes exactly remaining bytes, in pieces no
// larger than MaxLookahead, either accumulating them into buf or
// (when checkZero is set) verifying that they are all zero.
type chunkedContinuation struct {
	remaining int
	checkZero bool
	buf       []byte
	next      func(s *ParseState, buf []byte) (Continuation, error)
}

func (c *chunkedContinuation) MinRequired() int { return 1 }
func (c *chunkedContinuation) MaxRequired() int {
	if c.remaining > MaxLookahead {
		return MaxLookahead
	}
	return c.remaining
}

func (c *chunkedContinuation) Feed(s *ParseState, b []byte) (Continuation, error) {
	if len(b) < c.MinRequired() || len(b) > c.MaxRequired() {
		return nil, errAt(s.Offset, "expected between %d and %d bytes, got %d", c.MinRequired(), c.MaxRequired(), len(b))
	}
	if c.checkZero {
		for i, v := range b {
			if v != 0 {
				return nil, errAt(s.Offset+i, "unexpected non-zero padding byte")
			}
		}
	} else {
		c.buf = append(c.buf, b...)
	}
	s.Offset += len(b)
	c.remaining -= len(b)
	if c.remaining == 0 {
		return c.next(s, c.buf)
	}
	return c, nil
}

// ConsumeBytes reads exactly n bytes, feeding them incrementally in
// chunks of at most [MaxLookahead], and passes the complete
// accumulated byte slice to next. If n is zero, next is called
// immediately with a nil slice.
func ConsumeBytes(n int, next func([]byte) (Continuation, error)) (Continuation, error) {
	if n < 0 {
		return nil, errAt(0, "negative byte count %d", n)
	}
	if n == 0 {
		return next(nil)
	}
	cap := n
	if cap > MaxLookahead {
		cap = MaxLookahead
	}
	return &chunkedContinuation{
		remaining: n,
		buf:       make([]byte, 0, cap),
		next: func(s *ParseState, buf []byte) (Continuation, error) {
			return next(buf)
		},
	}, nil
}

// ConsumeZeros reads exactly n bytes and fails if any of them is
// non-zero, then calls next. If n is zero, next is called
// immediately.
func ConsumeZeros(n int, next func() (Continuation, error)) (Continuation, error) {
	if n < 0 {
		return nil, errAt(0, "negative byte count %d", n)
	}
	if n == 0 {
		return next()
	}
	return &chunkedContinuation{
		remaining: n,
		checkZero: true,
		next: func(s *ParseState, buf []byte) (Continuation, error) {
			return next()
		},
	}, nil
}

// ConsumePad consumes the zero padding bytes required to bring the
// parse state to a multiple of align, then calls next. It fails if
// any padding byte is non-zero.
func ConsumePad(s *ParseState, align int, next func() (Continuation, error)) (Continuation, error) {
	return ConsumeZeros(s.Pad(align), next)
}
