package fragments

import (
	"errors"
	"io"
)

// A Parser drives a chain of [Continuation]s to completion. It holds
// no more than [MaxLookahead] bytes of buffer, and performs no
// recursion of its own: parsing an arbitrarily long array advances
// the same continuation object in a loop, rather than growing the
// call stack.
//
// A Parser is single-use and not safe for concurrent use. Dropping it
// mid-parse abandons whatever partially-built value its continuations
// were assembling; there is nothing further to clean up.
type Parser struct {
	state ParseState
	cur   Continuation
}

// NewParser returns a Parser that will drive start to completion,
// decoding multi-byte integers in the given byte order.
func NewParser(order ByteOrder, start Continuation) *Parser {
	return &Parser{state: ParseState{Order: order}, cur: start}
}

// Offset reports the number of bytes consumed so far.
func (p *Parser) Offset() int { return p.state.Offset }

// Done reports whether the parser has reached its terminal
// continuation.
func (p *Parser) Done() bool { return p.cur.MaxRequired() == 0 }

// Next reports the range of byte counts the next call to Advance may
// be given.
func (p *Parser) Next() (min, max int) {
	return p.cur.MinRequired(), p.cur.MaxRequired()
}

// Advance feeds b, whose length must be within the range reported by
// Next, to the current continuation, and moves the parser to the
// continuation it returns.
func (p *Parser) Advance(b []byte) error {
	min, max := p.Next()
	if len(b) < min || len(b) > max {
		return errAt(p.state.Offset, "caller fed %d bytes, want between %d and %d", len(b), min, max)
	}
	next, err := p.cur.Feed(&p.state, b)
	if err != nil {
		return err
	}
	p.cur = next
	return nil
}

// RunBytes drives the parser to completion using data as input,
// starting at offset 0 within data. It returns the number of bytes of
// data consumed.
func (p *Parser) RunBytes(data []byte) (int, error) {
	pos := 0
	for !p.Done() {
		_, max := p.Next()
		if pos+max > len(data) {
			return pos, errAt(p.state.Offset, "unexpected end of input")
		}
		if err := p.Advance(data[pos : pos+max]); err != nil {
			return pos, err
		}
		pos += max
	}
	return pos, nil
}

// Run drives the parser to completion, reading input from r. It is
// suitable for framed transports where exactly one message is read at
// a time; callers that want to interleave reads with other I/O should
// use Next/Advance directly instead.
func (p *Parser) Run(r io.Reader) error {
	buf := make([]byte, MaxLookahead)
	for !p.Done() {
		_, max := p.Next()
		if _, err := io.ReadFull(r, buf[:max]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return errAt(p.state.Offset, "unexpected end of input: %v", err)
			}
			return err
		}
		if err := p.Advance(buf[:max]); err != nil {
			return err
		}
	}
	return nil
}
