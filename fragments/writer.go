package fragments

// pass identifies which of the two traversals a [Writer] is
// performing.
type pass int

const (
	// sizePass walks the value tree without producing bytes, to
	// discover the payload length of every array.
	sizePass pass = iota
	// emitPass re-walks the value tree, using the lengths gathered by
	// the size pass to fill in array length prefixes, and appends the
	// real bytes to Out.
	emitPass
)

// A Writer accumulates a DBus wire-format byte stream across two
// traversals of a value tree. The caller runs the same traversal
// function twice, once against a Writer in the size pass and once
// against a Writer in the emit pass sharing the first pass's recorded
// array sizes; see [Serialize].
//
// Writer mirrors the low-level shape of a single-pass encoder (Pad,
// Write, Uint8/16/32/64), but a Writer in the size pass tracks only a
// byte counter, never allocating Out, so that measuring the size of a
// message costs no more than emitting it.
type Writer struct {
	// Order is the byte order used to encode multi-byte values.
	Order ByteOrder
	// Out is the encoded output. It is nil throughout the size pass.
	Out []byte

	pass       pass
	offset     int
	arraySizes []int
	sizeIdx    int
}

// Serialize runs body twice: once to measure the payload length of
// every array body encounters, and once to emit the final byte
// stream. It returns the bytes produced by the emit pass.
func Serialize(order ByteOrder, body func(w *Writer) error) ([]byte, error) {
	sw := &Writer{Order: order, pass: sizePass}
	if err := body(sw); err != nil {
		return nil, err
	}

	ew := &Writer{Order: order, pass: emitPass, Out: make([]byte, 0, sw.offset), arraySizes: sw.arraySizes}
	if err := body(ew); err != nil {
		return nil, err
	}
	return ew.Out, nil
}

// Len reports the number of bytes written (or, in the size pass,
// that would have been written) so far.
func (w *Writer) Len() int {
	if w.pass == sizePass {
		return w.offset
	}
	return len(w.Out)
}

// Pad emits (or, in the size pass, accounts for) zero padding bytes
// bringing the writer's length to a multiple of align.
func (w *Writer) Pad(align int) {
	extra := w.Len() % align
	if extra == 0 {
		return
	}
	skip := align - extra
	switch w.pass {
	case sizePass:
		w.offset += skip
	case emitPass:
		var zeros [8]byte
		w.Out = append(w.Out, zeros[:skip]...)
	}
}

// Write appends bs verbatim, with no padding or framing.
func (w *Writer) Write(bs []byte) {
	switch w.pass {
	case sizePass:
		w.offset += len(bs)
	case emitPass:
		w.Out = append(w.Out, bs...)
	}
}

// Uint8 writes a uint8.
func (w *Writer) Uint8(v uint8) {
	w.Write([]byte{v})
}

// Uint16 writes a uint16, padding to a 2-byte boundary first.
func (w *Writer) Uint16(v uint16) {
	w.Pad(2)
	switch w.pass {
	case sizePass:
		w.offset += 2
	case emitPass:
		w.Out = w.Order.AppendUint16(w.Out, v)
	}
}

// Uint32 writes a uint32, padding to a 4-byte boundary first.
func (w *Writer) Uint32(v uint32) {
	w.Pad(4)
	switch w.pass {
	case sizePass:
		w.offset += 4
	case emitPass:
		w.Out = w.Order.AppendUint32(w.Out, v)
	}
}

// Uint64 writes a uint64, padding to an 8-byte boundary first.
func (w *Writer) Uint64(v uint64) {
	w.Pad(8)
	switch w.pass {
	case sizePass:
		w.offset += 8
	case emitPass:
		w.Out = w.Order.AppendUint64(w.Out, v)
	}
}

// Bytes writes bs as a length-prefixed byte string: a uint32 length
// followed by the raw bytes.
func (w *Writer) Bytes(bs []byte) {
	w.Uint32(uint32(len(bs)))
	w.Write(bs)
}

// ByteOrderFlag writes the DBus byte order marker byte matching
// Order.
func (w *Writer) ByteOrderFlag() {
	w.Uint8(w.Order.DBusFlag())
}

// RecordArraySize writes an array's 4-byte length prefix, then pads
// to elemAlign, then runs body to write the array's payload.
//
// In the size pass, body's output is measured (starting after the
// elemAlign padding, per the DBus wire format's definition of the
// length field) and the resulting length is recorded. In the emit
// pass, the i-th call to RecordArraySize reuses the i-th length
// recorded by the size pass, so both passes must call
// RecordArraySize the same number of times, in the same order, for
// arrays of the same shape.
func (w *Writer) RecordArraySize(elemAlign int, body func() error) error {
	switch w.pass {
	case sizePass:
		w.offset += 4
		w.Pad(elemAlign)
		// Reserve this array's slot before running body, so that arrays
		// nested inside body are recorded after it, in call order.
		idx := len(w.arraySizes)
		w.arraySizes = append(w.arraySizes, 0)
		start := w.offset
		if err := body(); err != nil {
			return err
		}
		w.arraySizes[idx] = w.offset - start
		return nil
	case emitPass:
		n := w.arraySizes[w.sizeIdx]
		w.sizeIdx++
		w.Out = w.Order.AppendUint32(w.Out, uint32(n))
		w.Pad(elemAlign)
		return body()
	}
	panic("unreachable")
}
