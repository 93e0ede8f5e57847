package dbus

import "github.com/dbusgo/dbuswire/fragments"

// Marshal serializes v to its DBus wire-format encoding in the given
// byte order.
//
// Marshal runs the value tree through two passes of a
// [fragments.Writer]: the first measures the payload length of every
// Array in v without producing any bytes, and the second reuses those
// lengths to emit the real byte stream. Because the emit pass always
// knows an array's length before it writes the length prefix, it
// never has to go back and patch already-written bytes.
func Marshal(v Value, order fragments.ByteOrder) ([]byte, error) {
	return fragments.Serialize(order, func(w *fragments.Writer) error {
		return WriteValue(w, v)
	})
}

// WriteValue writes v to w, aligning first to v's own type alignment.
// It is exported so that message framing can serialize header fields
// and body values through the same path.
func WriteValue(w *fragments.Writer, v Value) error {
	w.Pad(v.Type().Alignment())

	switch val := v.(type) {
	case CharValue:
		w.Uint8(byte(val))

	case BooleanValue:
		b := uint32(0)
		if val {
			b = 1
		}
		w.Uint32(b)

	case Uint16Value:
		w.Uint16(uint16(val))

	case Int16Value:
		w.Uint16(uint16(int16(val)))

	case Uint32Value:
		w.Uint32(uint32(val))

	case Int32Value:
		w.Uint32(uint32(int32(val)))

	case UnixFDValue:
		w.Uint32(uint32(val))

	case Uint64Value:
		w.Uint64(uint64(val))

	case Int64Value:
		w.Uint64(uint64(int64(val)))

	case DoubleValue:
		w.Uint64(val.Bits())

	case StringValue:
		writeLengthPrefixedString(w, string(val))

	case PathValue:
		writeLengthPrefixedString(w, string(val))

	case SignatureValue:
		return writeSignatureBytes(w, string(val))

	case VariantValue:
		if err := writeSignatureBytes(w, string(val.InnerSignature())); err != nil {
			return err
		}
		return WriteValue(w, val.Inner())

	case ArrayValue:
		return writeArray(w, val)

	case StructValue:
		for _, f := range val.Fields() {
			if err := WriteValue(w, f); err != nil {
				return err
			}
		}

	case DictEntryValue:
		if err := WriteValue(w, val.Key()); err != nil {
			return err
		}
		if err := WriteValue(w, val.Val()); err != nil {
			return err
		}

	default:
		return invariantf("cannot serialize value of unrecognized type %T", v)
	}
	return nil
}

// writeLengthPrefixedString writes the common "uint32 length + bytes
// + NUL" shape shared by String and Path.
func writeLengthPrefixedString(w *fragments.Writer, s string) {
	w.Bytes([]byte(s))
	w.Uint8(0)
}

// writeSignatureBytes writes the "uint8 length + bytes + NUL" shape
// used both for a Signature value and for a Variant's inline
// signature.
func writeSignatureBytes(w *fragments.Writer, s string) error {
	if len(s) > MaxSignatureLength {
		return invariantf("signature %q exceeds maximum length %d", s, MaxSignatureLength)
	}
	w.Uint8(uint8(len(s)))
	w.Write([]byte(s))
	w.Uint8(0)
	return nil
}

func writeArray(w *fragments.Writer, v ArrayValue) error {
	elemAlign := v.ElemType().Alignment()
	return w.RecordArraySize(elemAlign, func() error {
		for _, e := range v.Elements() {
			if err := WriteValue(w, e); err != nil {
				return err
			}
		}
		return nil
	})
}
