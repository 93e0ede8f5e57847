package dbus

import "github.com/dbusgo/dbuswire/fragments"

// MaxArrayPayload is the array payload length cap defined by the DBus
// specification (64 MiB). ParseValue rejects any array whose declared
// payload length exceeds it.
const MaxArrayPayload = 1 << 26

// valueEntry bootstraps a [fragments.Parser] for a standalone value.
// ParseValue's continuation chain must close over the exact
// *fragments.ParseState the running Parser mutates on every Feed call,
// but that object doesn't exist until the Parser does; valueEntry
// defers building the real chain to its first Feed call, which
// receives that live pointer, then immediately replays the fed bytes
// into it. NewMessageParser's messageStart does the same thing for the
// message-framing entry point, for the same reason.
type valueEntry struct {
	t *Type
	k func(Value) (fragments.Continuation, error)

	probe fragments.Continuation
}

func newValueEntry(t *Type, k func(Value) (fragments.Continuation, error)) (*valueEntry, error) {
	probe, err := ParseValue(&fragments.ParseState{Order: fragments.LittleEndian}, t, k)
	if err != nil {
		return nil, err
	}
	return &valueEntry{t: t, k: k, probe: probe}, nil
}

func (e *valueEntry) MinRequired() int { return e.probe.MinRequired() }
func (e *valueEntry) MaxRequired() int { return e.probe.MaxRequired() }

func (e *valueEntry) Feed(s *fragments.ParseState, b []byte) (fragments.Continuation, error) {
	real, err := ParseValue(s, e.t, e.k)
	if err != nil {
		return nil, err
	}
	return real.Feed(s, b)
}

// ParseValueBytes parses one complete value of type t from data, which
// must hold the value in its entirety with no surrounding frame. It
// returns the number of bytes consumed. Message bodies parse their own
// top-level values inline instead, since they already hold the live
// parse state message framing bootstraps; this entry point is for
// standalone values, e.g. a variant's payload read out of band.
func ParseValueBytes(order fragments.ByteOrder, t *Type, data []byte) (Value, int, error) {
	var v Value
	entry, err := newValueEntry(t, func(got Value) (fragments.Continuation, error) {
		v = got
		return fragments.Stop, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := fragments.NewParser(order, entry)
	n, err := p.RunBytes(data)
	if err != nil {
		return nil, n, err
	}
	return v, n, nil
}

// ParseValue returns the continuation that parses one value of type
// t, starting at the parser's current position, and invokes k with
// the resulting Value.
//
// ParseValue is the type-directed object parser: it dispatches on
// t.Kind(), builds the continuation chain appropriate to that kind,
// and composes recursively for containers. Because every recursive
// step returns a new [fragments.Continuation] instead of calling
// itself, parsing an arbitrarily long array or string never grows the
// Go call stack beyond the nesting depth of t itself.
func ParseValue(s *fragments.ParseState, t *Type, k func(Value) (fragments.Continuation, error)) (fragments.Continuation, error) {
	return fragments.ConsumePad(s, t.Alignment(), func() (fragments.Continuation, error) {
		return parseValueBody(s, t, k)
	})
}

func parseValueBody(s *fragments.ParseState, t *Type, k func(Value) (fragments.Continuation, error)) (fragments.Continuation, error) {
	switch t.Kind() {
	case Char:
		return fragments.ConsumeByte(func(b byte) (fragments.Continuation, error) {
			return k(CharValue(b))
		}), nil

	case Boolean:
		return fragments.ConsumeUint32(func(v uint32) (fragments.Continuation, error) {
			if v > 1 {
				return nil, fragments.Errorf(s.Offset-4, "boolean value that is not 0 or 1: %d", v)
			}
			return k(BooleanValue(v == 1))
		}), nil

	case Uint16Kind:
		return fragments.ConsumeUint16(func(v uint16) (fragments.Continuation, error) {
			return k(Uint16Value(v))
		}), nil

	case Int16Kind:
		return fragments.ConsumeUint16(func(v uint16) (fragments.Continuation, error) {
			return k(Int16Value(int16(v)))
		}), nil

	case Uint32Kind:
		return fragments.ConsumeUint32(func(v uint32) (fragments.Continuation, error) {
			return k(Uint32Value(v))
		}), nil

	case Int32Kind:
		return fragments.ConsumeUint32(func(v uint32) (fragments.Continuation, error) {
			return k(Int32Value(int32(v)))
		}), nil

	case UnixFDKind:
		return fragments.ConsumeUint32(func(v uint32) (fragments.Continuation, error) {
			return k(UnixFDValue(v))
		}), nil

	case Uint64Kind:
		return fragments.ConsumeUint64(func(v uint64) (fragments.Continuation, error) {
			return k(Uint64Value(v))
		}), nil

	case Int64Kind:
		return fragments.ConsumeUint64(func(v uint64) (fragments.Continuation, error) {
			return k(Int64Value(int64(v)))
		}), nil

	case DoubleKind:
		return fragments.ConsumeUint64(func(v uint64) (fragments.Continuation, error) {
			return k(DoubleFromBits(v))
		}), nil

	case StringKind:
		return parseLengthPrefixed(s, k, func(str string) (Value, error) { return NewString(str) })

	case PathKind:
		return parseLengthPrefixed(s, k, func(str string) (Value, error) { return NewPath(str) })

	case SignatureKind:
		return fragments.ConsumeByte(func(strLen byte) (fragments.Continuation, error) {
			n := int(strLen)
			return fragments.ConsumeBytes(n, func(payload []byte) (fragments.Continuation, error) {
				return fragments.ConsumeZeros(1, func() (fragments.Continuation, error) {
					v, err := NewSignatureValue(Signature(payload))
					if err != nil {
						return nil, err
					}
					return k(v)
				})
			})
		}), nil

	case VariantKind:
		return fragments.ConsumeByte(func(strLen byte) (fragments.Continuation, error) {
			n := int(strLen)
			return fragments.ConsumeBytes(n, func(sigBytes []byte) (fragments.Continuation, error) {
				return fragments.ConsumeZeros(1, func() (fragments.Continuation, error) {
					innerType, err := ParseOneSignature(string(sigBytes))
					if err != nil {
						return nil, err
					}
					return ParseValue(s, innerType, func(inner Value) (fragments.Continuation, error) {
						return k(NewVariant(inner))
					})
				})
			})
		}), nil

	case ArrayKind:
		return parseArray(s, t, k)

	case StructKind:
		return parseStruct(s, t.Fields(), nil, k)

	case DictEntryKind:
		return ParseValue(s, t.Key(), func(keyVal Value) (fragments.Continuation, error) {
			return ParseValue(s, t.Value(), func(valVal Value) (fragments.Continuation, error) {
				dv, err := NewDictEntry(keyVal, valVal)
				if err != nil {
					return nil, err
				}
				return k(dv)
			})
		})

	default:
		return nil, fragments.Errorf(s.Offset, "cannot parse value of invalid type")
	}
}

// parseLengthPrefixed parses the common "uint32 length + payload +
// NUL" shape shared by String and Path.
func parseLengthPrefixed(s *fragments.ParseState, k func(Value) (fragments.Continuation, error), build func(string) (Value, error)) (fragments.Continuation, error) {
	return fragments.ConsumeUint32(func(length uint32) (fragments.Continuation, error) {
		return fragments.ConsumeBytes(int(length), func(payload []byte) (fragments.Continuation, error) {
			return fragments.ConsumeZeros(1, func() (fragments.Continuation, error) {
				v, err := build(string(payload))
				if err != nil {
					return nil, err
				}
				return k(v)
			})
		})
	}), nil
}

// parseArray parses an Array's uint32 payload length, aligns to the
// element type, then repeatedly parses elements until exactly the
// declared payload length has been consumed. It is driven by an
// explicit loop closure rather than host recursion, since an array
// may have an unbounded number of elements.
func parseArray(s *fragments.ParseState, t *Type, k func(Value) (fragments.Continuation, error)) (fragments.Continuation, error) {
	elemType := t.Elem()
	return fragments.ConsumeUint32(func(byteLen uint32) (fragments.Continuation, error) {
		return fragments.ConsumePad(s, elemType.Alignment(), func() (fragments.Continuation, error) {
			if byteLen == 0 {
				return k(NewEmptyArray(elemType))
			}
			if byteLen > MaxArrayPayload {
				return nil, fragments.Errorf(s.Offset, "array length integer overflow")
			}
			start := s.Offset
			end := start + int(byteLen)

			var elems []Value
			var step func() (fragments.Continuation, error)
			step = func() (fragments.Continuation, error) {
				if s.Offset == end {
					av, err := NewArray(elems)
					if err != nil {
						return nil, err
					}
					return k(av)
				}
				if s.Offset > end {
					return nil, fragments.Errorf(s.Offset, "array element overran declared array length")
				}
				return ParseValue(s, elemType, func(v Value) (fragments.Continuation, error) {
					elems = append(elems, v)
					return step()
				})
			}
			return step()
		})
	}), nil
}

// parseStruct parses each of fields in order, threading the growing
// list of already-parsed field values through acc.
func parseStruct(s *fragments.ParseState, fields []*Type, acc []Value, k func(Value) (fragments.Continuation, error)) (fragments.Continuation, error) {
	if len(acc) == len(fields) {
		sv, err := NewStruct(acc...)
		if err != nil {
			return nil, err
		}
		return k(sv)
	}
	return ParseValue(s, fields[len(acc)], func(v Value) (fragments.Continuation, error) {
		return parseStruct(s, fields, append(acc, v), k)
	})
}
