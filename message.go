package dbus

import (
	"fmt"

	"github.com/dbusgo/dbuswire/fragments"
	"github.com/kr/pretty"
)

// ProtocolVersion is the only DBus wire protocol major version this
// package understands. Messages carrying a different version are
// still parsed; callers that care about the mismatch can check
// Message.Version themselves.
const ProtocolVersion = 1

// MessageType is a DBus message's type code, the second byte of every
// message frame.
type MessageType byte

const (
	MethodCall   MessageType = 1
	MethodReturn MessageType = 2
	MessageError MessageType = 3
	Signal       MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case MethodCall:
		return "MethodCall"
	case MethodReturn:
		return "MethodReturn"
	case MessageError:
		return "Error"
	case Signal:
		return "Signal"
	default:
		return fmt.Sprintf("MessageType(%d)", byte(t))
	}
}

// Message flag bits.
const (
	FlagNoReplyExpected      = 0x1
	FlagNoAutoStart          = 0x2
	FlagAllowInteractiveAuth = 0x4
)

// HeaderField is a header field code, the first byte of each entry in
// a message's header fields array.
type HeaderField byte

const (
	FieldPath        HeaderField = 1
	FieldInterface   HeaderField = 2
	FieldMember      HeaderField = 3
	FieldErrorName   HeaderField = 4
	FieldReplySerial HeaderField = 5
	FieldDestination HeaderField = 6
	FieldSender      HeaderField = 7
	FieldSignature   HeaderField = 8
	FieldUnixFDs     HeaderField = 9
)

// Header is a DBus message header, minus the fixed leading
// endianness/type/flags/version/length/serial fields. Message carries
// type, flags, version and serial directly; the endianness flag and
// body length are not stored, and MarshalMessage derives them from
// its byte order argument and the serialized body.
type Header struct {
	// Path is the target object for a call, or the source object for a
	// signal. Required for MethodCall and Signal.
	Path string
	// Interface is the interface to target for a call, or the source
	// interface of a signal. Required for Signal, optional for
	// MethodCall.
	Interface string
	// Member is the method name for a call, or the signal name for a
	// signal. Required for MethodCall and Signal.
	Member string
	// ErrorName is the name of the error that occurred. Required for
	// MessageError.
	ErrorName string
	// ReplySerial is the serial of the message this one replies to.
	// Required for MethodReturn and MessageError.
	ReplySerial uint32
	// Destination is the message's intended recipient.
	Destination string
	// Sender is the unique bus name of the message's sender.
	Sender string
	// BodySignature is the concatenated signature of Message.Body.
	// Required whenever the body is non-empty.
	BodySignature Signature
	// UnixFDs is the number of file descriptors accompanying the
	// message out of band. This package does not transport file
	// descriptors itself; it only carries the count through.
	UnixFDs uint32
	// Unknown holds header fields with codes this package does not
	// interpret, preserved verbatim so a relaying process can pass them
	// on unchanged.
	Unknown map[HeaderField]VariantValue
}

// Message is one complete DBus message: header plus body.
type Message struct {
	Type    MessageType
	Flags   byte
	Version byte
	Serial  uint32
	Header
	// Body holds one Value per top-level type named by
	// Header.BodySignature, in order.
	Body []Value
}

// WantReply reports whether the sender of a MethodCall expects a
// MethodReturn or MessageError in response.
func (m *Message) WantReply() bool {
	return m.Type == MethodCall && m.Flags&FlagNoReplyExpected == 0
}

// CanInteract reports whether the sender is prepared to wait through
// an interactive authorization prompt.
func (m *Message) CanInteract() bool {
	return m.Type == MethodCall && m.Flags&FlagAllowInteractiveAuth != 0
}

// DebugString returns a human-readable dump of m, suitable for
// logging, in the spirit of the interactive debugger's signal-body
// dump: header fields on one line, body values pretty-printed beneath.
func (m *Message) DebugString() string {
	return fmt.Sprintf("%s serial=%d %s.%s -> %s\n%# v", m.Type, m.Serial, m.Interface, m.Member, m.Destination, pretty.Formatter(m.Body))
}

// Valid checks that m carries the header fields its message type
// requires.
func (m *Message) Valid() error {
	if m.Serial == 0 {
		return fmt.Errorf("dbus: message has zero Serial")
	}
	switch m.Type {
	case 0:
		return fmt.Errorf("dbus: message has Type 0")
	case MethodCall:
		if m.Path == "" {
			return fmt.Errorf("dbus: method call missing header field Path")
		}
		if m.Member == "" {
			return fmt.Errorf("dbus: method call missing header field Member")
		}
	case MethodReturn:
		if m.ReplySerial == 0 {
			return fmt.Errorf("dbus: method return missing header field ReplySerial")
		}
	case MessageError:
		if m.ReplySerial == 0 {
			return fmt.Errorf("dbus: error missing header field ReplySerial")
		}
		if m.ErrorName == "" {
			return fmt.Errorf("dbus: error missing header field ErrorName")
		}
	case Signal:
		if m.Path == "" {
			return fmt.Errorf("dbus: signal missing header field Path")
		}
		if m.Interface == "" {
			return fmt.Errorf("dbus: signal missing header field Interface")
		}
		if m.Member == "" {
			return fmt.Errorf("dbus: signal missing header field Member")
		}
	default:
		// Unrecognized message types are suspect, but the wire format
		// requires implementations to tolerate them.
	}
	return nil
}

var headerFieldEntryType = func() *Type {
	var a Arena
	return a.Struct(TypeChar, TypeVariant)
}()

var headerFieldsArrayType = func() *Type {
	var a Arena
	return a.Array(headerFieldEntryType)
}()

// messageStart is the Continuation that reads a message frame's
// leading endianness byte. It exists because every other Continuation
// in this package is built against an already-known ByteOrder, but
// the order itself is only known after reading this one order-
// independent byte; see 4.5's framing rule that the flag is
// interpreted "out of band" before the rest of the frame can be
// parsed at all.
type messageStart struct {
	k func(*Message) (fragments.Continuation, error)
}

func (m *messageStart) MinRequired() int { return 1 }
func (m *messageStart) MaxRequired() int { return 1 }

func (m *messageStart) Feed(s *fragments.ParseState, b []byte) (fragments.Continuation, error) {
	order, err := fragments.ByteOrderForFlag(b[0])
	if err != nil {
		return nil, fragments.Errorf(s.Offset, "%v", err)
	}
	s.Order = order
	s.Offset++
	return parseHeaderAfterOrder(s, m.k)
}

// NewMessageParser returns a [fragments.Parser] that parses exactly
// one DBus message, invoking k with the result.
func NewMessageParser(k func(*Message) (fragments.Continuation, error)) *fragments.Parser {
	return fragments.NewParser(fragments.LittleEndian, &messageStart{k: k})
}

// ParseMessage parses one complete message from data, which must hold
// the message in its entirety. It returns the number of bytes
// consumed. Streaming callers that receive a message's bytes
// incrementally should drive [NewMessageParser] directly instead.
func ParseMessage(data []byte) (*Message, int, error) {
	var msg *Message
	p := NewMessageParser(func(m *Message) (fragments.Continuation, error) {
		msg = m
		return fragments.Stop, nil
	})
	n, err := p.RunBytes(data)
	if err != nil {
		return nil, n, err
	}
	return msg, n, nil
}

func parseHeaderAfterOrder(s *fragments.ParseState, k func(*Message) (fragments.Continuation, error)) (fragments.Continuation, error) {
	return fragments.ConsumeByte(func(msgType byte) (fragments.Continuation, error) {
		return fragments.ConsumeByte(func(flags byte) (fragments.Continuation, error) {
			return fragments.ConsumeByte(func(version byte) (fragments.Continuation, error) {
				return fragments.ConsumeUint32(func(bodyLen uint32) (fragments.Continuation, error) {
					return fragments.ConsumeUint32(func(serial uint32) (fragments.Continuation, error) {
						return ParseValue(s, headerFieldsArrayType, func(fieldsVal Value) (fragments.Continuation, error) {
							h, err := decodeHeaderFields(fieldsVal.(ArrayValue))
							if err != nil {
								return nil, err
							}
							m := &Message{
								Type:    MessageType(msgType),
								Flags:   flags,
								Version: version,
								Serial:  serial,
								Header:  *h,
							}
							return fragments.ConsumePad(s, 8, func() (fragments.Continuation, error) {
								return parseBody(s, m, int(bodyLen), k)
							})
						})
					}), nil
				}), nil
			}), nil
		}), nil
	}), nil
}

func parseBody(s *fragments.ParseState, m *Message, bodyLen int, k func(*Message) (fragments.Continuation, error)) (fragments.Continuation, error) {
	if bodyLen == 0 {
		return k(m)
	}
	types, err := ParseSignature(string(m.BodySignature))
	if err != nil {
		return nil, err
	}
	start := s.Offset
	end := start + bodyLen

	var step func(i int) (fragments.Continuation, error)
	step = func(i int) (fragments.Continuation, error) {
		if i == len(types) {
			if s.Offset != end {
				return nil, fragments.Errorf(s.Offset, "message body declared %d bytes, %d were consumed", bodyLen, s.Offset-start)
			}
			return k(m)
		}
		return ParseValue(s, types[i], func(v Value) (fragments.Continuation, error) {
			m.Body = append(m.Body, v)
			return step(i + 1)
		})
	}
	return step(0)
}

// decodeHeaderFields interprets the array of (field code, variant)
// entries carried by a message frame into a Header, checking that
// each recognized field's variant holds the type that field requires.
func decodeHeaderFields(fields ArrayValue) (*Header, error) {
	h := &Header{}
	for i := 0; i < fields.Len(); i++ {
		entry, ok := fields.Index(i).(StructValue)
		if !ok || entry.Len() != 2 {
			return nil, invariantf("malformed header field entry at index %d", i)
		}
		code, ok := entry.Index(0).(CharValue)
		if !ok {
			return nil, invariantf("header field entry %d has non-byte code", i)
		}
		v, ok := entry.Index(1).(VariantValue)
		if !ok {
			return nil, invariantf("header field entry %d has non-variant value", i)
		}
		inner := v.Inner()

		switch HeaderField(code) {
		case FieldPath:
			s, ok := inner.(PathValue)
			if !ok {
				return nil, invariantf("header field Path has wrong type %s", inner.Type())
			}
			h.Path = string(s)
		case FieldInterface:
			s, ok := inner.(StringValue)
			if !ok {
				return nil, invariantf("header field Interface has wrong type %s", inner.Type())
			}
			h.Interface = string(s)
		case FieldMember:
			s, ok := inner.(StringValue)
			if !ok {
				return nil, invariantf("header field Member has wrong type %s", inner.Type())
			}
			h.Member = string(s)
		case FieldErrorName:
			s, ok := inner.(StringValue)
			if !ok {
				return nil, invariantf("header field ErrorName has wrong type %s", inner.Type())
			}
			h.ErrorName = string(s)
		case FieldReplySerial:
			n, ok := inner.(Uint32Value)
			if !ok {
				return nil, invariantf("header field ReplySerial has wrong type %s", inner.Type())
			}
			h.ReplySerial = uint32(n)
		case FieldDestination:
			s, ok := inner.(StringValue)
			if !ok {
				return nil, invariantf("header field Destination has wrong type %s", inner.Type())
			}
			h.Destination = string(s)
		case FieldSender:
			s, ok := inner.(StringValue)
			if !ok {
				return nil, invariantf("header field Sender has wrong type %s", inner.Type())
			}
			h.Sender = string(s)
		case FieldSignature:
			s, ok := inner.(SignatureValue)
			if !ok {
				return nil, invariantf("header field Signature has wrong type %s", inner.Type())
			}
			h.BodySignature = Signature(s)
		case FieldUnixFDs:
			n, ok := inner.(Uint32Value)
			if !ok {
				return nil, invariantf("header field UnixFDs has wrong type %s", inner.Type())
			}
			h.UnixFDs = uint32(n)
		default:
			if h.Unknown == nil {
				h.Unknown = make(map[HeaderField]VariantValue)
			}
			h.Unknown[HeaderField(code)] = v
		}
	}
	return h, nil
}

// MarshalMessage serializes m to its DBus wire-format encoding.
func MarshalMessage(m *Message, order fragments.ByteOrder) ([]byte, error) {
	bodyBytes, err := fragments.Serialize(order, func(w *fragments.Writer) error {
		for _, v := range m.Body {
			if err := WriteValue(w, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bodyTypes := make([]*Type, len(m.Body))
	for i, v := range m.Body {
		bodyTypes[i] = v.Type()
	}
	bodySig := SignatureOf(bodyTypes)

	fieldsArray, err := buildHeaderFieldsArray(m, bodySig)
	if err != nil {
		return nil, err
	}

	headerBytes, err := fragments.Serialize(order, func(w *fragments.Writer) error {
		w.ByteOrderFlag()
		w.Uint8(byte(m.Type))
		w.Uint8(m.Flags)
		w.Uint8(ProtocolVersion)
		w.Uint32(uint32(len(bodyBytes)))
		w.Uint32(m.Serial)
		if err := WriteValue(w, fieldsArray); err != nil {
			return err
		}
		w.Pad(8)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return append(headerBytes, bodyBytes...), nil
}

func buildHeaderFieldsArray(m *Message, bodySig Signature) (ArrayValue, error) {
	var entries []Value
	add := func(code HeaderField, v Value) error {
		e, err := NewStruct(CharValue(code), NewVariant(v))
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	}

	if m.Path != "" {
		v, err := NewPath(m.Path)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldPath, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.Interface != "" {
		v, err := NewString(m.Interface)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldInterface, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.Member != "" {
		v, err := NewString(m.Member)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldMember, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.ErrorName != "" {
		v, err := NewString(m.ErrorName)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldErrorName, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.ReplySerial != 0 {
		if err := add(FieldReplySerial, Uint32Value(m.ReplySerial)); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.Destination != "" {
		v, err := NewString(m.Destination)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldDestination, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.Sender != "" {
		v, err := NewString(m.Sender)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldSender, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if bodySig != "" {
		v, err := NewSignatureValue(bodySig)
		if err != nil {
			return ArrayValue{}, err
		}
		if err := add(FieldSignature, v); err != nil {
			return ArrayValue{}, err
		}
	}
	if m.UnixFDs != 0 {
		if err := add(FieldUnixFDs, Uint32Value(m.UnixFDs)); err != nil {
			return ArrayValue{}, err
		}
	}
	for code, v := range m.Unknown {
		if err := add(code, v.Inner()); err != nil {
			return ArrayValue{}, err
		}
	}

	if len(entries) == 0 {
		return NewEmptyArray(headerFieldEntryType), nil
	}
	return NewArray(entries)
}
