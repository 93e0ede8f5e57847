// Package dbus implements the DBus wire protocol: a type system, a
// signature codec, a value tree, and a message parser and serializer.
//
// This package does not open a socket, perform the DBus SASL
// handshake, or dispatch method calls to Go objects. It only knows
// how to turn bytes into [Message] values and back. Callers own the
// transport (a UNIX socket to a message bus, an in-process pipe for
// testing, a saved packet capture) and hand this package bytes to
// parse or values to serialize.
//
// # Types and values
//
// [Type] describes one member of the DBus type family: the primitive
// kinds are global singletons, and container kinds (Array, Struct,
// DictEntry) are allocated by an [Arena] that the caller or the
// object parser owns. [Value] mirrors the same family with an
// immutable tree of concrete values, each of which knows its own
// Type.
//
// [ParseSignature] and [Type.Signature] convert between a Type
// sequence and its textual signature, e.g. "a{sv}".
//
// # Parsing and serializing
//
// [ParseValue] is a type-directed, continuation-passing parser: it
// builds a [fragments.Continuation] chain rather than recursing on
// the Go call stack, so parsing a message with an enormous array or
// string never grows the stack past the nesting depth of its type.
// [Marshal] is the inverse, using a two-pass [fragments.Writer] to
// measure every array's payload length before it has to write that
// length's prefix.
//
// [NewMessageParser] and [MarshalMessage] apply the same machinery to
// whole messages: header, header fields, and body.
package dbus
