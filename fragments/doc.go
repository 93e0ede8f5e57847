// Package fragments provides the low-level, DBus-semantics-free
// building blocks used to parse and serialize the DBus wire format:
// byte order handling, a continuation-passing incremental parser, and
// a two-pass length-resolving writer.
//
// Nothing in this package knows about DBus types, signatures, or
// messages. It is the substrate the dbus package's type-directed
// object parser and serializer are built on. You should not need to
// use this package directly unless you are implementing a new
// type-directed reader or writer over the DBus wire format.
package fragments
