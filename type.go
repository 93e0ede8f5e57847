package dbus

import "fmt"

// A Type describes one member of the closed family of DBus wire
// types: a primitive, or a container built from other Types.
//
// Primitive Types are global singletons (Char, Boolean, Uint16, and
// so on); comparing two primitive Types with == is equivalent to
// comparing their Kind. Container Types (Array, Struct, DictEntry)
// are constructed dynamically, either by an [Arena] the caller owns,
// or internally by the object parser and signature codec, and are
// not comparable with ==; compare their Signature instead.
type Type struct {
	kind   Kind
	elem   *Type   // Array element type.
	fields []*Type // Struct field types, or [key, value] for DictEntry.
}

// Kind reports which member of the type family t is.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of an Array. It panics if t is not an
// Array.
func (t *Type) Elem() *Type {
	if t.kind != ArrayKind {
		panic(fmt.Sprintf("Elem called on non-array type %s", t.kind))
	}
	return t.elem
}

// Fields returns the field types of a Struct, in declaration order.
// It panics if t is not a Struct.
func (t *Type) Fields() []*Type {
	if t.kind != StructKind {
		panic(fmt.Sprintf("Fields called on non-struct type %s", t.kind))
	}
	return t.fields
}

// Key returns the key type of a DictEntry. It panics if t is not a
// DictEntry.
func (t *Type) Key() *Type {
	if t.kind != DictEntryKind {
		panic(fmt.Sprintf("Key called on non-dict-entry type %s", t.kind))
	}
	return t.fields[0]
}

// Value returns the value type of a DictEntry. It panics if t is not
// a DictEntry.
func (t *Type) Value() *Type {
	if t.kind != DictEntryKind {
		panic(fmt.Sprintf("Value called on non-dict-entry type %s", t.kind))
	}
	return t.fields[1]
}

// Alignment returns the number of bytes t must be aligned to when
// written to, or read from, the DBus wire format.
func (t *Type) Alignment() int {
	switch t.kind {
	case Char, SignatureKind, VariantKind:
		return 1
	case Uint16Kind, Int16Kind:
		return 2
	case Boolean, Uint32Kind, Int32Kind, UnixFDKind, StringKind, PathKind, ArrayKind:
		return 4
	case Uint64Kind, Int64Kind, DoubleKind, StructKind, DictEntryKind:
		return 8
	default:
		panic(fmt.Sprintf("invalid type kind %d", t.kind))
	}
}

// String returns t's signature string, e.g. "a{sv}".
func (t *Type) String() string {
	return t.Signature().String()
}

// Primitive Type singletons. There is exactly one Type value for each
// primitive kind; comparing two primitive Types with == is
// well-defined and equivalent to comparing Kind().
var (
	TypeChar      = &Type{kind: Char}
	TypeBoolean   = &Type{kind: Boolean}
	TypeUint16    = &Type{kind: Uint16Kind}
	TypeInt16     = &Type{kind: Int16Kind}
	TypeUint32    = &Type{kind: Uint32Kind}
	TypeInt32     = &Type{kind: Int32Kind}
	TypeUnixFD    = &Type{kind: UnixFDKind}
	TypeUint64    = &Type{kind: Uint64Kind}
	TypeInt64     = &Type{kind: Int64Kind}
	TypeDouble    = &Type{kind: DoubleKind}
	TypeString    = &Type{kind: StringKind}
	TypePath      = &Type{kind: PathKind}
	TypeSignature = &Type{kind: SignatureKind}
	TypeVariant   = &Type{kind: VariantKind}
)

var primitiveTypes = map[Kind]*Type{
	Char:          TypeChar,
	Boolean:       TypeBoolean,
	Uint16Kind:    TypeUint16,
	Int16Kind:     TypeInt16,
	Uint32Kind:    TypeUint32,
	Int32Kind:     TypeInt32,
	UnixFDKind:    TypeUnixFD,
	Uint64Kind:    TypeUint64,
	Int64Kind:     TypeInt64,
	DoubleKind:    TypeDouble,
	StringKind:    TypeString,
	PathKind:      TypePath,
	SignatureKind: TypeSignature,
	VariantKind:   TypeVariant,
}
