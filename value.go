package dbus

import "math"

// A Value is one node of an immutable tree mirroring the DBus type
// family. Every Value knows its own Type; container Values also
// derive their Type from their children (or, for an empty Array, from
// an Arena-owned element type they carry themselves).
//
// Value is a closed union: the only implementations are the ones in
// this package. isValue is unexported specifically to prevent other
// packages from adding new variants.
type Value interface {
	// Type returns the Type that this Value's own serialization would
	// produce.
	Type() *Type
	isValue()
}

// CharValue is a DBus byte.
type CharValue byte

func (CharValue) isValue()      {}
func (CharValue) Type() *Type   { return TypeChar }

// BooleanValue is a DBus boolean.
type BooleanValue bool

func (BooleanValue) isValue()    {}
func (BooleanValue) Type() *Type { return TypeBoolean }

// Uint16Value is a DBus uint16.
type Uint16Value uint16

func (Uint16Value) isValue()    {}
func (Uint16Value) Type() *Type { return TypeUint16 }

// Int16Value is a DBus int16.
type Int16Value int16

func (Int16Value) isValue()    {}
func (Int16Value) Type() *Type { return TypeInt16 }

// Uint32Value is a DBus uint32.
type Uint32Value uint32

func (Uint32Value) isValue()    {}
func (Uint32Value) Type() *Type { return TypeUint32 }

// Int32Value is a DBus int32.
type Int32Value int32

func (Int32Value) isValue()    {}
func (Int32Value) Type() *Type { return TypeInt32 }

// UnixFDValue is a DBus UNIX_FD: an index into the message's
// out-of-band file descriptor array. The core does not interpret the
// index; it is opaque and passes through unchanged.
type UnixFDValue uint32

func (UnixFDValue) isValue()    {}
func (UnixFDValue) Type() *Type { return TypeUnixFD }

// Uint64Value is a DBus uint64.
type Uint64Value uint64

func (Uint64Value) isValue()    {}
func (Uint64Value) Type() *Type { return TypeUint64 }

// Int64Value is a DBus int64.
type Int64Value int64

func (Int64Value) isValue()    {}
func (Int64Value) Type() *Type { return TypeInt64 }

// DoubleValue is a DBus double, transferred bit-for-bit so that NaN
// payloads and signed zeros survive a round trip.
type DoubleValue float64

func (DoubleValue) isValue()    {}
func (DoubleValue) Type() *Type { return TypeDouble }

// Bits returns v's IEEE-754 bit pattern, the representation actually
// carried on the wire.
func (v DoubleValue) Bits() uint64 { return math.Float64bits(float64(v)) }

// DoubleFromBits builds a DoubleValue from a raw IEEE-754 bit
// pattern, without going through a float64 arithmetic conversion that
// could normalize a NaN payload.
func DoubleFromBits(bits uint64) DoubleValue {
	return DoubleValue(math.Float64frombits(bits))
}

// StringValue is a DBus string: no embedded NUL bytes and a length
// fitting in a uint32. UTF-8 validity is not checked.
type StringValue string

func (StringValue) isValue()    {}
func (StringValue) Type() *Type { return TypeString }

// PathValue is a DBus object path, carried on the wire exactly like a
// string. The core does not validate object path syntax; see spec's
// explicit non-goal on object path validation.
type PathValue string

func (PathValue) isValue()    {}
func (PathValue) Type() *Type { return TypePath }

// SignatureValue is a DBus signature value (as opposed to Signature,
// the Go type used to describe Types generally).
type SignatureValue Signature

func (SignatureValue) isValue()    {}
func (SignatureValue) Type() *Type { return TypeSignature }

const maxStringLen = math.MaxUint32

func validateNoNUL(kind string, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return invariantf("%s contains a NUL byte at offset %d", kind, i)
		}
	}
	if uint64(len(s)) > maxStringLen {
		return invariantf("%s of length %d exceeds maximum length %d", kind, len(s), maxStringLen)
	}
	return nil
}

// NewString returns a StringValue for s, or an [InvariantError] if s
// contains a NUL byte or is too long to encode a uint32 length.
func NewString(s string) (StringValue, error) {
	if err := validateNoNUL("string", s); err != nil {
		return "", err
	}
	return StringValue(s), nil
}

// NewPath returns a PathValue for s, or an [InvariantError] if s
// contains a NUL byte or is too long to encode a uint32 length.
func NewPath(s string) (PathValue, error) {
	if err := validateNoNUL("object path", s); err != nil {
		return "", err
	}
	return PathValue(s), nil
}

// NewSignatureValue returns a SignatureValue for sig, or an
// [InvariantError] if sig is longer than [MaxSignatureLength].
func NewSignatureValue(sig Signature) (SignatureValue, error) {
	if len(sig) > MaxSignatureLength {
		return "", invariantf("signature %q exceeds maximum length %d", sig, MaxSignatureLength)
	}
	return SignatureValue(sig), nil
}

// VariantValue is a type-erased value carrying its own runtime
// signature.
type VariantValue struct {
	inner Value
}

func (VariantValue) isValue()    {}
func (VariantValue) Type() *Type { return TypeVariant }

// NewVariant wraps inner in a Variant. inner may itself be a Variant
// (variants may nest in DBus), so no restriction is placed on inner's
// type.
func NewVariant(inner Value) VariantValue {
	return VariantValue{inner: inner}
}

// Inner returns the value a Variant carries.
func (v VariantValue) Inner() Value { return v.inner }

// InnerSignature returns the signature of the value a Variant
// carries, i.e. the signature written on the wire just before it.
func (v VariantValue) InnerSignature() Signature { return v.inner.Type().Signature() }

// ArrayValue is a DBus array: an ordered, homogeneously-typed
// sequence of values.
type ArrayValue struct {
	elemType *Type
	elems    []Value
	// arena owns elemType when the array is empty and elemType could
	// not be derived from any element.
	arena *Arena
}

func (ArrayValue) isValue() {}

// Type returns an Array Type whose element type is the array's actual
// element type.
func (v ArrayValue) Type() *Type {
	arena := v.arena
	if arena == nil {
		arena = &Arena{}
	}
	return arena.Array(v.elemType)
}

// Len returns the number of elements in the array.
func (v ArrayValue) Len() int { return len(v.elems) }

// Index returns the i-th element.
func (v ArrayValue) Index(i int) Value { return v.elems[i] }

// Elements returns the array's elements. The returned slice must not
// be mutated.
func (v ArrayValue) Elements() []Value { return v.elems }

// ElemType returns the array's element type.
func (v ArrayValue) ElemType() *Type { return v.elemType }

// NewArray returns an ArrayValue containing elems, which must all
// share the same Type (compared by Signature, since container Types
// are not comparable with ==). elems must be non-empty; use
// [NewEmptyArray] for an empty array, since an empty slice carries no
// element type to infer.
func NewArray(elems []Value) (ArrayValue, error) {
	if len(elems) == 0 {
		return ArrayValue{}, invariantf("NewArray called with no elements; use NewEmptyArray")
	}
	elemType := elems[0].Type()
	elemSig := elemType.Signature()
	for i, e := range elems[1:] {
		if e.Type().Signature() != elemSig {
			return ArrayValue{}, invariantf("array element %d has type %s, want %s", i+1, e.Type().Signature(), elemSig)
		}
	}
	cp := append([]Value(nil), elems...)
	return ArrayValue{elemType: elemType, elems: cp}, nil
}

// NewEmptyArray returns an empty ArrayValue of the given element
// type. Since there are no elements to derive the element type from,
// the array owns an [Arena] adopting elemType so that the type
// remains valid for the array's lifetime.
func NewEmptyArray(elemType *Type) ArrayValue {
	arena := &Arena{}
	return ArrayValue{elemType: arena.Adopt(elemType), arena: arena}
}

// StructValue is a DBus struct: an ordered, heterogeneously-typed
// sequence of fields.
type StructValue struct {
	fields []Value
}

func (StructValue) isValue() {}

// Type returns a Struct Type built from the field types of v's
// fields.
func (v StructValue) Type() *Type {
	fieldTypes := make([]*Type, len(v.fields))
	for i, f := range v.fields {
		fieldTypes[i] = f.Type()
	}
	arena := &Arena{}
	return arena.Struct(fieldTypes...)
}

// Len returns the number of fields.
func (v StructValue) Len() int { return len(v.fields) }

// Index returns the i-th field.
func (v StructValue) Index(i int) Value { return v.fields[i] }

// Fields returns the struct's fields, in declaration order. The
// returned slice must not be mutated.
func (v StructValue) Fields() []Value { return v.fields }

// NewStruct returns a StructValue with the given fields, in order. A
// struct must have at least one field, per the DBus grammar.
func NewStruct(fields ...Value) (StructValue, error) {
	if len(fields) == 0 {
		return StructValue{}, invariantf("struct must have at least one field")
	}
	cp := append([]Value(nil), fields...)
	return StructValue{fields: cp}, nil
}

// DictEntryValue is a DBus dict entry: a key/value pair. Conventional
// DBus messages only carry dict entries as Array elements, but the
// signature parser accepts a dict entry type in any position.
type DictEntryValue struct {
	key Value
	val Value
}

func (DictEntryValue) isValue() {}

// Type returns a DictEntry Type built from v's key and value types.
func (v DictEntryValue) Type() *Type {
	arena := &Arena{}
	t, err := arena.DictEntry(v.key.Type(), v.val.Type())
	if err != nil {
		// v.key's type was validated as primitive at construction
		// time by NewDictEntry, so this cannot happen.
		panic(err)
	}
	return t
}

// Key returns the dict entry's key.
func (v DictEntryValue) Key() Value { return v.key }

// Val returns the dict entry's value.
func (v DictEntryValue) Val() Value { return v.val }

// NewDictEntry returns a DictEntryValue for the given key and value.
// It returns an [InvariantError] if key's type is not primitive.
func NewDictEntry(key, val Value) (DictEntryValue, error) {
	if !key.Type().Kind().IsPrimitive() {
		return DictEntryValue{}, invariantf("dict entry key type %s is not primitive", key.Type().Kind())
	}
	return DictEntryValue{key: key, val: val}, nil
}
