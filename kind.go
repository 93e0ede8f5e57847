package dbus

// Kind identifies one member of the closed family of DBus wire types.
type Kind int

const (
	// InvalidKind is the zero Kind; no valid Type has this kind.
	InvalidKind Kind = iota
	Char
	Boolean
	Uint16Kind
	Int16Kind
	Uint32Kind
	Int32Kind
	UnixFDKind
	Uint64Kind
	Int64Kind
	DoubleKind
	StringKind
	PathKind
	SignatureKind
	VariantKind
	ArrayKind
	StructKind
	DictEntryKind
)

var kindNames = map[Kind]string{
	InvalidKind:   "invalid",
	Char:          "char",
	Boolean:       "boolean",
	Uint16Kind:    "uint16",
	Int16Kind:     "int16",
	Uint32Kind:    "uint32",
	Int32Kind:     "int32",
	UnixFDKind:    "unix_fd",
	Uint64Kind:    "uint64",
	Int64Kind:     "int64",
	DoubleKind:    "double",
	StringKind:    "string",
	PathKind:      "path",
	SignatureKind: "signature",
	VariantKind:   "variant",
	ArrayKind:     "array",
	StructKind:    "struct",
	DictEntryKind: "dict_entry",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsPrimitive reports whether k identifies one of the fixed,
// non-recursive DBus types.
func (k Kind) IsPrimitive() bool {
	switch k {
	case Char, Boolean, Uint16Kind, Int16Kind, Uint32Kind, Int32Kind, UnixFDKind,
		Uint64Kind, Int64Kind, DoubleKind, StringKind, PathKind, SignatureKind, VariantKind:
		return true
	default:
		return false
	}
}

// IsContainer reports whether k identifies one of the recursive DBus
// types.
func (k Kind) IsContainer() bool {
	switch k {
	case ArrayKind, StructKind, DictEntryKind:
		return true
	default:
		return false
	}
}

// sigLetter is the single-letter signature code for a primitive kind,
// or the opening bracket character for a container kind.
var sigLetter = map[Kind]byte{
	Char:          'y',
	Boolean:       'b',
	Uint16Kind:    'q',
	Int16Kind:     'n',
	Uint32Kind:    'u',
	Int32Kind:     'i',
	UnixFDKind:    'h',
	Uint64Kind:    't',
	Int64Kind:     'x',
	DoubleKind:    'd',
	StringKind:    's',
	PathKind:      'o',
	SignatureKind: 'g',
	VariantKind:   'v',
	ArrayKind:     'a',
	StructKind:    '(',
	DictEntryKind: '{',
}

var letterToKind = func() map[byte]Kind {
	m := make(map[byte]Kind, len(sigLetter))
	for k, l := range sigLetter {
		if k.IsPrimitive() {
			m[l] = k
		}
	}
	return m
}()
