package dbus

import (
	"strings"
	"sync"

	"github.com/dbusgo/dbuswire/fragments"
)

// MaxSignatureLength is the largest signature string the DBus wire
// format can carry: its length prefix is a single byte.
const MaxSignatureLength = 255

// A Signature is the textual encoding of a sequence of Types, as
// carried in DBus variants and message headers.
type Signature string

func (s Signature) String() string { return string(s) }

// signatureCache memoizes repeat parses the way the
// teacher's cache[V] does for reflect-based signatures, keyed here by
// the plain string instead of a reflect.Type.
var signatureCache sync.Map // string -> []*Type

// ParseSignature parses sig into an ordered sequence of complete
// types. An empty string parses to a nil, zero-length sequence.
func ParseSignature(sig string) ([]*Type, error) {
	if len(sig) > MaxSignatureLength {
		return nil, fragments.Errorf(0, "signature %q exceeds maximum length %d", sig, MaxSignatureLength)
	}
	if cached, ok := signatureCache.Load(sig); ok {
		return cached.([]*Type), nil
	}

	arena := &Arena{}
	var types []*Type
	rest := sig
	consumed := 0
	for rest != "" {
		t, n, err := parseOneType(arena, rest, consumed)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		rest = rest[n:]
		consumed += n
	}

	signatureCache.Store(sig, types)
	return types, nil
}

// ParseOneSignature parses sig, which must contain exactly one
// complete type, and returns it. It is used to decode the inline
// signature carried by a Variant.
func ParseOneSignature(sig string) (*Type, error) {
	types, err := ParseSignature(sig)
	if err != nil {
		return nil, err
	}
	if len(types) != 1 {
		return nil, fragments.Errorf(0, "signature %q does not describe exactly one type", sig)
	}
	return types[0], nil
}

// parseOneType consumes one complete type from the front of sig and
// returns it, the number of bytes consumed, and an error. offset is
// sig's position within the whole signature string being parsed, and
// is added to positions reported in errors so that they point into
// that whole string.
//
// A dict entry type ('{'...'}') is accepted wherever a type may
// appear, not only directly following 'a'. This mirrors the DBus
// reference implementation's decoder leniency: a conventional DBus
// producer only ever emits dict entries as array elements, but a
// decoder must not choke on a message that does otherwise.
func parseOneType(arena *Arena, sig string, offset int) (*Type, int, error) {
	if sig == "" {
		return nil, 0, fragments.Errorf(offset, "expected a type, got end of signature")
	}
	c := sig[0]

	if k, ok := letterToKind[c]; ok {
		return primitiveTypes[k], 1, nil
	}

	switch c {
	case 'a':
		elem, n, err := parseOneType(arena, sig[1:], offset+1)
		if err != nil {
			return nil, 0, err
		}
		return arena.Array(elem), n + 1, nil

	case '(':
		var fields []*Type
		pos := 1
		for {
			if pos >= len(sig) {
				return nil, 0, fragments.Errorf(offset, "missing closing ')' in struct signature %q", sig)
			}
			if sig[pos] == ')' {
				pos++
				break
			}
			f, n, err := parseOneType(arena, sig[pos:], offset+pos)
			if err != nil {
				return nil, 0, err
			}
			fields = append(fields, f)
			pos += n
		}
		if len(fields) == 0 {
			return nil, 0, fragments.Errorf(offset, "struct signature %q has no fields", sig)
		}
		return arena.Struct(fields...), pos, nil

	case '{':
		key, n, err := parseOneType(arena, sig[1:], offset+1)
		if err != nil {
			return nil, 0, err
		}
		pos := 1 + n
		if !key.Kind().IsPrimitive() {
			return nil, 0, fragments.Errorf(offset, "dict entry key type must be primitive, got %s", key.Kind())
		}
		val, n, err := parseOneType(arena, sig[pos:], offset+pos)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		if pos >= len(sig) || sig[pos] != '}' {
			return nil, 0, fragments.Errorf(offset+pos, "missing closing '}' in dict entry signature %q", sig)
		}
		pos++
		entry, err := arena.DictEntry(key, val)
		if err != nil {
			return nil, 0, err
		}
		return entry, pos, nil

	case ')', '}':
		return nil, 0, fragments.Errorf(offset, "unexpected %q", c)

	default:
		return nil, 0, fragments.Errorf(offset, "invalid type character %q", c)
	}
}

// Signature returns t's own signature: a single complete type string.
func (t *Type) Signature() Signature {
	var b strings.Builder
	writeTypeSignature(&b, t)
	return Signature(b.String())
}

// SignatureOf returns the concatenated signature of a sequence of
// types, as used for a message body or a struct's fields.
func SignatureOf(types []*Type) Signature {
	var b strings.Builder
	for _, t := range types {
		writeTypeSignature(&b, t)
	}
	return Signature(b.String())
}

func writeTypeSignature(b *strings.Builder, t *Type) {
	switch t.kind {
	case ArrayKind:
		b.WriteByte('a')
		writeTypeSignature(b, t.elem)
	case StructKind:
		b.WriteByte('(')
		for _, f := range t.fields {
			writeTypeSignature(b, f)
		}
		b.WriteByte(')')
	case DictEntryKind:
		b.WriteByte('{')
		writeTypeSignature(b, t.fields[0])
		writeTypeSignature(b, t.fields[1])
		b.WriteByte('}')
	default:
		b.WriteByte(sigLetter[t.kind])
	}
}
