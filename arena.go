package dbus

// An Arena owns a set of dynamically-constructed container Types
// (Array, Struct, DictEntry). Primitive Types never need an arena:
// they are global singletons. Containers do, because the DBus type
// family is recursive and something has to own the sub-type
// references for as long as a value built from them is alive.
//
// Most callers never construct an Arena directly. The signature codec
// uses one per parsed signature to build the types it describes, and
// [NewEmptyArray] uses one to hold an otherwise unreachable element
// type. Arena's zero value is ready to use.
type Arena struct {
	types []*Type
}

// Array returns a new Array Type with the given element type, owned
// by a.
func (a *Arena) Array(elem *Type) *Type {
	t := &Type{kind: ArrayKind, elem: elem}
	a.types = append(a.types, t)
	return t
}

// Struct returns a new Struct Type with the given field types, owned
// by a.
func (a *Arena) Struct(fields ...*Type) *Type {
	t := &Type{kind: StructKind, fields: append([]*Type(nil), fields...)}
	a.types = append(a.types, t)
	return t
}

// DictEntry returns a new DictEntry Type with the given key and value
// types, owned by a. It returns an [InvariantError] if key is not a
// primitive type, per the DBus restriction that dict entry keys must
// be primitive.
func (a *Arena) DictEntry(key, val *Type) (*Type, error) {
	if !key.Kind().IsPrimitive() {
		return nil, &InvariantError{Reason: "dict entry key type " + key.Kind().String() + " is not primitive"}
	}
	t := &Type{kind: DictEntryKind, fields: []*Type{key, val}}
	a.types = append(a.types, t)
	return t, nil
}

// Adopt copies t, and everything it recursively references, into a,
// and returns the arena-owned equivalent. Primitive types are
// returned unchanged, since they never need adopting.
//
// Adopt is the "clone pass" that runs whenever a dynamically
// constructed type crosses from the arena that built it (typically a
// parser's scratch arena) into the arena that must outlive it
// (typically a value's own arena).
func (a *Arena) Adopt(t *Type) *Type {
	if t == nil || t.Kind().IsPrimitive() {
		return t
	}
	switch t.kind {
	case ArrayKind:
		return a.Array(a.Adopt(t.elem))
	case StructKind:
		fields := make([]*Type, len(t.fields))
		for i, f := range t.fields {
			fields[i] = a.Adopt(f)
		}
		return a.Struct(fields...)
	case DictEntryKind:
		key := a.Adopt(t.fields[0])
		val := a.Adopt(t.fields[1])
		nt, err := a.DictEntry(key, val)
		if err != nil {
			// t.fields[0] was already a valid primitive key type, so
			// its adopted copy is too.
			panic(err)
		}
		return nt
	default:
		panic("invalid container kind")
	}
}
