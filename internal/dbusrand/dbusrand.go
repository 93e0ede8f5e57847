// Package dbusrand generates random Types and Values for round-trip
// property tests: marshal a random value, parse it back, and check
// the result is equal to the original.
//
// The generation strategy mirrors DBusParse's own Mersenne-twister
// based generator (dbus_random.cpp in the original C++ project this
// package's wire format was distilled from): a shrinking size budget
// shared across every array and struct a run produces, and a
// depth budget that excludes container types once exhausted so that
// generation always terminates.
package dbusrand

import (
	"math"
	"math/rand/v2"

	dbus "github.com/dbusgo/dbuswire"
)

// letters lists every DBus type-signature letter dbusrand can pick,
// primitives first, containers last. Depth-exhausted picks are
// restricted to a prefix of this slice.
var letters = []byte{'y', 'b', 'n', 'q', 'i', 'u', 'x', 't', 'd', 'h', 's', 'o', 'g', 'v', 'a', '(', '{'}

// numLeafLetters is how many entries at the front of letters describe
// types that need no further recursion (everything except Variant,
// Array, Struct, and DictEntry).
const numLeafLetters = 13

// Generator produces random Types and Values from a shared source of
// randomness and a shrinking size budget.
type Generator struct {
	r       *rand.Rand
	maxSize int
}

// New returns a Generator drawing from r, whose arrays and structs
// collectively consume no more than maxSize elements/fields across
// the lifetime of the Generator, except that once the budget is spent
// each further struct type still gets one field.
func New(r *rand.Rand, maxSize int) *Generator {
	return &Generator{r: r, maxSize: maxSize}
}

func (g *Generator) letter(maxDepth int) byte {
	if maxDepth == 0 {
		return letters[g.r.IntN(numLeafLetters)]
	}
	return letters[g.r.IntN(len(letters))]
}

// takeBudget draws a count between 0 and min(8, remaining budget),
// deducting the ceiling (not the draw) from the budget so that a
// generator run always terminates in a bounded number of elements.
func (g *Generator) takeBudget() int {
	n := min(8, g.maxSize)
	g.maxSize -= n
	return g.r.IntN(n + 1)
}

// Type returns a random Type nested no deeper than maxDepth.
func (g *Generator) Type(maxDepth int) *dbus.Type {
	var a dbus.Arena
	return g.randomType(&a, maxDepth)
}

func (g *Generator) randomType(a *dbus.Arena, maxDepth int) *dbus.Type {
	switch g.letter(maxDepth) {
	case 'y':
		return dbus.TypeChar
	case 'b':
		return dbus.TypeBoolean
	case 'q':
		return dbus.TypeUint16
	case 'n':
		return dbus.TypeInt16
	case 'u':
		return dbus.TypeUint32
	case 'i':
		return dbus.TypeInt32
	case 't':
		return dbus.TypeUint64
	case 'x':
		return dbus.TypeInt64
	case 'd':
		return dbus.TypeDouble
	case 'h':
		return dbus.TypeUnixFD
	case 's':
		return dbus.TypeString
	case 'o':
		return dbus.TypePath
	case 'g':
		return dbus.TypeSignature
	case 'v':
		return dbus.TypeVariant
	case 'a':
		return a.Array(g.randomType(a, maxDepth-1))
	case '(':
		return g.randomStructType(a, maxDepth-1)
	case '{':
		key := g.randomType(a, 0) // dict entry keys must be primitive
		val := g.randomType(a, maxDepth-1)
		t, err := a.DictEntry(key, val)
		if err != nil {
			panic("dbusrand: generated a non-primitive dict entry key: " + err.Error())
		}
		return t
	}
	panic("dbusrand: unreachable letter")
}

func (g *Generator) randomStructType(a *dbus.Arena, maxDepth int) *dbus.Type {
	n := g.takeBudget()
	if n == 0 {
		// A DBus struct must have at least one field.
		n = 1
	}
	fields := make([]*dbus.Type, n)
	for i := range fields {
		fields[i] = g.randomType(a, maxDepth)
	}
	return a.Struct(fields...)
}

// Value returns a random Value of type t, whose own containers (if t
// is itself, or contains, Variant) are nested no deeper than
// maxDepth.
func (g *Generator) Value(t *dbus.Type, maxDepth int) dbus.Value {
	switch t.Kind() {
	case dbus.Char:
		return dbus.CharValue(byte(g.r.IntN(256)))
	case dbus.Boolean:
		return dbus.BooleanValue(g.r.IntN(2) == 1)
	case dbus.Uint16Kind:
		return dbus.Uint16Value(g.randomUint16())
	case dbus.Int16Kind:
		return dbus.Int16Value(int16(g.randomUint16()))
	case dbus.Uint32Kind:
		return dbus.Uint32Value(g.randomUint32())
	case dbus.Int32Kind:
		return dbus.Int32Value(int32(g.randomUint32()))
	case dbus.UnixFDKind:
		return dbus.UnixFDValue(g.randomUint32())
	case dbus.Uint64Kind:
		return dbus.Uint64Value(g.r.Uint64())
	case dbus.Int64Kind:
		return dbus.Int64Value(int64(g.r.Uint64()))
	case dbus.DoubleKind:
		return dbus.DoubleValue(g.randomDouble())
	case dbus.StringKind:
		v, err := dbus.NewString(g.randomString())
		if err != nil {
			panic(err)
		}
		return v
	case dbus.PathKind:
		v, err := dbus.NewPath(g.randomString())
		if err != nil {
			panic(err)
		}
		return v
	case dbus.SignatureKind:
		inner := g.Type(maxDepth)
		v, err := dbus.NewSignatureValue(inner.Signature())
		if err != nil {
			panic(err)
		}
		return v
	case dbus.VariantKind:
		newDepth := childDepth(maxDepth)
		inner := g.Type(newDepth)
		return dbus.NewVariant(g.Value(inner, newDepth))
	case dbus.ArrayKind:
		return g.randomArray(t, maxDepth)
	case dbus.StructKind:
		newDepth := childDepth(maxDepth)
		fields := t.Fields()
		vals := make([]dbus.Value, len(fields))
		for i, f := range fields {
			vals[i] = g.Value(f, newDepth)
		}
		v, err := dbus.NewStruct(vals...)
		if err != nil {
			panic(err)
		}
		return v
	case dbus.DictEntryKind:
		newDepth := childDepth(maxDepth)
		key := g.Value(t.Key(), 0)
		val := g.Value(t.Value(), newDepth)
		v, err := dbus.NewDictEntry(key, val)
		if err != nil {
			panic(err)
		}
		return v
	}
	panic("dbusrand: unreachable kind")
}

func (g *Generator) randomArray(t *dbus.Type, maxDepth int) dbus.Value {
	newDepth := childDepth(maxDepth)
	n := g.takeBudget()
	if n == 0 {
		return dbus.NewEmptyArray(t.Elem())
	}
	elems := make([]dbus.Value, n)
	for i := range elems {
		elems[i] = g.Value(t.Elem(), newDepth)
	}
	v, err := dbus.NewArray(elems)
	if err != nil {
		panic(err)
	}
	return v
}

func childDepth(maxDepth int) int {
	if maxDepth > 0 {
		return maxDepth - 1
	}
	return 0
}

func (g *Generator) randomUint16() uint16 { return uint16(g.r.IntN(1 << 16)) }
func (g *Generator) randomUint32() uint32 { return g.r.Uint32() }

// randomDouble mirrors DBusRandomMersenne::randomDouble, which
// deliberately weights its output towards edge-case doubles (the
// infinities, NaN, results of dividing by values that can themselves
// be zero) rather than sampling the full IEEE-754 range uniformly.
func (g *Generator) randomDouble() float64 {
	switch g.r.IntN(12) {
	case 0:
		return 0.0
	case 1:
		return 1.0
	case 2:
		return 2.0
	case 3:
		return math.Inf(1)
	case 4:
		return math.NaN()
	case 5:
		return -g.randomDouble()
	case 6:
		return g.randomDouble() * g.randomDouble()
	case 7:
		return g.randomDouble() / g.randomDouble()
	default:
		return float64(g.r.Uint64())
	}
}

func (g *Generator) randomString() string {
	n := g.r.IntN(33)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(1 + g.r.IntN(127))
	}
	return string(b)
}
