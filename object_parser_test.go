package dbus_test

import (
	"bytes"
	"testing"

	dbus "github.com/dbusgo/dbuswire"
	"github.com/dbusgo/dbuswire/fragments"
)

func parseOne(t *testing.T, order fragments.ByteOrder, ty *dbus.Type, data []byte) dbus.Value {
	t.Helper()
	v, n, err := dbus.ParseValueBytes(order, ty, data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n != len(data) {
		t.Fatalf("consumed %d bytes, want %d", n, len(data))
	}
	return v
}

func mustMarshal(t *testing.T, v dbus.Value, order fragments.ByteOrder) []byte {
	t.Helper()
	b, err := dbus.Marshal(v, order)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return b
}

func TestVariantUint32Scenario(t *testing.T) {
	want := []byte{0x01, 0x75, 0x00, 0x00, 0xEF, 0xBE, 0xAD, 0xDE}
	v := dbus.NewVariant(dbus.Uint32Value(0xDEADBEEF))
	got := mustMarshal(t, v, fragments.LittleEndian)
	if !bytes.Equal(got, want) {
		t.Errorf("Marshal = % x, want % x", got, want)
	}
	parsed := parseOne(t, fragments.LittleEndian, dbus.TypeVariant, want)
	if parsed != dbus.Value(v) {
		t.Errorf("parsed %#v, want %#v", parsed, v)
	}
}

func TestArrayUint16Scenario(t *testing.T) {
	want := []byte{0x06, 0x00, 0x00, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00}
	v, err := dbus.NewArray([]dbus.Value{dbus.Uint16Value(1), dbus.Uint16Value(2), dbus.Uint16Value(3)})
	if err != nil {
		t.Fatal(err)
	}
	got := mustMarshal(t, v, fragments.LittleEndian)
	if !bytes.Equal(got, want) {
		t.Errorf("Marshal = % x, want % x", got, want)
	}
	arrType, err := dbus.ParseOneSignature("aq")
	if err != nil {
		t.Fatal(err)
	}
	parsed := parseOne(t, fragments.LittleEndian, arrType, want).(dbus.ArrayValue)
	if parsed.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", parsed.Len())
	}
	for i, want := range []uint16{1, 2, 3} {
		if got := parsed.Elements()[i].(dbus.Uint16Value); uint16(got) != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

func TestEmptyArrayOfStructScenario(t *testing.T) {
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	elemType, err := dbus.ParseOneSignature("(us)")
	if err != nil {
		t.Fatal(err)
	}
	v := dbus.NewEmptyArray(elemType)
	got := mustMarshal(t, v, fragments.LittleEndian)
	if !bytes.Equal(got, want) {
		t.Errorf("Marshal = % x, want % x", got, want)
	}
	arrType, err := dbus.ParseOneSignature("a(us)")
	if err != nil {
		t.Fatal(err)
	}
	parsed := parseOne(t, fragments.LittleEndian, arrType, want).(dbus.ArrayValue)
	if parsed.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", parsed.Len())
	}
	if got := parsed.ElemType().Signature().String(); got != "(us)" {
		t.Errorf("ElemType() signature = %q, want (us)", got)
	}
}

func TestDictEntryArrayRoundTrip(t *testing.T) {
	entry, err := dbus.NewDictEntry(dbus.StringValue("x"), dbus.Uint32Value(5))
	if err != nil {
		t.Fatal(err)
	}
	arr, err := dbus.NewArray([]dbus.Value{entry})
	if err != nil {
		t.Fatal(err)
	}
	le := mustMarshal(t, arr, fragments.LittleEndian)
	arrType, err := dbus.ParseOneSignature("a{su}")
	if err != nil {
		t.Fatal(err)
	}
	parsed := parseOne(t, fragments.LittleEndian, arrType, le)
	reserialized := mustMarshal(t, parsed, fragments.LittleEndian)
	if !bytes.Equal(le, reserialized) {
		t.Errorf("re-serialized = % x, want % x", reserialized, le)
	}
}

func TestBigEndianRoundTrip(t *testing.T) {
	v, err := dbus.NewArray([]dbus.Value{dbus.Uint16Value(1), dbus.Uint16Value(2), dbus.Uint16Value(3)})
	if err != nil {
		t.Fatal(err)
	}
	be := mustMarshal(t, v, fragments.BigEndian)
	arrType, err := dbus.ParseOneSignature("aq")
	if err != nil {
		t.Fatal(err)
	}
	parsed := parseOne(t, fragments.BigEndian, arrType, be)
	reserialized := mustMarshal(t, parsed, fragments.BigEndian)
	if !bytes.Equal(be, reserialized) {
		t.Errorf("re-serialized = % x, want % x", reserialized, be)
	}
}

func TestEmptyArrayBoundary(t *testing.T) {
	v := dbus.NewEmptyArray(dbus.TypeUint32)
	got := mustMarshal(t, v, fragments.LittleEndian)
	want := []byte{0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("Marshal = % x, want % x", got, want)
	}
	arrType, err := dbus.ParseOneSignature("au")
	if err != nil {
		t.Fatal(err)
	}
	parsed := parseOne(t, fragments.LittleEndian, arrType, got).(dbus.ArrayValue)
	if parsed.Len() != 0 || parsed.ElemType().Kind() != dbus.Uint32Kind {
		t.Errorf("got Len=%d ElemType=%v, want 0, Uint32", parsed.Len(), parsed.ElemType())
	}
}

func TestNonZeroPaddingRejected(t *testing.T) {
	// Struct(Char, Uint32): the Char leaves the cursor at offset 1, so
	// 3 padding bytes are required before the Uint32 field. Make the
	// middle one non-zero.
	structType, err := dbus.ParseOneSignature("(yu)")
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{0x01, 0x00, 0x01, 0x00, 0xEF, 0xBE, 0xAD, 0xDE}
	_, _, err = dbus.ParseValueBytes(fragments.LittleEndian, structType, data)
	if err == nil {
		t.Fatal("expected error for non-zero padding byte")
	}
	perr, ok := err.(*fragments.ParseError)
	if !ok {
		t.Fatalf("error is %T, want *fragments.ParseError", err)
	}
	if perr.Offset != 2 {
		t.Errorf("ParseError.Offset = %d, want 2", perr.Offset)
	}
}

func TestBooleanWireValueTwoRejected(t *testing.T) {
	data := []byte{0x02, 0x00, 0x00, 0x00}
	if _, _, err := dbus.ParseValueBytes(fragments.LittleEndian, dbus.TypeBoolean, data); err == nil {
		t.Fatal("expected error for boolean wire value 2")
	}
}

func TestVariantSignatureLengthMismatchRejected(t *testing.T) {
	// Declares a 1-byte signature but supplies two signature bytes
	// before the terminating NUL.
	data := []byte{0x01, 'u', 's', 0x00, 0xEF, 0xBE, 0xAD, 0xDE}
	if _, _, err := dbus.ParseValueBytes(fragments.LittleEndian, dbus.TypeVariant, data); err == nil {
		t.Fatal("expected error for mismatched variant signature length")
	}
}

func TestArrayPayloadOvershootRejected(t *testing.T) {
	// Declares a length of 7 bytes, which is not a multiple of the
	// 2-byte element size: the parser consumes a full extra element
	// before it can notice it has passed the declared end.
	data := []byte{0x07, 0x00, 0x00, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00}
	arrType, err := dbus.ParseOneSignature("aq")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := dbus.ParseValueBytes(fragments.LittleEndian, arrType, data); err == nil {
		t.Fatal("expected error: array element parse overran declared length")
	}
}
