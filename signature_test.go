package dbus_test

import (
	"strings"
	"testing"

	dbus "github.com/dbusgo/dbuswire"
)

func TestParseSignatureRoundTrip(t *testing.T) {
	tests := []string{
		"", "y", "b", "n", "q", "i", "u", "x", "t", "d", "h", "s", "o", "g", "v",
		"ay", "a{sv}", "(us)", "a(us)", "(y(nb))", "a{s(iu)}", "sus",
	}
	for _, sig := range tests {
		types, err := dbus.ParseSignature(sig)
		if err != nil {
			t.Errorf("ParseSignature(%q): %v", sig, err)
			continue
		}
		if got := dbus.SignatureOf(types).String(); got != sig {
			t.Errorf("SignatureOf(ParseSignature(%q)) = %q, want %q", sig, got, sig)
		}
	}
}

func TestParseSignatureErrors(t *testing.T) {
	tests := []string{
		"(",
		")",
		"a{(y)v}", // dict entry key must be primitive
		"z",
		"()",
		strings.Repeat("y", 256),
	}
	for _, sig := range tests {
		if _, err := dbus.ParseSignature(sig); err == nil {
			t.Errorf("ParseSignature(%q) succeeded, want error", sig)
		}
	}
}

func TestParseOneSignatureRejectsMultiple(t *testing.T) {
	if _, err := dbus.ParseOneSignature("uu"); err == nil {
		t.Error("ParseOneSignature(\"uu\") succeeded, want error")
	}
	ty, err := dbus.ParseOneSignature("a{sv}")
	if err != nil {
		t.Fatal(err)
	}
	if ty.Kind() != dbus.ArrayKind {
		t.Errorf("Kind() = %v, want ArrayKind", ty.Kind())
	}
}

func TestDictEntryAcceptedOutsideArray(t *testing.T) {
	// Per the decoder leniency this package documents: a dict entry
	// type may appear wherever a type may appear, not only directly
	// after 'a'.
	types, err := dbus.ParseSignature("{sv}")
	if err != nil {
		t.Fatalf("ParseSignature(\"{sv}\"): %v", err)
	}
	if len(types) != 1 || types[0].Kind() != dbus.DictEntryKind {
		t.Fatalf("got %v, want one DictEntry type", types)
	}
}
