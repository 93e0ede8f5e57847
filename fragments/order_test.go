package fragments_test

import (
	"testing"

	"github.com/dbusgo/dbuswire/fragments"
)

func TestByteOrderForFlag(t *testing.T) {
	le, err := fragments.ByteOrderForFlag('l')
	if err != nil || le != fragments.LittleEndian {
		t.Errorf("ByteOrderForFlag('l') = %v, %v, want LittleEndian, nil", le, err)
	}
	be, err := fragments.ByteOrderForFlag('B')
	if err != nil || be != fragments.BigEndian {
		t.Errorf("ByteOrderForFlag('B') = %v, %v, want BigEndian, nil", be, err)
	}
	if _, err := fragments.ByteOrderForFlag('x'); err == nil {
		t.Error("ByteOrderForFlag('x') succeeded, want error")
	}
}

func TestDBusFlag(t *testing.T) {
	if got := fragments.LittleEndian.DBusFlag(); got != 'l' {
		t.Errorf("LittleEndian.DBusFlag() = %q, want 'l'", got)
	}
	if got := fragments.BigEndian.DBusFlag(); got != 'B' {
		t.Errorf("BigEndian.DBusFlag() = %q, want 'B'", got)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	for _, order := range []fragments.ByteOrder{fragments.LittleEndian, fragments.BigEndian} {
		b := order.AppendUint32(nil, 0xDEADBEEF)
		if got := order.Uint32(b); got != 0xDEADBEEF {
			t.Errorf("%v: Uint32(AppendUint32(0xDEADBEEF)) = %#x, want 0xdeadbeef", order.DBusFlag(), got)
		}
	}
}
