package fragments_test

import (
	"strings"
	"testing"

	"github.com/dbusgo/dbuswire/fragments"
)

func runFixed(t *testing.T, order fragments.ByteOrder, cont fragments.Continuation, data []byte) error {
	t.Helper()
	p := fragments.NewParser(order, cont)
	_, err := p.RunBytes(data)
	return err
}

func TestConsumeByte(t *testing.T) {
	var got byte
	cont := fragments.ConsumeByte(func(b byte) (fragments.Continuation, error) {
		got = b
		return fragments.Stop, nil
	})
	if err := runFixed(t, fragments.LittleEndian, cont, []byte{0x42}); err != nil {
		t.Fatal(err)
	}
	if got != 0x42 {
		t.Errorf("got %#x, want 0x42", got)
	}
}

func TestConsumeUint32Order(t *testing.T) {
	var got uint32
	build := func() fragments.Continuation {
		return fragments.ConsumeUint32(func(v uint32) (fragments.Continuation, error) {
			got = v
			return fragments.Stop, nil
		})
	}
	if err := runFixed(t, fragments.LittleEndian, build(), []byte{0x01, 0x00, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("little-endian: got %d, want 1", got)
	}
	if err := runFixed(t, fragments.BigEndian, build(), []byte{0x00, 0x00, 0x00, 0x01}); err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("big-endian: got %d, want 1", got)
	}
}

func TestConsumeBytesChunked(t *testing.T) {
	want := strings.Repeat("x", fragments.MaxLookahead+10)
	var got []byte
	cont, err := fragments.ConsumeBytes(len(want), func(b []byte) (fragments.Continuation, error) {
		got = append([]byte(nil), b...)
		return fragments.Stop, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	p := fragments.NewParser(fragments.LittleEndian, cont)
	for !p.Done() {
		_, max := p.Next()
		if err := p.Advance([]byte(want)[p.Offset() : p.Offset()+max]); err != nil {
			t.Fatal(err)
		}
	}
	if string(got) != want {
		t.Errorf("got %d bytes, want %d", len(got), len(want))
	}
}

func TestConsumeZerosRejectsNonZero(t *testing.T) {
	cont, err := fragments.ConsumeZeros(4, func() (fragments.Continuation, error) {
		return fragments.Stop, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	err = runFixed(t, fragments.LittleEndian, cont, []byte{0x00, 0x00, 0x01, 0x00})
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

func TestConsumePadZeroWhenAligned(t *testing.T) {
	called := false
	s := &fragments.ParseState{Order: fragments.LittleEndian, Offset: 8}
	cont, err := fragments.ConsumePad(s, 4, func() (fragments.Continuation, error) {
		called = true
		return fragments.Stop, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("ConsumePad on an already-aligned offset did not call next immediately")
	}
	if cont != fragments.Stop {
		t.Errorf("ConsumePad returned %v, want Stop", cont)
	}
}

func TestParserDone(t *testing.T) {
	p := fragments.NewParser(fragments.LittleEndian, fragments.Stop)
	if !p.Done() {
		t.Error("Parser starting on Stop should be Done")
	}
}
