package fragments_test

import (
	"bytes"
	"testing"

	"github.com/dbusgo/dbuswire/fragments"
)

func TestWriterPadAndWrite(t *testing.T) {
	got, err := fragments.Serialize(fragments.LittleEndian, func(w *fragments.Writer) error {
		w.Uint8(1)
		w.Pad(4)
		w.Uint32(2)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

// TestEmptyArrayOfEightAlignedElement mirrors the wire example for an
// empty array whose element type has 8-byte alignment: the length
// field is written, then padding to 8 bytes, with no payload.
func TestEmptyArrayOfEightAlignedElement(t *testing.T) {
	got, err := fragments.Serialize(fragments.LittleEndian, func(w *fragments.Writer) error {
		return w.RecordArraySize(8, func() error { return nil })
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestRecordArraySizeMeasuresPayloadOnly(t *testing.T) {
	got, err := fragments.Serialize(fragments.LittleEndian, func(w *fragments.Writer) error {
		return w.RecordArraySize(2, func() error {
			w.Uint16(1)
			w.Uint16(2)
			w.Uint16(3)
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{6, 0, 0, 0, 1, 0, 2, 0, 3, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}
