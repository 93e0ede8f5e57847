package fragments

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/cpu"
)

// A ByteOrder decodes and encodes multi-byte integers, and knows its
// own DBus wire byte-order marker ('l' or 'B').
type ByteOrder interface {
	byteOrder
	// DBusFlag returns the wire byte order marker ('l' or 'B') for
	// this byte order.
	DBusFlag() byte
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type wrapStd struct {
	byteOrder
}

func (w wrapStd) DBusFlag() byte {
	switch w.byteOrder {
	case binary.BigEndian:
		return 'B'
	case binary.LittleEndian:
		return 'l'
	case binary.NativeEndian:
		if cpu.IsBigEndian {
			return 'B'
		}
		return 'l'
	default:
		panic("unknown ByteOrder, how did you manage to make one of those?")
	}
}

var (
	BigEndian    = wrapStd{binary.BigEndian}
	LittleEndian = wrapStd{binary.LittleEndian}
	NativeEndian = wrapStd{binary.NativeEndian}
)

// ByteOrderForFlag returns the ByteOrder corresponding to a DBus wire
// byte-order marker byte ('l' or 'B').
func ByteOrderForFlag(flag byte) (ByteOrder, error) {
	switch flag {
	case 'l':
		return LittleEndian, nil
	case 'B':
		return BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown DBus byte order flag %q", flag)
	}
}
