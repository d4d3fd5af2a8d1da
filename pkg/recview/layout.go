package recview

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Endian is the decoding context of the built-in numeric layouts.
type Endian uint8

// Supported byte orders.
const (
	LittleEndian Endian = iota
	BigEndian
)

// ByteOrder returns the encoding/binary order for e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}

	return "little"
}

// ParseEndian parses "little"/"le" or "big"/"be".
func ParseEndian(s string) (Endian, error) {
	switch s {
	case "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q (want little or big): %w", s, ErrInvalidInput)
	}
}

// ErrInvalidBool is returned by the [Bool] layout for bytes other than 0 and 1.
var ErrInvalidBool = errors.New("invalid bool byte")

func constSize(n int) func(Endian) int {
	return func(Endian) int { return n }
}

// Built-in layouts for fixed-size numeric records.
var (
	Uint8 = Layout[Endian, uint8]{
		Size:   constSize(1),
		Decode: func(rec []byte, _ Endian) (uint8, error) { return rec[0], nil },
	}

	Int8 = Layout[Endian, int8]{
		Size:   constSize(1),
		Decode: func(rec []byte, _ Endian) (int8, error) { return int8(rec[0]), nil },
	}

	Uint16 = Layout[Endian, uint16]{
		Size:   constSize(2),
		Decode: func(rec []byte, e Endian) (uint16, error) { return e.ByteOrder().Uint16(rec), nil },
	}

	Int16 = Layout[Endian, int16]{
		Size:   constSize(2),
		Decode: func(rec []byte, e Endian) (int16, error) { return int16(e.ByteOrder().Uint16(rec)), nil },
	}

	Uint32 = Layout[Endian, uint32]{
		Size:   constSize(4),
		Decode: func(rec []byte, e Endian) (uint32, error) { return e.ByteOrder().Uint32(rec), nil },
	}

	Int32 = Layout[Endian, int32]{
		Size:   constSize(4),
		Decode: func(rec []byte, e Endian) (int32, error) { return int32(e.ByteOrder().Uint32(rec)), nil },
	}

	Uint64 = Layout[Endian, uint64]{
		Size:   constSize(8),
		Decode: func(rec []byte, e Endian) (uint64, error) { return e.ByteOrder().Uint64(rec), nil },
	}

	Int64 = Layout[Endian, int64]{
		Size:   constSize(8),
		Decode: func(rec []byte, e Endian) (int64, error) { return int64(e.ByteOrder().Uint64(rec)), nil },
	}

	Float32 = Layout[Endian, float32]{
		Size: constSize(4),
		Decode: func(rec []byte, e Endian) (float32, error) {
			return math.Float32frombits(e.ByteOrder().Uint32(rec)), nil
		},
	}

	Float64 = Layout[Endian, float64]{
		Size: constSize(8),
		Decode: func(rec []byte, e Endian) (float64, error) {
			return math.Float64frombits(e.ByteOrder().Uint64(rec)), nil
		},
	}

	// Bool decodes one byte and rejects anything but 0 or 1.
	Bool = Layout[Endian, bool]{
		Size: constSize(1),
		Decode: func(rec []byte, _ Endian) (bool, error) {
			switch rec[0] {
			case 0:
				return false, nil
			case 1:
				return true, nil
			default:
				return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBool, rec[0])
			}
		},
	}
)

// Raw yields each record as a sub-slice of the source. The context is the
// record width in bytes.
//
// Returned slices alias the source and must not be modified.
var Raw = Layout[int, []byte]{
	Size:   func(width int) int { return width },
	Decode: func(rec []byte, _ int) ([]byte, error) { return rec, nil },
}
