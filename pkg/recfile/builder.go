package recfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/calvinalkan/recview/pkg/recview"
)

// Builder encodes records of one kind into a payload.
//
// Builder is not safe for concurrent use.
type Builder struct {
	kind     Kind
	order    recview.Endian
	elemSize int
	count    uint64
	buf      []byte
}

// NewBuilder returns a builder for records of kind in the given byte order.
// elemSize is only used for [KindRaw].
//
// Possible errors: [ErrInvalidInput].
func NewBuilder(kind Kind, order recview.Endian, elemSize int) (*Builder, error) {
	h, err := NewHeader(kind, order, elemSize, 0)
	if err != nil {
		return nil, err
	}

	return &Builder{kind: h.Kind, order: h.Order, elemSize: h.ElemSize}, nil
}

// Len returns the number of records appended so far.
func (b *Builder) Len() int {
	return int(b.count)
}

// Header returns the header describing the records appended so far.
func (b *Builder) Header() Header {
	return Header{Kind: b.kind, Order: b.order, ElemSize: b.elemSize, Count: b.count}
}

// AppendUint appends an unsigned integer record.
func (b *Builder) AppendUint(v uint64) error {
	if !b.kind.Unsigned() {
		return b.mismatch("unsigned integer")
	}

	if bits := 8 * b.elemSize; bits < 64 && v>>bits != 0 {
		return fmt.Errorf("%d does not fit in %s: %w", v, b.kind, ErrInvalidInput)
	}

	b.putBits(v)

	return nil
}

// AppendInt appends a signed integer record.
func (b *Builder) AppendInt(v int64) error {
	if !b.kind.Signed() {
		return b.mismatch("signed integer")
	}

	if bits := 8 * b.elemSize; bits < 64 {
		lo, hi := -int64(1)<<(bits-1), int64(1)<<(bits-1)-1
		if v < lo || v > hi {
			return fmt.Errorf("%d does not fit in %s: %w", v, b.kind, ErrInvalidInput)
		}
	}

	b.putBits(uint64(v))

	return nil
}

// AppendFloat appends a floating point record. For f32 the value is rounded
// to float32.
func (b *Builder) AppendFloat(v float64) error {
	switch b.kind {
	case KindF32:
		b.putBits(uint64(math.Float32bits(float32(v))))
	case KindF64:
		b.putBits(math.Float64bits(v))
	default:
		return b.mismatch("float")
	}

	return nil
}

// AppendBool appends a bool record.
func (b *Builder) AppendBool(v bool) error {
	if b.kind != KindBool {
		return b.mismatch("bool")
	}

	var bit uint64
	if v {
		bit = 1
	}

	b.putBits(bit)

	return nil
}

// AppendUUID appends a uuid record.
func (b *Builder) AppendUUID(id uuid.UUID) error {
	if b.kind != KindUUID {
		return b.mismatch("uuid")
	}

	b.buf = append(b.buf, id[:]...)
	b.count++

	return nil
}

// AppendRaw appends a raw record; rec must be exactly the element size.
func (b *Builder) AppendRaw(rec []byte) error {
	if b.kind != KindRaw {
		return b.mismatch("raw")
	}

	if len(rec) != b.elemSize {
		return fmt.Errorf("raw record is %d bytes, want %d: %w", len(rec), b.elemSize, ErrInvalidInput)
	}

	b.buf = append(b.buf, rec...)
	b.count++

	return nil
}

// Bytes returns the complete file image.
func (b *Builder) Bytes() ([]byte, error) {
	return Encode(b.Header(), b.buf)
}

// WriteFile writes the file image to path atomically: readers see either the
// old file or the complete new one.
func (b *Builder) WriteFile(path string) error {
	return Write(path, b.Header(), b.buf)
}

// Write encodes h and payload and atomically replaces the file at path.
//
// Possible errors: [ErrInvalidInput], filesystem errors.
func Write(path string, h Header, payload []byte) error {
	image, err := Encode(h, payload)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, bytes.NewReader(image))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// putBits writes the low elemSize bytes of v in the builder's byte order.
func (b *Builder) putBits(v uint64) {
	var order binary.AppendByteOrder = binary.LittleEndian
	if b.order == recview.BigEndian {
		order = binary.BigEndian
	}

	switch b.elemSize {
	case 1:
		b.buf = append(b.buf, byte(v))
	case 2:
		b.buf = order.AppendUint16(b.buf, uint16(v))
	case 4:
		b.buf = order.AppendUint32(b.buf, uint32(v))
	case 8:
		b.buf = order.AppendUint64(b.buf, v)
	}

	b.count++
}

func (b *Builder) mismatch(what string) error {
	return fmt.Errorf("cannot append %s to %s records: %w", what, b.kind, ErrInvalidInput)
}
