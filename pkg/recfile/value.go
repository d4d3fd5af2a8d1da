package recfile

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/calvinalkan/recview/pkg/recview"
)

// Value is one decoded record.
//
// Integers and bools are stored sign- or zero-extended to 64 bits, floats as
// float64 bits. uuid and raw records keep their bytes, which alias the
// source buffer and must not be modified.
type Value struct {
	Kind Kind
	bits uint64
	raw  []byte
}

// Uint returns the value of an unsigned integer or bool record.
func (v Value) Uint() uint64 {
	return v.bits
}

// Int returns the value of a signed integer record.
func (v Value) Int() int64 {
	return int64(v.bits)
}

// Float returns the value of a floating point record.
func (v Value) Float() float64 {
	return math.Float64frombits(v.bits)
}

// Bool returns the value of a bool record.
func (v Value) Bool() bool {
	return v.bits != 0
}

// UUID returns the value of a uuid record.
func (v Value) UUID() uuid.UUID {
	var id uuid.UUID

	copy(id[:], v.raw)

	return id
}

// Bytes returns the bytes of a uuid or raw record.
func (v Value) Bytes() []byte {
	return v.raw
}

func (v Value) String() string {
	switch {
	case v.Kind.Unsigned():
		return strconv.FormatUint(v.Uint(), 10)
	case v.Kind.Signed():
		return strconv.FormatInt(v.Int(), 10)
	case v.Kind.Float():
		bitSize := 64
		if v.Kind == KindF32 {
			bitSize = 32
		}

		return strconv.FormatFloat(v.Float(), 'g', -1, bitSize)
	case v.Kind == KindBool:
		return strconv.FormatBool(v.Bool())
	case v.Kind == KindUUID:
		return v.UUID().String()
	case v.Kind == KindRaw:
		return hex.EncodeToString(v.raw)
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// Layout decodes records of any kind. Its element size comes from the
// [Header] context, so one layout serves every file.
var Layout = recview.Layout[Header, Value]{
	Size:   func(h Header) int { return h.ElemSize },
	Decode: decodeValue,
}

func decodeValue(rec []byte, h Header) (Value, error) {
	order := h.Order.ByteOrder()
	v := Value{Kind: h.Kind}

	switch h.Kind {
	case KindU8:
		v.bits = uint64(rec[0])
	case KindU16:
		v.bits = uint64(order.Uint16(rec))
	case KindU32:
		v.bits = uint64(order.Uint32(rec))
	case KindU64:
		v.bits = order.Uint64(rec)
	case KindI8:
		v.bits = uint64(int64(int8(rec[0])))
	case KindI16:
		v.bits = uint64(int64(int16(order.Uint16(rec))))
	case KindI32:
		v.bits = uint64(int64(int32(order.Uint32(rec))))
	case KindI64:
		v.bits = order.Uint64(rec)
	case KindF32:
		v.bits = math.Float64bits(float64(math.Float32frombits(order.Uint32(rec))))
	case KindF64:
		v.bits = order.Uint64(rec)
	case KindBool:
		if rec[0] > 1 {
			return Value{}, fmt.Errorf("byte 0x%02x: %w", rec[0], ErrInvalidBool)
		}

		v.bits = uint64(rec[0])
	case KindUUID:
		id, err := uuid.FromBytes(rec)
		if err != nil {
			return Value{}, fmt.Errorf("uuid: %w", err)
		}

		if id.Variant() != uuid.RFC4122 {
			return Value{}, fmt.Errorf("%s has variant %s: %w", id, id.Variant(), ErrInvalidUUID)
		}

		v.raw = rec
	case KindRaw:
		v.raw = rec
	default:
		return Value{}, fmt.Errorf("kind %s: %w", h.Kind, ErrIncompatible)
	}

	return v, nil
}

// NewView builds a view over payload described by h.
//
// Possible errors: [ErrInvalidInput] if the count does not fit in an int,
// [recview.ErrElementOverflow] if payload is too short.
func NewView(h Header, payload []byte) (recview.View[recview.Records[Header], Value], error) {
	if h.Count > uint64(maxInt) {
		return recview.View[recview.Records[Header], Value]{}, fmt.Errorf("count %d exceeds int max: %w", h.Count, ErrInvalidInput)
	}

	return recview.Parse(payload, int(h.Count), h, Layout)
}
