package recfile

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the type of the records in a file.
type Kind uint32

// Record kinds. The numeric values are part of the on-disk format.
const (
	KindInvalid Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindUUID
	KindRaw
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindBool:    "bool",
	KindUUID:    "uuid",
	KindRaw:     "raw",
}

// Kinds lists every valid kind name, for help output. The slice is a copy.
func Kinds() []string {
	return slices.Clone(kindNames[1:])
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint32(k))
}

// ParseKind parses a kind name such as "u32" or "uuid".
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if i > 0 && strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}

	return KindInvalid, fmt.Errorf("unknown kind %q (want one of %s): %w", s, strings.Join(Kinds(), ", "), ErrInvalidInput)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindRaw
}

// FixedSize returns the record width implied by k, or 0 for [KindRaw] whose
// width is chosen per file.
func (k Kind) FixedSize() int {
	switch k {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	case KindUUID:
		return 16
	default:
		return 0
	}
}

// Numeric reports whether records of kind k can be summed.
func (k Kind) Numeric() bool {
	return k.Unsigned() || k.Signed() || k.Float()
}

// Unsigned reports whether k is an unsigned integer kind.
func (k Kind) Unsigned() bool {
	return k >= KindU8 && k <= KindU64
}

// Signed reports whether k is a signed integer kind.
func (k Kind) Signed() bool {
	return k >= KindI8 && k <= KindI64
}

// Float reports whether k is a floating point kind.
func (k Kind) Float() bool {
	return k == KindF32 || k == KindF64
}
