package recfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/calvinalkan/recview/pkg/recview"
)

// REC1 file format constants.
const (
	// File format version.
	rec1Version = 1

	// HeaderSize is the fixed header size in bytes. The payload starts here.
	HeaderSize = 64

	// Largest record width accepted for KindRaw.
	maxElemSize = 1 << 20
)

var rec1Magic = [4]byte{'R', 'E', 'C', '1'}

// Header field offsets (bytes from file start).
const (
	offMagic         = 0x00 // [4]byte
	offVersion       = 0x04 // uint32
	offHeaderSize    = 0x08 // uint32
	offKind          = 0x0C // uint32
	offOrder         = 0x10 // uint32
	offElemSize      = 0x14 // uint32
	offCount         = 0x18 // uint64
	offPayloadCRC32C = 0x20 // uint32
	offHeaderCRC32C  = 0x24 // uint32
	offReservedStart = 0x28 // reserved bytes through 0x3F
)

// Safe integer conversion constants.
const (
	maxInt = int(^uint(0) >> 1)
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header describes the records stored in a file. It is also the decoding
// context of [Layout].
type Header struct {
	Kind     Kind
	Order    recview.Endian
	ElemSize int
	Count    uint64

	// PayloadCRC is the CRC32-C of the payload. Filled in by [Encode].
	PayloadCRC uint32
}

// NewHeader returns a header for count records of kind, deriving the element
// size from the kind. elemSize is only used for [KindRaw].
func NewHeader(kind Kind, order recview.Endian, elemSize int, count uint64) (Header, error) {
	h := Header{Kind: kind, Order: order, ElemSize: kind.FixedSize(), Count: count}
	if kind == KindRaw {
		h.ElemSize = elemSize
	}

	if err := h.validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}

// PayloadSize returns Count * ElemSize.
//
// Returns [ErrInvalidInput] if the product does not fit in an int.
func (h Header) PayloadSize() (int, error) {
	if h.ElemSize <= 0 {
		return 0, fmt.Errorf("element size must be > 0, got %d: %w", h.ElemSize, ErrInvalidInput)
	}

	if h.Count > uint64(maxInt/h.ElemSize) {
		return 0, fmt.Errorf("%d records of %d bytes exceed addressable size: %w", h.Count, h.ElemSize, ErrInvalidInput)
	}

	return int(h.Count) * h.ElemSize, nil
}

func (h Header) validate() error {
	if !h.Kind.Valid() {
		return fmt.Errorf("kind %d: %w", uint32(h.Kind), ErrInvalidInput)
	}

	if h.Order != recview.LittleEndian && h.Order != recview.BigEndian {
		return fmt.Errorf("byte order %d: %w", h.Order, ErrInvalidInput)
	}

	if fixed := h.Kind.FixedSize(); fixed != 0 && h.ElemSize != fixed {
		return fmt.Errorf("kind %s has element size %d, got %d: %w", h.Kind, fixed, h.ElemSize, ErrInvalidInput)
	}

	if h.ElemSize < 1 || h.ElemSize > maxElemSize {
		return fmt.Errorf("element size must be in [1, %d], got %d: %w", maxElemSize, h.ElemSize, ErrInvalidInput)
	}

	_, err := h.PayloadSize()

	return err
}

// Encode serializes h and payload into a complete REC1 file image.
//
// The payload length must equal h.Count * h.ElemSize. The payload CRC in the
// returned image is computed here; h.PayloadCRC is ignored.
//
// Possible errors: [ErrInvalidInput].
func Encode(h Header, payload []byte) ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}

	size, _ := h.PayloadSize()
	if len(payload) != size {
		return nil, fmt.Errorf("payload is %d bytes, header describes %d: %w", len(payload), size, ErrInvalidInput)
	}

	buf := make([]byte, HeaderSize+len(payload))

	copy(buf[offMagic:], rec1Magic[:])
	binary.LittleEndian.PutUint32(buf[offVersion:], rec1Version)
	binary.LittleEndian.PutUint32(buf[offHeaderSize:], HeaderSize)
	binary.LittleEndian.PutUint32(buf[offKind:], uint32(h.Kind))
	binary.LittleEndian.PutUint32(buf[offOrder:], uint32(h.Order))
	// validate bounds ElemSize to maxElemSize, which fits in uint32.
	binary.LittleEndian.PutUint32(buf[offElemSize:], uint32(h.ElemSize))
	binary.LittleEndian.PutUint64(buf[offCount:], h.Count)
	binary.LittleEndian.PutUint32(buf[offPayloadCRC32C:], crc32.Checksum(payload, castagnoli))

	copy(buf[HeaderSize:], payload)

	binary.LittleEndian.PutUint32(buf[offHeaderCRC32C:], computeHeaderCRC(buf[:HeaderSize]))

	return buf, nil
}

// Decode validates the header at the start of data and returns it along with
// the payload that follows.
//
// The payload is a sub-slice of data. Decode does not check that the payload
// is long enough for Count records; [recview.Parse] does that when a view is
// built, and reports [recview.ErrElementOverflow].
//
// Possible errors: [ErrCorrupt], [ErrIncompatible].
func Decode(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, fmt.Errorf("file is %d bytes, smaller than the %d byte header: %w", len(data), HeaderSize, ErrCorrupt)
	}

	hdr := data[:HeaderSize]

	if !bytes.Equal(hdr[offMagic:offMagic+4], rec1Magic[:]) {
		return Header{}, nil, fmt.Errorf("bad magic %q: %w", hdr[offMagic:offMagic+4], ErrCorrupt)
	}

	stored := binary.LittleEndian.Uint32(hdr[offHeaderCRC32C:])
	if computed := computeHeaderCRC(hdr); stored != computed {
		return Header{}, nil, fmt.Errorf("header crc mismatch (stored %08x, computed %08x): %w", stored, computed, ErrCorrupt)
	}

	if hasReservedBytesSet(hdr) {
		return Header{}, nil, fmt.Errorf("reserved header bytes are non-zero: %w", ErrCorrupt)
	}

	if v := binary.LittleEndian.Uint32(hdr[offVersion:]); v != rec1Version {
		return Header{}, nil, fmt.Errorf("version %d, want %d: %w", v, rec1Version, ErrIncompatible)
	}

	if hs := binary.LittleEndian.Uint32(hdr[offHeaderSize:]); hs != HeaderSize {
		return Header{}, nil, fmt.Errorf("header size %d, want %d: %w", hs, HeaderSize, ErrIncompatible)
	}

	kind := Kind(binary.LittleEndian.Uint32(hdr[offKind:]))
	if !kind.Valid() {
		return Header{}, nil, fmt.Errorf("unknown kind %d: %w", uint32(kind), ErrIncompatible)
	}

	order := binary.LittleEndian.Uint32(hdr[offOrder:])
	if order > uint32(recview.BigEndian) {
		return Header{}, nil, fmt.Errorf("unknown byte order %d: %w", order, ErrIncompatible)
	}

	elemSize := binary.LittleEndian.Uint32(hdr[offElemSize:])
	if elemSize > maxElemSize {
		return Header{}, nil, fmt.Errorf("element size %d exceeds max %d: %w", elemSize, maxElemSize, ErrCorrupt)
	}

	h := Header{
		Kind:       kind,
		Order:      recview.Endian(order),
		ElemSize:   int(elemSize),
		Count:      binary.LittleEndian.Uint64(hdr[offCount:]),
		PayloadCRC: binary.LittleEndian.Uint32(hdr[offPayloadCRC32C:]),
	}

	if err := h.validate(); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return h, data[HeaderSize:], nil
}

// VerifyPayload checks payload against the CRC stored in h.
//
// Only the first Count * ElemSize bytes are covered; trailing bytes are ignored.
func VerifyPayload(h Header, payload []byte) error {
	size, err := h.PayloadSize()
	if err != nil {
		return err
	}

	if len(payload) < size {
		return fmt.Errorf("payload is %d bytes, header describes %d: %w", len(payload), size, ErrCorrupt)
	}

	if got := crc32.Checksum(payload[:size], castagnoli); got != h.PayloadCRC {
		return fmt.Errorf("payload crc mismatch (stored %08x, computed %08x): %w", h.PayloadCRC, got, ErrCorrupt)
	}

	return nil
}

// computeHeaderCRC calculates the CRC32-C of a header with the header crc
// field treated as zero.
func computeHeaderCRC(hdr []byte) uint32 {
	var tmp [HeaderSize]byte

	copy(tmp[:], hdr)
	clear(tmp[offHeaderCRC32C : offHeaderCRC32C+4])

	return crc32.Checksum(tmp[:], castagnoli)
}

func hasReservedBytesSet(hdr []byte) bool {
	for _, b := range hdr[offReservedStart:HeaderSize] {
		if b != 0 {
			return true
		}
	}

	return false
}
