package recfile

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/recview/pkg/recview"
)

func mustEncode(t *testing.T, h Header, payload []byte) []byte {
	t.Helper()

	image, err := Encode(h, payload)
	require.NoError(t, err)

	return image
}

func Test_Encode_Decode_Preserves_Header_When_Given_Valid_Input(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindU32, recview.BigEndian, 0, 3)
	require.NoError(t, err)

	payload := []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}
	image := mustEncode(t, h, payload)

	require.Len(t, image, HeaderSize+len(payload))
	assert.Equal(t, "REC1", string(image[:4]))

	got, gotPayload, err := Decode(image)
	require.NoError(t, err)

	want := h
	want.PayloadCRC = got.PayloadCRC

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, payload, gotPayload)
	require.NoError(t, VerifyPayload(got, gotPayload))
}

func Test_NewHeader_Rejects_Invalid_Combinations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     Kind
		order    recview.Endian
		elemSize int
	}{
		{name: "invalid kind", kind: KindInvalid, order: recview.LittleEndian},
		{name: "unknown kind", kind: Kind(99), order: recview.LittleEndian},
		{name: "unknown order", kind: KindU8, order: recview.Endian(7)},
		{name: "raw without size", kind: KindRaw, order: recview.LittleEndian, elemSize: 0},
		{name: "raw too large", kind: KindRaw, order: recview.LittleEndian, elemSize: maxElemSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewHeader(tt.kind, tt.order, tt.elemSize, 1)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func Test_NewHeader_Ignores_ElemSize_When_Kind_Is_Fixed(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindUUID, recview.LittleEndian, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 16, h.ElemSize)
}

func Test_Encode_Rejects_Payload_When_Length_Does_Not_Match_Header(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindU16, recview.LittleEndian, 0, 2)
	require.NoError(t, err)

	_, err = Encode(h, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func Test_Decode_Rejects_Damaged_Header_When_Bytes_Modified(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindU8, recview.LittleEndian, 0, 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(image []byte) []byte
		wantErr error
	}{
		{
			name:    "too short",
			mutate:  func(image []byte) []byte { return image[:HeaderSize-1] },
			wantErr: ErrCorrupt,
		},
		{
			name: "bad magic",
			mutate: func(image []byte) []byte {
				image[0] = 'X'

				return image
			},
			wantErr: ErrCorrupt,
		},
		{
			name: "flipped count bit",
			mutate: func(image []byte) []byte {
				image[offCount] ^= 0x01

				return image
			},
			wantErr: ErrCorrupt,
		},
		{
			name: "reserved byte set with fixed crc",
			mutate: func(image []byte) []byte {
				image[offReservedStart] = 1
				return resealHeader(image)
			},
			wantErr: ErrCorrupt,
		},
		{
			name: "future version",
			mutate: func(image []byte) []byte {
				binary.LittleEndian.PutUint32(image[offVersion:], 2)
				return resealHeader(image)
			},
			wantErr: ErrIncompatible,
		},
		{
			name: "unknown kind",
			mutate: func(image []byte) []byte {
				binary.LittleEndian.PutUint32(image[offKind:], 200)
				return resealHeader(image)
			},
			wantErr: ErrIncompatible,
		},
		{
			name: "element size disagrees with kind",
			mutate: func(image []byte) []byte {
				binary.LittleEndian.PutUint32(image[offElemSize:], 3)
				return resealHeader(image)
			},
			wantErr: ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			image := tt.mutate(mustEncode(t, h, []byte{7, 8}))

			_, _, err := Decode(image)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_VerifyPayload_Detects_Flipped_Byte_When_Payload_Modified(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindU8, recview.LittleEndian, 0, 4)
	require.NoError(t, err)

	image := mustEncode(t, h, []byte{1, 2, 3, 4})
	image[HeaderSize+2] ^= 0xFF

	got, payload, err := Decode(image)
	require.NoError(t, err, "header crc does not cover the payload")
	require.ErrorIs(t, VerifyPayload(got, payload), ErrCorrupt)
	require.ErrorIs(t, VerifyPayload(got, payload[:2]), ErrCorrupt)
}

func Test_Decode_Leaves_Short_Payload_To_View_When_File_Truncated(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(KindU32, recview.LittleEndian, 0, 4)
	require.NoError(t, err)

	image := mustEncode(t, h, make([]byte, 16))

	got, payload, err := Decode(image[:HeaderSize+15])
	require.NoError(t, err)

	_, err = NewView(got, payload)
	require.ErrorIs(t, err, recview.ErrElementOverflow)

	var overflow *recview.ElementOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, recview.ElementOverflowError{Count: 4, ElementSize: 4, SourceLength: 15}, *overflow)
}

func Test_ParseKind_Accepts_All_Listed_Names(t *testing.T) {
	t.Parallel()

	for _, name := range Kinds() {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
		assert.True(t, k.Valid())
	}

	_, err := ParseKind("u128")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func Test_Kinds_Returns_Copy_When_Caller_Modifies_Result(t *testing.T) {
	t.Parallel()

	names := Kinds()
	names[0] = "clobbered"

	assert.Equal(t, "u8", Kinds()[0])
	assert.Equal(t, "u8", KindU8.String())

	k, err := ParseKind("u8")
	require.NoError(t, err)
	assert.Equal(t, KindU8, k)
}

// resealHeader recomputes the header crc after a test mutated header fields.
func resealHeader(image []byte) []byte {
	binary.LittleEndian.PutUint32(image[offHeaderCRC32C:], computeHeaderCRC(image[:HeaderSize]))

	return image
}
