package recview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/recview/pkg/recview"
)

func Test_Builder_Builds_Fixed_Width_View_When_Layout_Set(t *testing.T) {
	t.Parallel()

	view, err := recview.NewBuilder[recview.Endian, uint32]().
		Source(be32(4, 5, 1, 5)).
		Count(4).
		Context(recview.BigEndian).
		Layout(recview.Uint32).
		Build()
	require.NoError(t, err)

	got, err := view.Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 5, 1, 5}, got)
}

func Test_Builder_Forwards_Overflow_When_Layout_Count_Too_Large(t *testing.T) {
	t.Parallel()

	_, err := recview.NewBuilder[recview.Endian, uint32]().
		Source(be32(4, 5, 1, 5)).
		Count(5).
		Layout(recview.Uint32).
		Build()
	require.ErrorIs(t, err, recview.ErrElementOverflow)
}

func Test_Builder_Builds_Generic_View_When_Extractor_Set(t *testing.T) {
	t.Parallel()

	// Extractor path performs no bounds check; this extractor never reads the buffer.
	view, err := recview.NewBuilder[int, int]().
		Source(nil).
		Count(3).
		Context(10).
		Extractor(func(src recview.Records[int], idx int) (int, error) { return src.Ctx + idx, nil }).
		Build()
	require.NoError(t, err)

	got, err := view.Collect()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, got)
}

func Test_Builder_Defaults_To_Empty_View_When_Count_Not_Set(t *testing.T) {
	t.Parallel()

	view, err := recview.NewBuilder[recview.Endian, uint64]().
		Source(nil).
		Layout(recview.Uint64).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 0, view.Len())
}

func Test_Builder_Returns_ConstructionError_When_Required_Fields_Missing(t *testing.T) {
	t.Parallel()

	extract := func(src recview.Records[recview.Endian], idx int) (uint8, error) { return src.Data[idx], nil }

	tests := []struct {
		name      string
		builder   *recview.Builder[recview.Endian, uint8]
		wantField string
	}{
		{
			name:      "no source",
			builder:   recview.NewBuilder[recview.Endian, uint8]().Count(1).Layout(recview.Uint8),
			wantField: "source",
		},
		{
			name:      "no extractor or layout",
			builder:   recview.NewBuilder[recview.Endian, uint8]().Source([]byte{1}).Count(1),
			wantField: "extractor",
		},
		{
			name:      "both extractor and layout",
			builder:   recview.NewBuilder[recview.Endian, uint8]().Source([]byte{1}).Layout(recview.Uint8).Extractor(extract),
			wantField: "extractor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.builder.Build()
			require.ErrorIs(t, err, recview.ErrConstruction)

			var constructionErr *recview.ConstructionError
			require.ErrorAs(t, err, &constructionErr)
			assert.Equal(t, tt.wantField, constructionErr.Field)
		})
	}
}

func Test_Builder_Rejects_Negative_Count_When_Extractor_Set(t *testing.T) {
	t.Parallel()

	_, err := recview.NewBuilder[struct{}, byte]().
		Source([]byte{1}).
		Count(-1).
		Extractor(func(src recview.Records[struct{}], idx int) (byte, error) { return src.Data[idx], nil }).
		Build()
	require.ErrorIs(t, err, recview.ErrInvalidInput)
}
