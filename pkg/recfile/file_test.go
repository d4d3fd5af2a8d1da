package recfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview"
	"github.com/calvinalkan/recview/pkg/recview/parallel"
)

func writeU32File(t *testing.T, path string, vals ...uint64) {
	t.Helper()

	b, err := recfile.NewBuilder(recfile.KindU32, recview.BigEndian, 0)
	require.NoError(t, err)

	for _, v := range vals {
		require.NoError(t, b.AppendUint(v))
	}

	require.NoError(t, b.WriteFile(path))
}

func Test_Open_Maps_File_And_Decodes_Records_When_File_Written_By_Builder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nums.rec")
	writeU32File(t, path, 4, 5, 1, 5)

	f, err := recfile.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, path, f.Path())
	assert.Equal(t, recfile.KindU32, f.Header().Kind)
	assert.Equal(t, uint64(4), f.Header().Count)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, recfile.HeaderSize+16, size)

	require.NoError(t, f.VerifyPayload())

	view, err := f.View()
	require.NoError(t, err)
	require.Equal(t, 4, view.Len())

	for idx, want := range []uint64{4, 5, 1, 5} {
		v, found, err := view.Get(idx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, v.Uint())
	}

	_, found, err := view.Get(4)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Open_Returns_Overflow_From_View_When_Payload_Truncated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.rec")
	writeU32File(t, path, 1, 2, 3, 4)

	require.NoError(t, os.Truncate(path, recfile.HeaderSize+10))

	f, err := recfile.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	_, err = f.View()
	require.ErrorIs(t, err, recview.ErrElementOverflow)
	require.ErrorIs(t, f.VerifyPayload(), recfile.ErrCorrupt)
}

func Test_Open_Returns_ErrCorrupt_When_File_Is_Not_REC1(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	short := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(short, []byte("REC1"), 0o600))

	_, err := recfile.Open(short)
	require.ErrorIs(t, err, recfile.ErrCorrupt)

	junk := filepath.Join(dir, "junk")
	require.NoError(t, os.WriteFile(junk, make([]byte, 128), 0o600))

	_, err = recfile.Open(junk)
	require.ErrorIs(t, err, recfile.ErrCorrupt)

	_, err = recfile.Open(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func Test_File_Returns_ErrClosed_When_Used_After_Close(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nums.rec")
	writeU32File(t, path, 1)

	f, err := recfile.Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "second close is a no-op")

	_, err = f.View()
	require.ErrorIs(t, err, recfile.ErrClosed)

	require.ErrorIs(t, f.VerifyPayload(), recfile.ErrClosed)

	_, err = f.Size()
	require.ErrorIs(t, err, recfile.ErrClosed)
}

func Test_File_View_Supports_Parallel_Collect_When_File_Is_Large(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "big.rec")

	b, err := recfile.NewBuilder(recfile.KindI64, recview.LittleEndian, 0)
	require.NoError(t, err)

	for i := range 5000 {
		require.NoError(t, b.AppendInt(int64(i)-2500))
	}

	require.NoError(t, b.WriteFile(path))

	f, err := recfile.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	view, err := f.View()
	require.NoError(t, err)

	vals, err := parallel.Collect(context.Background(), view, parallel.Options{Workers: 4, MinChunk: 64})
	require.NoError(t, err)
	require.Len(t, vals, 5000)

	for i, v := range vals {
		require.Equal(t, int64(i)-2500, v.Int())
	}
}

func Test_Write_Replaces_Existing_File_When_Called_Twice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ids.rec")

	first, err := recfile.NewBuilder(recfile.KindUUID, recview.LittleEndian, 0)
	require.NoError(t, err)
	require.NoError(t, first.AppendUUID(uuid.New()))
	require.NoError(t, first.WriteFile(path))

	id := uuid.New()

	second, err := recfile.NewBuilder(recfile.KindUUID, recview.LittleEndian, 0)
	require.NoError(t, err)
	require.NoError(t, second.AppendUUID(id))
	require.NoError(t, second.AppendUUID(id))
	require.NoError(t, second.WriteFile(path))

	f, err := recfile.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	view, err := f.View()
	require.NoError(t, err)
	require.Equal(t, 2, view.Len())

	v, _, err := view.Get(1)
	require.NoError(t, err)
	assert.Equal(t, id, v.UUID())
	assert.Equal(t, id.String(), v.String())
}
