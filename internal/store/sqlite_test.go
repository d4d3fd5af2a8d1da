package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/recview/internal/store"
	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview"
)

func buildView(t *testing.T, b *recfile.Builder) (recfile.Header, store.Records) {
	t.Helper()

	image, err := b.Bytes()
	require.NoError(t, err)

	h, payload, err := recfile.Decode(image)
	require.NoError(t, err)

	view, err := recfile.NewView(h, payload)
	require.NoError(t, err)

	return h, view
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func Test_Export_Writes_Rows_And_Catalog_When_Records_Are_Valid(t *testing.T) {
	t.Parallel()

	b, err := recfile.NewBuilder(recfile.KindI32, recview.BigEndian, 0)
	require.NoError(t, err)

	for _, v := range []int64{-3, 0, 42} {
		require.NoError(t, b.AppendInt(v))
	}

	h, view := buildView(t, b)
	path := filepath.Join(t.TempDir(), "out.db")

	n, err := store.Export(context.Background(), path, "nums", h, view)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	db := openDB(t, path)

	rows, err := db.Query(`SELECT idx, value FROM nums ORDER BY idx`)
	require.NoError(t, err)

	defer func() { _ = rows.Close() }()

	var got []int64

	for rows.Next() {
		var idx, value int64

		require.NoError(t, rows.Scan(&idx, &value))
		assert.Equal(t, int64(len(got)), idx)

		got = append(got, value)
	}

	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{-3, 0, 42}, got)

	var kind, order string

	var count int

	err = db.QueryRow(`SELECT kind, byte_order, count FROM recview_tables WHERE name = 'nums'`).Scan(&kind, &order, &count)
	require.NoError(t, err)
	assert.Equal(t, "i32", kind)
	assert.Equal(t, "big", order)
	assert.Equal(t, 3, count)
}

func Test_Export_Replaces_Table_When_Exported_Twice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.db")

	for _, n := range []int{5, 2} {
		b, err := recfile.NewBuilder(recfile.KindUUID, recview.LittleEndian, 0)
		require.NoError(t, err)

		for range n {
			require.NoError(t, b.AppendUUID(uuid.New()))
		}

		h, view := buildView(t, b)

		_, err = store.Export(context.Background(), path, "ids", h, view)
		require.NoError(t, err)
	}

	var count int

	require.NoError(t, openDB(t, path).QueryRow(`SELECT COUNT(*) FROM ids`).Scan(&count))
	assert.Equal(t, 2, count)
}

func Test_Export_Stores_U64_As_Text_When_High_Bit_Is_Set(t *testing.T) {
	t.Parallel()

	b, err := recfile.NewBuilder(recfile.KindU64, recview.LittleEndian, 0)
	require.NoError(t, err)
	require.NoError(t, b.AppendUint(1<<63+5))

	h, view := buildView(t, b)
	path := filepath.Join(t.TempDir(), "out.db")

	_, err = store.Export(context.Background(), path, "big", h, view)
	require.NoError(t, err)

	var value string

	require.NoError(t, openDB(t, path).QueryRow(`SELECT value FROM big WHERE idx = 0`).Scan(&value))
	assert.Equal(t, "9223372036854775813", value)
}

func Test_Export_Returns_Error_When_Table_Name_Is_Invalid(t *testing.T) {
	t.Parallel()

	b, err := recfile.NewBuilder(recfile.KindU8, recview.LittleEndian, 0)
	require.NoError(t, err)

	h, view := buildView(t, b)
	path := filepath.Join(t.TempDir(), "out.db")

	for _, name := range []string{"", "1abc", "a;b", `x"y`, "recview_tables"} {
		_, err := store.Export(context.Background(), path, name, h, view)
		require.ErrorIs(t, err, store.ErrInvalidTable, name)
	}
}

func Test_Export_Rolls_Back_When_A_Record_Fails_To_Decode(t *testing.T) {
	t.Parallel()

	payload := []byte{1, 0, 9}

	h, err := recfile.NewHeader(recfile.KindBool, recview.LittleEndian, 0, uint64(len(payload)))
	require.NoError(t, err)

	view, err := recfile.NewView(h, payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.db")

	_, err = store.Export(context.Background(), path, "flags", h, view)
	require.ErrorIs(t, err, recview.ErrDecode)

	var count int

	require.NoError(t, openDB(t, path).QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE name = 'flags'`).Scan(&count))
	assert.Equal(t, 0, count)
}
