// Package store exports decoded records into SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview"
)

const schemaVersion = 1

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("invalid table name")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Records is the view type exported by [Export].
type Records = recview.View[recview.Records[recfile.Header], recfile.Value]

// Export writes every record of view into table in the SQLite database at
// path, replacing the table if it exists. The header is recorded in the
// recview_tables catalog. Returns the number of rows written.
//
// The export runs in a single transaction: on error the database is left
// as it was.
func Export(ctx context.Context, path, table string, h recfile.Header, view Records) (int, error) {
	if !tableName.MatchString(table) || table == catalogTable {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	db, err := openSQLite(ctx, path)
	if err != nil {
		return 0, err
	}

	n, err := exportInTxn(ctx, db, table, h, view)

	closeErr := db.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close sqlite: %w", closeErr)
	}

	return n, err
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("open sqlite: path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	return nil
}

const catalogTable = "recview_tables"

func exportInTxn(ctx context.Context, db *sql.DB, table string, h recfile.Header, view Records) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export txn: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	err = createSchema(ctx, tx, table, h.Kind)
	if err != nil {
		return 0, err
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (idx, value) VALUES (?, ?)`, table))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}

	defer func() { _ = insert.Close() }()

	written := 0

	for v, err := range view.All() {
		if err != nil {
			return 0, err
		}

		_, err = insert.ExecContext(ctx, written, sqlValue(v))
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", written, err)
		}

		written++
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recview_tables (name, kind, byte_order, elem_size, count, payload_crc)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			kind = excluded.kind,
			byte_order = excluded.byte_order,
			elem_size = excluded.elem_size,
			count = excluded.count,
			payload_crc = excluded.payload_crc`,
		table, h.Kind.String(), h.Order.String(), h.ElemSize, written, int64(h.PayloadCRC),
	)
	if err != nil {
		return 0, fmt.Errorf("update catalog: %w", err)
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	if err != nil {
		return 0, fmt.Errorf("set user_version: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit export txn: %w", err)
	}

	committed = true

	return written, nil
}

func createSchema(ctx context.Context, tx *sql.Tx, table string, kind recfile.Kind) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recview_tables (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			byte_order TEXT NOT NULL,
			elem_size INTEGER NOT NULL,
			count INTEGER NOT NULL,
			payload_crc INTEGER NOT NULL
		) WITHOUT ROWID`,
		fmt.Sprintf("DROP TABLE IF EXISTS %q", table),
		fmt.Sprintf(`CREATE TABLE %q (
			idx INTEGER PRIMARY KEY,
			value %s NOT NULL
		)`, table, columnType(kind)),
	}

	for _, stmt := range statements {
		_, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// columnType maps a record kind to its SQLite column affinity. u64 is stored
// as text because SQLite integers are signed 64-bit.
func columnType(kind recfile.Kind) string {
	switch {
	case kind == recfile.KindU64, kind == recfile.KindUUID:
		return "TEXT"
	case kind.Unsigned(), kind.Signed(), kind == recfile.KindBool:
		return "INTEGER"
	case kind.Float():
		return "REAL"
	default:
		return "BLOB"
	}
}

func sqlValue(v recfile.Value) any {
	switch {
	case v.Kind == recfile.KindU64:
		return strconv.FormatUint(v.Uint(), 10)
	case v.Kind.Unsigned():
		return int64(v.Uint())
	case v.Kind.Signed():
		return v.Int()
	case v.Kind.Float():
		return v.Float()
	case v.Kind == recfile.KindBool:
		return v.Bool()
	case v.Kind == recfile.KindUUID:
		return v.UUID().String()
	default:
		// Raw bytes alias the mapped file.
		return bytes.Clone(v.Bytes())
	}
}
