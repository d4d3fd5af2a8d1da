package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/internal/store"
	"github.com/calvinalkan/recview/pkg/recfile"
)

// ExportCmd returns the export command.
func ExportCmd(cfg *config.Config, log logrus.FieldLogger) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.String("db", "", "SQLite database path (required)")
	fs.String("table", "", "Table name, defaults to the file name without extension")

	return &Command{
		Flags: fs,
		Usage: "export --db <path> [flags] <file>",
		Short: "Copy records into a SQLite table",
		Long: "Copy every record into a SQLite table (idx, value), replacing the table if it\n" +
			"exists. The header is recorded in the recview_tables catalog.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			dbPath, _ := fs.GetString("db")
			if dbPath == "" {
				return errors.New("--db is required")
			}

			table, _ := fs.GetString("table")
			if table == "" {
				base := filepath.Base(args[0])
				table = strings.TrimSuffix(base, filepath.Ext(base))
			}

			return withRecords(cfg, args[0], func(f *recfile.File, view recordView) error {
				n, err := store.Export(ctx, resolvePath(cfg, dbPath), table, f.Header(), view)
				if err != nil {
					return err
				}

				log.WithFields(logrus.Fields{"db": dbPath, "table": table}).Debug("export committed")

				io.Printf("exported %d records to %s.%s\n", n, dbPath, table)

				return nil
			})
		},
	}
}
