package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
)

const defaultLimit = 100

// DumpCmd returns the dump command.
func DumpCmd(cfg *config.Config) *Command {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.Int("offset", 0, "Skip first N records")
	fs.Int("limit", defaultLimit, "Maximum records to show, 0 for all")

	return &Command{
		Flags: fs,
		Usage: "dump [flags] <file>",
		Short: "Print records in order",
		Long:  "Print records as \"<idx>\\t<value>\", one per line, in index order.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			offset, _ := fs.GetInt("offset")
			if offset < 0 {
				return errors.New("--offset must be non-negative")
			}

			limit, _ := fs.GetInt("limit")
			if limit < 0 {
				return errors.New("--limit must be non-negative")
			}

			return withRecords(cfg, args[0], func(_ *recfile.File, view recordView) error {
				return dumpRecords(ctx, io, view, offset, limit)
			})
		},
	}
}

func dumpRecords(ctx context.Context, io *IO, view recordView, offset, limit int) error {
	if offset > view.Len() || (offset == view.Len() && offset > 0) {
		io.Warn(fmt.Sprintf("offset %d is past the last record", offset), fmt.Sprintf("file has %d records", view.Len()))

		return nil
	}

	hi := view.Len()
	if limit > 0 && limit < hi-offset {
		hi = offset + limit
	}

	p := view.Range(offset, hi)

	for idx := offset; ; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, ok, err := p.Next()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		io.Printf("%d\t%s\n", idx, v)
	}
}
