package cli

import (
	"context"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
)

// GetCmd returns the get command.
func GetCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("get", flag.ContinueOnError),
		Usage: "get <file> <idx>...",
		Short: "Print records by index",
		Long: "Print the record at each index as \"<idx>\\t<value>\".\n" +
			"Indexes outside the file print \"absent\".",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 2, "file and at least one index"); err != nil {
				return err
			}

			indexes := make([]int, 0, len(args)-1)

			for _, arg := range args[1:] {
				idx, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", arg, err)
				}

				indexes = append(indexes, idx)
			}

			return withRecords(cfg, args[0], func(_ *recfile.File, view recordView) error {
				return printRecords(io, view, indexes)
			})
		},
	}
}

func printRecords(io *IO, view recordView, indexes []int) error {
	for _, idx := range indexes {
		v, ok, err := view.Get(idx)
		if err != nil {
			return err
		}

		if !ok {
			io.Printf("%d\tabsent\n", idx)

			continue
		}

		io.Printf("%d\t%s\n", idx, v)
	}

	return nil
}
