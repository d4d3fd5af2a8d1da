package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
)

// InfoCmd returns the info command.
func InfoCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("info", flag.ContinueOnError),
		Usage: "info <file>",
		Short: "Show record file header",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			return withRecords(cfg, args[0], func(f *recfile.File, view recordView) error {
				size, err := f.Size()
				if err != nil {
					return err
				}

				h := f.Header()

				io.Println("path=" + f.Path())
				io.Println("kind=" + h.Kind.String())
				io.Println("order=" + h.Order.String())
				io.Printf("elem_size=%d\n", h.ElemSize)
				io.Printf("count=%d\n", view.Len())
				io.Printf("file_bytes=%d\n", size)
				io.Printf("payload_crc=0x%08x\n", h.PayloadCRC)

				return nil
			})
		},
	}
}
