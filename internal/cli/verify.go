package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview/parallel"
)

var errMismatch = errors.New("parallel and sequential decode disagree")

// VerifyCmd returns the verify command.
func VerifyCmd(cfg *config.Config, log logrus.FieldLogger) *Command {
	return &Command{
		Flags: flag.NewFlagSet("verify", flag.ContinueOnError),
		Usage: "verify <file>",
		Short: "Check payload checksum and decoding",
		Long: "Check the payload CRC, decode every record sequentially and in parallel,\n" +
			"and compare the two results record by record.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			return withRecords(cfg, args[0], func(f *recfile.File, view recordView) error {
				if err := f.VerifyPayload(); err != nil {
					return err
				}

				log.Debug("payload checksum ok")

				seq, err := view.Collect()
				if err != nil {
					return err
				}

				par, err := parallel.Collect(ctx, view, cfg.ParallelOptions())
				if err != nil {
					return err
				}

				if err := compareValues(seq, par); err != nil {
					return err
				}

				io.Printf("ok: %d records, payload_crc=0x%08x\n", len(seq), f.Header().PayloadCRC)

				return nil
			})
		},
	}
}

func compareValues(seq, par []recfile.Value) error {
	if len(seq) != len(par) {
		return fmt.Errorf("%w: %d sequential records, %d parallel", errMismatch, len(seq), len(par))
	}

	for i := range seq {
		if seq[i].Kind != par[i].Kind || seq[i].String() != par[i].String() {
			return fmt.Errorf("%w at index %d: %s != %s", errMismatch, i, seq[i], par[i])
		}
	}

	return nil
}
