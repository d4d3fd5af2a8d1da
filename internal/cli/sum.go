package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview/parallel"
)

var errNotNumeric = errors.New("kind is not numeric")

// SumCmd returns the sum command.
func SumCmd(cfg *config.Config, log logrus.FieldLogger) *Command {
	fs := flag.NewFlagSet("sum", flag.ContinueOnError)
	fs.Int("chunk", 0, "Records folded per leaf, defaults to config min_chunk")

	return &Command{
		Flags: fs,
		Usage: "sum [flags] <file>",
		Short: "Sum numeric records in parallel",
		Long: "Fold every record of a numeric file in parallel and print count, sum, min,\n" +
			"max and mean. Integer sums wrap modulo 2^64.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			opts := cfg.ParallelOptions()
			if fs.Changed("chunk") {
				opts.MinChunk, _ = fs.GetInt("chunk")
				if opts.MinChunk < 1 {
					return errors.New("--chunk must be positive")
				}
			}

			return withRecords(cfg, args[0], func(f *recfile.File, view recordView) error {
				if !f.Header().Kind.Numeric() {
					return fmt.Errorf("%w: %s", errNotNumeric, f.Header().Kind)
				}

				start := time.Now()

				st, err := sumRecords(ctx, view, opts)
				if err != nil {
					return err
				}

				leaves := parallel.Leaves(view, opts.MinChunk)

				log.WithFields(logrus.Fields{
					"leaves":  len(leaves),
					"elapsed": time.Since(start),
				}).Debug("sum finished")

				io.Printf("count=%d\n", st.n)
				io.Println("sum=" + st.sum(f.Header().Kind))

				if st.n > 0 {
					io.Println("min=" + st.min.String())
					io.Println("max=" + st.max.String())
					io.Println("mean=" + strconv.FormatFloat(st.mean(f.Header().Kind), 'g', -1, 64))
				}

				io.Printf("leaves=%d\n", len(leaves))

				return nil
			})
		},
	}
}

// stats accumulates one contiguous range of numeric records.
type stats struct {
	n    int
	usum uint64
	isum int64
	fsum float64
	min  recfile.Value
	max  recfile.Value
}

func sumRecords(ctx context.Context, view recordView, opts parallel.Options) (stats, error) {
	return parallel.Reduce(ctx, view, opts,
		func() stats { return stats{} },
		func(acc stats, _ int, v recfile.Value) stats {
			return acc.combine(stats{
				n:    1,
				usum: v.Uint(),
				isum: v.Int(),
				fsum: v.Float(),
				min:  v,
				max:  v,
			})
		},
		func(left, right stats) stats { return left.combine(right) },
	)
}

func (s stats) combine(o stats) stats {
	if s.n == 0 {
		return o
	}

	if o.n == 0 {
		return s
	}

	out := stats{
		n:    s.n + o.n,
		usum: s.usum + o.usum,
		isum: s.isum + o.isum,
		fsum: s.fsum + o.fsum,
		min:  s.min,
		max:  s.max,
	}

	if less(o.min, out.min) {
		out.min = o.min
	}

	if less(out.max, o.max) {
		out.max = o.max
	}

	return out
}

func (s stats) sum(kind recfile.Kind) string {
	switch {
	case kind.Unsigned():
		return strconv.FormatUint(s.usum, 10)
	case kind.Signed():
		return strconv.FormatInt(s.isum, 10)
	default:
		return strconv.FormatFloat(s.fsum, 'g', -1, 64)
	}
}

func (s stats) mean(kind recfile.Kind) float64 {
	switch {
	case kind.Unsigned():
		return float64(s.usum) / float64(s.n)
	case kind.Signed():
		return float64(s.isum) / float64(s.n)
	default:
		return s.fsum / float64(s.n)
	}
}

// less orders two numeric values of the same kind.
func less(a, b recfile.Value) bool {
	switch {
	case a.Kind.Unsigned():
		return a.Uint() < b.Uint()
	case a.Kind.Signed():
		return a.Int() < b.Int()
	default:
		return a.Float() < b.Float()
	}
}
