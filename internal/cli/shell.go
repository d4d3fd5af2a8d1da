package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
)

const shellPrompt = "recview> "

var shellCommands = []string{"get", "dump", "sum", "info", "len", "help", "quit"}

// ShellCmd returns the shell command.
func ShellCmd(cfg *config.Config, log logrus.FieldLogger, stdin io.Reader) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell <file>",
		Short: "Browse records interactively",
		Long: "Open an interactive prompt over a record file.\n\n" +
			"Commands: get <idx>..., dump [offset] [limit], sum, info, len, help, quit",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := requireArgs(args, 1, "file"); err != nil {
				return err
			}

			return withRecords(cfg, args[0], func(f *recfile.File, view recordView) error {
				in := newLineReader(stdin, log)
				defer func() { _ = in.Close() }()

				s := &shell{cfg: cfg, io: o, file: f, view: view, in: in}

				return s.run(ctx)
			})
		},
	}
}

// lineReader is the subset of liner.State the shell uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// newLineReader uses liner when attached to the process stdin and a plain
// scanner otherwise, so scripted input works without a terminal.
func newLineReader(stdin io.Reader, log logrus.FieldLogger) lineReader {
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	if stdin != os.Stdin {
		return &scanReader{scanner: bufio.NewScanner(stdin)}
	}

	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(func(line string) []string {
		var out []string

		for _, c := range shellCommands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}

		return out
	})

	r := &linerReader{State: state, history: historyFile()}

	if f, err := os.Open(r.history); err == nil {
		if _, err := state.ReadHistory(f); err != nil {
			log.WithError(err).Debug("cannot read shell history")
		}

		_ = f.Close()
	}

	return r
}

type linerReader struct {
	*liner.State
	history string
}

func (r *linerReader) Close() error {
	if r.history != "" {
		if f, err := os.Create(r.history); err == nil {
			_, _ = r.WriteHistory(f)
			_ = f.Close()
		}
	}

	return r.State.Close()
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".recview_history")
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return r.scanner.Text(), nil
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

type shell struct {
	cfg  *config.Config
	io   *IO
	file *recfile.File
	view recordView
	in   lineReader
}

var errQuit = errors.New("quit")

func (s *shell) run(ctx context.Context) error {
	h := s.file.Header()
	s.io.Printf("%s: %d %s records (%s endian). Type 'help' for commands.\n", s.file.Path(), s.view.Len(), h.Kind, h.Order)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.in.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.in.AppendHistory(line)

		err = s.exec(ctx, strings.Fields(line))
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil {
			// Errors end the current line only.
			s.io.Println("error:", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, fields []string) error {
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		s.io.Println("get <idx>...            print records by index")
		s.io.Println("dump [offset] [limit]   print records in order (default limit 10)")
		s.io.Println("sum                     parallel sum of a numeric file")
		s.io.Println("info                    show header")
		s.io.Println("len                     record count")
		s.io.Println("quit                    leave the shell")
	case "len", "count":
		s.io.Println(s.view.Len())
	case "info":
		h := s.file.Header()
		s.io.Printf("kind=%s order=%s elem_size=%d count=%d payload_crc=0x%08x\n",
			h.Kind, h.Order, h.ElemSize, s.view.Len(), h.PayloadCRC)
	case "get":
		if len(args) == 0 {
			return fmt.Errorf("%w: index", errMissingArg)
		}

		indexes, err := parseInts(args)
		if err != nil {
			return err
		}

		return printRecords(s.io, s.view, indexes)
	case "dump":
		bounds, err := parseInts(args)
		if err != nil {
			return err
		}

		offset, limit := 0, 10
		if len(bounds) > 0 {
			offset = bounds[0]
		}

		if len(bounds) > 1 {
			limit = bounds[1]
		}

		if offset < 0 || limit < 0 {
			return errors.New("offset and limit must be non-negative")
		}

		if offset >= s.view.Len() {
			return fmt.Errorf("offset %d is past the last record (%d records)", offset, s.view.Len())
		}

		return dumpRecords(ctx, s.io, s.view, offset, limit)
	case "sum":
		if !s.file.Header().Kind.Numeric() {
			return fmt.Errorf("%w: %s", errNotNumeric, s.file.Header().Kind)
		}

		st, err := sumRecords(ctx, s.view, s.cfg.ParallelOptions())
		if err != nil {
			return err
		}

		s.io.Printf("count=%d sum=%s\n", st.n, st.sum(s.file.Header().Kind))
	default:
		return fmt.Errorf("%w: %s (type 'help' for commands)", errUnknownCommand, cmd)
	}

	return nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, 0, len(args))

	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}

		out = append(out, n)
	}

	return out, nil
}
