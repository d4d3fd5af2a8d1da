package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recview/internal/config"
)

var (
	errMissingArg     = errors.New("missing argument")
	errUnknownCommand = errors.New("unknown command")
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. When it delivers a signal the command context is
// cancelled, which stops parallel folds at their next leaf.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("recview", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	verbose := globals.BoolP("verbose", "v", false, "Enable debug logging")
	workers := globals.IntP("workers", "j", 0, "Parallel workers, 0 means one per CPU")
	help := globals.BoolP("help", "h", false, "Show help")

	cfg := &config.Config{}

	log := logrus.New()
	log.SetOutput(errOut)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cmds := commands(cfg, log, stdin)

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, cmds)

		return 1
	}

	rest := globals.Args()
	if *help || len(rest) == 0 {
		printUsage(out, globals, cmds)

		return 0
	}

	input := config.LoadInput{WorkDir: *workDir, ConfigPath: *configPath, Env: env}
	if globals.Changed("workers") {
		input.Overrides.Workers = workers
	}

	if *verbose {
		input.Overrides.LogLevel = logrus.DebugLevel.String()
	}

	loaded, err := config.Load(input)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	*cfg = loaded
	log.SetLevel(cfg.Level())

	var cmd *Command

	for _, c := range cmds {
		if c.Name() == rest[0] {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, rest[0]))
		printUsage(errOut, globals, cmds)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				log.Warnf("received %s, stopping", sig)
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	log.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"cwd":     cfg.EffectiveCwd,
		"workers": cfg.Workers,
	}).Debug("running")

	return cmd.Run(ctx, NewIO(out, errOut), rest[1:])
}

func commands(cfg *config.Config, log *logrus.Logger, stdin io.Reader) []*Command {
	return []*Command{
		GenCmd(cfg, log),
		InfoCmd(cfg),
		GetCmd(cfg),
		DumpCmd(cfg),
		SumCmd(cfg, log),
		VerifyCmd(cfg, log),
		ExportCmd(cfg, log),
		ShellCmd(cfg, log, stdin),
		PrintConfigCmd(cfg),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, cmds []*Command) {
	fprintln(w, `recview - inspect fixed-width record files

Usage: recview [options] <command> [args]

Options:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})
	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Run 'recview <command> --help' for command flags.")
}
