package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one recview subcommand. Every command takes its record file as
// a positional argument and reads it through [withRecords].
type Command struct {
	// Flags holds the command's own flags, parsed after the command name.
	// Global flags (-C, -c, -v, -j) are consumed by [Run] before this.
	Flags *flag.FlagSet

	// Usage follows "recview" in help output, starting with the command
	// name, e.g. "sum [flags] <file>".
	Usage string

	// Short is the one-line summary listed under "Commands:".
	Short string

	// Long is printed by "recview <cmd> --help". Short is used when empty.
	Long string

	// Exec receives the positional arguments left after flag parsing.
	// ctx is cancelled on SIGINT/SIGTERM.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine formats the command for the usage listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints usage, description and flag defaults to stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: recview", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var buf strings.Builder

	c.Flags.SetOutput(&buf)
	c.Flags.PrintDefaults()

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", buf.String())
}

// Run parses args and executes the command. It returns 0 on success, 1 when
// flags are invalid, Exec fails, or a warning was recorded.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // pflag prints nothing itself

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)
		return 0
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)
		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return o.Finish()
}

// requireArgs fails with errMissingArg when fewer than minimum positional
// arguments were given. what names them in the message, e.g. "file".
func requireArgs(args []string, minimum int, what string) error {
	if len(args) < minimum {
		return fmt.Errorf("%w: %s", errMissingArg, what)
	}

	return nil
}
