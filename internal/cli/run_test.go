package cli_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/recview/internal/cli"
)

func Test_Run_Prints_Usage_When_No_Command_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: recview [options] <command> [args]")
	cli.AssertContains(t, stdout, "--workers")

	for _, name := range []string{"gen", "info", "get", "dump", "sum", "verify", "export", "shell", "print-config"} {
		cli.AssertContains(t, stdout, "  "+name)
	}
}

func Test_Run_Prints_Usage_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustRun("--help"), "Commands:")
	cli.AssertContains(t, c.MustRun("-h"), "Commands:")
}

func Test_Run_Fails_When_Command_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "error: unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Usage: recview")
}

func Test_Run_Fails_When_Global_Flag_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("--bogus", "info")

	cli.AssertContains(t, stderr, "error: unknown flag: --bogus")
}

func Test_Run_Prints_Command_Help_When_Command_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("dump", "--help")

	cli.AssertContains(t, stdout, "Usage: recview dump [flags] <file>")
	cli.AssertContains(t, stdout, "--limit")
	cli.AssertContains(t, stdout, "--offset")
}

func Test_Run_Fails_When_Command_Flag_Is_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.Run("dump", "--limit", "many", "x.rec")

	assert.Equal(t, 1, code)
	cli.AssertContains(t, stderr, "error: invalid argument")
	cli.AssertContains(t, stdout, "Usage: recview dump")
}

func Test_Run_Logs_Debug_Lines_When_Verbose(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.Run("-v", "gen", "-n", "3", "a.rec")
	assert.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stderr, "level=debug")
	cli.AssertContains(t, stderr, "command=gen")

	_, stderr, code = c.Run("gen", "-n", "3", "b.rec")
	assert.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)
}

func Test_Run_Completes_When_Signal_Channel_Stays_Idle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sigCh := make(chan os.Signal, 1)

	var out, errOut bytes.Buffer

	code := cli.Run(strings.NewReader(""), &out, &errOut,
		[]string{"recview", "-C", dir, "gen", "-n", "5", "x.rec"}, map[string]string{}, sigCh)

	assert.Equal(t, 0, code, errOut.String())
	assert.Empty(t, errOut.String())
}

func Test_Run_Stops_Sum_When_Signal_Arrives(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("gen", "-k", "u8", "-n", "1000000", "big.rec")

	// Delivered before the fold starts; a one-record chunk checks for
	// cancellation at every node, so the fold cannot outrun it.
	sigCh := make(chan os.Signal, 1)
	sigCh <- syscall.SIGTERM

	var out, errOut bytes.Buffer

	code := cli.Run(strings.NewReader(""), &out, &errOut,
		[]string{"recview", "-C", c.Dir, "-j", "1", "sum", "--chunk", "1", "big.rec"}, c.Env, sigCh)

	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
	cli.AssertContains(t, errOut.String(), "received terminated, stopping")
	cli.AssertContains(t, errOut.String(), "error: "+context.Canceled.Error())
}
