package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/recview/internal/cli"
)

func Test_IO_Prints_Warning_Before_And_After_Output_When_Warned(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Warn("offset 9 is past the last record", "file has 3 records")
	o.Println("0\t1")
	o.Printf("%d\t%d\n", 1, 2)

	assert.Equal(t, 1, o.Finish())
	assert.Equal(t, "0\t1\n1\t2\n", out.String())
	assert.Equal(t, 2, strings.Count(errOut.String(), "warning: offset 9 is past the last record: file has 3 records\n"))
}

func Test_IO_Returns_Zero_When_Nothing_Was_Warned(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Println("count=0")
	o.ErrPrintln("note")

	assert.Equal(t, 0, o.Finish())
	assert.Equal(t, "note\n", errOut.String())
}
