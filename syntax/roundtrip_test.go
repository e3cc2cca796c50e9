package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// TestPrintRoundTrip checks that printing a parsed List, reparsing the
// result and printing it again gives the same text, for inputs simple
// enough that whitespace-insensitive comparison isn't needed.
func TestPrintRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []string{
		"echo hello world\n",
		"FOO=bar baz\n",
		"FOO=(a b c)\n",
		"a | b | c\n",
		"! grep foo\n",
		"a && b || c\n",
		"sleep 1 &\n",
		"{ :; }\n",
		"(true)\n",
		"for i in 1 2 3; do echo $i; done\n",
		"if a; then b; elif c; then d; else e; fi\n",
		"case $x in a) f;; b) g;& c) h;;& esac\n",
		"greet() { echo hi; }\n",
		"cmd > out 2>&1 < in\n",
		"cmd >>| out\n",
		"echo \"a $x b\"\n",
		"echo ${foo:-bar}\n",
		"echo $(echo hi)\n",
		"echo ~user/bin\n",
	}
	for _, src := range cases {
		src := src
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			c := qt.New(t)
			l := mustParse(t, src)
			printed := String(l)
			c.Assert(printed, qt.Not(qt.Equals), "")
			reparsed := mustParse(t, printed+"\n")
			c.Assert(String(reparsed), qt.Equals, printed)
		})
	}
}

func TestWordStringerUsesPrinter(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo \"$x\"\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words[1].String(), qt.Equals, `"$x"`)
}
