package syntax

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

// mustParse parses src as a single command line and fails the test on
// any error, including a nil (empty) result.
func mustParse(t *testing.T, src string, opts ...ParserOption) *List {
	t.Helper()
	c := qt.New(t)
	p := NewParser(NewStringInput(src), opts...)
	list, err := p.ParseCommandLine(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.IsNotNil)
	return list
}

// mustFailParse parses src and requires an error, returning it.
func mustFailParse(t *testing.T, src string, opts ...ParserOption) *ParseError {
	t.Helper()
	c := qt.New(t)
	p := NewParser(NewStringInput(src), opts...)
	_, err := p.ParseCommandLine(context.Background())
	c.Assert(err, qt.IsNotNil)
	pe, ok := err.(*ParseError)
	c.Assert(ok, qt.IsTrue, qt.Commentf("error was %#v", err))
	return pe
}

// onlyCommand digs out the single SimpleCommand of a one-item,
// one-pipeline list, failing the test if the shape doesn't match.
func onlyCommand(t *testing.T, l *List) *SimpleCommand {
	t.Helper()
	c := qt.New(t)
	c.Assert(l.Items, qt.HasLen, 1)
	c.Assert(l.Items[0].AndOr.Rest, qt.HasLen, 0)
	pipe := l.Items[0].AndOr.First
	c.Assert(pipe.Commands, qt.HasLen, 1)
	cmd, ok := pipe.Commands[0].(*SimpleCommand)
	c.Assert(ok, qt.IsTrue, qt.Commentf("command was %#v", pipe.Commands[0]))
	return cmd
}

// wordLiteral concatenates the literal text of every Unquoted Literal
// unit in w, ignoring any expansions; used to read back plain words in
// assertions without hand-walking the unit list each time.
func wordLiteral(w *Word) string {
	lit, _ := wordLiteralText(w)
	return lit
}
