package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSimpleCommand(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo hello world\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Assigns, qt.HasLen, 0)
	c.Assert(cmd.Words, qt.HasLen, 3)
	for i, want := range []string{"echo", "hello", "world"} {
		got, ok := wordLiteralText(cmd.Words[i])
		c.Assert(ok, qt.IsTrue)
		c.Assert(got, qt.Equals, want)
	}
}

func TestLeadingAssigns(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "FOO=bar BAZ=qux baz\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Assigns, qt.HasLen, 2)
	c.Assert(cmd.Assigns[0].Name, qt.Equals, "FOO")
	c.Assert(cmd.Assigns[1].Name, qt.Equals, "BAZ")
	c.Assert(cmd.Words, qt.HasLen, 1)
	got, _ := wordLiteralText(cmd.Words[0])
	c.Assert(got, qt.Equals, "baz")
}

func TestBareAssignNoCommand(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "FOO=bar\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Assigns, qt.HasLen, 1)
	c.Assert(cmd.Words, qt.HasLen, 0)
}

func TestArrayAssign(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "FOO=(a b c)\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Assigns, qt.HasLen, 1)
	arr, ok := cmd.Assigns[0].Value.(ArrayAssign)
	c.Assert(ok, qt.IsTrue)
	c.Assert(arr.Words, qt.HasLen, 3)
}

func TestPipeline(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "a | b | c\n")
	c.Assert(l.Items, qt.HasLen, 1)
	pipe := l.Items[0].AndOr.First
	c.Assert(pipe.Negation, qt.IsFalse)
	c.Assert(pipe.Commands, qt.HasLen, 3)
}

func TestNegatedPipeline(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "! grep foo\n")
	pipe := l.Items[0].AndOr.First
	c.Assert(pipe.Negation, qt.IsTrue)
	c.Assert(pipe.Commands, qt.HasLen, 1)
}

func TestDoubleNegationRejected(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "! ! true\n")
	c.Assert(pe.Kind, qt.Equals, ErrDoubleNegation)
}

func TestBangAfterBarRejected(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "foo | ! bar\n")
	c.Assert(pe.Kind, qt.Equals, ErrBangAfterBar)
}

func TestAndOrList(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "a && b || c\n")
	andOr := l.Items[0].AndOr
	c.Assert(andOr.Rest, qt.HasLen, 2)
	c.Assert(andOr.Rest[0].Op, qt.Equals, AndThen)
	c.Assert(andOr.Rest[1].Op, qt.Equals, OrElse)
}

func TestAsyncItem(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "sleep 1 &\n")
	c.Assert(l.Items[0].Async, qt.IsTrue)
}

func TestGroupingRequiresBody(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "{ }\n")
	c.Assert(pe.Kind, qt.Equals, ErrEmptyGrouping)

	l := mustParse(t, "{ :; }\n")
	cmd, ok := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	c.Assert(ok, qt.IsTrue)
	_, ok = cmd.Command.(*Grouping)
	c.Assert(ok, qt.IsTrue)
}

func TestSubshellRequiresBody(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "()\n")
	c.Assert(pe.Kind, qt.Equals, ErrEmptySubshell)
}

func TestForClauseWithIn(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "for i in 1 2 3; do echo $i; done\n")
	full := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	fc, ok := full.Command.(*ForClause)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fc.HasIn, qt.IsTrue)
	c.Assert(fc.Values, qt.HasLen, 3)
}

func TestForClauseWithoutIn(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "for i; do echo $i; done\n")
	full := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	fc := full.Command.(*ForClause)
	c.Assert(fc.HasIn, qt.IsFalse)
	c.Assert(fc.Values, qt.HasLen, 0)
}

func TestIfElifElse(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "if a; then b; elif c; then d; else e; fi\n")
	full := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	ifc, ok := full.Command.(*IfClause)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ifc.Elifs, qt.HasLen, 1)
	c.Assert(ifc.Else, qt.IsNotNil)
}

func TestCaseClauseTerminators(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "case $x in a) f;; b) g;& c) h;;& esac\n")
	full := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	cc, ok := full.Command.(*CaseClause)
	c.Assert(ok, qt.IsTrue)
	c.Assert(cc.Items, qt.HasLen, 3)
	c.Assert(cc.Items[0].Terminator, qt.Equals, CaseBreak)
	c.Assert(cc.Items[1].Terminator, qt.Equals, CaseFallthru)
	c.Assert(cc.Items[2].Terminator, qt.Equals, CaseContinue)
}

func TestShortFunctionDefinition(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "greet() { echo hi; }\n")
	fd, ok := l.Items[0].AndOr.First.Commands[0].(*FunctionDefinition)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fd.HasKeyword, qt.IsFalse)
	name, _ := wordLiteralText(fd.Name)
	c.Assert(name, qt.Equals, "greet")
}

func TestLongFunctionDefinition(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "function greet { echo hi; }\n")
	fd, ok := l.Items[0].AndOr.First.Commands[0].(*FunctionDefinition)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fd.HasKeyword, qt.IsTrue)
}

func TestRedirections(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cmd > out 2>&1 < in\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Redirs, qt.HasLen, 3)
	c.Assert(cmd.Redirs[0].Body.(NormalRedir).Op, qt.Equals, RedirOut)
	c.Assert(*cmd.Redirs[1].FD, qt.Equals, 2)
	c.Assert(cmd.Redirs[1].Body.(NormalRedir).Op, qt.Equals, RedirDupOut)
	c.Assert(cmd.Redirs[2].Body.(NormalRedir).Op, qt.Equals, RedirIn)
}

func TestTrailingTokenErrors(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	cases := map[string]ErrorKind{
		"}\n":    ErrUnopenedGrouping,
		"done\n": ErrUnopenedLoop,
		")\n":    ErrUnopenedSubshell,
		"esac\n": ErrUnopenedCase,
		"in\n":   ErrInAsCommandName,
	}
	for in, want := range cases {
		pe := mustFailParse(t, in)
		c.Assert(pe.Kind, qt.Equals, want, qt.Commentf("input %q", in))
	}
}

func TestLocationSpansContainChildren(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "if true; then echo hi; fi\n")
	full := l.Items[0].AndOr.First.Commands[0].(*FullCompoundCommand)
	outer := full.SourceSpan()
	ifc := full.Command.(*IfClause)
	c.Assert(outer.Contains(ifc.Cond.SourceSpan()), qt.IsTrue)
	c.Assert(outer.Contains(ifc.Body.SourceSpan()), qt.IsTrue)
}

func TestLineContinuationTransparentToWords(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "ec\\\nho hi\\\nthere\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 2)
	got0, _ := wordLiteralText(cmd.Words[0])
	got1, _ := wordLiteralText(cmd.Words[1])
	c.Assert(got0, qt.Equals, "echo")
	c.Assert(got1, qt.Equals, "hithere")
}

func TestOperatorMaximalMunch(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "a >> b\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Redirs[0].Body.(NormalRedir).Op, qt.Equals, RedirAppend)

	l = mustParse(t, "a >>| b\n")
	cmd = onlyCommand(t, l)
	c.Assert(cmd.Redirs[0].Body.(NormalRedir).Op, qt.Equals, RedirAppendClobber)
}

func TestIoNumberReclassification(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cmd 2> err\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 1)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
	c.Assert(*cmd.Redirs[0].FD, qt.Equals, 2)

	// A bare digit with no following redirection is an ordinary word.
	l = mustParse(t, "echo 2\n")
	cmd = onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 2)
}

func TestCommandSubstitution(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo $(echo hi)\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 2)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	cs, ok := unq.Unit.(*CommandSubst)
	c.Assert(ok, qt.IsTrue)
	inner := onlyCommand(t, cs.Content)
	got, _ := wordLiteralText(inner.Words[0])
	c.Assert(got, qt.Equals, "echo")
}

func TestArithmeticExpansion(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo $((1+2))\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	ar, ok := unq.Unit.(*Arith)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ar.Content.Units, qt.Not(qt.HasLen), 0)
}

func TestNestedSubshellInsideCommandSubst(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo $( (true) )\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	cs, ok := unq.Unit.(*CommandSubst)
	c.Assert(ok, qt.IsTrue)
	c.Assert(cs.Content.Items, qt.HasLen, 1)
}
