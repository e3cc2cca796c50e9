package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

// locationByIndex compares two Locations by byte index only, since
// Location.Code carries unexported bookkeeping (buf, lineOffset) that
// go-cmp cannot walk without an explicit comparer.
var locationByIndex = cmp.Comparer(func(a, b Location) bool {
	return a.Index == b.Index
})

func TestParseErrorEqual(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	loc := Location{Index: 3}
	a := &ParseError{Kind: ErrExpectedWord, Location: loc}
	b := &ParseError{Kind: ErrExpectedWord, Location: loc}
	c.Assert(a.Equal(b), qt.IsTrue)

	other := &ParseError{Kind: ErrExpectedCommand, Location: loc}
	c.Assert(a.Equal(other), qt.IsFalse)
}

func TestParseErrorIOEqualNeverMatches(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	loc := Location{Index: 1}
	a := newIOError(loc, errUnbalanced)
	b := newIOError(loc, errUnbalanced)
	c.Assert(a.Equal(b), qt.IsFalse)
	c.Assert(a.Equal(a), qt.IsFalse)
}

func TestParseErrorNilEqual(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	var a, b *ParseError
	c.Assert(a.Equal(b), qt.IsTrue)
	c.Assert(a.Equal(&ParseError{}), qt.IsFalse)
}

func TestUnclosedConstructErrors(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	cases := map[string]ErrorKind{
		"echo 'abc":   ErrUnclosedSingleQuote,
		"echo \"abc":  ErrUnclosedDoubleQuote,
		"echo $'abc":  ErrUnclosedDollarSingleQuote,
		"echo ${foo":  ErrUnclosedParam,
		"echo $(echo": ErrUnclosedCommandSubst,
		"echo $((1+2": ErrUnclosedArith,
		"echo `echo":  ErrUnclosedBackquote,
		"FOO=(a b":    ErrUnclosedArrayValue,
		"{ echo hi":   ErrUnclosedGrouping,
		"(echo hi":    ErrUnclosedSubshell,
	}
	for in, want := range cases {
		pe := mustFailParse(t, in)
		c.Assert(pe.Kind, qt.Equals, want, qt.Commentf("input %q", in))
	}
}

func TestRenderIncludesHelpForBangAfterBar(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "foo | ! bar\n")
	d := pe.Render()
	c.Assert(d.Title, qt.Equals, ErrBangAfterBar.String())
	c.Assert(d.Help, qt.Not(qt.Equals), "")
}

func TestRenderSupplementaryIfLocation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "if true; then echo hi\n")
	c.Assert(pe.Kind, qt.Equals, ErrUnclosedIfClause)
	d := pe.Render()
	c.Assert(d.Supplementary, qt.HasLen, 1)
	c.Assert(d.Supplementary[0].Label, qt.Equals, "the if clause was here")
}

func TestRenderIsDeterministicAcrossParses(t *testing.T) {
	t.Parallel()
	const src = "if true; then echo hi\n"
	first := mustFailParse(t, src).Render()
	second := mustFailParse(t, src).Render()
	if diff := cmp.Diff(first, second, locationByIndex); diff != "" {
		t.Fatalf("same input produced different diagnostics (-first +second):\n%s", diff)
	}
}

func TestErrorKindStringFallback(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	var unknown ErrorKind = -1
	c.Assert(unknown.String(), qt.Equals, "syntax error")
}
