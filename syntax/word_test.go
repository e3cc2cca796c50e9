package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSingleQuoteVerbatim(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo 'a\\nb $x'\n")
	cmd := onlyCommand(t, l)
	sq, ok := cmd.Words[1].Units[0].(*SingleQuote)
	c.Assert(ok, qt.IsTrue)
	c.Assert(sq.Value, qt.Equals, `a\nb $x`)
}

func TestDoubleQuoteKeepsExpansions(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, `echo "a $x b"` + "\n")
	cmd := onlyCommand(t, l)
	dq, ok := cmd.Words[1].Units[0].(*DoubleQuote)
	c.Assert(ok, qt.IsTrue)
	var sawParam bool
	for _, u := range dq.Parts.Units {
		if _, ok := u.(*RawParam); ok {
			sawParam = true
		}
	}
	c.Assert(sawParam, qt.IsTrue)
}

func TestRawParamExpansion(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo $foo\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	rp, ok := unq.Unit.(*RawParam)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rp.Name, qt.Equals, "foo")
}

func TestBracedParamWithSwitchModifier(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo ${foo:-bar}\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	bp, ok := unq.Unit.(*BracedParam)
	c.Assert(ok, qt.IsTrue)
	c.Assert(bp.Param.Ident.Name, qt.Equals, "foo")
	mod, ok := bp.Param.Modifier.(SwitchModifier)
	c.Assert(ok, qt.IsTrue)
	c.Assert(mod.Colon, qt.IsTrue)
	c.Assert(mod.Action, qt.Equals, SwitchDefault)
	got, _ := wordLiteralText(mod.Word)
	c.Assert(got, qt.Equals, "bar")
}

func TestBracedParamWithTrimModifier(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo ${foo##*/}\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	bp := unq.Unit.(*BracedParam)
	mod, ok := bp.Param.Modifier.(TrimModifier)
	c.Assert(ok, qt.IsTrue)
	c.Assert(mod.Side, qt.Equals, TrimPrefix)
	c.Assert(mod.Long, qt.IsTrue)
}

func TestBracedParamLength(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo ${#foo}\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	bp := unq.Unit.(*BracedParam)
	_, ok := bp.Param.Modifier.(LengthModifier)
	c.Assert(ok, qt.IsTrue)
}

func TestDollarSingleQuoteEscapes(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, `echo $'a\tb\n'` + "\n")
	cmd := onlyCommand(t, l)
	dsq, ok := cmd.Words[1].Units[0].(*DollarSingleQuote)
	c.Assert(ok, qt.IsTrue)
	var kinds []EscapeKind
	for _, u := range dsq.Value.Units {
		kinds = append(kinds, u.Kind)
	}
	c.Assert(kinds, qt.Contains, EscTab)
	c.Assert(kinds, qt.Contains, EscNewline)
}

func TestBackslashedPreservesEscape(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, `echo \$foo` + "\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	bs, ok := unq.Unit.(*Backslashed)
	c.Assert(ok, qt.IsTrue)
	c.Assert(bs.Char, qt.Equals, '$')
}

func TestTildeExpansionFront(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo ~user/bin\n")
	cmd := onlyCommand(t, l)
	tu, ok := cmd.Words[1].Units[0].(*Tilde)
	c.Assert(ok, qt.IsTrue)
	c.Assert(tu.Name, qt.Equals, "user")
}

func TestTildeEverywhereOption(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo PATH=~root:~other\n", WithTildeEverywhere(true))
	cmd := onlyCommand(t, l)
	var sawTildes int
	for _, u := range cmd.Words[1].Units {
		if _, ok := u.(*Tilde); ok {
			sawTildes++
		}
	}
	// '=' is not a tilde boundary (only the word front and ':' are), so
	// ~root stays literal and only ~other becomes a Tilde.
	c.Assert(sawTildes, qt.Equals, 1)
}

func TestApplyTildeIsIdempotent(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	p := NewParser(NewStringInput(""))
	w := &Word{Units: []WordUnit{
		&Tilde{Name: "user"},
		&Unquoted{Unit: &Literal{Char: '/'}},
	}}
	before := append([]WordUnit(nil), w.Units...)
	p.applyTilde(w)
	c.Assert(w.Units, qt.DeepEquals, before)
}

func TestBackquoteSubstitutionRawUnits(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "echo `echo hi`\n")
	cmd := onlyCommand(t, l)
	unq := cmd.Words[1].Units[0].(*Unquoted)
	_, ok := unq.Unit.(*Backquote)
	c.Assert(ok, qt.IsTrue)
}
