package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHereDocBasicContent(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cat <<EOF\nhello $x\nEOF\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
	hd, ok := cmd.Redirs[0].Body.(*HereDoc)
	c.Assert(ok, qt.IsTrue)
	c.Assert(hd.RemoveTabs, qt.IsFalse)
	c.Assert(hd.Content.Resolved(), qt.IsTrue)
	var sawParam bool
	for _, u := range hd.Content.Text().Units {
		if _, ok := u.(*RawParam); ok {
			sawParam = true
		}
	}
	c.Assert(sawParam, qt.IsTrue)
}

func TestHereDocQuotedDelimiterSuppressesExpansion(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cat <<'EOF'\n$x literal\nEOF\n")
	cmd := onlyCommand(t, l)
	hd := cmd.Redirs[0].Body.(*HereDoc)
	for _, u := range hd.Content.Text().Units {
		_, ok := u.(*RawParam)
		c.Assert(ok, qt.IsFalse)
	}
}

func TestHereDocQuotedDelimiterDisablesLineContinuation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cat <<'EOF'\nline1\\\nline2\nEOF\n")
	cmd := onlyCommand(t, l)
	hd := cmd.Redirs[0].Body.(*HereDoc)
	var buf []rune
	for _, u := range hd.Content.Text().Units {
		lit, ok := u.(*Literal)
		c.Assert(ok, qt.IsTrue)
		buf = append(buf, lit.Char)
	}
	c.Assert(string(buf), qt.Equals, "line1\\\nline2\n")
}

func TestHereDocDashRemovesLeadingTabs(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cat <<-EOF\n\t\thello\n\tEOF\n")
	cmd := onlyCommand(t, l)
	hd := cmd.Redirs[0].Body.(*HereDoc)
	c.Assert(hd.RemoveTabs, qt.IsTrue)
	lit, ok := hd.Content.Text().Units[0].(*Literal)
	c.Assert(ok, qt.IsTrue)
	c.Assert(lit.Char, qt.Equals, 'h')
}

func TestMultipleHereDocsOnOneLine(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	l := mustParse(t, "cat <<A <<B\nfirst\nA\nsecond\nB\n")
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Redirs, qt.HasLen, 2)
	first := cmd.Redirs[0].Body.(*HereDoc)
	second := cmd.Redirs[1].Body.(*HereDoc)
	c.Assert(first.Content.Resolved(), qt.IsTrue)
	c.Assert(second.Content.Resolved(), qt.IsTrue)
}

func TestHereDocUnclosedIsError(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	pe := mustFailParse(t, "cat <<EOF\nhello\n")
	c.Assert(pe.Kind, qt.Equals, ErrUnclosedHereDocContent)
}
