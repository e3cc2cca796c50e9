package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestAliasSetDefineGetRemove(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	set := NewAliasSet()
	_, ok := set.Get("ll")
	c.Assert(ok, qt.IsFalse)

	set.Define(&AliasEntry{Name: "ll", Replacement: "ls -l "})
	entry, ok := set.Get("ll")
	c.Assert(ok, qt.IsTrue)
	c.Assert(entry.Replacement, qt.Equals, "ls -l ")

	c.Assert(set.Remove("ll"), qt.IsTrue)
	c.Assert(set.Remove("ll"), qt.IsFalse)
	_, ok = set.Get("ll")
	c.Assert(ok, qt.IsFalse)
}

func TestNoAliasesAlwaysEmpty(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	_, ok := NoAliases.Get("ll")
	c.Assert(ok, qt.IsFalse)
}

func TestAliasSubstitutionAtCommandName(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "ll", Replacement: "ls -l "})
	l := mustParse(t, "ll /tmp\n", WithAliases(aliases))
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 3)
	for i, want := range []string{"ls", "-l", "/tmp"} {
		got, _ := wordLiteralText(cmd.Words[i])
		c.Assert(got, qt.Equals, want)
	}
}

func TestAliasChainTrailingBlankEnablesNext(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "a", Replacement: "b "})
	aliases.Define(&AliasEntry{Name: "b", Replacement: "echo "})
	l := mustParse(t, "a hi\n", WithAliases(aliases))
	cmd := onlyCommand(t, l)
	got, _ := wordLiteralText(cmd.Words[0])
	c.Assert(got, qt.Equals, "echo")
}

func TestAliasNotSubstitutedMidCommand(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "ll", Replacement: "ls -l "})
	l := mustParse(t, "echo ll\n", WithAliases(aliases))
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 2)
	got, _ := wordLiteralText(cmd.Words[1])
	c.Assert(got, qt.Equals, "ll")
}

func TestSelfReferentialAliasTerminates(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "a", Replacement: "a "})
	l := mustParse(t, "a\n", WithAliases(aliases))
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 1)
	got, _ := wordLiteralText(cmd.Words[0])
	c.Assert(got, qt.Equals, "a")
}

func TestAliasExpandingToBangIsNegation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "untrue", Replacement: "! true"})
	l := mustParse(t, "untrue\n", WithAliases(aliases))
	c.Assert(l.Items, qt.HasLen, 1)
	pipe := l.Items[0].AndOr.First
	c.Assert(pipe.Negation, qt.IsTrue)
	c.Assert(pipe.Commands, qt.HasLen, 1)
	cmd, ok := pipe.Commands[0].(*SimpleCommand)
	c.Assert(ok, qt.IsTrue, qt.Commentf("command was %#v", pipe.Commands[0]))
	c.Assert(cmd.Words, qt.HasLen, 1)
	got, _ := wordLiteralText(cmd.Words[0])
	c.Assert(got, qt.Equals, "true")
}

func TestBangBeforeAliasExpandingToBangIsDoubleNegation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "untrue", Replacement: "! true"})
	pe := mustFailParse(t, "! untrue\n", WithAliases(aliases))
	c.Assert(pe.Kind, qt.Equals, ErrDoubleNegation)
}

func TestAliasExpandingToCompoundLeader(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "x", Replacement: "if true; then :; fi"})
	l := mustParse(t, "x\n", WithAliases(aliases))
	c.Assert(l.Items, qt.HasLen, 1)
	pipe := l.Items[0].AndOr.First
	c.Assert(pipe.Commands, qt.HasLen, 1)
	_, ok := pipe.Commands[0].(*FullCompoundCommand)
	c.Assert(ok, qt.IsTrue, qt.Commentf("command was %#v", pipe.Commands[0]))
}

func TestGlobalAliasSubstitutedMidCommand(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	aliases := NewAliasSet()
	aliases.Define(&AliasEntry{Name: "out", Replacement: "> /dev/null", Global: true})
	l := mustParse(t, "echo hi out\n", WithAliases(aliases))
	cmd := onlyCommand(t, l)
	c.Assert(cmd.Words, qt.HasLen, 2)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
}
