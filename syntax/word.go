package syntax

// Word is an ordered sequence of WordUnits, e.g. the two units of
// `"$x"y` (a DoubleQuote, then an Unquoted literal). It is the word
// sub-parser's output.
type Word struct {
	spanned
	Units []WordUnit
}

// WordUnit is one piece of a Word. The variants are the same sum type
// mvdan.cc/sh/v3/syntax.WordPart models with a closed interface and an
// unexported marker method (wordUnitNode here, wordPart there); this
// core's variant set is deliberately narrower (no bash arrays or
// extglob word parts).
type WordUnit interface {
	Node
	wordUnitNode()
}

// Unquoted wraps a TextUnit that appears directly in a word, outside
// of any quoting.
type Unquoted struct {
	spanned
	Unit TextUnit
}

func (*Unquoted) wordUnitNode() {}

// SingleQuote is a verbatim 'string' unit: no escape processing at
// all, not even backslash.
type SingleQuote struct {
	spanned
	Value string
}

func (*SingleQuote) wordUnitNode() {}

// DoubleQuote is a "..." unit; its content is a Text using the
// reduced double-quote escape set.
type DoubleQuote struct {
	spanned
	Parts *Text
}

func (*DoubleQuote) wordUnitNode() {}

// DollarSingleQuote is a $'...' unit using the POSIX backslash-escape
// alphabet.
type DollarSingleQuote struct {
	spanned
	Value EscapedString
}

func (*DollarSingleQuote) wordUnitNode() {}

// Tilde is a `~name` unit recognized by the tilde sub-parser; Name is
// empty for a bare `~`.
type Tilde struct {
	spanned
	Name string
}

func (*Tilde) wordUnitNode() {}

// Text is an ordered sequence of TextUnits, used both for the content
// of a DoubleQuote and for a here-document body.
type Text struct {
	spanned
	Units []TextUnit
}

// TextUnit is one piece of a Text.
type TextUnit interface {
	Node
	textUnitNode()
}

// Literal is a single character copied verbatim.
type Literal struct {
	spanned
	Char rune
}

func (*Literal) textUnitNode() {}

// Backslashed is a character that followed a backslash escape; the
// escape is preserved (not collapsed) so later expansion stages can
// decide its meaning.
type Backslashed struct {
	spanned
	Char rune
}

func (*Backslashed) textUnitNode() {}

// RawParam is an unbraced parameter expansion, `$name`, `$1`, `$@`, etc.
type RawParam struct {
	spanned
	Name string
}

func (*RawParam) textUnitNode() {}

// BracedParam is a `${...}` expansion, possibly with indexing and a
// modifier.
type BracedParam struct {
	spanned
	Param Param
}

func (*BracedParam) textUnitNode() {}

// CommandSubst is a `$(...)` unit. Content holds the parsed command
// list that the substitution's body reduces to; parsing the body
// eagerly (rather than deferring it, as the Backquote variant does for
// its raw units) mirrors mvdan.cc/sh/v3/syntax's CmdSubst.Stmts, which
// is populated by a recursive call into the same parser.
type CommandSubst struct {
	spanned
	Content *List
}

func (*CommandSubst) textUnitNode() {}

// BackquoteUnit is one character of a `...` unit's raw content: only
// Literal and Backslashed occur; unlike CommandSubst, the backquote
// body is not parsed into commands by this layer, a caller that needs
// the command list re-parses the backquote's raw text
// (SourceSpan().Text()) with a fresh Parser,
// the same two-step mvdan.cc/sh/v3/syntax's BckQuoted.Stmts eventually
// also requires when -P/posix backquote compatibility is in play.
type BackquoteUnit interface {
	Node
	backquoteUnitNode()
}

type BackquoteLiteral struct {
	spanned
	Char rune
}

func (*BackquoteLiteral) backquoteUnitNode() {}

type BackquoteBackslashed struct {
	spanned
	Char rune
}

func (*BackquoteBackslashed) backquoteUnitNode() {}

// Backquote is a `` `...` `` unit.
type Backquote struct {
	spanned
	Content []BackquoteUnit
}

func (*Backquote) textUnitNode() {}

// Arith is a `$((...))` unit. Content is kept as raw Text rather than
// an evaluated expression tree: arithmetic evaluation is runtime
// behavior and out of scope for this core.
type Arith struct {
	spanned
	Content *Text
}

func (*Arith) textUnitNode() {}

// ParamIdentKind classifies what a Param refers to.
type ParamIdentKind int

const (
	ParamName ParamIdentKind = iota
	ParamPositional
	ParamSpecial
)

// ParamIdent names the variable, positional parameter, or special
// parameter a Param refers to.
type ParamIdent struct {
	Kind ParamIdentKind
	Name string // variable name (ParamName), digit string (ParamPositional), or special char (ParamSpecial)
}

// Param is the body of a BracedParam: `${` Ident Index? Modifier? `}`.
type Param struct {
	Ident    ParamIdent
	Index    *Word // optional `[expr]` bash-array index; nil if absent
	Modifier ParamModifier // optional; nil if absent
}

// ParamModifier is the optional suffix/prefix modifier on a ${...}
// expansion.
type ParamModifier interface {
	paramModifierNode()
}

// LengthModifier models the `${#name}` form.
type LengthModifier struct{}

func (LengthModifier) paramModifierNode() {}

// SwitchAction is the operator of a SwitchModifier.
type SwitchAction int

const (
	SwitchDefault     SwitchAction = iota // -  / :-
	SwitchAssign                          // =  / :=
	SwitchError                           // ?  / :?
	SwitchAlternative                     // +  / :+
)

// SwitchModifier models `${name:-word}` and its siblings. Colon
// selects whether the condition also triggers when the parameter is
// set but null (true) or only when unset (false).
type SwitchModifier struct {
	Colon  bool
	Action SwitchAction
	Word   *Word
}

func (SwitchModifier) paramModifierNode() {}

// TrimSide is whether a TrimModifier strips a prefix or a suffix.
type TrimSide int

const (
	TrimPrefix TrimSide = iota // # / ##
	TrimSuffix                  // % / %%
)

// TrimModifier models `${name#pattern}` and its siblings. Long
// selects the greedy form (## or %%) versus the shortest-match form
// (# or %).
type TrimModifier struct {
	Side TrimSide
	Long bool
	Word *Word
}

func (TrimModifier) paramModifierNode() {}

// EscapeKind classifies one unit of a $'...' EscapedString.
type EscapeKind int

const (
	EscLiteral EscapeKind = iota
	EscDoubleQuote
	EscSingleQuote
	EscBackslash
	EscQuestion
	EscAlert
	EscBackspace
	EscEscape
	EscFormFeed
	EscNewline
	EscCarriageReturn
	EscTab
	EscVerticalTab
	EscControl
	EscOctal
	EscHex
	EscUnicode
)

// EscapeUnit is one element of an EscapedString.
type EscapeUnit struct {
	Kind EscapeKind
	Rune rune // payload for EscLiteral and EscUnicode
	Byte byte // payload for EscControl, EscOctal, EscHex
	Span Span
}

// EscapedString is the parsed content of a $'...' unit, preserving
// the POSIX escape alphabet rather than collapsing it to a plain Go
// string, so a caller can reconstruct the exact source.
type EscapedString struct {
	Units []EscapeUnit
}
