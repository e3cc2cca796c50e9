package syntax

import "fmt"

// Origin records where a [Code] value's characters ultimately came
// from. Unlike mvdan.cc/sh/v3/syntax, which only tracks a filename on
// the parsed [File], this core must track provenance through alias
// substitution and command/arithmetic substitution, so Origin is a
// sum type rather than a bare string.
type Origin interface {
	fmt.Stringer
	originNode()
}

// OriginUnknown marks source with no recorded provenance.
type OriginUnknown struct{}

func (OriginUnknown) String() string { return "<unknown>" }
func (OriginUnknown) originNode()    {}

// OriginFile marks source read from a named file.
type OriginFile struct{ Path string }

func (o OriginFile) String() string { return o.Path }
func (o OriginFile) originNode()    {}

// OriginCommandString marks source passed as a literal command string
// (e.g. `sh -c '...'`).
type OriginCommandString struct{}

func (OriginCommandString) String() string { return "<command string>" }
func (OriginCommandString) originNode()    {}

// OriginStdin marks source read interactively from standard input.
type OriginStdin struct{}

func (OriginStdin) String() string { return "<stdin>" }
func (OriginStdin) originNode()    {}

// OriginAlias marks a Code created by splicing an alias replacement
// into the token stream. Original points at the token location the
// alias replaced; Entry is the alias definition used.
type OriginAlias struct {
	Original Location
	Entry    *AliasEntry
}

func (o OriginAlias) String() string { return fmt.Sprintf("<alias %q>", o.Entry.Name) }
func (o OriginAlias) originNode()    {}

// OriginCommandSubst marks source produced for a command substitution
// `$(...)` or a backquoted command.
type OriginCommandSubst struct{ Original Location }

func (o OriginCommandSubst) String() string { return "<command substitution>" }
func (o OriginCommandSubst) originNode()    {}

// OriginArith marks source produced for an arithmetic expansion
// `$((...))`.
type OriginArith struct{ Original Location }

func (o OriginArith) String() string { return "<arithmetic expansion>" }
func (o OriginArith) originNode()    {}

// OriginTrap marks source installed as the body of a trap action.
type OriginTrap struct{}

func (OriginTrap) String() string { return "<trap>" }
func (OriginTrap) originNode()    {}

// IsAliasFor reports whether origin is an OriginAlias chain (following
// through CommandSubst/Arith wrappers is not needed: those always
// start a fresh top-level Code) whose entry name matches name. The
// parser uses this to refuse re-expanding an alias that is already
// being expanded on the current chain, which is what keeps
// self-referential and mutually-recursive aliases from looping
// forever.
func IsAliasFor(o Origin, name string) bool {
	a, ok := o.(OriginAlias)
	if !ok {
		return false
	}
	if a.Entry.Name == name {
		return true
	}
	return IsAliasFor(a.Original.Code.Origin, name)
}

// Code is a shared, append-only handle to a piece of source text.
// Multiple Locations and Spans point into the same Code; the buffer
// grows as the char lexer pulls more lines from Input, but never
// mutates already-returned bytes, so it's safe to hold onto byte
// ranges across reads. This mirrors how mvdan.cc/sh/v3/syntax.File
// keeps one shared []byte for an entire parse, generalized here to
// support multiple concurrently-active Codes (one per alias splice or
// nested substitution) rather than a single whole-program buffer.
type Code struct {
	Origin     Origin
	StartLine  int
	buf        []byte
	lineOffset []int // byte offset of the first character of each line; lineOffset[0] == 0
}

// NewCode creates an empty, growable Code with the given origin. The
// caller (normally the char lexer) appends to it as lines arrive.
func NewCode(origin Origin, startLine int) *Code {
	return &Code{Origin: origin, StartLine: startLine, lineOffset: []int{0}}
}

// NewCodeFromString creates a Code whose entire contents are already
// known, such as an alias replacement or a command-substitution body.
func NewCodeFromString(origin Origin, s string) *Code {
	c := NewCode(origin, 1)
	c.Append(s)
	return c
}

// Append adds more text to the buffer, recording line-start offsets
// for any newlines within s.
func (c *Code) Append(s string) {
	base := len(c.buf)
	c.buf = append(c.buf, s...)
	for i := range s {
		if s[i] == '\n' {
			c.lineOffset = append(c.lineOffset, base+i+1)
		}
	}
}

// Len returns the number of bytes appended so far.
func (c *Code) Len() int { return len(c.buf) }

// ByteAt returns the byte at index i, or 0 if i is out of range (only
// valid for i <= Len()).
func (c *Code) ByteAt(i int) byte {
	if i < 0 || i >= len(c.buf) {
		return 0
	}
	return c.buf[i]
}

// Slice returns the raw bytes in [from, to) as a string, including
// any line-continuation bytes that a literal scan would have elided.
// This backs charLexer.SourceString.
func (c *Code) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(c.buf) {
		to = len(c.buf)
	}
	if from >= to {
		return ""
	}
	return string(c.buf[from:to])
}

// LineCol converts a byte index into a 1-based (line, column) pair
// local to this Code, analogous to mvdan.cc/sh/v3/syntax.File.Position.
func (c *Code) LineCol(index int) (line, col int) {
	i := searchOffsets(c.lineOffset, index)
	return c.StartLine + i, index - c.lineOffset[i] + 1
}

// searchOffsets returns the largest i such that lineOffset[i] <= x.
func searchOffsets(a []int, x int) int {
	lo, hi := 0, len(a)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if a[mid] <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0
	}
	return lo - 1
}

// Location is a point within a Code: a fully provenance-carrying
// analogue of mvdan.cc/sh/v3/syntax.Pos, which is a bare integer
// offset into one whole-program buffer. Because this core's source
// can be spliced together from multiple Codes (aliases, substitutions)
// a location must name which Code it is in, not just an offset.
type Location struct {
	Code  *Code
	Index int
}

// Line and Col report the 1-based line and column of the location
// within its Code.
func (l Location) Line() int {
	line, _ := l.Code.LineCol(l.Index)
	return line
}

func (l Location) Col() int {
	_, col := l.Code.LineCol(l.Index)
	return col
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Code.Origin, l.Line(), l.Col())
}

// Span is a half-open byte range [Start, End) within a single Code.
type Span struct {
	Code       *Code
	Start, End int
}

// Text returns the literal source text of the span, continuation
// bytes included.
func (s Span) Text() string { return s.Code.Slice(s.Start, s.End) }

// StartLocation and EndLocation expose the span's endpoints as
// Locations.
func (s Span) StartLocation() Location { return Location{s.Code, s.Start} }
func (s Span) EndLocation() Location   { return Location{s.Code, s.End} }

// Contains reports whether other lies entirely within s: every node's
// span must contain each of its children's spans.
func (s Span) Contains(other Span) bool {
	return s.Code == other.Code && s.Start <= other.Start && other.End <= s.End
}
