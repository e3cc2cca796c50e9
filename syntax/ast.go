package syntax

// Node is implemented by every AST type. It mirrors
// mvdan.cc/sh/v3/syntax.Node (Pos()/End() returning a bare Pos
// offset), generalized to return a full Location so that a position
// still identifies the right Code after alias splicing or nested
// substitutions have introduced more than one source buffer into a
// single parse: every unit carries enough location to reproduce its
// source byte range.
type Node interface {
	Pos() Location
	End() Location
}

// spanned is embedded by every concrete AST node to provide Pos/End
// and the underlying Span without repeating the boilerplate; the same
// shape mvdan.cc/sh/v3/syntax repeats by hand across every node.go
// type, because Go has no field inheritance.
type spanned struct {
	span Span
}

func (s spanned) Pos() Location    { return s.span.StartLocation() }
func (s spanned) End() Location    { return s.span.EndLocation() }
func (s spanned) SourceSpan() Span { return s.span }

func newSpanned(code *Code, start, end int) spanned {
	return spanned{Span{code, start, end}}
}
