package syntax

import "context"

// LineContext tells an [Input] implementation why a line is being
// requested, so an interactive front end can adjust its prompt. It is
// advisory only: an implementation is free to ignore it.
type LineContext int

const (
	// FirstLine requests the first line of a new command.
	FirstLine LineContext = iota
	// ContinuationLine requests a line needed to finish a token that
	// spans multiple lines (an open quote, here-doc, etc).
	ContinuationLine
	// CompoundLine requests a line inside an already-open compound
	// command (for/while/if/case/grouping/subshell).
	CompoundLine
)

func (c LineContext) String() string {
	switch c {
	case FirstLine:
		return "first line"
	case ContinuationLine:
		return "continuation"
	case CompoundLine:
		return "compound command"
	default:
		return "unknown"
	}
}

// Input is the pull interface the lexer drives for more source text.
// NextLine returns either a line ending in '\n', or "" at EOF; it must
// not be called again once it has returned "". Implementations that
// read from a file or a string return completed lines immediately;
// interactive implementations may block on user input; both are
// satisfied by an ordinary blocking Go method, since parsing only
// needs cooperative, single-threaded suspension, not real
// concurrency.
type Input interface {
	NextLine(ctx context.Context, lineCtx LineContext) (string, error)
}

// StringInput is an [Input] over an in-memory string, the equivalent
// of feeding mvdan.cc/sh/v3/syntax.Parse a whole []byte at once.
type StringInput struct {
	remaining string
	done      bool
}

// NewStringInput creates an Input that yields src one line at a time.
func NewStringInput(src string) *StringInput {
	return &StringInput{remaining: src}
}

func (in *StringInput) NextLine(ctx context.Context, _ LineContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if in.done {
		return "", nil
	}
	i := indexByte(in.remaining, '\n')
	if i < 0 {
		line := in.remaining
		in.remaining = ""
		in.done = true
		if line == "" {
			return "", nil
		}
		// A final line with no trailing newline still terminates the
		// input; a newline is appended so it reads like any other line.
		return line + "\n", nil
	}
	line := in.remaining[:i+1]
	in.remaining = in.remaining[i+1:]
	return line, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
