package syntax

import "fmt"

// ErrorKind is a closed set of syntax error causes. A single enum
// plus one exported error type mirrors how mvdan.cc/sh/v3/syntax
// keeps one exported *ParseError{Position, Filename, Text} for every
// kind of syntax problem rather than one Go type per variant;
// ErrorKind plays the role that free-form Text string plays there,
// but as a comparable, closed value so tests can assert on *which*
// error occurred.
type ErrorKind int

const (
	// ErrIO wraps an error from the Input interface; it is never equal
	// to itself (see (*ParseError).Equal).
	ErrIO ErrorKind = iota

	// Unclosed/unmatched constructs.
	ErrUnclosedSingleQuote
	ErrUnclosedDoubleQuote
	ErrUnclosedDollarSingleQuote
	ErrUnclosedParam
	ErrUnclosedCommandSubst
	ErrUnclosedArith
	ErrUnclosedBackquote
	ErrUnclosedHereDocContent
	ErrUnclosedArrayValue
	ErrUnclosedGrouping
	ErrUnclosedSubshell
	ErrUnclosedDoClause
	ErrUnclosedWhileClause
	ErrUnclosedUntilClause
	ErrUnclosedIfClause
	ErrUnclosedCaseClause
	ErrUnclosedPatternList
	ErrUnclosedFunctionParen

	// Missing-content conditions.
	ErrMissingHereDocContent
	ErrMissingForName
	ErrInvalidForName
	ErrEmptyGrouping
	ErrEmptySubshell
	ErrEmptyDoClause
	ErrEmptyCondition
	ErrEmptyThenBody
	ErrEmptyElseBody
	ErrEmptyElifBody

	// Pipeline errors.
	ErrDoubleNegation
	ErrBangAfterBar
	ErrMissingCommandAfterBar
	ErrMissingCommandAfterBang
	ErrMissingPipeline

	// Trailing-token classification.
	ErrMissingSeparator
	ErrUnopenedGrouping
	ErrUnopenedSubshell
	ErrUnopenedLoop
	ErrUnopenedDoClause
	ErrUnopenedIf
	ErrUnopenedCase
	ErrInAsCommandName
	ErrInvalidCommandToken

	// Explicitly unsupported syntax.
	ErrUnsupportedDoubleBracketCommand
	ErrUnsupportedFunctionDefinitionSyntax

	// Generic expected-X-here errors.
	ErrExpectedWord
	ErrExpectedCommand
	ErrExpectedPattern
)

var errorKindText = map[ErrorKind]string{
	ErrIO:                                 "I/O error",
	ErrUnclosedSingleQuote:                "unclosed single quote",
	ErrUnclosedDoubleQuote:                "unclosed double quote",
	ErrUnclosedDollarSingleQuote:          "unclosed $'...' string",
	ErrUnclosedParam:                      "unclosed parameter expansion",
	ErrUnclosedCommandSubst:               "unclosed command substitution",
	ErrUnclosedArith:                      "unclosed arithmetic expansion",
	ErrUnclosedBackquote:                  "unclosed backquote substitution",
	ErrUnclosedHereDocContent:             "unclosed here-document",
	ErrUnclosedArrayValue:                 "unclosed array assignment",
	ErrUnclosedGrouping:                   "unclosed { grouping",
	ErrUnclosedSubshell:                   "unclosed ( subshell",
	ErrUnclosedDoClause:                   "unclosed do clause",
	ErrUnclosedWhileClause:                "unclosed while clause",
	ErrUnclosedUntilClause:                "unclosed until clause",
	ErrUnclosedIfClause:                   "unclosed if clause",
	ErrUnclosedCaseClause:                 "unclosed case clause",
	ErrUnclosedPatternList:                "unclosed pattern list",
	ErrUnclosedFunctionParen:              "unclosed function parentheses",
	ErrMissingHereDocContent:              "here-document content was never read",
	ErrMissingForName:                     "missing name after for",
	ErrInvalidForName:                     "invalid name after for",
	ErrEmptyGrouping:                      "a grouping cannot be empty",
	ErrEmptySubshell:                      "a subshell cannot be empty",
	ErrEmptyDoClause:                      "a do clause cannot be empty",
	ErrEmptyCondition:                     "a condition cannot be empty",
	ErrEmptyThenBody:                      "a then body cannot be empty",
	ErrEmptyElseBody:                      "an else body cannot be empty",
	ErrEmptyElifBody:                      "an elif body cannot be empty",
	ErrDoubleNegation:                     "a pipeline cannot be negated twice",
	ErrBangAfterBar:                       "! cannot follow a pipe",
	ErrMissingCommandAfterBar:             "expected a command after |",
	ErrMissingCommandAfterBang:            "expected a command after !",
	ErrMissingPipeline:                    "expected a pipeline",
	ErrMissingSeparator:                   "statements must be separated by ;, & or a newline",
	ErrUnopenedGrouping:                   "} without a matching {",
	ErrUnopenedSubshell:                   ") without a matching (",
	ErrUnopenedLoop:                       "done without a matching for/while/until",
	ErrUnopenedDoClause:                   "do without a matching for/while/until",
	ErrUnopenedIf:                         "fi/elif/else without a matching if",
	ErrUnopenedCase:                       "esac without a matching case",
	ErrInAsCommandName:                    "in cannot be used as a command name",
	ErrInvalidCommandToken:                "unexpected token where a command was expected",
	ErrUnsupportedDoubleBracketCommand:    "[[ ... ]] is not supported",
	ErrUnsupportedFunctionDefinitionSyntax: "function name { ... } is not supported; use name() { ... }",
	ErrExpectedWord:                       "expected a word",
	ErrExpectedCommand:                    "expected a command",
	ErrExpectedPattern:                    "expected a pattern",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindText[k]; ok {
		return s
	}
	return "syntax error"
}

// ParseError is the single exported error type produced by this
// package, mirroring mvdan.cc/sh/v3/syntax.ParseError's shape
// (Position + Filename + Text) but replacing the free-form Text with
// a closed Kind plus structured fields, so callers can branch on Kind
// and a renderer can produce a multi-span diagnostic.
type ParseError struct {
	Kind     ErrorKind
	Location Location

	// Supplementary locations, populated only for the Kind values that
	// use them; nil/zero otherwise.
	OpeningLocation *Location
	IfLocation      *Location
	ElifLocation    *Location
	RedirOpLocation *Location
	AndOr           AndOr // meaningful only for ErrMissingPipeline

	// IOErr is the wrapped error for ErrIO.
	IOErr error
}

func (e *ParseError) Error() string {
	if e.Kind == ErrIO {
		return fmt.Sprintf("%s: %s: %v", e.Location, e.Kind, e.IOErr)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Kind)
}

func (e *ParseError) Unwrap() error { return e.IOErr }

// Equal reports whether e and other represent the same error for
// testing purposes: an ErrIO error is never equal to anything, even
// an identical copy of itself, since two I/O failures are never
// considered "the same error"; every other kind compares by Kind and
// Location.
func (e *ParseError) Equal(other *ParseError) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Kind == ErrIO || other.Kind == ErrIO {
		return false
	}
	return e.Kind == other.Kind && e.Location == other.Location
}

// DiagnosticSpan is one labeled span in a rendered diagnostic.
type DiagnosticSpan struct {
	Location Location
	Label    string
}

// Diagnostic is a structured error rendering: a title, a primary
// labeled span, zero or more supplementary labeled spans, and an
// optional help annotation.
type Diagnostic struct {
	Title         string
	Primary       DiagnosticSpan
	Supplementary []DiagnosticSpan
	Help          string
}

// Render produces the structured diagnostic for e.
func (e *ParseError) Render() Diagnostic {
	d := Diagnostic{
		Title:   e.Kind.String(),
		Primary: DiagnosticSpan{e.Location, primaryLabel(e.Kind)},
	}
	if e.OpeningLocation != nil {
		d.Supplementary = append(d.Supplementary, DiagnosticSpan{*e.OpeningLocation, "the opening construct was here"})
	}
	if e.IfLocation != nil {
		d.Supplementary = append(d.Supplementary, DiagnosticSpan{*e.IfLocation, "the if clause was here"})
	}
	if e.ElifLocation != nil {
		d.Supplementary = append(d.Supplementary, DiagnosticSpan{*e.ElifLocation, "the elif clause was here"})
	}
	if e.RedirOpLocation != nil {
		d.Supplementary = append(d.Supplementary, DiagnosticSpan{*e.RedirOpLocation, "the redirection was here"})
	}
	if e.Kind == ErrBangAfterBar {
		d.Help = "group the negation instead: { ! ...; }"
	}
	return d
}

func primaryLabel(k ErrorKind) string {
	switch k {
	case ErrUnopenedGrouping, ErrUnopenedSubshell, ErrUnopenedLoop,
		ErrUnopenedDoClause, ErrUnopenedIf, ErrUnopenedCase:
		return "unexpected here"
	case ErrExpectedWord:
		return "expected a word here"
	case ErrExpectedCommand:
		return "expected a command here"
	case ErrExpectedPattern:
		return "expected a pattern here"
	case ErrMissingSeparator:
		return "expected ;, & or a newline here"
	default:
		if isUnclosed(k) {
			return "reached end of input without a matching close"
		}
		return "here"
	}
}

func isUnclosed(k ErrorKind) bool {
	switch k {
	case ErrUnclosedSingleQuote, ErrUnclosedDoubleQuote, ErrUnclosedDollarSingleQuote,
		ErrUnclosedParam, ErrUnclosedCommandSubst, ErrUnclosedArith, ErrUnclosedBackquote,
		ErrUnclosedHereDocContent, ErrUnclosedArrayValue, ErrUnclosedGrouping,
		ErrUnclosedSubshell, ErrUnclosedDoClause, ErrUnclosedWhileClause,
		ErrUnclosedUntilClause, ErrUnclosedIfClause, ErrUnclosedCaseClause,
		ErrUnclosedPatternList, ErrUnclosedFunctionParen:
		return true
	}
	return false
}

// newSyntaxError builds a *ParseError of the given kind at loc.
func newSyntaxError(kind ErrorKind, loc Location) *ParseError {
	return &ParseError{Kind: kind, Location: loc}
}

// newIOError wraps an Input error with the location the read was
// attempted at.
func newIOError(loc Location, err error) *ParseError {
	return &ParseError{Kind: ErrIO, Location: loc, IOErr: err}
}
