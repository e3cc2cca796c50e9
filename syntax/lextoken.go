package syntax

import (
	"context"
	"unicode/utf8"
)

// TokenKind is the coarse classification of a LexToken: an operator,
// a plain word (possibly a bare keyword literal), an IoNumber, an
// IoLocation, or end of input.
type TokenKind int

const (
	tkOperator TokenKind = iota
	tkWord
	tkIoNumber
	tkIoLocation
	tkEOF
)

// LexToken is one token produced by the token lexer, carrying the
// recognized word (if any), its kind, and its start location.
type LexToken struct {
	Kind     TokenKind
	Operator opToken
	Word     *Word   // set for tkWord, tkIoNumber, tkIoLocation
	Keyword  Keyword // set for tkWord when the word is a bare keyword literal
	StartLoc Location
	EndLoc   Location

	// PrecededByBlank records whether whitespace or a comment preceded
	// this token.
	PrecededByBlank bool
}

// lexToken is the token lexer's entry point: skip blanks/comments,
// then dispatch to operator or word recognition.
func (p *Parser) lexToken(ctx context.Context) (*LexToken, error) {
	spaced, err := p.skipBlanksAndComments(ctx)
	if err != nil {
		return nil, err
	}

	start := p.lex.Location()
	b, atEOF, err := p.lex.PeekByte(ctx, FirstLine)
	if err != nil {
		return nil, err
	}
	if atEOF {
		return &LexToken{Kind: tkEOF, StartLoc: start, EndLoc: start, PrecededByBlank: spaced}, nil
	}

	if b == '\n' {
		p.lex.ConsumeByte(ctx, FirstLine)
		end := p.lex.Location()
		return &LexToken{Kind: tkOperator, Operator: newlineTok, StartLoc: start, EndLoc: end, PrecededByBlank: spaced}, nil
	}

	if isOperatorStart(b) {
		op, err := p.lexOperator(ctx)
		if err != nil {
			return nil, err
		}
		end := p.lex.Location()
		return &LexToken{Kind: tkOperator, Operator: op, StartLoc: start, EndLoc: end, PrecededByBlank: spaced}, nil
	}

	w, err := p.lexWord(ctx, wcWord)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	tok := &LexToken{Kind: tkWord, Word: w, StartLoc: start, EndLoc: end, PrecededByBlank: spaced}

	if lit, ok := wordLiteralText(w); ok {
		tok.Keyword = keywordFor(lit)
		if tok.Keyword == kwNone {
			if isIoLocationCandidate(lit) {
				if redirFollows, _ := p.peekIsRedirStart(ctx); redirFollows {
					tok.Kind = tkIoLocation
				}
			} else if isAllDigits(lit) {
				if redirFollows, _ := p.peekIsRedirStart(ctx); redirFollows {
					tok.Kind = tkIoNumber
				}
			}
		}
	}
	return tok, nil
}

// skipBlanksAndComments consumes blanks and '#' comments (outside of
// words), reporting whether anything was skipped.
func (p *Parser) skipBlanksAndComments(ctx context.Context) (spaced bool, err error) {
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, FirstLine)
		if err != nil {
			return spaced, err
		}
		if atEOF {
			return spaced, nil
		}
		switch {
		case b == ' ' || b == '\t':
			p.lex.ConsumeByte(ctx, FirstLine)
			spaced = true
		case b == '#':
			spaced = true
			for {
				b, atEOF, err := p.lex.PeekByte(ctx, FirstLine)
				if err != nil {
					return spaced, err
				}
				if atEOF || b == '\n' {
					break
				}
				p.lex.ConsumeByte(ctx, FirstLine)
			}
		default:
			return spaced, nil
		}
	}
}

func isOperatorStart(b byte) bool {
	switch b {
	case '&', '(', ')', ';', '|', '<', '>':
		return true
	}
	return false
}

// lexOperator performs greedy, longest-match operator recognition,
// grounded on mvdan.cc/sh/v3/syntax.(*parser).regToken's
// switch-on-next-byte style.
func (p *Parser) lexOperator(ctx context.Context) (opToken, error) {
	b, _, _ := p.lex.ConsumeByte(ctx, FirstLine)
	next := func() byte {
		b, atEOF, _ := p.lex.PeekByte(ctx, FirstLine)
		if atEOF {
			return 0
		}
		return b
	}
	consume := func() { p.lex.ConsumeByte(ctx, FirstLine) }

	switch b {
	case '&':
		if next() == '&' {
			consume()
			return andAndTok, nil
		}
		return andTok, nil
	case '(':
		return lparenTok, nil
	case ')':
		return rparenTok, nil
	case ';':
		switch next() {
		case ';':
			consume()
			if next() == '&' {
				consume()
				return dsemiAndTok, nil
			}
			return dsemiTok, nil
		case '&':
			consume()
			return semiAndTok, nil
		}
		return semiTok, nil
	case '|':
		if next() == '|' {
			consume()
			return pipeAndTok, nil
		}
		return pipeTok, nil
	case '<':
		switch next() {
		case '<':
			consume()
			switch next() {
			case '-':
				consume()
				return dashHdocTok, nil
			case '<':
				consume()
				return wordHdocTok, nil
			}
			return shlTok, nil
		case '>':
			consume()
			return rdrInOutTok, nil
		case '&':
			consume()
			return dplInTok, nil
		case '(':
			consume()
			return cmdInTok, nil
		}
		return lssTok, nil
	default: // '>'
		switch next() {
		case '>':
			consume()
			if next() == '|' {
				consume()
				return appAllTok, nil
			}
			return shrTok, nil
		case '&':
			consume()
			return dplOutTok, nil
		case '|':
			consume()
			return clbOutTok, nil
		case '(':
			consume()
			return cmdOutTok, nil
		}
		return gtrTok, nil
	}
}

// peekIsRedirStart looks at the next unread byte (without consuming
// it) to see whether a redirection operator is about to start; used
// to reclassify an all-digit or {name} word into IoNumber/IoLocation
// after the word is fully assembled, by inspecting the immediately
// following character.
func (p *Parser) peekIsRedirStart(ctx context.Context) (bool, error) {
	b, atEOF, err := p.lex.PeekByte(ctx, FirstLine)
	if err != nil || atEOF {
		return false, err
	}
	return b == '<' || b == '>', nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isIoLocationCandidate recognizes the `{name}` form used by
// `exec {fd}<file`-style variable-held file descriptors; see
// DESIGN.md for the resolution of this otherwise-unspecified variant.
func isIoLocationCandidate(s string) bool {
	if len(s) < 3 || s[0] != '{' || s[len(s)-1] != '}' {
		return false
	}
	name := s[1 : len(s)-1]
	if name == "" {
		return false
	}
	if !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentCont(name[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// wordLiteralText returns the concatenated text of w if every unit is
// an unquoted literal character, which is the only shape eligible to
// be a keyword, an IoNumber, an IoLocation, or an alias name.
func wordLiteralText(w *Word) (string, bool) {
	var buf []byte
	for _, u := range w.Units {
		unq, ok := u.(*Unquoted)
		if !ok {
			return "", false
		}
		lit, ok := unq.Unit.(*Literal)
		if !ok {
			return "", false
		}
		buf = appendRune(buf, lit.Char)
	}
	return string(buf), true
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}
