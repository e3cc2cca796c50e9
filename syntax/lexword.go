package syntax

import (
	"context"
	"errors"
	"strconv"
	"unicode/utf8"
)

// errUnbalanced is an internal sentinel returned by scanBalanced when
// the input runs out before the closing delimiter is found; callers
// translate it into a positioned ErrUnclosedCommandSubst.
var errUnbalanced = errors.New("syntax: unbalanced command substitution")

// wordContext tells the word sub-parser what ends the word it is
// currently assembling: a bare top-level word ends at a blank, an
// operator, a newline or EOF; a double-quote body ends at an
// unescaped '"'. Double-quoted content, arithmetic bodies and
// here-document bodies are read as plain Text rather than a Word, by
// lexTextUnits, lexArithBody and parseHereDocTextUnits respectively.
type wordContext int

const (
	wcWord wordContext = iota
	wcDoubleQuote
)

// lexWord assembles one Word starting at the current position,
// stopping at the boundary wc names. The caller (lexToken) has
// already established that the current byte is not itself a
// terminator.
func (p *Parser) lexWord(ctx context.Context, wc wordContext) (*Word, error) {
	start := p.lex.Location()
	var units []WordUnit

	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF {
			if wc == wcDoubleQuote {
				return nil, newSyntaxError(ErrUnclosedDoubleQuote, start)
			}
			break
		}
		if wc == wcWord && (isBlankByte(b) || b == '\n' || isOperatorStart(b)) {
			break
		}
		if wc == wcDoubleQuote && b == '"' {
			p.lex.ConsumeByte(ctx, ContinuationLine)
			break
		}

		var u WordUnit
		switch b {
		case '\'':
			if wc == wcDoubleQuote {
				u, err = p.lexLiteralRune(ctx)
			} else {
				u, err = p.lexSingleQuote(ctx)
			}
		case '"':
			u, err = p.lexDoubleQuote(ctx)
		case '$':
			u, err = p.lexDollarWordUnit(ctx, wc)
		case '`':
			u, err = p.lexBackquoteWordUnit(ctx, wc == wcDoubleQuote)
		case '\\':
			u, err = p.lexBackslashWordUnit(ctx, wc)
		default:
			u, err = p.lexLiteralRune(ctx)
		}
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	end := p.lex.Location()
	w := &Word{spanned: newSpanned(start.Code, start.Index, end.Index), Units: units}
	p.applyTilde(w)
	return w, nil
}

// lexTextUnits assembles the units of a Text (the content of a
// DoubleQuote) rather than a Word; it shares unit assembly with
// lexWord but never produces Tilde units.
func (p *Parser) lexTextUnits(ctx context.Context, closer byte) ([]TextUnit, Location, error) {
	start := p.lex.Location()
	var units []TextUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, Location{}, err
		}
		if atEOF {
			return nil, Location{}, newSyntaxError(ErrUnclosedDoubleQuote, start)
		}
		if b == closer {
			p.lex.ConsumeByte(ctx, ContinuationLine)
			return units, start, nil
		}
		var tu TextUnit
		switch b {
		case '$':
			u, err := p.lexDollarWordUnit(ctx, wcDoubleQuote)
			if err != nil {
				return nil, Location{}, err
			}
			tu = u.(*Unquoted).Unit
		case '`':
			bq, err := p.lexBackquoteRaw(ctx, true)
			if err != nil {
				return nil, Location{}, err
			}
			tu = bq
		case '\\':
			tu, err = p.lexBackslashTextUnit(ctx)
			if bs, ok := tu.(*Backslashed); ok && bs.Char != '$' && bs.Char != '`' && bs.Char != '"' && bs.Char != '\\' {
				// Outside the reduced escape set the backslash is literal.
				at := bs.Pos()
				units = append(units, &Literal{spanned: newSpanned(at.Code, at.Index, at.Index+1), Char: '\\'})
				tu = &Literal{spanned: newSpanned(at.Code, at.Index+1, bs.End().Index), Char: bs.Char}
			}
		default:
			tu, err = p.lexLiteralTextUnit(ctx)
		}
		if err != nil {
			return nil, Location{}, err
		}
		units = append(units, tu)
	}
}

// lexSingleQuote reads a 'string' unit verbatim: no escape processing
// at all, not even backslash, with line continuations disabled so a
// literal backslash-newline inside the quotes is preserved rather
// than elided.
func (p *Parser) lexSingleQuote(ctx context.Context) (WordUnit, error) {
	start := p.lex.Location()
	release := p.lex.DisableLineContinuation()
	defer release()
	p.lex.ConsumeByte(ctx, ContinuationLine) // the opening '

	contentStart := p.lex.Location()
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF {
			return nil, newSyntaxError(ErrUnclosedSingleQuote, start)
		}
		if b == '\'' {
			break
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
	}
	contentEnd := p.lex.Location()
	p.lex.ConsumeByte(ctx, ContinuationLine) // the closing '
	end := p.lex.Location()

	return &SingleQuote{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Value:   contentStart.Code.Slice(contentStart.Index, contentEnd.Index),
	}, nil
}

// lexDoubleQuote reads a "..." unit.
func (p *Parser) lexDoubleQuote(ctx context.Context) (WordUnit, error) {
	start := p.lex.Location()
	p.lex.ConsumeByte(ctx, ContinuationLine) // the opening "

	units, contentStart, err := p.lexTextUnits(ctx, '"')
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &DoubleQuote{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Parts: &Text{
			spanned: newSpanned(contentStart.Code, contentStart.Index, end.Index),
			Units:   units,
		},
	}, nil
}

// lexBackslashWordUnit handles an unquoted backslash escape: the
// following character is preserved, not interpreted, so a later
// expansion stage decides its meaning. Inside a double quote (read by
// lexTextUnits), only the reduced escape set ($ ` " \ and newline) is
// special; any other character keeps the backslash as a literal.
func (p *Parser) lexBackslashWordUnit(ctx context.Context, wc wordContext) (WordUnit, error) {
	u, err := p.lexBackslashTextUnit(ctx)
	if err != nil {
		return nil, err
	}
	return &Unquoted{spanned: newSpanned(u.Pos().Code, u.Pos().Index, u.End().Index), Unit: u}, nil
}

func (p *Parser) lexBackslashTextUnit(ctx context.Context) (TextUnit, error) {
	start := p.lex.Location()
	p.lex.ConsumeByte(ctx, ContinuationLine) // the backslash
	_, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return nil, err
	}
	if atEOF {
		// A trailing backslash with nothing after it is kept as a
		// literal backslash.
		end := p.lex.Location()
		return &Literal{spanned: newSpanned(start.Code, start.Index, end.Index), Char: '\\'}, nil
	}
	r, _, err := p.consumeRune(ctx)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &Backslashed{spanned: newSpanned(start.Code, start.Index, end.Index), Char: r}, nil
}

func (p *Parser) lexLiteralRune(ctx context.Context) (WordUnit, error) {
	u, err := p.lexLiteralTextUnit(ctx)
	if err != nil {
		return nil, err
	}
	return &Unquoted{spanned: newSpanned(u.Pos().Code, u.Pos().Index, u.End().Index), Unit: u}, nil
}

func (p *Parser) lexLiteralTextUnit(ctx context.Context) (TextUnit, error) {
	start := p.lex.Location()
	r, _, err := p.consumeRune(ctx)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &Literal{spanned: newSpanned(start.Code, start.Index, end.Index), Char: r}, nil
}

// consumeRune reads one full UTF-8 rune from the char lexer, which
// otherwise only deals in bytes; malformed encodings are passed
// through byte-for-byte as utf8.RuneError, matching how a shell must
// tolerate arbitrary bytes in a word.
func (p *Parser) consumeRune(ctx context.Context) (rune, int, error) {
	first, atEOF, err := p.lex.ConsumeByte(ctx, ContinuationLine)
	if err != nil || atEOF {
		return utf8.RuneError, 0, err
	}
	if first < utf8.RuneSelf {
		return rune(first), 1, nil
	}
	n := runeLen(first)
	buf := [utf8.UTFMax]byte{first}
	for i := 1; i < n; i++ {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return utf8.RuneError, 0, err
		}
		if atEOF || b&0xC0 != 0x80 {
			return rune(first), 1, nil
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
		buf[i] = b
	}
	r, size := utf8.DecodeRune(buf[:n])
	if r == utf8.RuneError && size == 1 {
		return rune(first), 1, nil
	}
	return r, size, nil
}

func runeLen(first byte) int {
	switch {
	case first&0xE0 == 0xC0:
		return 2
	case first&0xF0 == 0xE0:
		return 3
	case first&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// lexDollarWordUnit dispatches on the character following '$': a bare
// name, a brace expansion, a command substitution, an arithmetic
// expansion, or $'...'. A lone '$' with nothing expansion-shaped after
// it is a literal dollar sign.
func (p *Parser) lexDollarWordUnit(ctx context.Context, wc wordContext) (WordUnit, error) {
	start := p.lex.Location()
	p.lex.ConsumeByte(ctx, ContinuationLine) // the $

	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return nil, err
	}
	if atEOF {
		end := p.lex.Location()
		lit := &Literal{spanned: newSpanned(start.Code, start.Index, end.Index), Char: '$'}
		return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: lit}, nil
	}

	switch {
	case b == '\'' && wc != wcDoubleQuote:
		return p.lexDollarSingleQuote(ctx, start)
	case b == '(':
		return p.lexDollarParen(ctx, start)
	case b == '{':
		return p.lexBracedParam(ctx, start)
	case isParamLeadByte(b):
		return p.lexRawParam(ctx, start)
	default:
		end := p.lex.Location()
		lit := &Literal{spanned: newSpanned(start.Code, start.Index, end.Index), Char: '$'}
		return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: lit}, nil
	}
}

// isParamLeadByte reports whether b can start an unbraced parameter
// name: an identifier, a digit (positional parameter), or one of the
// POSIX special parameters.
func isParamLeadByte(b byte) bool {
	if isIdentStart(b) || (b >= '0' && b <= '9') {
		return true
	}
	switch b {
	case '@', '*', '#', '?', '-', '$', '!':
		return true
	}
	return false
}

func (p *Parser) lexRawParam(ctx context.Context, start Location) (WordUnit, error) {
	b, _, _ := p.lex.PeekByte(ctx, ContinuationLine)
	var name string
	if isIdentStart(b) {
		nameStart := p.lex.Location()
		for {
			b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return nil, err
			}
			if atEOF || !isIdentCont(b) {
				break
			}
			p.lex.ConsumeByte(ctx, ContinuationLine)
		}
		nameEnd := p.lex.Location()
		name = nameStart.Code.Slice(nameStart.Index, nameEnd.Index)
	} else {
		// A single digit or special-parameter character; only one byte
		// is ever part of an unbraced parameter name for these classes.
		p.lex.ConsumeByte(ctx, ContinuationLine)
		name = string(b)
	}
	end := p.lex.Location()
	tu := &RawParam{spanned: newSpanned(start.Code, start.Index, end.Index), Name: name}
	return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: tu}, nil
}

// lexDollarParen distinguishes $(( arithmetic )) from $( command ):
// the two share a prefix and are told apart by trying the arithmetic
// form first and backing off if it doesn't close.
func (p *Parser) lexDollarParen(ctx context.Context, start Location) (WordUnit, error) {
	p.lex.ConsumeByte(ctx, ContinuationLine) // the (
	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return nil, err
	}
	if !atEOF && b == '(' {
		mark := p.lex.Location()
		p.lex.ConsumeByte(ctx, ContinuationLine) // the second (
		content, closedArith, err := p.lexArithBody(ctx)
		if err != nil {
			return nil, err
		}
		if closedArith {
			end := p.lex.Location()
			tu := &Arith{spanned: newSpanned(start.Code, start.Index, end.Index), Content: content}
			return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: tu}, nil
		}
		// Not actually $((...)): only one extra '(' was meant for a
		// nested subshell inside $( ( ... ) ). Rewind and parse as a
		// normal command substitution instead.
		p.lex.Rewind(mark)
	}

	list, err := p.lexCommandSubstBody(ctx, start)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	tu := &CommandSubst{spanned: newSpanned(start.Code, start.Index, end.Index), Content: list}
	return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: tu}, nil
}

// lexArithBody scans $(( ... )) content as raw Text up to the matching
// `))`, tracking nested parens so an inner `(1+2)` doesn't end the
// expansion early. ok is false if the input never produces a matching
// `))` on this attempt without first unbalancing below zero, in which
// case the caller treats the leading $(( as a command substitution
// with a nested subshell instead.
func (p *Parser) lexArithBody(ctx context.Context) (content *Text, ok bool, err error) {
	start := p.lex.Location()
	depth := 0
	var units []TextUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, false, err
		}
		if atEOF {
			return nil, false, newSyntaxError(ErrUnclosedArith, start)
		}
		if b == ')' && depth == 0 {
			mark := p.lex.Location()
			p.lex.ConsumeByte(ctx, ContinuationLine)
			b2, atEOF2, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return nil, false, err
			}
			if !atEOF2 && b2 == ')' {
				p.lex.ConsumeByte(ctx, ContinuationLine)
				return &Text{spanned: newSpanned(start.Code, start.Index, mark.Index), Units: units}, true, nil
			}
			p.lex.Rewind(mark)
			return nil, false, nil
		}
		if b == '(' {
			depth++
		} else if b == ')' {
			depth--
		}
		tu, err := p.lexLiteralTextUnit(ctx)
		if err != nil {
			return nil, false, err
		}
		units = append(units, tu)
	}
}

// lexCommandSubstBody scans the raw text of a $( ... ) command
// substitution up to its matching close, tracking nested quotes and
// parens, then recursively parses the extracted text with a fresh
// Parser over the same alias table: a command substitution's body is
// itself a complete command list, and the items of all its command
// lines are collected into one List. This
// two-pass shape — scan the matching delimiter raw, then re-parse the
// substring — mirrors how mvdan.cc/sh/v3/syntax's parser recurses into
// p.stmts for CmdSubst, adapted here to work across this parser's
// Code/Location machinery instead of one flat token stream.
func (p *Parser) lexCommandSubstBody(ctx context.Context, start Location) (*List, error) {
	raw, err := p.scanBalanced(ctx, '(', ')')
	if err != nil {
		return nil, newSyntaxError(ErrUnclosedCommandSubst, start)
	}
	sub := NewParser(NewStringInput(raw), WithAliases(p.aliases), WithPosixConformant(p.posixConformant), WithTildeEverywhere(p.tildeEverywhere))
	list, err := sub.ParseCommandLine(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = &List{spanned: newSpanned(start.Code, start.Index, start.Index)}
	}
	for {
		more, err := sub.ParseCommandLine(ctx)
		if err != nil {
			return nil, err
		}
		if more == nil {
			return list, nil
		}
		list = &List{spanned: newSpanned(list.Pos().Code, list.Pos().Index, more.End().Index), Items: append(list.Items, more.Items...)}
	}
}

// scanBalanced consumes bytes up to (and including) the close byte
// that balances the already-consumed open byte, honoring nested
// quotes and backslash escapes so a `)` or `` ` `` inside a string
// literal doesn't end the scan early. It returns the text strictly
// between open and close.
func (p *Parser) scanBalanced(ctx context.Context, open, close byte) (string, error) {
	start := p.lex.Location()
	depth := 1
	var inSingle, inDouble bool
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return "", err
		}
		if atEOF {
			return "", errUnbalanced
		}
		switch {
		case inSingle:
			if b == '\'' {
				inSingle = false
			}
		case inDouble:
			if b == '\\' {
				p.lex.ConsumeByte(ctx, ContinuationLine)
				if _, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); atEOF {
					return "", errUnbalanced
				}
			} else if b == '"' {
				inDouble = false
			}
		case b == '\'':
			inSingle = true
		case b == '"':
			inDouble = true
		case b == '\\':
			p.lex.ConsumeByte(ctx, ContinuationLine)
			if _, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); atEOF {
				return "", errUnbalanced
			}
		case b == open:
			depth++
		case b == close:
			depth--
			if depth == 0 {
				end := p.lex.Location()
				p.lex.ConsumeByte(ctx, ContinuationLine)
				return start.Code.Slice(start.Index, end.Index), nil
			}
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
	}
}

// lexBackquoteWordUnit reads a `` `...` `` unit as a WordUnit.
func (p *Parser) lexBackquoteWordUnit(ctx context.Context, inDoubleQuote bool) (WordUnit, error) {
	bq, err := p.lexBackquoteRaw(ctx, inDoubleQuote)
	if err != nil {
		return nil, err
	}
	return &Unquoted{spanned: newSpanned(bq.Pos().Code, bq.Pos().Index, bq.End().Index), Unit: bq}, nil
}

// lexBackquoteRaw reads a `` `...` `` unit's raw content without
// parsing it into commands (word.go's Backquote doc comment). Inside
// a double-quote context, `\"` is additionally special per POSIX's
// backquote escaping rules.
func (p *Parser) lexBackquoteRaw(ctx context.Context, inDoubleQuote bool) (*Backquote, error) {
	start := p.lex.Location()
	p.lex.ConsumeByte(ctx, ContinuationLine) // opening `

	var units []BackquoteUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF {
			return nil, newSyntaxError(ErrUnclosedBackquote, start)
		}
		if b == '`' {
			p.lex.ConsumeByte(ctx, ContinuationLine)
			break
		}
		if b == '\\' {
			escStart := p.lex.Location()
			p.lex.ConsumeByte(ctx, ContinuationLine)
			nb, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return nil, err
			}
			special := !atEOF && (nb == '`' || nb == '\\' || nb == '$' || (inDoubleQuote && nb == '"'))
			if !atEOF && special {
				r, _, err := p.consumeRune(ctx)
				if err != nil {
					return nil, err
				}
				end := p.lex.Location()
				units = append(units, &BackquoteBackslashed{spanned: newSpanned(escStart.Code, escStart.Index, end.Index), Char: r})
			} else {
				end := p.lex.Location()
				units = append(units, &BackquoteLiteral{spanned: newSpanned(escStart.Code, escStart.Index, end.Index), Char: '\\'})
			}
			continue
		}
		litStart := p.lex.Location()
		r, _, err := p.consumeRune(ctx)
		if err != nil {
			return nil, err
		}
		end := p.lex.Location()
		units = append(units, &BackquoteLiteral{spanned: newSpanned(litStart.Code, litStart.Index, end.Index), Char: r})
	}
	end := p.lex.Location()
	return &Backquote{spanned: newSpanned(start.Code, start.Index, end.Index), Content: units}, nil
}

// lexDollarSingleQuote reads a $'...' unit using the POSIX backslash
// escape alphabet.
func (p *Parser) lexDollarSingleQuote(ctx context.Context, start Location) (WordUnit, error) {
	p.lex.ConsumeByte(ctx, ContinuationLine) // the '
	release := p.lex.DisableLineContinuation()
	defer release()

	var units []EscapeUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF {
			return nil, newSyntaxError(ErrUnclosedDollarSingleQuote, start)
		}
		if b == '\'' {
			p.lex.ConsumeByte(ctx, ContinuationLine)
			break
		}
		u, err := p.lexEscapeUnit(ctx)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	end := p.lex.Location()
	return &DollarSingleQuote{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Value:   EscapedString{Units: units},
	}, nil
}

// lexEscapeUnit reads one element of a $'...' body: either a backslash
// escape from the POSIX alphabet, or a literal character.
func (p *Parser) lexEscapeUnit(ctx context.Context) (EscapeUnit, error) {
	start := p.lex.Location()
	b, _, _ := p.lex.PeekByte(ctx, ContinuationLine)
	if b != '\\' {
		r, _, err := p.consumeRune(ctx)
		if err != nil {
			return EscapeUnit{}, err
		}
		end := p.lex.Location()
		return EscapeUnit{Kind: EscLiteral, Rune: r, Span: Span{start.Code, start.Index, end.Index}}, nil
	}
	p.lex.ConsumeByte(ctx, ContinuationLine) // backslash
	nb, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return EscapeUnit{}, err
	}
	if atEOF {
		end := p.lex.Location()
		return EscapeUnit{Kind: EscLiteral, Rune: '\\', Span: Span{start.Code, start.Index, end.Index}}, nil
	}

	simple := map[byte]EscapeKind{
		'"': EscDoubleQuote, '\'': EscSingleQuote, '\\': EscBackslash, '?': EscQuestion,
		'a': EscAlert, 'b': EscBackspace, 'e': EscEscape, 'f': EscFormFeed,
		'n': EscNewline, 'r': EscCarriageReturn, 't': EscTab, 'v': EscVerticalTab,
	}
	if kind, ok := simple[nb]; ok {
		p.lex.ConsumeByte(ctx, ContinuationLine)
		end := p.lex.Location()
		return EscapeUnit{Kind: kind, Span: Span{start.Code, start.Index, end.Index}}, nil
	}
	switch {
	case nb >= '0' && nb <= '7':
		val := 0
		for i := 0; i < 3; i++ {
			b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return EscapeUnit{}, err
			}
			if atEOF || b < '0' || b > '7' {
				break
			}
			p.lex.ConsumeByte(ctx, ContinuationLine)
			val = val*8 + int(b-'0')
		}
		end := p.lex.Location()
		return EscapeUnit{Kind: EscOctal, Byte: byte(val), Span: Span{start.Code, start.Index, end.Index}}, nil
	case nb == 'x':
		p.lex.ConsumeByte(ctx, ContinuationLine)
		digits := p.consumeHexDigits(ctx, 2)
		val, _ := strconv.ParseUint(digits, 16, 8)
		end := p.lex.Location()
		return EscapeUnit{Kind: EscHex, Byte: byte(val), Span: Span{start.Code, start.Index, end.Index}}, nil
	case nb == 'u' || nb == 'U':
		p.lex.ConsumeByte(ctx, ContinuationLine)
		width := 4
		if nb == 'U' {
			width = 8
		}
		digits := p.consumeHexDigits(ctx, width)
		val, _ := strconv.ParseUint(digits, 16, 32)
		end := p.lex.Location()
		return EscapeUnit{Kind: EscUnicode, Rune: rune(val), Span: Span{start.Code, start.Index, end.Index}}, nil
	case nb == 'c':
		p.lex.ConsumeByte(ctx, ContinuationLine)
		cb, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return EscapeUnit{}, err
		}
		if atEOF {
			end := p.lex.Location()
			return EscapeUnit{Kind: EscLiteral, Rune: 'c', Span: Span{start.Code, start.Index, end.Index}}, nil
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
		end := p.lex.Location()
		return EscapeUnit{Kind: EscControl, Byte: cb & 0x1f, Span: Span{start.Code, start.Index, end.Index}}, nil
	default:
		r, _, err := p.consumeRune(ctx)
		if err != nil {
			return EscapeUnit{}, err
		}
		end := p.lex.Location()
		return EscapeUnit{Kind: EscLiteral, Rune: r, Span: Span{start.Code, start.Index, end.Index}}, nil
	}
}

func (p *Parser) consumeHexDigits(ctx context.Context, max int) string {
	var buf []byte
	for i := 0; i < max; i++ {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil || atEOF || !isHexDigit(b) {
			break
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
		buf = append(buf, b)
	}
	return string(buf)
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// lexBracedParam reads a `${...}` unit: name, optional `[index]`,
// optional length or switch/trim modifier.
func (p *Parser) lexBracedParam(ctx context.Context, start Location) (WordUnit, error) {
	p.lex.ConsumeByte(ctx, ContinuationLine) // the {

	var length bool
	if b, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); !atEOF && b == '#' {
		// `${#name}` unless this is actually `${#}` (the special
		// parameter) — disambiguate by checking whether a name follows.
		mark := p.lex.Location()
		p.lex.ConsumeByte(ctx, ContinuationLine)
		if nb, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); !atEOF && (isIdentStart(nb) || nb == '}') && nb != '}' {
			length = true
		} else {
			p.lex.Rewind(mark)
		}
	}

	ident, err := p.lexParamIdent(ctx, start)
	if err != nil {
		return nil, err
	}

	var index *Word
	if b, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); !atEOF && b == '[' {
		p.lex.ConsumeByte(ctx, ContinuationLine)
		idx, err := p.lexWordUntilByte(ctx, ']')
		if err != nil {
			return nil, err
		}
		index = idx
	}

	var modifier ParamModifier
	if length {
		modifier = LengthModifier{}
	} else if mod, err := p.lexParamModifier(ctx); err != nil {
		return nil, err
	} else {
		modifier = mod
	}

	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return nil, err
	}
	if atEOF || b != '}' {
		return nil, newSyntaxError(ErrUnclosedParam, start)
	}
	p.lex.ConsumeByte(ctx, ContinuationLine)
	end := p.lex.Location()

	tu := &BracedParam{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Param:   Param{Ident: ident, Index: index, Modifier: modifier},
	}
	return &Unquoted{spanned: newSpanned(start.Code, start.Index, end.Index), Unit: tu}, nil
}

func (p *Parser) lexParamIdent(ctx context.Context, paramStart Location) (ParamIdent, error) {
	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil {
		return ParamIdent{}, err
	}
	if atEOF {
		return ParamIdent{}, newSyntaxError(ErrUnclosedParam, paramStart)
	}
	switch {
	case isIdentStart(b):
		nameStart := p.lex.Location()
		for {
			b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return ParamIdent{}, err
			}
			if atEOF || !isIdentCont(b) {
				break
			}
			p.lex.ConsumeByte(ctx, ContinuationLine)
		}
		nameEnd := p.lex.Location()
		return ParamIdent{Kind: ParamName, Name: nameStart.Code.Slice(nameStart.Index, nameEnd.Index)}, nil
	case b >= '0' && b <= '9':
		nameStart := p.lex.Location()
		for {
			b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
			if err != nil {
				return ParamIdent{}, err
			}
			if atEOF || b < '0' || b > '9' {
				break
			}
			p.lex.ConsumeByte(ctx, ContinuationLine)
		}
		nameEnd := p.lex.Location()
		return ParamIdent{Kind: ParamPositional, Name: nameStart.Code.Slice(nameStart.Index, nameEnd.Index)}, nil
	default:
		p.lex.ConsumeByte(ctx, ContinuationLine)
		return ParamIdent{Kind: ParamSpecial, Name: string(b)}, nil
	}
}

// lexParamModifier reads an optional switch or trim modifier following
// a parameter name/index inside `${...}`.
func (p *Parser) lexParamModifier(ctx context.Context) (ParamModifier, error) {
	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil || atEOF || b == '}' {
		return nil, err
	}

	if b == '#' || b == '%' {
		side := TrimPrefix
		if b == '%' {
			side = TrimSuffix
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
		long := false
		if nb, atEOF, _ := p.lex.PeekByte(ctx, ContinuationLine); !atEOF && nb == b {
			p.lex.ConsumeByte(ctx, ContinuationLine)
			long = true
		}
		w, err := p.lexWordUntilByte(ctx, '}')
		if err != nil {
			return nil, err
		}
		return TrimModifier{Side: side, Long: long, Word: w}, nil
	}

	colon := false
	if b == ':' {
		p.lex.ConsumeByte(ctx, ContinuationLine)
		colon = true
		b, atEOF, err = p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil || atEOF {
			return nil, err
		}
	}
	var action SwitchAction
	switch b {
	case '-':
		action = SwitchDefault
	case '=':
		action = SwitchAssign
	case '?':
		action = SwitchError
	case '+':
		action = SwitchAlternative
	default:
		return nil, newSyntaxError(ErrUnclosedParam, p.lex.Location())
	}
	p.lex.ConsumeByte(ctx, ContinuationLine)
	w, err := p.lexWordUntilByte(ctx, '}')
	if err != nil {
		return nil, err
	}
	return SwitchModifier{Colon: colon, Action: action, Word: w}, nil
}

// lexWordUntilByte reads a Word whose units continue until an unquoted
// occurrence of closer, used for `${name[index]}`'s index and every
// modifier's replacement word; closer itself is left unconsumed.
func (p *Parser) lexWordUntilByte(ctx context.Context, closer byte) (*Word, error) {
	start := p.lex.Location()
	var units []WordUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF || b == closer {
			break
		}
		var u WordUnit
		switch b {
		case '\'':
			u, err = p.lexSingleQuote(ctx)
		case '"':
			u, err = p.lexDoubleQuote(ctx)
		case '$':
			u, err = p.lexDollarWordUnit(ctx, wcWord)
		case '`':
			u, err = p.lexBackquoteWordUnit(ctx, false)
		case '\\':
			u, err = p.lexBackslashWordUnit(ctx, wcWord)
		default:
			u, err = p.lexLiteralRune(ctx)
		}
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	end := p.lex.Location()
	return &Word{spanned: newSpanned(start.Code, start.Index, end.Index), Units: units}, nil
}
