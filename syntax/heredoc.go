package syntax

import "context"

// drainHeredocs resolves every here-document queued since the last
// drain, in the order their redirections appeared: at each newline
// token the parser reads one whole body (up to its delimiter line) per
// pending here-doc, before resuming normal tokenization.
// This mirrors mvdan.cc/sh/v3/syntax's doHeredocs / heredocs queue,
// adapted to fill this core's HereDocContent cells instead of a
// Stmt's Redirs in place.
func (p *Parser) drainHeredocs(ctx context.Context) error {
	pending := p.unreadHeredocs
	p.unreadHeredocs = nil
	for _, hd := range pending {
		text, err := p.readHereDocBody(ctx, hd)
		if err != nil {
			return err
		}
		hd.cell.set(text)
	}
	return nil
}

// readHereDocBody reads raw lines up to (but not including) a line
// equal to the delimiter, honoring RemoveTabs, then builds the body
// Text: verbatim if the delimiter was quoted, or with the usual
// $/`/\ expansions recognized if it was not.
func (p *Parser) readHereDocBody(ctx context.Context, hd *pendingHeredoc) (*Text, error) {
	delim, quoted := hereDocDelimiterText(hd.delimiter)

	start := p.lex.Location()
	var raw []byte
	if quoted {
		// A quoted delimiter suppresses all expansion in the body,
		// backslash-newline line continuation included: the content is
		// read back exactly as written, not reassembled across a split
		// line.
		release := p.lex.DisableLineContinuation()
		defer release()
	}
	for {
		line, atEOF, err := p.readRawLine(ctx)
		if err != nil {
			return nil, err
		}
		if atEOF {
			return nil, newSyntaxError(ErrUnclosedHereDocContent, start)
		}
		compareLine := line
		if hd.removeTabs {
			compareLine = trimLeadingTabs(line)
		}
		if compareLine == delim {
			break
		}
		if hd.removeTabs {
			raw = append(raw, trimLeadingTabs(line)...)
		} else {
			raw = append(raw, line...)
		}
		raw = append(raw, '\n')
	}
	end := p.lex.Location()

	var units []TextUnit
	if quoted {
		units = literalTextUnits(start.Code, string(raw))
	} else {
		var err error
		units, err = p.parseHereDocTextUnits(ctx, string(raw), start.Code.Origin)
		if err != nil {
			return nil, err
		}
	}
	return &Text{spanned: newSpanned(start.Code, start.Index, end.Index), Units: units}, nil
}

// readRawLine reads one line (without its trailing newline) directly
// from the char lexer, used for here-document bodies, which are read
// verbatim rather than tokenized.
func (p *Parser) readRawLine(ctx context.Context) (line string, atEOF bool, err error) {
	var buf []byte
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return "", false, err
		}
		if atEOF {
			if len(buf) == 0 {
				return "", true, nil
			}
			return string(buf), false, nil
		}
		p.lex.ConsumeByte(ctx, ContinuationLine)
		if b == '\n' {
			return string(buf), false, nil
		}
		buf = append(buf, b)
	}
}

func trimLeadingTabs(s string) string {
	i := 0
	for i < len(s) && s[i] == '\t' {
		i++
	}
	return s[i:]
}

// hereDocDelimiterText computes the literal comparison text of a
// here-document delimiter word and reports whether any part of it was
// quoted, which per POSIX suppresses expansion within the body.
func hereDocDelimiterText(w *Word) (text string, quoted bool) {
	var buf []byte
	for _, u := range w.Units {
		switch un := u.(type) {
		case *Unquoted:
			switch tu := un.Unit.(type) {
			case *Literal:
				buf = appendRune(buf, tu.Char)
			case *Backslashed:
				quoted = true
				buf = appendRune(buf, tu.Char)
			}
		case *SingleQuote:
			quoted = true
			buf = append(buf, un.Value...)
		case *DoubleQuote:
			quoted = true
			for _, tu := range un.Parts.Units {
				if lit, ok := tu.(*Literal); ok {
					buf = appendRune(buf, lit.Char)
				}
			}
		case *DollarSingleQuote:
			quoted = true
		}
	}
	return string(buf), quoted
}

// literalTextUnits builds one Literal TextUnit per rune of s, used for
// a quoted here-document body that receives no expansion.
func literalTextUnits(code *Code, s string) []TextUnit {
	units := make([]TextUnit, 0, len(s))
	for _, r := range s {
		units = append(units, &Literal{spanned: newSpanned(code, 0, 0), Char: r})
	}
	return units
}

// parseHereDocTextUnits expands an unquoted here-document body's
// $/`/\ constructs by temporarily pointing the char lexer at a
// throwaway buffer holding the already-read raw text, reusing the
// same unit parsers double-quote bodies use. The resulting spans are
// relative to this synthetic buffer rather than interleaved with the
// surrounding source, the same tradeoff the alias-splice mechanism
// makes for replacement text.
func (p *Parser) parseHereDocTextUnits(ctx context.Context, raw string, origin Origin) ([]TextUnit, error) {
	saved := p.lex
	p.lex = newCharLexer(NewStringInput(raw), origin)
	defer func() { p.lex = saved }()

	var units []TextUnit
	for {
		b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
		if err != nil {
			return nil, err
		}
		if atEOF {
			return units, nil
		}
		var tu TextUnit
		var err2 error
		switch b {
		case '$':
			u, err := p.lexDollarWordUnit(ctx, wcDoubleQuote)
			if err != nil {
				return nil, err
			}
			tu = u.(*Unquoted).Unit
		case '`':
			tu, err2 = p.lexBackquoteRaw(ctx, false)
		case '\\':
			tu, err2 = p.lexBackslashTextUnit(ctx)
		default:
			tu, err2 = p.lexLiteralTextUnit(ctx)
		}
		if err2 != nil {
			return nil, err2
		}
		units = append(units, tu)
	}
}
