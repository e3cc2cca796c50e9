package syntax

// applyTilde rewrites the leading literal run(s) of a freshly
// assembled Word into Tilde units. It is idempotent: a Word with no
// eligible `~name` run is returned unchanged. WithTildeEverywhere
// controls whether every colon-separated field of the word is a
// candidate (as in a PATH-like assignment value) or only the word's
// own front.
func (p *Parser) applyTilde(w *Word) {
	if p.tildeEverywhere {
		p.rewriteTildeEverywhere(w)
		return
	}
	p.rewriteTildeFront(w)
}

func (p *Parser) rewriteTildeFront(w *Word) {
	if tu, rest, ok := splitLeadingTilde(w.Units); ok {
		w.Units = rest
		if tu != nil {
			w.Units = append([]WordUnit{tu}, w.Units...)
		}
	}
}

// rewriteTildeEverywhere additionally recognizes a `~name` run
// immediately after an unquoted ':', the shape bash expands inside
// values like `PATH=~user/bin:~/bin`.
func (p *Parser) rewriteTildeEverywhere(w *Word) {
	var out []WordUnit
	rest := w.Units
	atFieldStart := true
	for len(rest) > 0 {
		if atFieldStart {
			if tu, after, ok := splitLeadingTilde(rest); ok {
				if tu != nil {
					out = append(out, tu)
				}
				rest = after
				atFieldStart = false
				continue
			}
		}
		out = append(out, rest[0])
		atFieldStart = isUnquotedColon(rest[0])
		rest = rest[1:]
	}
	w.Units = out
}

func isUnquotedColon(u WordUnit) bool {
	unq, ok := u.(*Unquoted)
	if !ok {
		return false
	}
	lit, ok := unq.Unit.(*Literal)
	return ok && lit.Char == ':'
}

// splitLeadingTilde recognizes a `~` optionally followed by an
// unquoted login-name run (letters, digits, '_', '-', '.') at the
// front of units, stopping at the first unit that isn't an unquoted
// literal eligible for a user name. It reports ok=false when units
// doesn't begin with an unquoted '~' at all.
func splitLeadingTilde(units []WordUnit) (tu WordUnit, rest []WordUnit, ok bool) {
	if len(units) == 0 {
		return nil, units, false
	}
	unq, isUnquoted := units[0].(*Unquoted)
	if !isUnquoted {
		return nil, units, false
	}
	lit, isLiteral := unq.Unit.(*Literal)
	if !isLiteral || lit.Char != '~' {
		return nil, units, false
	}

	i := 1
	for i < len(units) {
		u, isUnquoted := units[i].(*Unquoted)
		if !isUnquoted {
			break
		}
		l, isLiteral := u.Unit.(*Literal)
		if !isLiteral || !isTildeNameByte(l.Char) {
			break
		}
		i++
	}

	nameEnd := unq.End()
	var nameBuf []rune
	for j := 1; j < i; j++ {
		l := units[j].(*Unquoted).Unit.(*Literal)
		nameBuf = append(nameBuf, l.Char)
		nameEnd = units[j].End()
	}

	tilde := &Tilde{
		spanned: newSpanned(unq.Pos().Code, unq.Pos().Index, nameEnd.Index),
		Name:    string(nameBuf),
	}
	return tilde, units[i:], true
}

func isTildeNameByte(r rune) bool {
	return (r < 0x80 && isIdentCont(byte(r))) || r == '-' || r == '.'
}
