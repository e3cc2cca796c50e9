package syntax

import "context"

// ParserOption configures a Parser at construction time. Functional
// options replace mvdan.cc/sh/v3/syntax.ParseMode's bitmask approach
// because this parser's knobs are richer than a flag set: an
// AliasGlossary and an Input aren't simple booleans.
type ParserOption func(*Parser)

// WithAliases supplies the alias table the parser consults for
// command-name and global-alias substitution. The default is
// NoAliases.
func WithAliases(g AliasGlossary) ParserOption {
	return func(p *Parser) { p.aliases = g }
}

// WithPosixConformant records POSIX-conformant mode on the Parser and
// passes it on to the parsers of command-substitution bodies. This
// core does not hardcode a fixed POSIX policy: no check in the parser
// reads the flag, so the same input parses the same way with it on or
// off (disabling parse_tilde_everywhere is a separate option). See
// DESIGN.md for the chosen scope of this flag.
func WithPosixConformant(posix bool) ParserOption {
	return func(p *Parser) { p.posixConformant = posix }
}

// WithTildeEverywhere selects parse_tilde_everywhere over
// parse_tilde_front.
func WithTildeEverywhere(everywhere bool) ParserOption {
	return func(p *Parser) { p.tildeEverywhere = everywhere }
}

// WithName attaches a display name (e.g. a file path) used in
// OriginFile and in rendered diagnostics.
func WithName(name string) ParserOption {
	return func(p *Parser) { p.name = name }
}

// Parser is a recursive-descent consumer. A Parser is created once
// per input stream and then drives one command line at a time via
// ParseCommandLine; its alias table may be mutated by the caller
// between calls.
type Parser struct {
	lex *charLexer

	aliases         AliasGlossary
	posixConformant bool
	tildeEverywhere bool
	name            string

	pending *pendingToken // one-token lookahead buffer

	unreadHeredocs []*pendingHeredoc
	buriedHeredocs int // length of unreadHeredocs already claimed by an outer command substitution

	// lastSpliceEndedInBlank records whether the most recent alias
	// splice's replacement text ended in a blank, which re-enables
	// alias substitution on the next token.
	lastSpliceEndedInBlank bool

	// activeAliasSplices counts the alias splices of the current
	// command line; it bounds runaway recursion as a defensive
	// backstop in addition to the Origin-chain check.
	activeAliasSplices int
}

const maxAliasSplices = 4096

// pendingToken is the one-token lookahead buffer.
type pendingToken struct {
	tok *LexToken
	err error
}

// pendingHeredoc is an entry in the queue of here-documents whose
// content has been promised but not yet read.
type pendingHeredoc struct {
	delimiter  *Word
	removeTabs bool
	cell       *HereDocContent
	redirEnd   Location // location of the newline that will trigger the read
}

// NewParser creates a Parser reading from in.
func NewParser(in Input, opts ...ParserOption) *Parser {
	p := &Parser{aliases: NoAliases}
	for _, opt := range opts {
		opt(p)
	}
	var origin Origin = OriginUnknown{}
	if p.name != "" {
		origin = OriginFile{Path: p.name}
	}
	p.lex = newCharLexer(in, origin)
	return p
}

// ParseCommandLine parses one command line: either a complete List,
// or nil at EOF. On error, the parser has consumed an unspecified
// prefix of the input and must not be reused; create a fresh Parser
// (with a fresh Input resuming where the caller chooses) to recover —
// this parser makes no attempt at error recovery mid-stream.
func (p *Parser) ParseCommandLine(ctx context.Context) (*List, error) {
	p.activeAliasSplices = 0
	// Skip any number of bare newlines before the list, and report EOF
	// if that's all there is.
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tok.Kind == tkEOF {
			return nil, nil
		}
		if tok.Kind == tkOperator && tok.Operator == newlineTok {
			p.takeRaw()
			continue
		}
		break
	}

	list, err := p.parseList(ctx, nil, false)
	if err != nil {
		p.freePendingHeredocs()
		return nil, err
	}

	if err := p.expectLineEnd(ctx); err != nil {
		p.freePendingHeredocs()
		return nil, err
	}

	if len(p.unreadHeredocs) > 0 {
		hd := p.unreadHeredocs[0]
		p.freePendingHeredocs()
		return nil, newSyntaxError(ErrMissingHereDocContent, hd.delimiter.Pos())
	}

	return list, nil
}

func (p *Parser) freePendingHeredocs() {
	p.unreadHeredocs = nil
}

// expectLineEnd enforces the trailing-token rule: after a full
// command line, the next token must be a newline or EOF.
func (p *Parser) expectLineEnd(ctx context.Context) error {
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return err
	}
	switch {
	case tok.Kind == tkEOF:
		return nil
	case tok.Kind == tkOperator && tok.Operator == newlineTok:
		p.takeRaw()
		return p.drainHeredocs(ctx)
	default:
		return newSyntaxError(classifyTrailingToken(tok), tok.StartLoc)
	}
}

// classifyTrailingToken maps an unexpected trailing token to the most
// specific error kind available, falling back to a generic one.
func classifyTrailingToken(tok *LexToken) ErrorKind {
	if tok.Kind == tkWord && tok.Keyword != kwNone {
		switch tok.Keyword {
		case kwRbrace:
			return ErrUnopenedGrouping
		case kwDone:
			return ErrUnopenedLoop
		case kwDo:
			return ErrUnopenedDoClause
		case kwFi, kwElse, kwElif, kwThen:
			return ErrUnopenedIf
		case kwEsac:
			return ErrUnopenedCase
		case kwIn:
			return ErrInAsCommandName
		}
	}
	if tok.Kind == tkOperator && tok.Operator == rparenTok {
		return ErrUnopenedSubshell
	}
	return ErrMissingSeparator
}

// peekRaw returns the next token without alias substitution, buffering
// it for the next take.
func (p *Parser) peekRaw(ctx context.Context) (*LexToken, error) {
	if p.pending == nil {
		tok, err := p.lexToken(ctx)
		p.pending = &pendingToken{tok: tok, err: err}
	}
	if p.pending.err != nil {
		return nil, p.pending.err
	}
	return p.pending.tok, nil
}

// takeRaw consumes the buffered token.
func (p *Parser) takeRaw() *LexToken {
	tok := p.pending.tok
	p.pending = nil
	return tok
}

// aliasResult is the outcome of takeTokenManual.
type aliasResult int

const (
	parsed aliasResult = iota
	aliasSubstituted
)

// resolveAlias substitutes the currently peeked token if it is a
// plain word naming an alias eligible at this position, pushing the
// replacement onto the char lexer and reporting whether a splice
// happened. isCommandName marks a grammatical position where a plain
// (non-global) alias is eligible. It never consumes a non-alias
// token, so callers can freely re-peek afterward.
func (p *Parser) resolveAlias(ctx context.Context, isCommandName bool) (bool, error) {
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return false, err
	}
	if tok.Kind != tkWord || tok.Keyword != kwNone {
		return false, nil
	}
	lit, ok := wordLiteralText(tok.Word)
	if !ok {
		return false, nil
	}
	entry, ok := p.aliases.Get(lit)
	if !ok {
		p.lastSpliceEndedInBlank = false
		return false, nil
	}
	eligible := isCommandName || entry.Global || p.lastSpliceEndedInBlank
	if !eligible {
		p.lastSpliceEndedInBlank = false
		return false, nil
	}
	if IsAliasFor(tok.StartLoc.Code.Origin, lit) || p.activeAliasSplices >= maxAliasSplices {
		// Recursion guard: this name is already being expanded
		// somewhere on the current chain, or we've spliced implausibly
		// many times; treat it as an ordinary word instead of looping
		// forever.
		return false, nil
	}

	// Splice: consume the token (advancing the underlying read
	// position past it), then redirect future reads to the
	// replacement.
	start := tok.StartLoc
	p.takeRaw()
	p.lex.PushAliasSplice(entry, start)
	p.activeAliasSplices++
	p.lastSpliceEndedInBlank = len(entry.Replacement) > 0 && isBlankByte(entry.Replacement[len(entry.Replacement)-1])
	return true, nil
}

// resolveCommandAliases repeats resolveAlias at a command-name
// position until the next raw token is no longer a substitutable
// alias name. Call this before deciding how to parse the upcoming
// token (negation, compound-command keyword, or plain simple
// command), so that a replacement beginning with "!" or a reserved
// word is visible to that decision instead of being trapped inside
// whichever production first peeked the alias name.
func (p *Parser) resolveCommandAliases(ctx context.Context) error {
	for {
		substituted, err := p.resolveAlias(ctx, true)
		if err != nil {
			return err
		}
		if !substituted {
			return nil
		}
	}
}

// takeTokenManual tries an alias substitution once at the current
// token. isCommandName marks a grammatical position where a plain
// (non-global) alias is eligible.
func (p *Parser) takeTokenManual(ctx context.Context, isCommandName bool) (*LexToken, aliasResult, error) {
	substituted, err := p.resolveAlias(ctx, isCommandName)
	if err != nil {
		return nil, parsed, err
	}
	if substituted {
		return nil, aliasSubstituted, nil
	}
	return p.takeRaw(), parsed, nil
}

// takeTokenAuto loops performing substitutions until either a keyword
// in allowKeywords appears (returned verbatim, bypassing alias
// substitution even if it would otherwise apply) or a non-alias token
// is produced.
func (p *Parser) takeTokenAuto(ctx context.Context, allowKeywords ...Keyword) (*LexToken, error) {
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tok.Kind == tkWord && tok.Keyword != kwNone {
			for _, k := range allowKeywords {
				if tok.Keyword == k {
					return p.takeRaw(), nil
				}
			}
		}
		got, res, err := p.takeTokenManual(ctx, true)
		if err != nil {
			return nil, err
		}
		if res == parsed {
			return got, nil
		}
		// aliasSubstituted: loop and re-peek.
	}
}

// hasBlank reports whether the very next unread character is a blank,
// without a token currently peeked. It is used by the parser only at
// positions where no lookahead is pending.
func (p *Parser) hasBlank(ctx context.Context) (bool, error) {
	if p.pending != nil {
		panic("syntax: hasBlank called with a token already peeked")
	}
	b, atEOF, err := p.lex.PeekByte(ctx, ContinuationLine)
	if err != nil || atEOF {
		return false, err
	}
	return isBlankByte(b), nil
}

func isBlankByte(b byte) bool { return b == ' ' || b == '\t' }
