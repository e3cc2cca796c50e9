package syntax

import (
	"context"
	"errors"
	"strconv"
)

// errNoCommand is an internal sentinel returned by parseCommand when
// the current position cannot start a command at all; callers that
// require a command here (a pipeline's first slot, the word after `|`
// or `!`) turn it into the precise ErrorKind that fits their position
// rather than a generic "expected a command".
var errNoCommand = errors.New("syntax: no command here")

// compoundLeaders is the set of keywords that begin a compound
// command or function definition, tried before falling back to a
// simple command.
var compoundLeaders = []Keyword{kwLbrace, kwFor, kwWhile, kwUntil, kwIf, kwCase, kwFunction}

// parseList parses a compound_list/list production: a sequence of
// Items separated by ';', '&' or newlines. enders names the keywords
// that end this list without being consumed (e.g.
// "fi", "done") for a compound command's body; an empty enders means
// the top-level command line, which instead stops at the first
// unconsumed newline or EOF, or before a closing token such as '}',
// "done" or ')' that cannot start a command, and lets the caller
// (ParseCommandLine) consume or report it. A list whose enders include
// "esac" (a case item body) also stops before ';;', ';&' or ';;&'.
// rparenEnds additionally stops the list before an unconsumed ')' for
// a subshell or command substitution body.
func (p *Parser) parseList(ctx context.Context, enders []Keyword, rparenEnds bool) (*List, error) {
	start := p.lex.Location()
	var items []*Item

	for {
		if len(enders) > 0 || rparenEnds {
			if err := p.skipLinebreak(ctx); err != nil {
				return nil, err
			}
		}
		if done, err := p.listEnds(ctx, enders, rparenEnds); err != nil {
			return nil, err
		} else if done {
			break
		}

		item, err := p.parseItem(ctx, enders, rparenEnds)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Kind == tkOperator && (tok.Operator == semiTok || tok.Operator == andTok):
			p.takeRaw()
		case tok.Kind == tkOperator && tok.Operator == newlineTok && (len(enders) > 0 || rparenEnds):
			// loop head will consume the newline(s) via skipLinebreak
		default:
			end := p.lex.Location()
			return &List{spanned: newSpanned(start.Code, start.Index, end.Index), Items: items}, nil
		}
	}

	end := p.lex.Location()
	return &List{spanned: newSpanned(start.Code, start.Index, end.Index), Items: items}, nil
}

// listEnds reports whether the list parsing loop should stop without
// consuming the next token.
func (p *Parser) listEnds(ctx context.Context, enders []Keyword, rparenEnds bool) (bool, error) {
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return false, err
	}
	if tok.Kind == tkEOF {
		return true, nil
	}
	if len(enders) == 0 && !rparenEnds && tok.Kind == tkOperator && tok.Operator == newlineTok {
		return true, nil
	}
	if tok.Kind == tkWord && tok.Keyword != kwNone {
		for _, k := range enders {
			if tok.Keyword == k {
				return true, nil
			}
		}
	}
	if rparenEnds && tok.Kind == tkOperator && tok.Operator == rparenTok {
		return true, nil
	}
	if tok.Kind == tkOperator && (tok.Operator == dsemiTok || tok.Operator == semiAndTok || tok.Operator == dsemiAndTok) {
		for _, k := range enders {
			if k == kwEsac {
				return true, nil
			}
		}
	}
	if len(enders) == 0 && !rparenEnds && classifyTrailingToken(tok) != ErrMissingSeparator {
		return true, nil
	}
	return false, nil
}

// skipLinebreak consumes any run of newline tokens, draining pending
// here-documents after each one: a linebreak is exactly the point at
// which a deferred here-doc body becomes readable.
func (p *Parser) skipLinebreak(ctx context.Context) error {
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return err
		}
		if !(tok.Kind == tkOperator && tok.Operator == newlineTok) {
			return nil
		}
		p.takeRaw()
		if err := p.drainHeredocs(ctx); err != nil {
			return err
		}
	}
}

func (p *Parser) parseItem(ctx context.Context, enders []Keyword, rparenEnds bool) (*Item, error) {
	start := p.lex.Location()
	andOr, err := p.parseAndOrList(ctx, enders, rparenEnds)
	if err != nil {
		return nil, err
	}
	async := false
	var asyncAt Location
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind == tkOperator && tok.Operator == andTok {
		asyncAt = tok.StartLoc
		p.takeRaw()
		async = true
	}
	end := p.lex.Location()
	return &Item{spanned: newSpanned(start.Code, start.Index, end.Index), AndOr: andOr, Async: async, AsyncAt: asyncAt}, nil
}

func (p *Parser) parseAndOrList(ctx context.Context, enders []Keyword, rparenEnds bool) (*AndOrList, error) {
	start := p.lex.Location()
	first, err := p.parsePipeline(ctx, enders, rparenEnds)
	if err != nil {
		return nil, err
	}
	var rest []AndOrItem
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		var op AndOr
		switch {
		case tok.Kind == tkOperator && tok.Operator == andAndTok:
			op = AndThen
		case tok.Kind == tkOperator && tok.Operator == pipeAndTok:
			op = OrElse
		default:
			end := p.lex.Location()
			return &AndOrList{spanned: newSpanned(start.Code, start.Index, end.Index), First: first, Rest: rest}, nil
		}
		p.takeRaw()
		if err := p.skipLinebreak(ctx); err != nil {
			return nil, err
		}
		pipe, err := p.parsePipeline(ctx, enders, rparenEnds)
		if err != nil {
			return nil, err
		}
		rest = append(rest, AndOrItem{Op: op, Pipeline: pipe})
	}
}

func (p *Parser) parsePipeline(ctx context.Context, enders []Keyword, rparenEnds bool) (*Pipeline, error) {
	start := p.lex.Location()
	negation := false

	if err := p.resolveCommandAliases(ctx); err != nil {
		return nil, err
	}
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind == tkWord && tok.Keyword == kwBang {
		p.takeRaw()
		negation = true
		// The word after "!" is itself a command-name position: an
		// alias spliced in here may begin with another "!", which must
		// surface as a double negation rather than being swallowed by
		// whichever production happens to peek it first.
		if err := p.resolveCommandAliases(ctx); err != nil {
			return nil, err
		}
		if tok2, err := p.peekRaw(ctx); err != nil {
			return nil, err
		} else if tok2.Kind == tkWord && tok2.Keyword == kwBang {
			return nil, newSyntaxError(ErrDoubleNegation, tok2.StartLoc)
		}
	}

	first, err := p.parseCommand(ctx, enders, rparenEnds)
	if err != nil {
		if errors.Is(err, errNoCommand) {
			kind := ErrExpectedCommand
			if negation {
				kind = ErrMissingCommandAfterBang
			}
			return nil, newSyntaxError(kind, p.lex.Location())
		}
		return nil, err
	}
	commands := []Command{first}

	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if !(tok.Kind == tkOperator && tok.Operator == pipeTok) {
			break
		}
		p.takeRaw()
		if err := p.skipLinebreak(ctx); err != nil {
			return nil, err
		}
		if err := p.resolveCommandAliases(ctx); err != nil {
			return nil, err
		}
		if tok2, err := p.peekRaw(ctx); err != nil {
			return nil, err
		} else if tok2.Kind == tkWord && tok2.Keyword == kwBang {
			return nil, newSyntaxError(ErrBangAfterBar, tok2.StartLoc)
		}
		cmd, err := p.parseCommand(ctx, enders, rparenEnds)
		if err != nil {
			if errors.Is(err, errNoCommand) {
				return nil, newSyntaxError(ErrMissingCommandAfterBar, p.lex.Location())
			}
			return nil, err
		}
		commands = append(commands, cmd)
	}

	end := p.lex.Location()
	return &Pipeline{spanned: newSpanned(start.Code, start.Index, end.Index), Negation: negation, Commands: commands}, nil
}

// parseCommand parses one Command: a compound command, a function
// definition, or a simple command. It returns errNoCommand, unwrapped,
// when the current token cannot start a command at all.
func (p *Parser) parseCommand(ctx context.Context, enders []Keyword, rparenEnds bool) (Command, error) {
	// Resolve any command-name alias before inspecting the token kind:
	// a replacement may itself begin with a compound-command keyword,
	// which only the caller deciding between a leader and a simple
	// command can act on correctly.
	if err := p.resolveCommandAliases(ctx); err != nil {
		return nil, err
	}
	raw, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}

	if raw.Kind == tkOperator && raw.Operator == lparenTok {
		return p.parseCompoundWithRedirs(ctx, p.parseSubshell)
	}
	if raw.Kind == tkWord && raw.Keyword == kwNone {
		if lit, ok := wordLiteralText(raw.Word); ok && lit == "[[" {
			return nil, newSyntaxError(ErrUnsupportedDoubleBracketCommand, raw.StartLoc)
		}
	}

	if raw.Kind == tkWord && raw.Keyword != kwNone {
		for _, k := range compoundLeaders {
			if raw.Keyword == k {
				return p.parseCompoundLeader(ctx, k)
			}
		}
		// A reserved word in a position that isn't one of the above
		// leaders (e.g. a bare "then"/"done" with nothing open) is not a
		// command.
		if raw.Keyword != kwNone {
			return nil, errNoCommand
		}
	}

	if raw.Kind != tkWord && raw.Kind != tkIoNumber && raw.Kind != tkIoLocation {
		if raw.Kind == tkOperator && raw.Operator.isRedirOp() {
			// A redirection with no preceding command word is still a
			// valid (degenerate) simple command consisting only of the
			// redirection, per POSIX grammar; fall through.
		} else {
			return nil, errNoCommand
		}
	}

	return p.parseSimpleCommandOrFunction(ctx)
}

func (p *Parser) parseCompoundLeader(ctx context.Context, k Keyword) (Command, error) {
	switch k {
	case kwLbrace:
		return p.parseCompoundWithRedirs(ctx, p.parseGrouping)
	case kwFor:
		return p.parseCompoundWithRedirs(ctx, p.parseFor)
	case kwWhile:
		return p.parseCompoundWithRedirs(ctx, p.parseWhile)
	case kwUntil:
		return p.parseCompoundWithRedirs(ctx, p.parseUntil)
	case kwIf:
		return p.parseCompoundWithRedirs(ctx, p.parseIf)
	case kwCase:
		return p.parseCompoundWithRedirs(ctx, p.parseCase)
	case kwFunction:
		return p.parseFunctionDefinition(ctx, true)
	}
	return nil, errNoCommand
}

// parseCompoundWithRedirs wraps a single CompoundCommand parser with
// the trailing-redirections handling every compound command shares,
// producing a FullCompoundCommand.
func (p *Parser) parseCompoundWithRedirs(ctx context.Context, inner func(context.Context) (CompoundCommand, error)) (Command, error) {
	start := p.lex.Location()
	cc, err := inner(ctx)
	if err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirects(ctx)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &FullCompoundCommand{spanned: newSpanned(start.Code, start.Index, end.Index), Command: cc, Redirs: redirs}, nil
}

// parseGrouping parses `{ compound_list }`. The `{` keyword has
// already been peeked, not consumed.
func (p *Parser) parseGrouping(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwLbrace); err != nil {
		return nil, err
	}

	body, err := p.parseList(ctx, []Keyword{kwRbrace}, false)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, newSyntaxError(ErrEmptyGrouping, p.lex.Location())
	}
	closeTok, err := p.takeTokenAuto(ctx, kwRbrace)
	if err != nil {
		return nil, err
	}
	if closeTok.Keyword != kwRbrace {
		return nil, newSyntaxError(ErrUnclosedGrouping, start)
	}
	end := p.lex.Location()
	return &Grouping{spanned: newSpanned(start.Code, start.Index, end.Index), Body: body}, nil
}

// parseSubshell parses `( compound_list )`. The '(' operator has
// already been peeked, not consumed.
func (p *Parser) parseSubshell(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	p.takeRaw() // (

	body, err := p.parseList(ctx, nil, true)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, newSyntaxError(ErrEmptySubshell, p.lex.Location())
	}
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if !(tok.Kind == tkOperator && tok.Operator == rparenTok) {
		return nil, newSyntaxError(ErrUnclosedSubshell, start)
	}
	p.takeRaw()
	end := p.lex.Location()
	return &Subshell{spanned: newSpanned(start.Code, start.Index, end.Index), Body: body}, nil
}

// parseFor parses `for name [in word*] [;] do compound_list done`.
func (p *Parser) parseFor(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwFor); err != nil {
		return nil, err
	}

	nameTok, err := p.takeTokenManualPlain(ctx)
	if err != nil {
		return nil, err
	}
	if nameTok.Kind != tkWord || nameTok.Keyword != kwNone {
		return nil, newSyntaxError(ErrMissingForName, p.lex.Location())
	}
	lit, ok := wordLiteralText(nameTok.Word)
	if !ok || !isValidName(lit) {
		return nil, newSyntaxError(ErrInvalidForName, nameTok.StartLoc)
	}

	if _, err := p.takeSeparatorThenLinebreak(ctx); err != nil {
		return nil, err
	}

	hasIn := false
	var values []*Word
	tok, err := p.takeTokenAuto(ctx, kwIn, kwDo)
	if err != nil {
		return nil, err
	}
	if tok.Keyword == kwIn {
		hasIn = true
		for {
			if err := p.skipOptionalBlankBoundary(ctx); err != nil {
				return nil, err
			}
			wtok, err := p.peekRaw(ctx)
			if err != nil {
				return nil, err
			}
			if wtok.Kind != tkWord || wtok.Keyword != kwNone {
				break
			}
			w, _, err := p.takeTokenManual(ctx, false)
			if err != nil {
				return nil, err
			}
			values = append(values, w.Word)
		}
		sep, err := p.takeSeparatorThenLinebreak(ctx)
		if err != nil {
			return nil, err
		}
		_ = sep
		tok, err = p.takeTokenAuto(ctx, kwDo)
		if err != nil {
			return nil, err
		}
	}
	if tok.Keyword != kwDo {
		return nil, newSyntaxError(ErrUnopenedDoClause, p.lex.Location())
	}

	body, err := p.parseList(ctx, []Keyword{kwDone}, false)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, newSyntaxError(ErrEmptyDoClause, p.lex.Location())
	}
	doneTok, err := p.takeTokenAuto(ctx, kwDone)
	if err != nil {
		return nil, err
	}
	if doneTok.Keyword != kwDone {
		return nil, newSyntaxError(ErrUnclosedDoClause, start)
	}

	end := p.lex.Location()
	return &ForClause{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Name:    nameTok.Word, HasIn: hasIn, Values: values, Body: body,
	}, nil
}

func isValidName(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}

// takeTokenManualPlain takes one token trying alias substitution at a
// non-command-name position (used for the name after `for`, which is
// not itself alias-eligible).
func (p *Parser) takeTokenManualPlain(ctx context.Context) (*LexToken, error) {
	for {
		tok, res, err := p.takeTokenManual(ctx, false)
		if err != nil {
			return nil, err
		}
		if res == parsed {
			return tok, nil
		}
	}
}

// skipOptionalBlankBoundary is a no-op placeholder kept for symmetry
// with positions in the grammar where POSIX requires at least one
// blank before the next word (e.g. between `in` and the first value);
// the char lexer already treats adjacent words as a lexing error
// elsewhere, so there is nothing further to enforce here.
func (p *Parser) skipOptionalBlankBoundary(ctx context.Context) error { return nil }

// takeSeparatorThenLinebreak consumes the optional `;` or newline that
// may follow the `for` name or end the `in word*` list before `do`,
// the grammar's "sequential_sep" production.
func (p *Parser) takeSeparatorThenLinebreak(ctx context.Context) (bool, error) {
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return false, err
	}
	if tok.Kind == tkOperator && tok.Operator == semiTok {
		p.takeRaw()
	}
	if err := p.skipLinebreak(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) parseWhile(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwWhile); err != nil {
		return nil, err
	}
	cond, body, err := p.parseCondDoClause(ctx, ErrEmptyCondition, ErrUnclosedWhileClause, start)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &WhileClause{spanned: newSpanned(start.Code, start.Index, end.Index), Cond: cond, Body: body}, nil
}

func (p *Parser) parseUntil(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwUntil); err != nil {
		return nil, err
	}
	cond, body, err := p.parseCondDoClause(ctx, ErrEmptyCondition, ErrUnclosedUntilClause, start)
	if err != nil {
		return nil, err
	}
	end := p.lex.Location()
	return &UntilClause{spanned: newSpanned(start.Code, start.Index, end.Index), Cond: cond, Body: body}, nil
}

// parseCondDoClause parses the `COND do compound_list done` shape
// shared by while and until.
func (p *Parser) parseCondDoClause(ctx context.Context, emptyCondKind, unclosedKind ErrorKind, start Location) (cond, body *List, err error) {
	cond, err = p.parseList(ctx, []Keyword{kwDo}, false)
	if err != nil {
		return nil, nil, err
	}
	if len(cond.Items) == 0 {
		return nil, nil, newSyntaxError(emptyCondKind, p.lex.Location())
	}
	doTok, err := p.takeTokenAuto(ctx, kwDo)
	if err != nil {
		return nil, nil, err
	}
	if doTok.Keyword != kwDo {
		return nil, nil, newSyntaxError(ErrUnopenedDoClause, p.lex.Location())
	}
	body, err = p.parseList(ctx, []Keyword{kwDone}, false)
	if err != nil {
		return nil, nil, err
	}
	if len(body.Items) == 0 {
		return nil, nil, newSyntaxError(ErrEmptyDoClause, p.lex.Location())
	}
	doneTok, err := p.takeTokenAuto(ctx, kwDone)
	if err != nil {
		return nil, nil, err
	}
	if doneTok.Keyword != kwDone {
		return nil, nil, newSyntaxError(unclosedKind, start)
	}
	return cond, body, nil
}

// parseIf parses `if COND then BODY (elif COND then BODY)* [else BODY] fi`.
func (p *Parser) parseIf(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	ifLoc := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwIf); err != nil {
		return nil, err
	}

	cond, err := p.parseList(ctx, []Keyword{kwThen}, false)
	if err != nil {
		return nil, err
	}
	if len(cond.Items) == 0 {
		return nil, newSyntaxError(ErrEmptyCondition, p.lex.Location())
	}
	thenTok, err := p.takeTokenAuto(ctx, kwThen)
	if err != nil {
		return nil, err
	}
	if thenTok.Keyword != kwThen {
		return nil, &ParseError{Kind: ErrUnopenedIf, Location: p.lex.Location(), IfLocation: &ifLoc}
	}
	body, err := p.parseList(ctx, []Keyword{kwElif, kwElse, kwFi}, false)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, newSyntaxError(ErrEmptyThenBody, p.lex.Location())
	}

	var elifs []*ElifThen
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if !(tok.Kind == tkWord && tok.Keyword == kwElif) {
			break
		}
		elifLoc := tok.StartLoc
		if _, err := p.takeTokenAuto(ctx, kwElif); err != nil {
			return nil, err
		}
		ec, err := p.parseList(ctx, []Keyword{kwThen}, false)
		if err != nil {
			return nil, err
		}
		if len(ec.Items) == 0 {
			return nil, newSyntaxError(ErrEmptyCondition, p.lex.Location())
		}
		ethenTok, err := p.takeTokenAuto(ctx, kwThen)
		if err != nil {
			return nil, err
		}
		if ethenTok.Keyword != kwThen {
			return nil, &ParseError{Kind: ErrUnopenedIf, Location: p.lex.Location(), ElifLocation: &elifLoc}
		}
		eb, err := p.parseList(ctx, []Keyword{kwElif, kwElse, kwFi}, false)
		if err != nil {
			return nil, err
		}
		if len(eb.Items) == 0 {
			return nil, newSyntaxError(ErrEmptyElifBody, p.lex.Location())
		}
		elifs = append(elifs, &ElifThen{spanned: newSpanned(elifLoc.Code, elifLoc.Index, p.lex.Location().Index), Cond: ec, Body: eb})
	}

	var elseBody *List
	if tok, err := p.peekRaw(ctx); err != nil {
		return nil, err
	} else if tok.Kind == tkWord && tok.Keyword == kwElse {
		if _, err := p.takeTokenAuto(ctx, kwElse); err != nil {
			return nil, err
		}
		eb, err := p.parseList(ctx, []Keyword{kwFi}, false)
		if err != nil {
			return nil, err
		}
		if len(eb.Items) == 0 {
			return nil, newSyntaxError(ErrEmptyElseBody, p.lex.Location())
		}
		elseBody = eb
	}

	fiTok, err := p.takeTokenAuto(ctx, kwFi)
	if err != nil {
		return nil, err
	}
	if fiTok.Keyword != kwFi {
		return nil, &ParseError{Kind: ErrUnclosedIfClause, Location: p.lex.Location(), IfLocation: &ifLoc}
	}

	end := p.lex.Location()
	return &IfClause{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Cond:    cond, Body: body, Elifs: elifs, Else: elseBody,
	}, nil
}

// parseCase parses `case word in [(]pattern(|pattern)*) list ;;|;&|;;& ... esac`.
func (p *Parser) parseCase(ctx context.Context) (CompoundCommand, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwCase); err != nil {
		return nil, err
	}

	subjTok, err := p.takeTokenManualPlain(ctx)
	if err != nil {
		return nil, err
	}
	if subjTok.Kind != tkWord {
		return nil, newSyntaxError(ErrExpectedWord, p.lex.Location())
	}

	if err := p.skipLinebreak(ctx); err != nil {
		return nil, err
	}
	inTok, err := p.takeTokenAuto(ctx, kwIn)
	if err != nil {
		return nil, err
	}
	if inTok.Keyword != kwIn {
		return nil, newSyntaxError(ErrExpectedWord, p.lex.Location())
	}
	if err := p.skipLinebreak(ctx); err != nil {
		return nil, err
	}

	var items []*CaseItem
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tok.Kind == tkWord && tok.Keyword == kwEsac {
			break
		}
		item, err := p.parseCaseItem(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if err := p.skipLinebreak(ctx); err != nil {
			return nil, err
		}
	}

	esacTok, err := p.takeTokenAuto(ctx, kwEsac)
	if err != nil {
		return nil, err
	}
	if esacTok.Keyword != kwEsac {
		return nil, newSyntaxError(ErrUnclosedCaseClause, start)
	}

	end := p.lex.Location()
	return &CaseClause{spanned: newSpanned(start.Code, start.Index, end.Index), Subject: subjTok.Word, Items: items}, nil
}

func (p *Parser) parseCaseItem(ctx context.Context) (*CaseItem, error) {
	start := p.lex.Location()

	if tok, err := p.peekRaw(ctx); err != nil {
		return nil, err
	} else if tok.Kind == tkOperator && tok.Operator == lparenTok {
		p.takeRaw()
	}

	var patterns []*Word
	for {
		ptok, err := p.takeTokenManualPlain(ctx)
		if err != nil {
			return nil, err
		}
		if ptok.Kind != tkWord {
			return nil, newSyntaxError(ErrExpectedPattern, p.lex.Location())
		}
		patterns = append(patterns, ptok.Word)

		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tok.Kind == tkOperator && tok.Operator == pipeTok {
			p.takeRaw()
			continue
		}
		if tok.Kind == tkOperator && tok.Operator == rparenTok {
			p.takeRaw()
			break
		}
		return nil, newSyntaxError(ErrUnclosedPatternList, start)
	}

	if err := p.skipLinebreak(ctx); err != nil {
		return nil, err
	}

	body, err := p.parseList(ctx, []Keyword{kwEsac}, false)
	if err != nil {
		return nil, err
	}

	terminator := CaseBreak
	tok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Kind == tkOperator && tok.Operator == dsemiTok:
		p.takeRaw()
	case tok.Kind == tkOperator && tok.Operator == semiAndTok:
		p.takeRaw()
		terminator = CaseFallthru
	case tok.Kind == tkOperator && tok.Operator == dsemiAndTok:
		p.takeRaw()
		terminator = CaseContinue
	case tok.Kind == tkWord && tok.Keyword == kwEsac:
		// the last item may omit its terminator
	default:
		return nil, newSyntaxError(ErrUnclosedCaseClause, start)
	}

	end := p.lex.Location()
	return &CaseItem{spanned: newSpanned(start.Code, start.Index, end.Index), Patterns: patterns, Body: body, Terminator: terminator}, nil
}

// parseSimpleCommandOrFunction parses a SimpleCommand, unless its
// first word turns out to be a bare name immediately followed by `()`
// with no intervening blank, in which case it is the short function
// definition syntax "name() body". The bash-only "function name { ... }"
// without parentheses is not supported; see
// ErrUnsupportedFunctionDefinitionSyntax.
func (p *Parser) parseSimpleCommandOrFunction(ctx context.Context) (Command, error) {
	start := p.lex.Location()

	var assigns []*Assign
	var words []*Word
	var redirs []*Redirect

	first := true
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Kind == tkIoNumber || tok.Kind == tkIoLocation || (tok.Kind == tkOperator && tok.Operator.isRedirOp()):
			r, err := p.parseOneRedirect(ctx)
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)
			first = false
			continue
		case tok.Kind == tkWord && tok.Keyword == kwNone:
			// fallthrough to word/assignment handling below
		default:
			goto done
		}

		if first && len(words) == 0 {
			if assign, ok, err := p.tryParseAssignOrArray(ctx, tok); err != nil {
				return nil, err
			} else if ok {
				assigns = append(assigns, assign)
				continue
			}
		}

		wtok, _, err := p.takeTokenManual(ctx, first && len(words) == 0)
		if err != nil {
			return nil, err
		}
		if wtok == nil {
			continue // an alias splice happened; loop to re-peek
		}
		if len(words) == 0 {
			if name, ok := wordLiteralText(wtok.Word); ok && isValidName(name) {
				if blank, err := p.hasBlank(ctx); err == nil && !blank {
					if lp, err := p.peekRaw(ctx); err == nil && lp.Kind == tkOperator && lp.Operator == lparenTok {
						return p.parseNamedFunctionBody(ctx, start, wtok.Word, false)
					}
				}
			}
		}
		words = append(words, wtok.Word)
		first = false
	}

done:
	if len(assigns) == 0 && len(words) == 0 && len(redirs) == 0 {
		return nil, errNoCommand
	}
	end := p.lex.Location()
	return &SimpleCommand{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Assigns: assigns, Words: words, Redirs: redirs,
	}, nil
}

// tryParseAssign recognizes `name=value` without consuming anything;
// the caller only commits (p.takeRaw) once this returns ok. The array
// form `name=(word*)` is layered on top by tryParseAssignOrArray,
// since the word lexer never includes the '(' in w to begin with.
func tryParseAssign(w *Word) (*Assign, bool) {
	i := 0
	for i < len(w.Units) {
		unq, ok := w.Units[i].(*Unquoted)
		if !ok {
			return nil, false
		}
		l, ok := unq.Unit.(*Literal)
		if !ok {
			return nil, false
		}
		if l.Char == '=' {
			break
		}
		if l.Char >= 0x80 || !isIdentCont(byte(l.Char)) || (i == 0 && !isIdentStart(byte(l.Char))) {
			return nil, false
		}
		i++
	}
	if i == 0 || i >= len(w.Units) {
		return nil, false
	}
	var nameBuf []byte
	for j := 0; j < i; j++ {
		l := w.Units[j].(*Unquoted).Unit.(*Literal)
		nameBuf = append(nameBuf, byte(l.Char))
	}
	valueUnits := w.Units[i+1:]
	value := &Word{spanned: newSpanned(w.Pos().Code, w.End().Index, w.End().Index)}
	if len(valueUnits) > 0 {
		value = &Word{spanned: newSpanned(w.Pos().Code, w.Units[i+1].Pos().Index, w.End().Index), Units: valueUnits}
	}
	return &Assign{
		spanned: w.spanned,
		Name:    string(nameBuf),
		Value:   ScalarAssign{Word: value},
	}, true
}

// tryParseAssignOrArray wraps tryParseAssign with the array form: when
// the name is followed by '=' and nothing else, and an unquoted '('
// immediately follows with no intervening blank, the word lexer has
// already stopped short of it (an unescaped '(' starts an operator),
// so the rest is parsed by hand as `( word* )`. It consumes tok, and
// the array's closing paren if present, only once it has committed to
// returning an assignment.
func (p *Parser) tryParseAssignOrArray(ctx context.Context, tok *LexToken) (*Assign, bool, error) {
	assign, ok := tryParseAssign(tok.Word)
	if !ok {
		return nil, false, nil
	}
	start := tok.StartLoc
	p.takeRaw()

	scalar, isScalar := assign.Value.(ScalarAssign)
	if !isScalar || len(scalar.Word.Units) != 0 {
		return assign, true, nil
	}
	blank, err := p.hasBlank(ctx)
	if err != nil {
		return nil, false, err
	}
	if blank {
		return assign, true, nil
	}
	lp, err := p.peekRaw(ctx)
	if err != nil {
		return nil, false, err
	}
	if !(lp.Kind == tkOperator && lp.Operator == lparenTok) {
		return assign, true, nil
	}
	p.takeRaw() // (

	words, err := p.parseArrayAssignValue(ctx, start)
	if err != nil {
		return nil, false, err
	}
	end := p.lex.Location()
	return &Assign{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		Name:    assign.Name,
		Value:   ArrayAssign{Words: words},
	}, true, nil
}

// parseArrayAssignValue reads the word* inside `name=( ... )`. Blank
// lines between elements are allowed, mirroring a grouping body; the
// lexer already tokenizes one word at a time and stops at the
// unquoted ')' that closes it.
func (p *Parser) parseArrayAssignValue(ctx context.Context, start Location) ([]*Word, error) {
	var words []*Word
	for {
		if err := p.skipLinebreak(ctx); err != nil {
			return nil, err
		}
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tok.Kind == tkOperator && tok.Operator == rparenTok {
			p.takeRaw()
			return words, nil
		}
		if tok.Kind != tkWord {
			return nil, newSyntaxError(ErrUnclosedArrayValue, start)
		}
		p.takeRaw()
		words = append(words, tok.Word)
	}
}

// parseNamedFunctionBody parses the body shared by both function
// definition spellings once the name has already been read.
func (p *Parser) parseNamedFunctionBody(ctx context.Context, start Location, name *Word, hasKeyword bool) (Command, error) {
	// consume the ()
	if tok, err := p.peekRaw(ctx); err != nil {
		return nil, err
	} else if tok.Kind == tkOperator && tok.Operator == lparenTok {
		p.takeRaw()
	}
	rtok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if !(rtok.Kind == tkOperator && rtok.Operator == rparenTok) {
		return nil, newSyntaxError(ErrUnclosedFunctionParen, start)
	}
	p.takeRaw()

	if err := p.skipLinebreak(ctx); err != nil {
		return nil, err
	}

	bodyCmd, err := p.parseCommand(ctx, nil, false)
	if err != nil {
		if errors.Is(err, errNoCommand) {
			return nil, newSyntaxError(ErrExpectedCommand, p.lex.Location())
		}
		return nil, err
	}
	full, ok := bodyCmd.(*FullCompoundCommand)
	if !ok {
		return nil, newSyntaxError(ErrUnsupportedFunctionDefinitionSyntax, start)
	}

	end := p.lex.Location()
	return &FunctionDefinition{
		spanned:    newSpanned(start.Code, start.Index, end.Index),
		HasKeyword: hasKeyword,
		Name:       name,
		Body:       full,
	}, nil
}

// parseFunctionDefinition parses the long `function name [()] body`
// syntax. The braceless bash `function name { ... }` without parens
// is accepted the same as with parens, since the body is parsed as an
// ordinary compound command either way once the name is read.
func (p *Parser) parseFunctionDefinition(ctx context.Context, hasKeyword bool) (Command, error) {
	start := p.lex.Location()
	if _, err := p.takeTokenAuto(ctx, kwFunction); err != nil {
		return nil, err
	}

	nameTok, err := p.takeTokenManualPlain(ctx)
	if err != nil {
		return nil, err
	}
	if nameTok.Kind != tkWord {
		return nil, newSyntaxError(ErrExpectedWord, p.lex.Location())
	}

	if tok, err := p.peekRaw(ctx); err != nil {
		return nil, err
	} else if tok.Kind == tkOperator && tok.Operator == lparenTok {
		return p.parseNamedFunctionBody(ctx, start, nameTok.Word, true)
	}

	if err := p.skipLinebreak(ctx); err != nil {
		return nil, err
	}
	bodyCmd, err := p.parseCommand(ctx, nil, false)
	if err != nil {
		if errors.Is(err, errNoCommand) {
			return nil, newSyntaxError(ErrExpectedCommand, p.lex.Location())
		}
		return nil, err
	}
	full, ok := bodyCmd.(*FullCompoundCommand)
	if !ok {
		return nil, newSyntaxError(ErrUnsupportedFunctionDefinitionSyntax, start)
	}
	end := p.lex.Location()
	return &FunctionDefinition{
		spanned:    newSpanned(start.Code, start.Index, end.Index),
		HasKeyword: true,
		Name:       nameTok.Word,
		Body:       full,
	}, nil
}

// parseRedirects reads zero or more trailing redirections, used after
// a compound command's closing keyword/paren/brace.
func (p *Parser) parseRedirects(ctx context.Context) ([]*Redirect, error) {
	var redirs []*Redirect
	for {
		tok, err := p.peekRaw(ctx)
		if err != nil {
			return nil, err
		}
		if !(tok.Kind == tkIoNumber || tok.Kind == tkIoLocation || (tok.Kind == tkOperator && tok.Operator.isRedirOp())) {
			return redirs, nil
		}
		r, err := p.parseOneRedirect(ctx)
		if err != nil {
			return nil, err
		}
		redirs = append(redirs, r)
	}
}

// parseOneRedirect parses a single redirection, including the
// deferred here-document registration queued onto unreadHeredocs.
func (p *Parser) parseOneRedirect(ctx context.Context) (*Redirect, error) {
	start := p.lex.Location()
	var fd *int
	fdTok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if fdTok.Kind == tkIoNumber {
		p.takeRaw()
		lit, _ := wordLiteralText(fdTok.Word)
		n, _ := strconv.Atoi(lit)
		fd = &n
	} else if fdTok.Kind == tkIoLocation {
		p.takeRaw() // {name}: the fd is assigned to a variable at run time,
		// outside this core's scope; fd stays nil.
	}

	opTok, err := p.peekRaw(ctx)
	if err != nil {
		return nil, err
	}
	if opTok.Kind != tkOperator || !opTok.Operator.isRedirOp() {
		return nil, newSyntaxError(ErrExpectedWord, p.lex.Location())
	}
	op := opTok.Operator
	opLoc := opTok.StartLoc
	p.takeRaw()

	if op == shlTok || op == dashHdocTok {
		delimTok, err := p.takeTokenManualPlain(ctx)
		if err != nil {
			return nil, err
		}
		if delimTok.Kind != tkWord {
			return nil, newSyntaxError(ErrExpectedWord, p.lex.Location())
		}
		cell := &HereDocContent{}
		p.unreadHeredocs = append(p.unreadHeredocs, &pendingHeredoc{
			delimiter: delimTok.Word, removeTabs: op == dashHdocTok, cell: cell,
		})
		end := p.lex.Location()
		return &Redirect{
			spanned: newSpanned(start.Code, start.Index, end.Index),
			FD:      fd,
			Body:    &HereDoc{Delimiter: delimTok.Word, RemoveTabs: op == dashHdocTok, Content: cell},
		}, nil
	}

	redirOp, ok := toRedirOp(op)
	if !ok {
		return nil, &ParseError{Kind: ErrExpectedWord, Location: p.lex.Location(), RedirOpLocation: &opLoc}
	}
	operandTok, err := p.takeTokenManualPlain(ctx)
	if err != nil {
		return nil, err
	}
	if operandTok.Kind != tkWord {
		return nil, &ParseError{Kind: ErrExpectedWord, Location: p.lex.Location(), RedirOpLocation: &opLoc}
	}
	end := p.lex.Location()
	return &Redirect{
		spanned: newSpanned(start.Code, start.Index, end.Index),
		FD:      fd,
		Body:    NormalRedir{Op: redirOp, Operand: operandTok.Word},
	}, nil
}

func toRedirOp(t opToken) (RedirOp, bool) {
	switch t {
	case lssTok:
		return RedirIn, true
	case rdrInOutTok:
		return RedirInOut, true
	case gtrTok:
		return RedirOut, true
	case shrTok:
		return RedirAppend, true
	case clbOutTok:
		return RedirClobber, true
	case appAllTok:
		return RedirAppendClobber, true
	case dplInTok:
		return RedirDupIn, true
	case dplOutTok:
		return RedirDupOut, true
	case wordHdocTok:
		return RedirHereString, true
	}
	return 0, false
}
