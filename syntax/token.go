package syntax

// opToken identifies one operator lexeme from a closed operator
// alphabet. The constant layout and the "closed set, longest match
// against a trie" design follow mvdan.cc/sh/v3/syntax.Token
// (syntax/tokens.go), trimmed to POSIX's redirection and control
// operators, without bash-only globbing tokens.
type opToken int

const (
	illegalOp opToken = iota
	newlineTok // \n

	// operators, longest match first within each prefix group
	andTok       // &
	andAndTok    // &&
	lparenTok    // (
	rparenTok    // )
	semiTok      // ;
	dsemiTok     // ;;
	semiAndTok   // ;&
	dsemiAndTok  // ;;&
	pipeTok      // |
	pipeAndTok   // ||
	lssTok       // <
	dplInTok     // <&
	cmdInTok     // <(
	shlTok       // <<
	dashHdocTok  // <<-
	wordHdocTok  // <<<
	rdrInOutTok  // <>
	gtrTok       // >
	dplOutTok    // >&
	cmdOutTok    // >(
	shrTok       // >>
	appAllTok    // >>|
	clbOutTok    // >|
)

var opTokenNames = map[opToken]string{
	illegalOp:   "illegal token",
	newlineTok:  "newline",
	andTok:      "&",
	andAndTok:   "&&",
	lparenTok:   "(",
	rparenTok:   ")",
	semiTok:     ";",
	dsemiTok:    ";;",
	semiAndTok:  ";&",
	dsemiAndTok: ";;&",
	pipeTok:     "|",
	pipeAndTok:  "||",
	lssTok:      "<",
	dplInTok:    "<&",
	cmdInTok:    "<(",
	shlTok:      "<<",
	dashHdocTok: "<<-",
	wordHdocTok: "<<<",
	rdrInOutTok: "<>",
	gtrTok:      ">",
	dplOutTok:   ">&",
	cmdOutTok:   ">(",
	shrTok:      ">>",
	appAllTok:   ">>|",
	clbOutTok:   ">|",
}

func (t opToken) String() string {
	if s, ok := opTokenNames[t]; ok {
		return s
	}
	return "unknown token"
}

// isRedirOp reports whether t begins or is an I/O redirection
// operator; the grammar uses it to recognize redirections.
func (t opToken) isRedirOp() bool {
	switch t {
	case lssTok, gtrTok, dplInTok, dplOutTok, shlTok, shrTok,
		dashHdocTok, wordHdocTok, rdrInOutTok, appAllTok, clbOutTok,
		cmdInTok, cmdOutTok:
		return true
	}
	return false
}

// Keyword is a reserved word: a literal word that carries grammatical
// meaning in command-start position.
type Keyword int

const (
	kwNone Keyword = iota
	kwBang
	kwLbrace
	kwRbrace
	kwCase
	kwDo
	kwDone
	kwElif
	kwElse
	kwEsac
	kwFi
	kwFor
	kwFunction
	kwIf
	kwIn
	kwThen
	kwUntil
	kwWhile
)

var keywordText = map[Keyword]string{
	kwBang:     "!",
	kwLbrace:   "{",
	kwRbrace:   "}",
	kwCase:     "case",
	kwDo:       "do",
	kwDone:     "done",
	kwElif:     "elif",
	kwElse:     "else",
	kwEsac:     "esac",
	kwFi:       "fi",
	kwFor:      "for",
	kwFunction: "function",
	kwIf:       "if",
	kwIn:       "in",
	kwThen:     "then",
	kwUntil:    "until",
	kwWhile:    "while",
}

var textKeyword = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordText))
	for k, v := range keywordText {
		m[v] = k
	}
	return m
}()

func (k Keyword) String() string {
	if s, ok := keywordText[k]; ok {
		return s
	}
	return "<none>"
}

// keywordFor classifies a fully-assembled, entirely literal word as a
// reserved word, or returns kwNone. Classification happens only after
// the word is fully assembled, never at the char level.
func keywordFor(lit string) Keyword {
	if k, ok := textKeyword[lit]; ok {
		return k
	}
	return kwNone
}
