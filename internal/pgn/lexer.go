package pgn

import (
	"strings"
)

// itemKind identifies the lexical class of an item.
type itemKind int

const (
	itemEOF itemKind = iota
	itemTag
	itemMoveNumber
	itemMove
	itemNAG
	itemAnnotation
	itemResult
	itemVariationStart
	itemVariationEnd
)

var itemNames = [...]string{
	itemEOF:            "EOF",
	itemTag:            "TAG",
	itemMoveNumber:     "MOVE_NUMBER",
	itemMove:           "MOVE",
	itemNAG:            "NAG",
	itemAnnotation:     "ANNOTATION",
	itemResult:         "RESULT",
	itemVariationStart: "RAV_START",
	itemVariationEnd:   "RAV_END",
}

func (k itemKind) String() string {
	if int(k) < len(itemNames) {
		return itemNames[k]
	}
	return "UNKNOWN"
}

// item is one lexical unit of PGN text. Comments and escape lines never
// become items.
type item struct {
	kind   itemKind
	offset int
	text   string // SAN for moves, result text, NAG digits, tag name
	value  string // tag value
	number int    // move number for itemMoveNumber
}

// lexer walks PGN text one item at a time.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: strings.TrimPrefix(input, "\ufeff")}
}

// next returns the next item or a *SyntaxError.
func (l *lexer) next() (item, error) {
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			return item{kind: itemEOF, offset: l.pos}, nil
		}

		start := l.pos
		c := l.input[l.pos]
		switch {
		case c == '{':
			end := strings.IndexByte(l.input[l.pos+1:], '}')
			if end < 0 {
				return item{}, syntaxError(start, l.input[start:], "unterminated comment")
			}
			l.pos += end + 2
		case c == '}':
			return item{}, syntaxError(start, "}", "unexpected closing brace")
		case c == ';':
			l.skipLine()
		case c == '%' && l.atLineStart(start):
			l.skipLine()
		case c == '[':
			return l.lexTag()
		case c == '(':
			l.pos++
			return item{kind: itemVariationStart, offset: start}, nil
		case c == ')':
			l.pos++
			return item{kind: itemVariationEnd, offset: start}, nil
		case c == '$':
			return l.lexNAG()
		default:
			return l.lexWord()
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	if end := strings.IndexByte(l.input[l.pos:], '\n'); end >= 0 {
		l.pos += end + 1
		return
	}
	l.pos = len(l.input)
}

func (l *lexer) atLineStart(i int) bool {
	return i == 0 || l.input[i-1] == '\n' || l.input[i-1] == '\r'
}

// lexTag reads [Name "value"]. Inside the value \" and \\ are escapes.
func (l *lexer) lexTag() (item, error) {
	start := l.pos
	l.pos++
	l.skipSpace()

	nameStart := l.pos
	for l.pos < len(l.input) && isTagNameChar(l.input[l.pos]) {
		l.pos++
	}
	name := l.input[nameStart:l.pos]
	if name == "" {
		return item{}, syntaxError(start, l.snippet(start), "tag pair without a name")
	}

	l.skipSpace()
	if l.pos >= len(l.input) || l.input[l.pos] != '"' {
		return item{}, syntaxError(start, l.snippet(start), "tag value must be a quoted string")
	}
	l.pos++

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return item{}, syntaxError(start, l.snippet(start), "unterminated tag value")
		}
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) && (l.input[l.pos+1] == '"' || l.input[l.pos+1] == '\\') {
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
			continue
		}
		if c == '"' {
			l.pos++
			break
		}
		if c == '\n' {
			return item{}, syntaxError(start, l.snippet(start), "unterminated tag value")
		}
		sb.WriteByte(c)
		l.pos++
	}

	l.skipSpace()
	if l.pos >= len(l.input) || l.input[l.pos] != ']' {
		return item{}, syntaxError(start, l.snippet(start), "unterminated tag pair")
	}
	l.pos++
	return item{kind: itemTag, offset: start, text: name, value: sb.String()}, nil
}

func isTagNameChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '+' || c == '#' || c == '=' || c == ':' || c == '-'
}

func (l *lexer) lexNAG() (item, error) {
	start := l.pos
	l.pos++
	digits := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == digits {
		return item{}, syntaxError(start, "$", "NAG without a number")
	}
	return item{kind: itemNAG, offset: start, text: l.input[digits:l.pos]}, nil
}

// lexWord reads a run of symbol characters and classifies it. A move
// number glued to its move ("12.e4") yields the number first; the move is
// returned by the following call.
func (l *lexer) lexWord() (item, error) {
	start := l.pos
	for l.pos < len(l.input) && !isDelimiter(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	if word == "" {
		l.pos++
		return item{}, syntaxError(start, l.input[start:start+1], "unexpected character")
	}

	if isResult(word) {
		return item{kind: itemResult, offset: start, text: word}, nil
	}

	if isDigit(word[0]) && !isCastling(word) {
		n, i := 0, 0
		for i < len(word) && isDigit(word[i]) {
			n = n*10 + int(word[i]-'0')
			i++
		}
		dots := i
		for i < len(word) && word[i] == '.' {
			i++
		}
		switch {
		case i == len(word):
			return item{kind: itemMoveNumber, offset: start, number: n}, nil
		case i > dots:
			l.pos = start + i
			return item{kind: itemMoveNumber, offset: start, number: n}, nil
		default:
			return item{}, syntaxError(start, word, "unrecognized token")
		}
	}

	if isAnnotation(word) {
		return item{kind: itemAnnotation, offset: start, text: word}, nil
	}

	san := strings.TrimRight(word, "!?")
	if !looksLikeSAN(san) {
		return item{}, syntaxError(start, word, "unrecognized token")
	}
	return item{kind: itemMove, offset: start, text: san}, nil
}

func (l *lexer) snippet(start int) string {
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v', '{', '}', '(', ')', '[', ']', ';', '$':
		return true
	}
	return false
}

func isResult(s string) bool {
	switch s {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

func isCastling(s string) bool {
	s = strings.TrimRight(s, "+#!?")
	return s == "0-0" || s == "0-0-0"
}

// isAnnotation accepts move suffix glyphs written as separate words and the
// common evaluation symbols.
func isAnnotation(s string) bool {
	switch s {
	case "!", "?", "!!", "??", "!?", "?!", "=", "+=", "=+", "+/=", "=/+", "+/-", "-/+", "+-", "-+", "~", "N":
		return true
	}
	return false
}

// looksLikeSAN reports whether s has the shape of a SAN move. The resolver
// decides whether it is a legal one.
func looksLikeSAN(s string) bool {
	switch strings.TrimRight(s, "+#") {
	case "O-O", "O-O-O", "0-0", "0-0-0":
		return true
	}
	if len(s) < 2 {
		return false
	}
	hasFile, hasRank := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'h':
			hasFile = true
		case c >= '1' && c <= '8':
			hasRank = true
		case strings.IndexByte("KQRBNPx:=+#-", c) >= 0:
		default:
			return false
		}
	}
	return hasFile && hasRank
}
