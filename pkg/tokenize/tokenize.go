// Package tokenize splits CQL text into classified tokens for completion.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType identifies the lexical class of a token.
type TokenType string

const (
	TokenKeyword     TokenType = "keyword"
	TokenIdentifier  TokenType = "identifier"
	TokenString      TokenType = "string"
	TokenNumber      TokenType = "number"
	TokenComment     TokenType = "comment"
	TokenOperator    TokenType = "operator"
	TokenPunctuation TokenType = "punctuation"
	TokenPlaceholder TokenType = "placeholder"
	TokenInvalid     TokenType = "invalid"
)

// Token is a single lexed unit of CQL input.
type Token struct {
	Start int       `json:"start"`
	End   int       `json:"end"` // exclusive
	Text  string    `json:"text"`
	Type  TokenType `json:"type"`

	// Unterminated is set for string literals and quoted identifiers
	// that run to the end of the input.
	Unterminated bool `json:"unterminated,omitempty"`
}

// IsWord reports whether the token is a bare word, quoted name or number:
// the kinds of token a user can still be in the middle of typing.
func (t Token) IsWord() bool {
	switch t.Type {
	case TokenKeyword, TokenIdentifier, TokenNumber:
		return true
	case TokenString:
		return t.Unterminated
	}
	return false
}

// Is reports whether the token text equals s, ignoring case.
func (t Token) Is(s string) bool {
	return strings.EqualFold(t.Text, s)
}

// Tokenize returns all tokens of a CQL string, comments included.
// Keyspace-qualified names ("ks.tbl", "ks.") are returned as one identifier.
func Tokenize(input string) []Token {
	if input == "" {
		return nil
	}
	l := &lexer{input: input}
	var out []Token
	for {
		tok, ok := l.next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) next() (Token, bool) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{}, false
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '-' && l.peek(1) == '-', c == '/' && l.peek(1) == '/':
		l.skipLine()
		return l.emit(start, TokenComment), true

	case c == '/' && l.peek(1) == '*':
		end := strings.Index(l.input[l.pos+2:], "*/")
		if end < 0 {
			l.pos = len(l.input)
		} else {
			l.pos += 2 + end + 2
		}
		return l.emit(start, TokenComment), true

	case c == '\'':
		closed := l.quoted('\'')
		tok := l.emit(start, TokenString)
		tok.Unterminated = !closed
		return tok, true

	case c == '"':
		closed := l.quoted('"')
		if closed && l.peek(0) == '.' {
			l.qualified()
		}
		tok := l.emit(start, TokenIdentifier)
		tok.Unterminated = !closed
		return tok, true

	case c == '$' && l.peek(1) == '$':
		end := strings.Index(l.input[l.pos+2:], "$$")
		tok := Token{}
		if end < 0 {
			l.pos = len(l.input)
			tok = l.emit(start, TokenString)
			tok.Unterminated = true
		} else {
			l.pos += 2 + end + 2
			tok = l.emit(start, TokenString)
		}
		return tok, true

	case isDigit(c), (c == '-' || c == '.') && isDigit(l.peek(1)):
		l.number()
		return l.emit(start, TokenNumber), true

	case isIdentStart(c):
		l.word()
		if l.peek(0) == '.' {
			l.qualified()
			return l.emit(start, TokenIdentifier), true
		}
		tok := l.emit(start, TokenIdentifier)
		if IsReserved(tok.Text) {
			tok.Type = TokenKeyword
		}
		return tok, true

	case c == '?':
		l.pos++
		return l.emit(start, TokenPlaceholder), true

	case c == ':' && isIdentStart(l.peek(1)):
		l.pos++
		l.word()
		return l.emit(start, TokenPlaceholder), true

	case c == '<' || c == '>' || c == '!':
		l.pos++
		if l.peek(0) == '=' {
			l.pos++
		}
		return l.emit(start, TokenOperator), true

	case strings.IndexByte("=+-*/%", c) >= 0:
		l.pos++
		return l.emit(start, TokenOperator), true

	case strings.IndexByte("(){}[],;:.", c) >= 0:
		l.pos++
		return l.emit(start, TokenPunctuation), true
	}

	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return l.emit(start, TokenInvalid), true
}

func (l *lexer) emit(start int, typ TokenType) Token {
	return Token{Start: start, End: l.pos, Text: l.input[start:l.pos], Type: typ}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) skipLine() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
}

// quoted consumes a quoted run; a doubled quote is an escaped quote.
func (l *lexer) quoted(q byte) bool {
	l.pos++
	for l.pos < len(l.input) {
		if l.input[l.pos] == q {
			if l.peek(1) == q {
				l.pos += 2
				continue
			}
			l.pos++
			return true
		}
		l.pos++
	}
	return false
}

func (l *lexer) word() {
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
}

// qualified consumes ".name" after a keyspace name. A trailing dot with no
// name yet stays part of the token so "ks." can be completed.
func (l *lexer) qualified() {
	l.pos++ // '.'
	switch c := l.peek(0); {
	case c == '"':
		l.quoted('"')
	case isIdentStart(c):
		l.word()
	}
}

func (l *lexer) number() {
	if l.peek(0) == '-' {
		l.pos++
	}
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.pos += 2
		for isHex(l.peek(0)) {
			l.pos++
		}
		return
	}
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isDigit(c), c == '.':
			l.pos++
		case (c == 'e' || c == 'E') && (isDigit(l.peek(1)) || l.peek(1) == '-' || l.peek(1) == '+'):
			l.pos += 2
		case isIdentStart(c):
			// duration literals such as 1h30m
			l.pos++
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
