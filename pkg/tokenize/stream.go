package tokenize

import "strings"

// Stream is the input to the completion engine: the completed tokens before
// the cursor, plus the word the cursor is currently in (possibly empty).
type Stream struct {
	Tokens  []Token
	Partial string

	// PartialStart is the offset where Partial begins, or the cursor offset
	// when Partial is empty. Callers replace input[PartialStart:cursor].
	PartialStart int
}

// Split tokenizes text up to cursor. Comments are dropped and only the
// statement the cursor is in is kept, so earlier statements of the same
// buffer are ignored. A word token that ends exactly at the cursor is still
// being typed and becomes Partial; everything else is a completed token.
func Split(text string, cursor int) Stream {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}

	all := Tokenize(text[:cursor])
	tokens := make([]Token, 0, len(all))
	for _, tok := range all {
		if tok.Type == TokenComment {
			continue
		}
		tokens = append(tokens, tok)
	}
	tokens = CurrentStatement(tokens, cursor)

	s := Stream{PartialStart: cursor}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		if last.End == cursor && last.IsWord() {
			s.Partial = last.Text
			s.PartialStart = last.Start
			tokens = tokens[:n-1]
		}
	}
	s.Tokens = tokens
	return s
}

// CurrentStatement returns the tokens of the statement pos falls in: those
// after the last ';' ending at or before pos, up to the next ';'.
func CurrentStatement(tokens []Token, pos int) []Token {
	start, end := 0, len(tokens)
	for i, t := range tokens {
		if t.Type != TokenPunctuation || t.Text != ";" {
			continue
		}
		if t.End > pos {
			end = i
			break
		}
		start = i + 1
	}
	return tokens[start:end]
}

// Texts returns the text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// FromWords builds completed tokens from already separated words, for
// callers that tokenize on their own.
func FromWords(words ...string) []Token {
	out := make([]Token, 0, len(words))
	offset := 0
	for _, w := range words {
		tok := Token{Type: TokenIdentifier}
		if lexed := Tokenize(w); len(lexed) == 1 {
			tok = lexed[0]
		}
		tok.Start, tok.End, tok.Text = offset, offset+len(w), w
		out = append(out, tok)
		offset += len(w) + 1
	}
	return out
}

// reserved holds the CQL reserved keywords. Non-reserved keywords (TYPE,
// EXISTS, ...) lex as identifiers since they are valid object names.
var reserved = map[string]struct{}{}

func init() {
	for _, kw := range strings.Fields(`
		ADD ALLOW ALTER AND APPLY ASC AUTHORIZE BATCH BEGIN BY COLUMNFAMILY
		CREATE DELETE DESC DESCRIBE DROP ENTRIES EXECUTE FROM FULL GRANT IF IN
		INDEX INFINITY INSERT INTO IS KEYSPACE LIMIT MATERIALIZED MBEAN MBEANS
		MODIFY NAN NORECURSIVE NOT NULL OF ON OR ORDER PRIMARY RENAME REPLACE
		REVOKE SCHEMA SELECT SET TABLE TO TOKEN TRUNCATE UNLOGGED UNSET UPDATE
		USE USING VIEW WHERE WITH`) {
		reserved[kw] = struct{}{}
	}
}

// IsReserved reports whether word is a reserved CQL keyword.
func IsReserved(word string) bool {
	_, ok := reserved[strings.ToUpper(word)]
	return ok
}
