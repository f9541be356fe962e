package types

import "fmt"

// StatementName identifies a statement shape the completion engine knows
type StatementName int

const (
	StatementUnknown StatementName = iota
	StatementCreateKeyspace
	StatementAlterKeyspace
	StatementDropKeyspace
	StatementDropTable
	StatementDropIndex
	StatementDropType
	StatementDropMaterializedView
	StatementTruncate
	StatementUse
	StatementDescribeKeyspace
	StatementDescribeTable
)

// String returns the string representation of the statement name
func (s StatementName) String() string {
	switch s {
	case StatementCreateKeyspace:
		return "CREATE KEYSPACE"
	case StatementAlterKeyspace:
		return "ALTER KEYSPACE"
	case StatementDropKeyspace:
		return "DROP KEYSPACE"
	case StatementDropTable:
		return "DROP TABLE"
	case StatementDropIndex:
		return "DROP INDEX"
	case StatementDropType:
		return "DROP TYPE"
	case StatementDropMaterializedView:
		return "DROP MATERIALIZED VIEW"
	case StatementTruncate:
		return "TRUNCATE"
	case StatementUse:
		return "USE"
	case StatementDescribeKeyspace:
		return "DESCRIBE KEYSPACE"
	case StatementDescribeTable:
		return "DESCRIBE TABLE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the name for JSON payloads and log fields
func (s StatementName) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsDDL returns true if the statement changes the schema
func (s StatementName) IsDDL() bool {
	switch s {
	case StatementCreateKeyspace, StatementAlterKeyspace, StatementDropKeyspace,
		StatementDropTable, StatementDropIndex, StatementDropType,
		StatementDropMaterializedView, StatementTruncate:
		return true
	default:
		return false
	}
}

// Keyword is a CQL grammar keyword. Keywords compare case-insensitively
// through ParseKeyword; the zero value is not a keyword.
type Keyword int

const (
	KeywordNone Keyword = iota
	KeywordCreate
	KeywordAlter
	KeywordDrop
	KeywordKeyspace
	KeywordTable
	KeywordIndex
	KeywordType
	KeywordMaterialized
	KeywordView
	KeywordUse
	KeywordTruncate
	KeywordDescribe
	KeywordWith
	KeywordAnd

	keywordCount
)

var keywordText = [keywordCount]string{
	KeywordNone:         "",
	KeywordCreate:       "CREATE",
	KeywordAlter:        "ALTER",
	KeywordDrop:         "DROP",
	KeywordKeyspace:     "KEYSPACE",
	KeywordTable:        "TABLE",
	KeywordIndex:        "INDEX",
	KeywordType:         "TYPE",
	KeywordMaterialized: "MATERIALIZED",
	KeywordView:         "VIEW",
	KeywordUse:          "USE",
	KeywordTruncate:     "TRUNCATE",
	KeywordDescribe:     "DESCRIBE",
	KeywordWith:         "WITH",
	KeywordAnd:          "AND",
}

var keywordLookup = func() map[string]Keyword {
	m := make(map[string]Keyword, keywordCount)
	for k := KeywordNone + 1; k < keywordCount; k++ {
		m[keywordText[k]] = k
	}
	return m
}()

// String returns the upper-case keyword text
func (k Keyword) String() string {
	if k <= KeywordNone || k >= keywordCount {
		return fmt.Sprintf("Keyword(%d)", int(k))
	}
	return keywordText[k]
}

// ParseKeyword looks up a keyword case-insensitively.
func ParseKeyword(s string) (Keyword, bool) {
	k, ok := keywordLookup[upperASCII(s)]
	return k, ok
}

// Keywords returns every defined keyword in declaration order.
func Keywords() []Keyword {
	out := make([]Keyword, 0, keywordCount-1)
	for k := KeywordNone + 1; k < keywordCount; k++ {
		out = append(out, k)
	}
	return out
}

// Phrase joins keywords with single spaces ("MATERIALIZED VIEW").
func Phrase(kws []Keyword) string {
	n := 0
	for _, k := range kws {
		n += len(k.String()) + 1
	}
	b := make([]byte, 0, n)
	for i, k := range kws {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, k.String()...)
	}
	return string(b)
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
