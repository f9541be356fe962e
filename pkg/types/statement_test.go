package types

import "testing"

func TestStatementNameString(t *testing.T) {
	tests := []struct {
		name StatementName
		want string
	}{
		{StatementCreateKeyspace, "CREATE KEYSPACE"},
		{StatementAlterKeyspace, "ALTER KEYSPACE"},
		{StatementDropTable, "DROP TABLE"},
		{StatementDropMaterializedView, "DROP MATERIALIZED VIEW"},
		{StatementUse, "USE"},
		{StatementDescribeTable, "DESCRIBE TABLE"},
		{StatementUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.name.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatementNameIsDDL(t *testing.T) {
	tests := []struct {
		name  StatementName
		isDDL bool
	}{
		{StatementCreateKeyspace, true},
		{StatementDropTable, true},
		{StatementTruncate, true},
		{StatementUse, false},
		{StatementDescribeKeyspace, false},
		{StatementUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name.String(), func(t *testing.T) {
			if got := tt.name.IsDDL(); got != tt.isDDL {
				t.Errorf("IsDDL() = %v, want %v", got, tt.isDDL)
			}
		})
	}
}

func TestStatementNameMarshalText(t *testing.T) {
	b, err := StatementDropIndex.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(b) != "DROP INDEX" {
		t.Errorf("MarshalText() = %q", b)
	}
}

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  Keyword
		ok    bool
	}{
		{"CREATE", KeywordCreate, true},
		{"create", KeywordCreate, true},
		{"KeySpace", KeywordKeyspace, true},
		{"materialized", KeywordMaterialized, true},
		{"frob", KeywordNone, false},
		{"", KeywordNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKeyword(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseKeyword(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKeywordsRoundTrip(t *testing.T) {
	for _, k := range Keywords() {
		got, ok := ParseKeyword(k.String())
		if !ok || got != k {
			t.Errorf("ParseKeyword(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if KeywordNone.String() != "Keyword(0)" {
		t.Errorf("KeywordNone.String() = %q", KeywordNone.String())
	}
}

func TestPhrase(t *testing.T) {
	got := Phrase([]Keyword{KeywordDrop, KeywordMaterialized, KeywordView})
	if got != "DROP MATERIALIZED VIEW" {
		t.Errorf("Phrase() = %q", got)
	}
	if Phrase(nil) != "" {
		t.Error("Phrase(nil) should be empty")
	}
}
