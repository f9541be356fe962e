package hover

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// GetHoverInfo returns hover information for the token at the given position.
func GetHoverInfo(ctx *HoverContext) *HoverInfo {
	if ctx == nil || ctx.Query == "" {
		return nil
	}

	var tokens []tokenize.Token
	for _, t := range tokenize.Tokenize(ctx.Query) {
		if t.Type != tokenize.TokenComment {
			tokens = append(tokens, t)
		}
	}
	tokens = tokenize.CurrentStatement(tokens, ctx.Position)

	idx := tokenAt(tokens, ctx.Position)
	if idx < 0 {
		return nil
	}
	return resolveHoverInfo(tokens, idx, ctx)
}

// FindTokenAtPosition finds the token at the given cursor position. A
// cursor right behind a word still points at that word.
func FindTokenAtPosition(query string, position int) *tokenize.Token {
	tokens := tokenize.Tokenize(query)
	if i := tokenAt(tokens, position); i >= 0 {
		return &tokens[i]
	}
	return nil
}

func tokenAt(tokens []tokenize.Token, pos int) int {
	for i, t := range tokens {
		if t.Start <= pos && pos < t.End {
			return i
		}
	}
	for i, t := range tokens {
		if t.End == pos && t.IsWord() {
			return i
		}
	}
	return -1
}

// statementPhrase returns the longest documented statement phrase the
// tokens start with, and how many tokens it spans.
func statementPhrase(tokens []tokenize.Token) (string, int) {
	var (
		kws    []types.Keyword
		phrase string
		n      int
	)
	for i, t := range tokens {
		if t.Type != tokenize.TokenKeyword && t.Type != tokenize.TokenIdentifier {
			break
		}
		kw, ok := types.ParseKeyword(t.Text)
		if !ok {
			break
		}
		kws = append(kws, kw)
		if p := types.Phrase(kws); Statements[p] != nil {
			phrase, n = p, i+1
		}
	}
	return phrase, n
}

// resolveHoverInfo generates hover content for tokens[idx].
func resolveHoverInfo(tokens []tokenize.Token, idx int, ctx *HoverContext) *HoverInfo {
	token := tokens[idx]
	rng := &Range{Start: token.Start, End: token.End}
	phrase, n := statementPhrase(tokens)

	// the leading keywords describe the whole statement
	if idx < n {
		info := Statements[phrase]
		return &HoverInfo{Content: formatKeywordHover(info), Range: rng, Kind: HoverStatement, Name: info.Name}
	}

	if token.Type == tokenize.TokenKeyword {
		return resolveKeywordHover(token, rng)
	}

	if afterWith(tokens[:idx]) {
		if info := GetOptionInfo(token.Text); info != nil {
			kind := HoverOption
			if strings.HasSuffix(strings.ToLower(token.Text), "strategy'") {
				kind = HoverValue
			}
			return &HoverInfo{Content: formatKeywordHover(info), Range: rng, Kind: kind, Name: info.Name}
		}
		return nil
	}

	if token.Type != tokenize.TokenIdentifier || ctx.Schema == nil {
		return nil
	}
	switch {
	case n == 0:
		// unknown statement: any name may be a table or keyspace
		return resolveIdentifierHover(token, rng, ctx, "")
	case idx == n:
		return resolveIdentifierHover(token, rng, ctx, phrase)
	}
	return nil
}

func resolveKeywordHover(token tokenize.Token, rng *Range) *HoverInfo {
	info := GetKeywordInfo(token.Text)
	if info == nil {
		return nil
	}
	return &HoverInfo{Content: formatKeywordHover(info), Range: rng, Kind: HoverKeyword, Name: info.Name}
}

func afterWith(tokens []tokenize.Token) bool {
	for _, t := range tokens {
		if t.Type == tokenize.TokenKeyword && t.Is("WITH") {
			return true
		}
	}
	return false
}

// objectKind maps a statement to the kind of object it names.
func objectKind(phrase string) HoverKind {
	switch {
	case phrase == "USE" || strings.HasSuffix(phrase, "KEYSPACE"):
		return HoverKeyspace
	case phrase == "TRUNCATE" || strings.HasSuffix(phrase, "TABLE"):
		return HoverTable
	case strings.HasSuffix(phrase, "INDEX"):
		return HoverIndex
	case strings.HasSuffix(phrase, "TYPE"):
		return HoverType
	case strings.HasSuffix(phrase, "VIEW"):
		return HoverView
	}
	return ""
}

// resolveIdentifierHover looks the name up in the schema. Without a
// statement it tries a table, then a keyspace.
func resolveIdentifierHover(token tokenize.Token, rng *Range, ctx *HoverContext, phrase string) *HoverInfo {
	parts := splitName(token.Text)
	if len(parts) == 0 {
		return nil
	}
	s := ctx.Schema
	info := func(kind HoverKind, name, content string) *HoverInfo {
		return &HoverInfo{Content: content, Range: rng, Kind: kind, Name: name}
	}

	kind := objectKind(phrase)
	switch kind {
	case HoverKeyspace:
		if ks := s.GetKeyspace(parts[0]); ks != nil && len(parts) == 1 {
			return info(HoverKeyspace, ks.Name, formatKeyspaceHover(ks))
		}
	case HoverTable, "":
		if tbl := findTable(s, ctx.DefaultKeyspace, parts); tbl != nil {
			return info(HoverTable, tbl.Name, formatTableHover(tbl))
		}
		if kind == "" && len(parts) == 1 {
			if ks := s.GetKeyspace(parts[0]); ks != nil {
				return info(HoverKeyspace, ks.Name, formatKeyspaceHover(ks))
			}
		}
	case HoverView:
		if ks := findKeyspace(s, ctx.DefaultKeyspace, parts, func(ks *schema.Keyspace, name string) bool {
			return ks.Views[name] != nil
		}); ks != nil {
			mv := ks.Views[parts[len(parts)-1]]
			return info(HoverView, mv.Name, formatViewHover(mv))
		}
	case HoverType:
		if ks := findKeyspace(s, ctx.DefaultKeyspace, parts, func(ks *schema.Keyspace, name string) bool {
			return ks.Types[name] != nil
		}); ks != nil {
			udt := ks.Types[parts[len(parts)-1]]
			return info(HoverType, udt.Name, formatTypeHover(udt))
		}
	case HoverIndex:
		var idx *schema.Index
		if ks := findKeyspace(s, ctx.DefaultKeyspace, parts, func(ks *schema.Keyspace, name string) bool {
			idx = findIndex(ks, name)
			return idx != nil
		}); ks != nil {
			return info(HoverIndex, idx.Name, formatIndexHover(ks.Name, idx))
		}
	}
	return nil
}

// splitName splits a possibly qualified, possibly quoted name into its
// normalized parts. Malformed names yield nil.
func splitName(text string) []string {
	var (
		parts  []string
		start  int
		quoted bool
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			quoted = !quoted
		case '.':
			if !quoted {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, text[start:])
	if quoted || len(parts) > 2 {
		return nil
	}
	for i, p := range parts {
		if p == "" {
			return nil
		}
		parts[i] = complete.NormalizeIdent(p)
	}
	return parts
}

// findKeyspace returns the keyspace holding the named object: the given
// keyspace for a qualified name, else the default keyspace, else the first
// keyspace by name that has it.
func findKeyspace(s *schema.Schema, defaultKs string, parts []string, has func(*schema.Keyspace, string) bool) *schema.Keyspace {
	if len(parts) == 2 {
		if ks := s.GetKeyspace(parts[0]); ks != nil && has(ks, parts[1]) {
			return ks
		}
		return nil
	}

	name := parts[0]
	if ks := s.GetKeyspace(defaultKs); ks != nil && has(ks, name) {
		return ks
	}
	for _, ksName := range s.KeyspaceNames() {
		if ks := s.GetKeyspace(ksName); has(ks, name) {
			return ks
		}
	}
	return nil
}

// findTable finds a table in the schema, searching the default keyspace
// first for unqualified names.
func findTable(s *schema.Schema, defaultKs string, parts []string) *schema.Table {
	ks := findKeyspace(s, defaultKs, parts, func(ks *schema.Keyspace, name string) bool {
		return ks.GetTable(name) != nil
	})
	if ks == nil {
		return nil
	}
	return ks.GetTable(parts[len(parts)-1])
}

func findIndex(ks *schema.Keyspace, name string) *schema.Index {
	for _, tbl := range ks.Tables {
		if idx, ok := tbl.Indexes[name]; ok {
			return idx
		}
	}
	return nil
}

// formatKeywordHover formats hover content for a keyword, statement or option.
func formatKeywordHover(info *KeywordInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n\n", info.Name))
	sb.WriteString(info.Description)
	if info.Syntax != "" {
		sb.WriteString("\n\n```cql\n")
		sb.WriteString(info.Syntax)
		sb.WriteString("\n```")
	}
	return sb.String()
}

// formatTableHover formats hover content for a table.
func formatTableHover(tbl *schema.Table) string {
	var sb strings.Builder

	if tbl.Keyspace != "" {
		sb.WriteString(fmt.Sprintf("**%s.%s**\n\n", tbl.Keyspace, tbl.Name))
	} else {
		sb.WriteString(fmt.Sprintf("**%s**\n\n", tbl.Name))
	}
	if tbl.Comment != "" {
		sb.WriteString(tbl.Comment + "\n\n")
	}

	sb.WriteString(fmt.Sprintf("%d column(s)\n\n", len(tbl.AllColumns())))

	if len(tbl.PartitionKey) > 0 {
		sb.WriteString(fmt.Sprintf("**Partition key**: %s\n", strings.Join(tbl.PartitionKey, ", ")))
	}
	if len(tbl.ClusteringKey) > 0 {
		sb.WriteString(fmt.Sprintf("**Clustering key**: %s\n", strings.Join(tbl.ClusteringKey, ", ")))
	}
	if idx := sortedIndexNames(tbl); len(idx) > 0 {
		sb.WriteString(fmt.Sprintf("**Indexes**: %s\n", strings.Join(idx, ", ")))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func sortedIndexNames(tbl *schema.Table) []string {
	names := make([]string, 0, len(tbl.Indexes))
	for name := range tbl.Indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatKeyspaceHover formats hover content for a keyspace.
func formatKeyspaceHover(ks *schema.Keyspace) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s** (keyspace)\n\n", ks.Name))

	if class := ks.Replication["class"]; class != "" {
		class = class[strings.LastIndex(class, ".")+1:]
		var opts []string
		for k, v := range ks.Replication {
			if k != "class" {
				opts = append(opts, fmt.Sprintf("%s: %s", k, v))
			}
		}
		sort.Strings(opts)
		sb.WriteString(fmt.Sprintf("Replication: %s", class))
		if len(opts) > 0 {
			sb.WriteString(" (" + strings.Join(opts, ", ") + ")")
		}
		sb.WriteString("\n\n")
	}
	if !ks.DurableWrites {
		sb.WriteString("durable_writes = false\n\n")
	}

	sb.WriteString(fmt.Sprintf("%d table(s)", len(ks.TableNames())))
	if n := len(ks.ViewNames()); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d view(s)", n))
	}
	if n := len(ks.TypeNames()); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d type(s)", n))
	}
	return sb.String()
}

func formatViewHover(mv *schema.MaterializedView) string {
	return fmt.Sprintf("**%s.%s** (materialized view)\n\nBase table: %s", mv.Keyspace, mv.Name, mv.BaseTable)
}

func formatIndexHover(keyspace string, idx *schema.Index) string {
	s := fmt.Sprintf("**%s.%s** (index)\n\nTable: %s", keyspace, idx.Name, idx.Table)
	if idx.TargetColumn != "" {
		s += fmt.Sprintf("\n\nTarget: %s", idx.TargetColumn)
	}
	return s
}

// formatTypeHover formats hover content for a user-defined type.
func formatTypeHover(udt *schema.UserType) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s.%s** (type)\n\n", udt.Keyspace, udt.Name))
	for _, f := range udt.FieldOrder {
		sb.WriteString(fmt.Sprintf("- %s `%s`\n", f, udt.Fields[f]))
	}
	return strings.TrimRight(sb.String(), "\n")
}
