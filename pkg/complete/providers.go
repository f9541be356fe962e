package complete

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// sourceFanout bounds concurrent per-keyspace lookups.
const sourceFanout = 4

// KeywordProvider accepts and suggests a fixed set of keywords.
type KeywordProvider struct {
	keywords []types.Keyword
}

// Keywords creates a provider for the given keywords, suggested in order.
func Keywords(kws ...types.Keyword) *KeywordProvider {
	return &KeywordProvider{keywords: append([]types.Keyword(nil), kws...)}
}

// Name implements Provider.
func (p *KeywordProvider) Name() string {
	return "keyword " + types.Phrase(p.keywords)
}

// Match implements Provider.
func (p *KeywordProvider) Match(_ *Request, tok tokenize.Token) bool {
	if !tok.IsWord() || tok.Type == tokenize.TokenString {
		return false
	}
	kw, ok := types.ParseKeyword(tok.Text)
	if !ok {
		return false
	}
	for _, k := range p.keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// Suggest implements Provider.
func (p *KeywordProvider) Suggest(context.Context, *Request) ([]CompletionItem, error) {
	items := make([]CompletionItem, 0, len(p.keywords))
	for _, k := range p.keywords {
		items = append(items, CompletionItem{Label: k.String(), Kind: KindKeyword, Detail: keywordDetail(k.String())})
	}
	return items, nil
}

// KeyspaceProvider accepts any unqualified name and suggests keyspaces.
type KeyspaceProvider struct {
	source schema.Source
}

// KeyspaceNames creates a keyspace name provider backed by src.
func KeyspaceNames(src schema.Source) *KeyspaceProvider {
	return &KeyspaceProvider{source: src}
}

// Name implements Provider.
func (p *KeyspaceProvider) Name() string { return "keyspace name" }

// Match implements Provider.
func (p *KeyspaceProvider) Match(_ *Request, tok tokenize.Token) bool {
	parts, ok := identParts(tok)
	return ok && len(parts) == 1
}

// Suggest implements Provider.
func (p *KeyspaceProvider) Suggest(ctx context.Context, req *Request) ([]CompletionItem, error) {
	names, err := p.source.Keyspaces(ctx)
	items := make([]CompletionItem, 0, len(names))
	for _, n := range names {
		detail := "Keyspace"
		if n == req.DefaultKeyspace {
			detail = "Keyspace (current)"
		}
		items = append(items, CompletionItem{Label: QuoteIdent(n), Kind: KindKeyspace, Detail: detail})
	}
	return items, err
}

// listFunc lists the objects of one kind in a keyspace.
type listFunc func(ctx context.Context, src schema.Source, keyspace string) ([]string, error)

// ObjectProvider accepts a possibly keyspace-qualified name and suggests
// objects of one kind (tables, indexes, types or views). Objects of the
// default keyspace are suggested bare, the others as "ks.name".
type ObjectProvider struct {
	name   string
	kind   CompletionKind
	detail string
	source schema.Source
	list   listFunc
}

// TableNames creates a table name provider backed by src.
func TableNames(src schema.Source) *ObjectProvider {
	return &ObjectProvider{name: "table name", kind: KindTable, detail: "Table", source: src,
		list: func(ctx context.Context, src schema.Source, ks string) ([]string, error) { return src.Tables(ctx, ks) }}
}

// IndexNames creates a secondary index name provider backed by src.
func IndexNames(src schema.Source) *ObjectProvider {
	return &ObjectProvider{name: "index name", kind: KindIndex, detail: "Index", source: src,
		list: func(ctx context.Context, src schema.Source, ks string) ([]string, error) { return src.Indexes(ctx, ks) }}
}

// TypeNames creates a user-defined type name provider backed by src.
func TypeNames(src schema.Source) *ObjectProvider {
	return &ObjectProvider{name: "type name", kind: KindType, detail: "User type", source: src,
		list: func(ctx context.Context, src schema.Source, ks string) ([]string, error) { return src.Types(ctx, ks) }}
}

// ViewNames creates a materialized view name provider backed by src.
func ViewNames(src schema.Source) *ObjectProvider {
	return &ObjectProvider{name: "view name", kind: KindView, detail: "Materialized view", source: src,
		list: func(ctx context.Context, src schema.Source, ks string) ([]string, error) { return src.Views(ctx, ks) }}
}

// Name implements Provider.
func (p *ObjectProvider) Name() string { return p.name }

// Match implements Provider.
func (p *ObjectProvider) Match(_ *Request, tok tokenize.Token) bool {
	parts, ok := identParts(tok)
	return ok && len(parts) <= 2
}

// Suggest implements Provider.
func (p *ObjectProvider) Suggest(ctx context.Context, req *Request) ([]CompletionItem, error) {
	// After "ks." only that keyspace is listed.
	if i := strings.LastIndexByte(req.Prefix, '.'); i > 0 {
		ks := NormalizeIdent(req.Prefix[:i])
		names, err := p.list(ctx, p.source, ks)
		if errors.Is(err, schema.ErrKeyspaceNotFound) {
			return nil, nil
		}
		return p.items(ks, names, true), err
	}

	var keyspaces []string
	if req.DefaultKeyspace != "" {
		keyspaces = append(keyspaces, req.DefaultKeyspace)
	}
	all, ksErr := p.source.Keyspaces(ctx)
	for _, ks := range all {
		if ks != req.DefaultKeyspace {
			keyspaces = append(keyspaces, ks)
		}
	}

	names := make([][]string, len(keyspaces))
	errs := make([]error, len(keyspaces))
	var g errgroup.Group
	g.SetLimit(sourceFanout)
	for i, ks := range keyspaces {
		i, ks := i, ks
		g.Go(func() error {
			names[i], errs[i] = p.list(ctx, p.source, ks)
			if errors.Is(errs[i], schema.ErrKeyspaceNotFound) {
				errs[i] = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	var items []CompletionItem
	for i, ks := range keyspaces {
		items = append(items, p.items(ks, names[i], ks != req.DefaultKeyspace)...)
	}
	return items, errors.Join(append([]error{ksErr}, errs...)...)
}

func (p *ObjectProvider) items(keyspace string, names []string, qualify bool) []CompletionItem {
	group := KeyspaceGroupID(keyspace)
	items := make([]CompletionItem, 0, len(names))
	for _, n := range names {
		label := QuoteIdent(n)
		if qualify {
			label = QuoteIdent(keyspace) + "." + label
		}
		items = append(items, CompletionItem{
			Label:  label,
			Kind:   p.kind,
			Detail: p.detail + " in " + keyspace,
			Groups: []string{group},
		})
	}
	return items
}

// identParts splits a name token into its dot-separated parts. It fails for
// anything that is not a complete identifier: keywords, literals, unterminated
// quotes and names ending in a dot.
func identParts(tok tokenize.Token) ([]string, bool) {
	if tok.Type != tokenize.TokenIdentifier || tok.Unterminated {
		return nil, false
	}
	var parts []string
	s := tok.Text
	for {
		var part string
		if strings.HasPrefix(s, `"`) {
			end := closingQuote(s)
			if end < 0 {
				return nil, false
			}
			part, s = s[:end+1], s[end+1:]
		} else {
			i := strings.IndexByte(s, '.')
			if i < 0 {
				i = len(s)
			}
			part, s = s[:i], s[i:]
		}
		if part == "" || part == `""` {
			return nil, false
		}
		parts = append(parts, part)
		if s == "" {
			return parts, true
		}
		if s[0] != '.' || len(s) == 1 {
			return nil, false
		}
		s = s[1:]
	}
}

// closingQuote returns the index of the quote closing s[0], skipping doubled
// quotes, or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			i++
			continue
		}
		return i
	}
	return -1
}

// NormalizeIdent returns the schema name an identifier refers to: quoted
// names keep their case, bare names fold to lower case.
func NormalizeIdent(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return strings.ToLower(s)
}

// QuoteIdent renders a schema name as it must be typed: bare when it is a
// lower-case identifier that is not a reserved keyword, quoted otherwise.
func QuoteIdent(name string) string {
	if isBareIdent(name) && !tokenize.IsReserved(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isBareIdent(s string) bool {
	if s == "" || !(s[0] >= 'a' && s[0] <= 'z') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}
