package complete

import (
	"context"
	"strings"

	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// clauseState is a position in the "name = value [AND ...]" sub-grammar.
type clauseState int

const (
	expectName clauseState = iota
	expectEquals
	expectValue
	afterValue

	// inside a map literal value
	mapKey
	mapColon
	mapValue
	mapSep
)

// ClauseProvider is the repeating body of a WITH clause. It replays the step
// tokens through a small option=value grammar on every call, so it keeps no
// state between tokens.
type ClauseProvider struct {
	clause  string
	options []optionEntry
}

// WithOptions creates a clause provider for the named option set
// ("keyspace") as declared in the annotations.
func WithOptions(clause string) *ClauseProvider {
	return &ClauseProvider{clause: clause, options: annotations.Options[clause]}
}

// Name implements Provider.
func (p *ClauseProvider) Name() string { return p.clause + " options" }

// Repeats implements Repeater.
func (p *ClauseProvider) Repeats() bool { return true }

// Match implements Provider.
func (p *ClauseProvider) Match(req *Request, tok tokenize.Token) bool {
	s, ok := p.scan(req.StepTokens)
	return ok && s.advance(p, tok)
}

// Suggest implements Provider.
func (p *ClauseProvider) Suggest(_ context.Context, req *Request) ([]CompletionItem, error) {
	s, ok := p.scan(req.StepTokens)
	if !ok {
		return nil, nil
	}

	switch s.state {
	case expectName:
		var items []CompletionItem
		for _, o := range p.options {
			if s.used[o.Name] {
				continue
			}
			items = append(items, CompletionItem{Label: o.Name, Kind: KindOption, Detail: o.Detail, Groups: []string{GroupCatOptions}})
		}
		return items, nil

	case expectEquals:
		return []CompletionItem{{Label: "=", Kind: KindOperator}}, nil

	case expectValue:
		items := make([]CompletionItem, 0, len(s.option.Values))
		for _, v := range s.option.Values {
			items = append(items, CompletionItem{Label: v.Label, Kind: KindValue, Detail: v.Detail})
		}
		return items, nil

	case afterValue:
		return []CompletionItem{{Label: types.KeywordAnd.String(), Kind: KindKeyword, Detail: keywordDetail("AND")}}, nil

	case mapKey:
		var items []CompletionItem
		if s.depth == 1 {
			for _, k := range s.option.Keys {
				if !s.keys[k.Name] {
					items = append(items, CompletionItem{Label: k.Name, Kind: KindValue})
				}
			}
		}
		if len(s.keys) > 0 {
			items = append(items, CompletionItem{Label: "}", Kind: KindOperator})
		}
		return items, nil

	case mapColon:
		return []CompletionItem{{Label: ":", Kind: KindOperator}}, nil

	case mapValue:
		var items []CompletionItem
		if s.depth == 1 {
			for _, k := range s.option.Keys {
				if k.Name != s.key {
					continue
				}
				for _, v := range k.Values {
					items = append(items, CompletionItem{Label: v, Kind: KindValue})
				}
			}
		}
		return items, nil

	case mapSep:
		return []CompletionItem{{Label: ",", Kind: KindOperator}, {Label: "}", Kind: KindOperator}}, nil
	}
	return nil, nil
}

func (p *ClauseProvider) lookup(name string) *optionEntry {
	for i := range p.options {
		if strings.EqualFold(p.options[i].Name, name) {
			return &p.options[i]
		}
	}
	return nil
}

// scan replays tokens from the start of the clause.
func (p *ClauseProvider) scan(tokens []tokenize.Token) (*clauseScan, bool) {
	s := &clauseScan{used: make(map[string]bool)}
	for _, tok := range tokens {
		if !s.advance(p, tok) {
			return nil, false
		}
	}
	return s, true
}

type clauseScan struct {
	state  clauseState
	option *optionEntry
	used   map[string]bool // options already set

	depth int             // map literal nesting
	key   string          // current top-level map key
	keys  map[string]bool // top-level keys already set
}

// advance consumes tok, reporting false when it is not valid here.
func (s *clauseScan) advance(p *ClauseProvider, tok tokenize.Token) bool {
	if tok.Unterminated {
		return false
	}
	switch s.state {
	case expectName:
		o := p.lookup(tok.Text)
		if o == nil || tok.Type != tokenize.TokenIdentifier || s.used[o.Name] {
			return false
		}
		s.option = o
		s.used[o.Name] = true
		s.state = expectEquals

	case expectEquals:
		if tok.Text != "=" {
			return false
		}
		s.state = expectValue

	case expectValue:
		switch {
		case tok.Text == "{":
			s.depth = 1
			s.keys = make(map[string]bool)
			s.state = mapKey
		case isScalar(tok):
			s.state = afterValue
		default:
			return false
		}

	case afterValue:
		if !tok.Is(types.KeywordAnd.String()) {
			return false
		}
		s.state = expectName

	case mapKey:
		switch {
		case tok.Text == "}" && len(s.keys) > 0:
			s.closeMap()
		case isScalar(tok):
			if s.depth == 1 {
				s.key = tok.Text
				s.keys[tok.Text] = true
			}
			s.state = mapColon
		default:
			return false
		}

	case mapColon:
		if tok.Text != ":" {
			return false
		}
		s.state = mapValue

	case mapValue:
		switch {
		case tok.Text == "{":
			s.depth++
			s.state = mapKey
		case isScalar(tok):
			s.state = mapSep
		default:
			return false
		}

	case mapSep:
		switch tok.Text {
		case ",":
			s.state = mapKey
		case "}":
			s.closeMap()
		default:
			return false
		}
	}
	return true
}

func (s *clauseScan) closeMap() {
	s.depth--
	if s.depth == 0 {
		s.state = afterValue
	} else {
		s.state = mapSep
	}
}

func isScalar(tok tokenize.Token) bool {
	switch tok.Type {
	case tokenize.TokenString, tokenize.TokenNumber, tokenize.TokenIdentifier:
		return true
	}
	return false
}
