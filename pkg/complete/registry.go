package complete

import (
	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// Step is one grammar position: an ordered set of alternatives. Order is the
// tie-break for both "first match wins" and suggestion ordering.
type Step []Provider

// Handler binds a leading keyword sequence to a statement and its decision
// list. Handlers are built once and never mutated.
type Handler struct {
	Leading []types.Keyword
	Name    types.StatementName
	Steps   []Step
}

// Phrase returns the leading keywords as typed ("DROP TABLE").
func (h *Handler) Phrase() string {
	return types.Phrase(h.Leading)
}

func (h *Handler) validate() error {
	if len(h.Steps) == 0 {
		return &types.EmptyDecisionListError{Statement: h.Name, Step: -1}
	}
	for i, step := range h.Steps {
		if len(step) == 0 {
			return &types.EmptyDecisionListError{Statement: h.Name, Step: i}
		}
		for _, p := range step {
			if p == nil {
				return &types.EmptyDecisionListError{Statement: h.Name, Step: i}
			}
		}
	}
	return nil
}

// leadingMatch compares tokens with the leading keywords. It returns how many
// leading keywords the tokens cover and whether every compared token matched.
func (h *Handler) leadingMatch(tokens []tokenize.Token) (int, bool) {
	n := min(len(tokens), len(h.Leading))
	for i := 0; i < n; i++ {
		kw, ok := types.ParseKeyword(tokens[i].Text)
		if !ok || kw != h.Leading[i] {
			return i, false
		}
	}
	return n, true
}

// Builder collects handlers during startup.
type Builder struct {
	handlers []*Handler
	byName   map[types.StatementName]*Handler
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{byName: make(map[types.StatementName]*Handler)}
}

// Register adds a handler. It fails when the decision list is empty, when the
// statement name or leading keyword sequence is already owned, or when the
// leading sequence is a prefix of another one (the shorter would shadow the
// longer during classification).
func (b *Builder) Register(h *Handler) error {
	if h == nil || len(h.Leading) == 0 {
		name := types.StatementUnknown
		if h != nil {
			name = h.Name
		}
		return &types.EmptyDecisionListError{Statement: name, Step: -1}
	}
	if err := h.validate(); err != nil {
		return err
	}
	if owner, ok := b.byName[h.Name]; ok {
		return &types.DuplicateStatementError{Leading: h.Phrase(), Statement: h.Name, Owner: owner.Name}
	}
	for _, other := range b.handlers {
		if shared := commonPrefix(h.Leading, other.Leading); shared == min(len(h.Leading), len(other.Leading)) {
			return &types.DuplicateStatementError{
				Leading:   h.Phrase(),
				Statement: h.Name,
				Owner:     other.Name,
				Shadowed:  len(h.Leading) != len(other.Leading),
			}
		}
	}

	// Copy so later edits by the caller cannot reach the registry.
	c := &Handler{
		Leading: append([]types.Keyword(nil), h.Leading...),
		Name:    h.Name,
		Steps:   make([]Step, len(h.Steps)),
	}
	for i, s := range h.Steps {
		c.Steps[i] = append(Step(nil), s...)
	}
	b.handlers = append(b.handlers, c)
	b.byName[c.Name] = c
	return nil
}

// Build freezes the collected handlers into a registry.
func (b *Builder) Build() *Registry {
	return &Registry{handlers: append([]*Handler(nil), b.handlers...)}
}

// Registry is an immutable set of statement handlers, safe for concurrent use.
type Registry struct {
	handlers []*Handler
}

// NewRegistry registers every handler in order and builds the registry.
func NewRegistry(handlers ...*Handler) (*Registry, error) {
	b := NewBuilder()
	for _, h := range handlers {
		if err := b.Register(h); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Resolve returns the handler owning exactly the given leading keywords.
func (r *Registry) Resolve(keywords ...types.Keyword) (*Handler, bool) {
	for _, h := range r.handlers {
		if len(h.Leading) == len(keywords) && commonPrefix(h.Leading, keywords) == len(keywords) {
			return h, true
		}
	}
	return nil, false
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []*Handler {
	return append([]*Handler(nil), r.handlers...)
}

// LeadingKeywords returns each handler's leading phrase in registration order.
func (r *Registry) LeadingKeywords() []string {
	out := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		out[i] = h.Phrase()
	}
	return out
}

func commonPrefix(a, b []types.Keyword) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
